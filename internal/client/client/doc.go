// Package client talks to the remote document collections and opens the
// local cache database.
//
// # Overview
//
//  1. Remote is the transport-agnostic contract the sync engine consumes:
//     Query by an equality filter, Upsert by id, Ping, Close.
//  2. GRPCClient implements Remote against the document gateway. It attaches
//     the access token to every call and maps gRPC status codes to the
//     sentinel errors below.
//  3. InitDatabase opens the SQLite cache and applies embedded migrations;
//     NewRepositories wires the per-kind repositories on top of it.
//
// # Error Handling
//
// ErrUnavailable marks transient failures worth retrying, ErrUnauthorized
// marks rejected credentials. Anything else is a permanent remote error.
// Use errors.Is or IsTransient to classify.
package client
