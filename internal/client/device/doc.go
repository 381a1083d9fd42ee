// Package device reports the host conditions the sync scheduler depends on:
// whether the gateway is reachable and whether the battery is low.
package device
