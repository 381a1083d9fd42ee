package grpc

import (
	"context"
	"errors"

	"github.com/nipa/healthsync/internal/common"
	pb "github.com/nipa/healthsync/internal/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func (s *GRPCServer) Query(ctx context.Context, in *structpb.Struct) (*structpb.ListValue, error) {

	req, err := pb.ParseQueryRequest(in)
	if err != nil {
		return nil, s.toStatus(ctx, "query", err)
	}

	docs, err := s.documents.Query(ctx, ownerFromContext(ctx), req.Collection, req.Field, req.Value)
	if err != nil {
		return nil, s.toStatus(ctx, "query", err)
	}

	list, err := pb.DocumentList(docs)
	if err != nil {
		s.logger.Error(ctx, err.Error())
		return nil, status.Error(codes.Internal, "internal error")
	}

	return list, nil
}

func (s *GRPCServer) Upsert(ctx context.Context, in *structpb.Struct) (*emptypb.Empty, error) {

	req, err := pb.ParseUpsertRequest(in)
	if err != nil {
		return nil, s.toStatus(ctx, "upsert", err)
	}

	if err := s.documents.Upsert(ctx, ownerFromContext(ctx), req.Collection, req.ID, req.Document); err != nil {
		return nil, s.toStatus(ctx, "upsert", err)
	}

	return &emptypb.Empty{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {

	return wrapperspb.String(pb.PingOK), nil

}

// toStatus maps service errors to gRPC codes. Anything unrecognized is a
// storage failure, reported as Unavailable so clients retry later.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, pb.ErrBadRequest), errors.Is(err, common.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, common.ErrForbidden):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		s.logger.Error(ctx, "request failed", "op", op, "error", err)
		return status.Error(codes.Unavailable, "storage unavailable")
	}
}
