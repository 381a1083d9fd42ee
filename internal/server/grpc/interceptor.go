package grpc

import (
	"context"

	"github.com/nipa/healthsync/internal/common"
	pb "github.com/nipa/healthsync/internal/proto"
	"github.com/nipa/healthsync/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const OwnerIDKey ctxKey = "ownerID"

// publicMethods skip token verification.
var publicMethods = map[string]bool{
	pb.DocumentService_Ping_FullMethodName: true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {

	if publicMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}

	ownerID, err := auth.GetOwnerIDFromToken(accessToken, s.jwtSecret)
	if err != nil {
		s.logger.Warn(ctx, "rejected token", "method", info.FullMethod, "error", err)
		return nil, status.Error(codes.Unauthenticated, err.Error())
	}

	ctx = context.WithValue(ctx, OwnerIDKey, ownerID)

	return handler(ctx, req)
}

func ownerFromContext(ctx context.Context) string {
	id, _ := ctx.Value(OwnerIDKey).(string)
	return id
}
