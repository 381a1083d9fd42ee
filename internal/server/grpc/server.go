// Package grpc serves the document gateway over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/nipa/healthsync/internal/logging"
	pb "github.com/nipa/healthsync/internal/proto"
	"github.com/nipa/healthsync/internal/server/models"
	"google.golang.org/grpc"
)

// DocumentService is the business layer behind the handlers.
type DocumentService interface {
	Query(ctx context.Context, callerID, collection, field, value string) ([]models.Document, error)
	Upsert(ctx context.Context, callerID, collection, id string, doc models.Document) error
}

type GRPCServer struct {
	pb.UnimplementedDocumentServiceServer
	address   string
	documents DocumentService
	logger    logging.Logger
	jwtSecret []byte
}

func NewGRPCServer(a string, l logging.Logger, ds DocumentService, secretKey string) (*GRPCServer, error) {
	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		documents: ds,
		jwtSecret: []byte(secretKey),
	}, nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	pb.RegisterDocumentServiceServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
