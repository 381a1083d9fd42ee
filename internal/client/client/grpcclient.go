package client

import (
	"context"
	"fmt"
	"time"

	"github.com/nipa/healthsync/internal/client/models"
	"github.com/nipa/healthsync/internal/common"
	pb "github.com/nipa/healthsync/internal/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
)

// DefaultRequestTimeout bounds a single remote call.
const DefaultRequestTimeout = 30 * time.Second

type GRPCClient struct {
	endpointURL    string
	accessToken    string
	requestTimeout time.Duration
	conn           *grpc.ClientConn
	client         pb.DocumentServiceClient
}

var _ Remote = (*GRPCClient)(nil)

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)
	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewGRPCClient creates a client for the gateway at endpointURL. Extra dial
// options are appended to the defaults (insecure transport, token interceptor).
func NewGRPCClient(endpointURL, accessToken string, requestTimeout time.Duration, opts ...grpc.DialOption) (*GRPCClient, error) {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, requestTimeout: requestTimeout}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = pb.NewDocumentServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) Query(ctx context.Context, collection, field, value string) ([]models.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	req := pb.QueryRequest{Collection: collection, Field: field, Value: value}
	resp, err := s.client.Query(ctx, req.ToStruct())
	if err != nil {
		return nil, s.mapError(err)
	}

	docs := pb.Documents(resp)
	result := make([]models.Document, len(docs))
	for i, d := range docs {
		result[i] = d
	}
	return result, nil
}

func (s *GRPCClient) Upsert(ctx context.Context, collection, id string, doc models.Document) error {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	req, err := pb.UpsertRequest{Collection: collection, ID: id, Document: doc}.ToStruct()
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	if _, err := s.client.Upsert(ctx, req); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	resp, err := s.client.Ping(ctx, &emptypb.Empty{})
	if err != nil {
		return s.mapError(err)
	}
	if resp.GetValue() != pb.PingOK {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %s", ErrUnauthorized, st.Message())
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return fmt.Errorf("%w: %s", ErrUnavailable, st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
