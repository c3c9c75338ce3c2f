// Package grpc exposes the identity authority as the authrpc gRPC service.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/campushub/internal/authrpc"
	"github.com/dmitrijs2005/campushub/internal/logging"
	"github.com/dmitrijs2005/campushub/internal/models"
	"google.golang.org/grpc"
)

// Identity is the authority the server fronts. *identity.Authority
// implements it.
type Identity interface {
	SignUp(ctx context.Context, email, password string) error
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	VerifyOTP(ctx context.Context, email, code, otpType string) (*models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
	GetUser(ctx context.Context, accessToken string) (*models.User, error)
}

type GRPCServer struct {
	address  string
	identity Identity
	logger   logging.Logger
}

var _ authrpc.Server = (*GRPCServer)(nil)

func NewGRPCServer(address string, l logging.Logger, identity Identity) *GRPCServer {
	return &GRPCServer{
		address:  address,
		logger:   l.With("module", "grpc_server"),
		identity: identity,
	}
}

// Run listens on the configured address and serves until ctx is done.
func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listen)
}

// Serve serves on lis until ctx is done, then stops gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	authrpc.RegisterServer(srv, s)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	if err := srv.Serve(lis); err != nil {
		return err
	}
	return nil
}
