package grpc

import (
	"context"

	"github.com/dmitrijs2005/campushub/internal/authrpc"
	"github.com/dmitrijs2005/campushub/internal/common"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *GRPCServer) SignUp(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password := authrpc.Credentials(req)

	if err := s.identity.SignUp(ctx, email, password); err != nil {
		return nil, s.statusError(ctx, err)
	}

	s.logger.Info(ctx, "Sign-up accepted")
	return authrpc.StatusResponse("OK"), nil
}

func (s *GRPCServer) SignIn(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, password := authrpc.Credentials(req)

	sess, err := s.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return authrpc.SessionToStruct(sess), nil
}

func (s *GRPCServer) VerifyOTP(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	email, code, otpType := authrpc.VerifyOTPArgs(req)

	sess, err := s.identity.VerifyOTP(ctx, email, code, otpType)
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return authrpc.SessionToStruct(sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if err := s.identity.SignOut(ctx, accessTokenFromContext(ctx)); err != nil {
		return nil, s.statusError(ctx, err)
	}
	return authrpc.StatusResponse("OK"), nil
}

func (s *GRPCServer) GetUser(ctx context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	u, err := s.identity.GetUser(ctx, accessTokenFromContext(ctx))
	if err != nil {
		return nil, s.statusError(ctx, err)
	}
	return authrpc.UserToStruct(*u), nil
}

func (s *GRPCServer) Ping(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return authrpc.StatusResponse("OK"), nil
}

// statusError converts err for the wire. Unknown errors are logged here
// because the client only sees a generic internal error.
func (s *GRPCServer) statusError(ctx context.Context, err error) error {
	st := common.ToStatus(err)
	if common.FromStatus(st) == common.ErrInternal {
		s.logger.Error(ctx, "identity error", "error", err)
	}
	return st
}
