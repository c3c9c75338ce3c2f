package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/campushub/internal/authrpc"
	"github.com/dmitrijs2005/campushub/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const accessTokenKey ctxKey = "accessToken"

// accessTokenInterceptor moves the access token of token-bound methods
// from metadata into the context. Validation is left to the authority,
// which knows about revocation.
func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if authrpc.RequiresToken(info.FullMethod) {
		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, common.ErrInvalidToken.Error())
		}

		ctx = context.WithValue(ctx, accessTokenKey, accessToken)
	}

	return handler(ctx, req)
}

func (s *GRPCServer) loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{"method", info.FullMethod, "code", code.String(), "duration", time.Since(start)}
	if code == codes.Internal || code == codes.Unknown {
		s.logger.Error(ctx, "rpc failed", append(args, "error", err)...)
	} else {
		s.logger.Debug(ctx, "rpc done", args...)
	}
	return resp, err
}

func accessTokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(accessTokenKey).(string)
	return token
}
