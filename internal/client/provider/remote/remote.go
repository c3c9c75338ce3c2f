// Package remote is a provider.Backend that talks to the identity server
// over gRPC.
package remote

import (
	"context"
	"time"

	"github.com/dmitrijs2005/campushub/internal/authrpc"
	"github.com/dmitrijs2005/campushub/internal/client/provider"
	"github.com/dmitrijs2005/campushub/internal/common"
	"github.com/dmitrijs2005/campushub/internal/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
)

const DefaultTimeout = 10 * time.Second

type Backend struct {
	conn    *grpc.ClientConn
	client  *authrpc.Client
	timeout time.Duration
}

var _ provider.Backend = (*Backend)(nil)

// Dial creates a backend for the server at address. Connections are
// established lazily on the first call.
func Dial(address string, timeout time.Duration, opts ...grpc.DialOption) (*Backend, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(address, opts...)
	if err != nil {
		return nil, err
	}
	b := NewBackend(conn, timeout)
	b.conn = conn
	return b, nil
}

// NewBackend wraps an existing connection. Close does not close it.
func NewBackend(cc grpc.ClientConnInterface, timeout time.Duration) *Backend {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Backend{client: authrpc.NewClient(cc), timeout: timeout}
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (b *Backend) call(ctx context.Context, method string, in *structpb.Struct) (*structpb.Struct, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	out, err := b.client.Call(ctx, method, in)
	if err != nil {
		return nil, b.mapError(err)
	}
	return out, nil
}

func (b *Backend) SignUp(ctx context.Context, email, password string) error {
	_, err := b.call(ctx, authrpc.MethodSignUp, authrpc.CredentialsRequest(email, password))
	return err
}

func (b *Backend) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	out, err := b.call(ctx, authrpc.MethodSignIn, authrpc.CredentialsRequest(email, password))
	if err != nil {
		return nil, err
	}
	return authrpc.SessionFromStruct(out)
}

func (b *Backend) VerifyOTP(ctx context.Context, email, code, otpType string) (*models.Session, error) {
	out, err := b.call(ctx, authrpc.MethodVerifyOTP, authrpc.VerifyOTPRequest(email, code, otpType))
	if err != nil {
		return nil, err
	}
	return authrpc.SessionFromStruct(out)
}

func (b *Backend) SignOut(ctx context.Context, accessToken string) error {
	_, err := b.call(withAccessToken(ctx, accessToken), authrpc.MethodSignOut, nil)
	return err
}

func (b *Backend) GetUser(ctx context.Context, accessToken string) (*models.User, error) {
	out, err := b.call(withAccessToken(ctx, accessToken), authrpc.MethodGetUser, nil)
	if err != nil {
		return nil, err
	}
	return authrpc.UserFromStruct(out)
}

// Ping checks that the server answers.
func (b *Backend) Ping(ctx context.Context) error {
	_, err := b.call(ctx, authrpc.MethodPing, nil)
	return err
}

func (b *Backend) Close() error {
	if b.conn == nil {
		return nil
	}
	return b.conn.Close()
}

// mapError restores the sentinel a status carries; transport failures
// become common.ErrUnavailable.
func (b *Backend) mapError(err error) error {
	return common.FromStatus(err)
}
