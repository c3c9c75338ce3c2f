// Package authrpc defines the identity gRPC service. Messages are
// google.protobuf.Struct values; this package owns their field layout and
// the service descriptor, so neither side needs generated stubs.
package authrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "campushub.auth.AuthService"

const (
	MethodSignUp    = "/" + ServiceName + "/SignUp"
	MethodSignIn    = "/" + ServiceName + "/SignIn"
	MethodVerifyOTP = "/" + ServiceName + "/VerifyOTP"
	MethodSignOut   = "/" + ServiceName + "/SignOut"
	MethodGetUser   = "/" + ServiceName + "/GetUser"
	MethodPing      = "/" + ServiceName + "/Ping"
)

// RequiresToken reports whether method expects an access token in the
// call metadata.
func RequiresToken(method string) bool {
	return method == MethodSignOut || method == MethodGetUser
}

// Server is implemented by the identity service.
type Server interface {
	SignUp(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignIn(context.Context, *structpb.Struct) (*structpb.Struct, error)
	VerifyOTP(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SignOut(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetUser(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Ping(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type handlerFunc func(Server, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unary(method string, call handlerFunc) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(Server), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(Server), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SignUp", Handler: unary(MethodSignUp, Server.SignUp)},
		{MethodName: "SignIn", Handler: unary(MethodSignIn, Server.SignIn)},
		{MethodName: "VerifyOTP", Handler: unary(MethodVerifyOTP, Server.VerifyOTP)},
		{MethodName: "SignOut", Handler: unary(MethodSignOut, Server.SignOut)},
		{MethodName: "GetUser", Handler: unary(MethodGetUser, Server.GetUser)},
		{MethodName: "Ping", Handler: unary(MethodPing, Server.Ping)},
	},
	Metadata: "campushub/auth.proto",
}

func RegisterServer(r grpc.ServiceRegistrar, srv Server) {
	r.RegisterService(&ServiceDesc, srv)
}

// Client calls the identity service over cc.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with in and returns the response struct.
func (c *Client) Call(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
