package api

import (
	"context"

	"google.golang.org/grpc"
)

// AuthServer is implemented by the auth gRPC handler.
type AuthServer interface {
	Register(context.Context, *RegisterRequest) (*Account, error)
	Login(context.Context, *LoginRequest) (*TokenResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*TokenResponse, error)
	ValidateToken(context.Context, *ValidateTokenRequest) (*ValidateTokenResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*Account, error)
	GetProfile(context.Context, *GetProfileRequest) (*Account, error)
	Me(context.Context, *MeRequest) (*Account, error)
}

func RegisterAuthServer(s grpc.ServiceRegistrar, srv AuthServer) {
	s.RegisterService(&authServiceDesc, srv)
}

// unaryHandler adapts a typed AuthServer method to a grpc.MethodDesc handler.
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(AuthServer, context.Context, *Req) (*Resp, error),
) grpc.MethodHandler {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(AuthServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(AuthServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var authServiceDesc = grpc.ServiceDesc{
	ServiceName: AuthService,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Register", Handler: unaryHandler(AuthRegister, AuthServer.Register)},
		{MethodName: "Login", Handler: unaryHandler(AuthLogin, AuthServer.Login)},
		{MethodName: "RefreshToken", Handler: unaryHandler(AuthRefreshToken, AuthServer.RefreshToken)},
		{MethodName: "ValidateToken", Handler: unaryHandler(AuthValidateToken, AuthServer.ValidateToken)},
		{MethodName: "UpdateProfile", Handler: unaryHandler(AuthUpdateProfile, AuthServer.UpdateProfile)},
		{MethodName: "GetProfile", Handler: unaryHandler(AuthGetProfile, AuthServer.GetProfile)},
		{MethodName: "Me", Handler: unaryHandler(AuthMe, AuthServer.Me)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "moodiary/auth",
}

// AuthClient calls the auth service over an established connection using the JSON codec.
type AuthClient struct {
	cc grpc.ClientConnInterface
}

func NewAuthClient(cc grpc.ClientConnInterface) *AuthClient {
	return &AuthClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *AuthClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, AuthRegister, in, opts)
}

func (c *AuthClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, AuthLogin, in, opts)
}

func (c *AuthClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*TokenResponse, error) {
	return invoke[TokenResponse](ctx, c.cc, AuthRefreshToken, in, opts)
}

func (c *AuthClient) ValidateToken(ctx context.Context, in *ValidateTokenRequest, opts ...grpc.CallOption) (*ValidateTokenResponse, error) {
	return invoke[ValidateTokenResponse](ctx, c.cc, AuthValidateToken, in, opts)
}

func (c *AuthClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, AuthUpdateProfile, in, opts)
}

func (c *AuthClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, AuthGetProfile, in, opts)
}

func (c *AuthClient) Me(ctx context.Context, in *MeRequest, opts ...grpc.CallOption) (*Account, error) {
	return invoke[Account](ctx, c.cc, AuthMe, in, opts)
}
