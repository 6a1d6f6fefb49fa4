package api

import (
	"context"

	"google.golang.org/grpc"
)

// IdentityServiceName is the fully qualified identity service name.
const IdentityServiceName = "marketplace.identity.v1.Identity"

const (
	Identity_Register_FullMethodName      = "/" + IdentityServiceName + "/Register"
	Identity_Login_FullMethodName         = "/" + IdentityServiceName + "/Login"
	Identity_Profile_FullMethodName       = "/" + IdentityServiceName + "/Profile"
	Identity_UpdateProfile_FullMethodName = "/" + IdentityServiceName + "/UpdateProfile"
	Identity_UploadAvatar_FullMethodName  = "/" + IdentityServiceName + "/UploadAvatar"
	Identity_GetUser_FullMethodName       = "/" + IdentityServiceName + "/GetUser"
)

// IdentityServer is implemented by the identity service.
type IdentityServer interface {
	Register(context.Context, *RegisterRequest) (*RegisterResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	Profile(context.Context, *ProfileRequest) (*ProfileResponse, error)
	UpdateProfile(context.Context, *UpdateProfileRequest) (*ProfileResponse, error)
	UploadAvatar(context.Context, *UploadAvatarRequest) (*UploadAvatarResponse, error)
	GetUser(context.Context, *GetUserRequest) (*GetUserResponse, error)
}

// Identity_ServiceDesc describes the identity service for grpc.Server.RegisterService.
var Identity_ServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(IdentityServiceName, "Register", IdentityServer.Register),
		unary(IdentityServiceName, "Login", IdentityServer.Login),
		unary(IdentityServiceName, "Profile", IdentityServer.Profile),
		unary(IdentityServiceName, "UpdateProfile", IdentityServer.UpdateProfile),
		unary(IdentityServiceName, "UploadAvatar", IdentityServer.UploadAvatar),
		unary(IdentityServiceName, "GetUser", IdentityServer.GetUser),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/identity/v1/identity.proto",
}

// RegisterIdentityServer attaches srv to s.
func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&Identity_ServiceDesc, srv)
}

// IdentityClient is the client API for the identity service.
type IdentityClient interface {
	Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error)
	Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error)
	Profile(ctx context.Context, in *ProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error)
	UploadAvatar(ctx context.Context, in *UploadAvatarRequest, opts ...grpc.CallOption) (*UploadAvatarResponse, error)
	GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*GetUserResponse, error)
}

type identityClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityClient(cc grpc.ClientConnInterface) IdentityClient {
	return &identityClient{cc}
}

func (c *identityClient) Register(ctx context.Context, in *RegisterRequest, opts ...grpc.CallOption) (*RegisterResponse, error) {
	return invoke[RegisterResponse](ctx, c.cc, Identity_Register_FullMethodName, in, opts...)
}

func (c *identityClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c.cc, Identity_Login_FullMethodName, in, opts...)
}

func (c *identityClient) Profile(ctx context.Context, in *ProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, Identity_Profile_FullMethodName, in, opts...)
}

func (c *identityClient) UpdateProfile(ctx context.Context, in *UpdateProfileRequest, opts ...grpc.CallOption) (*ProfileResponse, error) {
	return invoke[ProfileResponse](ctx, c.cc, Identity_UpdateProfile_FullMethodName, in, opts...)
}

func (c *identityClient) UploadAvatar(ctx context.Context, in *UploadAvatarRequest, opts ...grpc.CallOption) (*UploadAvatarResponse, error) {
	return invoke[UploadAvatarResponse](ctx, c.cc, Identity_UploadAvatar_FullMethodName, in, opts...)
}

func (c *identityClient) GetUser(ctx context.Context, in *GetUserRequest, opts ...grpc.CallOption) (*GetUserResponse, error) {
	return invoke[GetUserResponse](ctx, c.cc, Identity_GetUser_FullMethodName, in, opts...)
}
