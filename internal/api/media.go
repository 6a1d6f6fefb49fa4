package api

import (
	"context"

	"google.golang.org/grpc"
)

// MediaServiceName is the fully qualified media service name.
const MediaServiceName = "marketplace.media.v1.Media"

const (
	Media_UploadMedia_FullMethodName = "/" + MediaServiceName + "/UploadMedia"
	Media_ListMedia_FullMethodName   = "/" + MediaServiceName + "/ListMedia"
	Media_DeleteMedia_FullMethodName = "/" + MediaServiceName + "/DeleteMedia"
)

// MediaServer is implemented by the media service.
type MediaServer interface {
	UploadMedia(context.Context, *UploadMediaRequest) (*MediaResponse, error)
	ListMedia(context.Context, *ListMediaRequest) (*ListMediaResponse, error)
	DeleteMedia(context.Context, *DeleteMediaRequest) (*DeleteMediaResponse, error)
}

var Media_ServiceDesc = grpc.ServiceDesc{
	ServiceName: MediaServiceName,
	HandlerType: (*MediaServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MediaServiceName, "UploadMedia", MediaServer.UploadMedia),
		unary(MediaServiceName, "ListMedia", MediaServer.ListMedia),
		unary(MediaServiceName, "DeleteMedia", MediaServer.DeleteMedia),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace/media/v1/media.proto",
}

func RegisterMediaServer(s grpc.ServiceRegistrar, srv MediaServer) {
	s.RegisterService(&Media_ServiceDesc, srv)
}

// MediaClient is the client API for the media service.
type MediaClient interface {
	UploadMedia(ctx context.Context, in *UploadMediaRequest, opts ...grpc.CallOption) (*MediaResponse, error)
	ListMedia(ctx context.Context, in *ListMediaRequest, opts ...grpc.CallOption) (*ListMediaResponse, error)
	DeleteMedia(ctx context.Context, in *DeleteMediaRequest, opts ...grpc.CallOption) (*DeleteMediaResponse, error)
}

type mediaClient struct {
	cc grpc.ClientConnInterface
}

func NewMediaClient(cc grpc.ClientConnInterface) MediaClient {
	return &mediaClient{cc}
}

func (c *mediaClient) UploadMedia(ctx context.Context, in *UploadMediaRequest, opts ...grpc.CallOption) (*MediaResponse, error) {
	return invoke[MediaResponse](ctx, c.cc, Media_UploadMedia_FullMethodName, in, opts...)
}

func (c *mediaClient) ListMedia(ctx context.Context, in *ListMediaRequest, opts ...grpc.CallOption) (*ListMediaResponse, error) {
	return invoke[ListMediaResponse](ctx, c.cc, Media_ListMedia_FullMethodName, in, opts...)
}

func (c *mediaClient) DeleteMedia(ctx context.Context, in *DeleteMediaRequest, opts ...grpc.CallOption) (*DeleteMediaResponse, error) {
	return invoke[DeleteMediaResponse](ctx, c.cc, Media_DeleteMedia_FullMethodName, in, opts...)
}
