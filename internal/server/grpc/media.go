package grpcserver

import (
	"context"

	"github.com/FredericTischler/safe-zone/internal/api"
	"github.com/FredericTischler/safe-zone/internal/convert"
	"github.com/FredericTischler/safe-zone/internal/model"
	"github.com/FredericTischler/safe-zone/internal/service"
)

// MediaServer serves product images. Bulk deletion is not exposed; it only
// runs from lifecycle events.
type MediaServer struct {
	media service.MediaService
}

var _ api.MediaServer = (*MediaServer)(nil)

func NewMediaServer(media service.MediaService) *MediaServer {
	return &MediaServer{media: media}
}

// UploadMedia stores an image for a product on behalf of the calling seller.
func (s *MediaServer) UploadMedia(ctx context.Context, req *api.UploadMediaRequest) (*api.MediaResponse, error) {
	c, err := seller(ctx)
	if err != nil {
		return nil, err
	}
	a, err := s.media.Upload(ctx, model.UploadInput{
		Data:        req.Data,
		ContentType: req.ContentType,
		ResourceID:  req.ResourceID,
		UploaderID:  c.UserID,
	})
	if err != nil {
		return nil, err
	}
	return &api.MediaResponse{Media: convert.ToAPIMedia(a)}, nil
}

func (s *MediaServer) ListMedia(ctx context.Context, req *api.ListMediaRequest) (*api.ListMediaResponse, error) {
	as, err := s.media.ListByResource(ctx, req.ResourceID)
	if err != nil {
		return nil, err
	}
	return convert.ToListMediaResponse(as), nil
}

// DeleteMedia removes one image uploaded by the caller.
func (s *MediaServer) DeleteMedia(ctx context.Context, req *api.DeleteMediaRequest) (*api.DeleteMediaResponse, error) {
	c, err := seller(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.media.DeleteOne(ctx, req.ID, c.UserID); err != nil {
		return nil, err
	}
	return &api.DeleteMediaResponse{}, nil
}
