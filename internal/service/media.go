package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/FredericTischler/safe-zone/internal/auth"
	"github.com/FredericTischler/safe-zone/internal/blobstore"
	"github.com/FredericTischler/safe-zone/internal/errs"
	"github.com/FredericTischler/safe-zone/internal/metrics"
	"github.com/FredericTischler/safe-zone/internal/model"
	"github.com/FredericTischler/safe-zone/internal/repository"
	"github.com/FredericTischler/safe-zone/internal/upload"
)

// MediaCollection is the locator collection of product images.
const MediaCollection = "media"

// BlobStore keeps file bytes grouped by directory. *blobstore.FS implements it.
type BlobStore interface {
	Put(dir, name string, data []byte) error
	Get(dir, name string) ([]byte, error)
	Remove(dir, name string) error
	RemoveDirIfEmpty(dir string) (bool, error)
}

var _ BlobStore = (*blobstore.FS)(nil)

// ResourceChecker resolves the owner of a catalog resource.
// A missing resource yields errs.ErrNotFound.
type ResourceChecker interface {
	ResourceOwner(ctx context.Context, resourceID string) (string, error)
}

// MediaService stores artifacts attached to catalog resources.
type MediaService interface {
	Upload(ctx context.Context, in model.UploadInput) (model.Artifact, error)
	Fetch(ctx context.Context, resourceID, filename string) ([]byte, string, error)
	DeleteOne(ctx context.Context, artifactID, callerID string) error
	// DeleteAllForResource is privileged: it performs no ownership check.
	DeleteAllForResource(ctx context.Context, resourceID string) error
	ListByResource(ctx context.Context, resourceID string) ([]model.Artifact, error)
}

type MediaServiceImpl struct {
	repo    repository.MediaRepository
	blobs   BlobStore
	policy  upload.Policy
	checker ResourceChecker
	log     *zap.Logger
	now     func() time.Time
}

// MediaOption configures MediaServiceImpl.
type MediaOption func(*MediaServiceImpl)

// WithResourceChecker makes Upload verify that the uploader owns the resource.
func WithResourceChecker(c ResourceChecker) MediaOption {
	return func(s *MediaServiceImpl) { s.checker = c }
}

// NewMediaService constructs MediaService. A zero policy means the default media ceiling.
func NewMediaService(repo repository.MediaRepository, blobs BlobStore, policy upload.Policy, log *zap.Logger, opts ...MediaOption) *MediaServiceImpl {
	if policy.MaxBytes <= 0 {
		policy.MaxBytes = upload.MediaMaxBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &MediaServiceImpl{repo: repo, blobs: blobs, policy: policy, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Upload validates and stores one artifact under a server-generated name.
func (s *MediaServiceImpl) Upload(ctx context.Context, in model.UploadInput) (model.Artifact, error) {
	ct, err := s.policy.Check(int64(len(in.Data)), in.ContentType)
	if err != nil {
		return model.Artifact{}, err
	}
	if !blobstore.ValidSegment(in.ResourceID) {
		return model.Artifact{}, errs.Validation("bad resource id %q", in.ResourceID)
	}
	if in.UploaderID == "" {
		return model.Artifact{}, errs.Validation("empty uploader")
	}
	if s.checker != nil {
		owner, err := s.checker.ResourceOwner(ctx, in.ResourceID)
		if err != nil {
			return model.Artifact{}, err
		}
		if err := auth.RequireOwner(owner, in.UploaderID); err != nil {
			return model.Artifact{}, err
		}
	}

	fn, err := upload.NewFilename(ct)
	if err != nil {
		return model.Artifact{}, err
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.Artifact{}, err
	}
	if err := s.blobs.Put(in.ResourceID, fn, in.Data); err != nil {
		return model.Artifact{}, fmt.Errorf("store file: %w", err)
	}
	a := model.Artifact{
		ID:          id.String(),
		ResourceID:  in.ResourceID,
		Filename:    fn,
		ContentType: ct,
		Size:        int64(len(in.Data)),
		UploadedBy:  in.UploaderID,
		URL:         upload.Locator(MediaCollection, in.ResourceID, fn),
		CreatedAt:   s.now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		if rerr := s.blobs.Remove(in.ResourceID, fn); rerr != nil {
			s.log.Warn("remove file after failed insert", zap.String("file", fn), zap.Error(rerr))
		}
		return model.Artifact{}, err
	}
	return a, nil
}

// Fetch returns the stored bytes and the content type derived from the file extension.
func (s *MediaServiceImpl) Fetch(_ context.Context, resourceID, filename string) ([]byte, string, error) {
	b, err := s.blobs.Get(resourceID, filename)
	if err != nil {
		return nil, "", err
	}
	return b, upload.ContentTypeFor(filename), nil
}

// DeleteOne removes an artifact uploaded by callerID.
func (s *MediaServiceImpl) DeleteOne(ctx context.Context, artifactID, callerID string) error {
	a, err := s.repo.Get(ctx, artifactID)
	if err != nil {
		return err
	}
	if err := auth.RequireOwner(a.UploadedBy, callerID); err != nil {
		return err
	}
	if err := s.removeArtifact(ctx, a); err != nil {
		return err
	}
	s.removeDir(a.ResourceID)
	return nil
}

// DeleteAllForResource removes every artifact of resourceID, file first, then
// metadata. It continues past individual failures and returns them combined.
// Running it again after a partial failure finishes the job.
func (s *MediaServiceImpl) DeleteAllForResource(ctx context.Context, resourceID string) error {
	list, err := s.repo.ListByResource(ctx, resourceID)
	if err != nil {
		return fmt.Errorf("list artifacts of %s: %w", resourceID, err)
	}
	var errList error
	for _, a := range list {
		if err := s.removeArtifact(ctx, a); err != nil {
			errList = multierr.Append(errList, fmt.Errorf("artifact %s: %w", a.ID, err))
		}
	}
	if errList != nil {
		return errList
	}
	if blobstore.ValidSegment(resourceID) {
		s.removeDir(resourceID)
	}
	return nil
}

func (s *MediaServiceImpl) ListByResource(ctx context.Context, resourceID string) ([]model.Artifact, error) {
	return s.repo.ListByResource(ctx, resourceID)
}

// removeArtifact deletes the file, then the metadata row. A failed file
// removal keeps the row so a later attempt can still find the file.
func (s *MediaServiceImpl) removeArtifact(ctx context.Context, a model.Artifact) error {
	if err := s.blobs.Remove(a.ResourceID, a.Filename); err != nil {
		return fmt.Errorf("remove file: %w", err)
	}
	if err := s.repo.Delete(ctx, a.ID); err != nil && !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("remove metadata: %w", err)
	}
	metrics.ArtifactsRemovedTotal.Inc()
	return nil
}

func (s *MediaServiceImpl) removeDir(resourceID string) {
	removed, err := s.blobs.RemoveDirIfEmpty(resourceID)
	if err != nil {
		s.log.Warn("remove resource dir", zap.String("resource", resourceID), zap.Error(err))
		return
	}
	if removed {
		s.log.Debug("resource dir removed", zap.String("resource", resourceID))
	}
}
