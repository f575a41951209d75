package service

import (
	"context"
	"errors"

	"github.com/audioforge/studio/internal/blob"
	apperrors "github.com/audioforge/studio/pkg/util"
)

// UploadService hands out direct-to-storage upload URLs.
type UploadService struct {
	blobs blob.Store
}

// NewUploadService constructs the service.
func NewUploadService(blobs blob.Store) *UploadService {
	if blobs == nil {
		blobs = blob.Disabled{}
	}
	return &UploadService{blobs: blobs}
}

// UploadURL returns a write URL for a new blob of fileType.
func (s *UploadService) UploadURL(ctx context.Context, fileType string) (*blob.UploadTarget, error) {
	target, err := s.blobs.UploadURL(ctx, fileType)
	if err != nil {
		if errors.Is(err, blob.ErrNotConfigured) {
			return nil, apperrors.NewServiceUnavailable("File uploads are not configured", err)
		}
		return nil, apperrors.NewInternalError(err)
	}
	return target, nil
}
