// Package blob issues upload/read URLs for audio files and removes blobs that
// are no longer referenced.
package blob

import (
	"context"
	"errors"
	"time"
)

// ErrNotConfigured is returned by the disabled store.
var ErrNotConfigured = errors.New("blob storage is not configured")

// UploadTarget is a short-lived, write-only location for a client upload.
type UploadTarget struct {
	UploadURL string    `json:"uploadUrl"`
	BlobName  string    `json:"blobName"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Store is the blob backend used by the services.
type Store interface {
	UploadURL(ctx context.Context, contentType string) (*UploadTarget, error)
	ReadURL(name string) (string, error)
	Delete(ctx context.Context, name string) error
	EnsureContainer(ctx context.Context) error
}

// Disabled is the Store used when no storage account is configured.
type Disabled struct{}

func (Disabled) UploadURL(context.Context, string) (*UploadTarget, error) {
	return nil, ErrNotConfigured
}

func (Disabled) ReadURL(string) (string, error) { return "", ErrNotConfigured }

func (Disabled) Delete(context.Context, string) error { return ErrNotConfigured }

func (Disabled) EnsureContainer(context.Context) error { return nil }
