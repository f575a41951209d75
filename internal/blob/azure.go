package blob

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/audioforge/studio/internal/config"
)

const defaultSASTTL = time.Hour

// Azure stores audio in a single container of an Azure storage account.
type Azure struct {
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	endpoint   string
	container  string
	ttl        time.Duration
	now        func() time.Time
	logger     *zap.Logger
}

// NewAzure builds a shared-key client for cfg.
func NewAzure(cfg config.BlobConfig, logger *zap.Logger) (*Azure, error) {
	if !cfg.Enabled() {
		return nil, ErrNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cred, err := azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client, err := azblob.NewClientWithSharedKeyCredential(endpoint+"/", cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	ttl := time.Duration(cfg.SASTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = defaultSASTTL
	}

	return &Azure{
		client:     client,
		credential: cred,
		endpoint:   endpoint,
		container:  cfg.Container,
		ttl:        ttl,
		now:        time.Now,
		logger:     logger,
	}, nil
}

// EnsureContainer creates the container when it does not exist yet.
func (a *Azure) EnsureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err == nil {
		a.logger.Info("created blob container", zap.String("container", a.container))
		return nil
	}
	if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil
	}
	return fmt.Errorf("create container %s: %w", a.container, err)
}

// UploadURL returns a create/write SAS URL for a fresh blob name.
func (a *Azure) UploadURL(_ context.Context, contentType string) (*UploadTarget, error) {
	name := NewBlobName(contentType)
	expiresAt := a.now().UTC().Add(a.ttl)

	signed, err := a.sign(name, sas.BlobPermissions{Create: true, Write: true}, expiresAt)
	if err != nil {
		return nil, err
	}
	return &UploadTarget{UploadURL: signed, BlobName: name, ExpiresAt: expiresAt}, nil
}

// ReadURL returns a read-only SAS URL for name.
func (a *Azure) ReadURL(name string) (string, error) {
	return a.sign(name, sas.BlobPermissions{Read: true}, a.now().UTC().Add(a.ttl))
}

// Delete removes name. A blob that is already gone is not an error.
func (a *Azure) Delete(ctx context.Context, name string) error {
	_, err := a.client.DeleteBlob(ctx, a.container, name, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}

func (a *Azure) sign(name string, perms sas.BlobPermissions, expiresAt time.Time) (string, error) {
	if name == "" {
		return "", errors.New("blob name is required")
	}
	params, err := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     a.now().UTC().Add(-5 * time.Minute),
		ExpiryTime:    expiresAt,
		Permissions:   perms.String(),
		ContainerName: a.container,
		BlobName:      name,
	}.SignWithSharedKey(a.credential)
	if err != nil {
		return "", fmt.Errorf("sign blob url: %w", err)
	}

	blobURL := fmt.Sprintf("%s/%s/%s", a.endpoint, a.container, url.PathEscape(name))
	return blobURL + "?" + params.Encode(), nil
}

// NewBlobName returns a unique name with an extension derived from contentType.
func NewBlobName(contentType string) string {
	ext := ".bin"
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			ext = exts[0]
		} else if _, sub, ok := strings.Cut(mediaType, "/"); ok && sub != "" {
			ext = "." + sub
		}
	}
	return "uploads/" + uuid.NewString() + ext
}
