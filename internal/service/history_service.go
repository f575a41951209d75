package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/audioforge/studio/internal/blob"
	"github.com/audioforge/studio/internal/domain"
	"github.com/audioforge/studio/internal/events"
	"github.com/audioforge/studio/internal/repository"
	apperrors "github.com/audioforge/studio/pkg/util"
)

const (
	maxTitleRunes = 50
	defaultTitle  = "Untitled"

	timeLayout = "3:04:05 PM"
	dateLayout = "1/2/2006"
)

// HistoryService manages the per-user record of generated audio.
type HistoryService struct {
	items      repository.HistoryRepository
	blobs      blob.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// HistoryDependencies bundles the history service collaborators.
type HistoryDependencies struct {
	HistoryRepo repository.HistoryRepository
	Blobs       blob.Store
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// RecordInput describes a finished generation.
type RecordInput struct {
	UserID   string
	Service  domain.ServiceType
	Title    string
	Voice    *string
	AudioURL *string
	BlobName string
}

// NewHistoryService constructs the service.
func NewHistoryService(deps HistoryDependencies) *HistoryService {
	blobs := deps.Blobs
	if blobs == nil {
		blobs = blob.Disabled{}
	}
	return &HistoryService{
		items:      deps.HistoryRepo,
		blobs:      blobs,
		dispatcher: deps.Dispatcher,
		logger:     nopIfNil(deps.Logger),
		now:        time.Now,
	}
}

// List returns userID's items for service, newest first.
func (s *HistoryService) List(ctx context.Context, userID, service string) ([]domain.HistoryItem, error) {
	svc := domain.ServiceType(service)
	if !svc.Valid() {
		return nil, apperrors.NewValidationError("Unknown service", map[string]any{"service": service})
	}
	return s.items.ListByUserAndService(ctx, userID, svc)
}

// Record stores a history item for a finished generation.
func (s *HistoryService) Record(ctx context.Context, input RecordInput) (*domain.HistoryItem, error) {
	if !input.Service.Valid() {
		return nil, apperrors.NewValidationError("Unknown service", nil)
	}
	now := s.now()
	item := &domain.HistoryItem{
		UserID:   input.UserID,
		Service:  input.Service,
		Title:    TruncateTitle(input.Title),
		Voice:    input.Voice,
		AudioURL: input.AudioURL,
		BlobName: input.BlobName,
		Time:     now.Format(timeLayout),
		Date:     now.Format(dateLayout),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes userID's item id and its blob. A blob that cannot be removed
// is logged and does not keep the record alive.
func (s *HistoryService) Delete(ctx context.Context, userID, id string) error {
	item, err := s.items.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("History item not found")
		}
		return err
	}

	blobDeleted := false
	if item.BlobName != "" {
		if err := s.blobs.Delete(ctx, item.BlobName); err != nil {
			s.logger.Warn("blob cleanup failed",
				zap.String("history_id", item.ID),
				zap.String("blob_name", item.BlobName),
				zap.Error(err))
		} else {
			blobDeleted = true
		}
	}

	if err := s.items.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound("History item not found")
		}
		return err
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:   events.EventHistoryDeleted,
		UserID: userID,
		Payload: events.HistoryDeletedPayload{
			HistoryID:   item.ID,
			BlobName:    item.BlobName,
			BlobDeleted: blobDeleted,
		},
	})
	return nil
}

// TruncateTitle trims title to 50 characters, marking the cut with "...".
func TruncateTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return defaultTitle
	}
	if utf8.RuneCountInString(title) <= maxTitleRunes {
		return title
	}
	return string([]rune(title)[:maxTitleRunes]) + "..."
}
