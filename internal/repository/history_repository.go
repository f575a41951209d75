package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/audioforge/studio/internal/domain"
)

// HistoryRepository stores generation history items.
type HistoryRepository interface {
	Create(ctx context.Context, item *domain.HistoryItem) error
	ListByUserAndService(ctx context.Context, userID string, service domain.ServiceType) ([]domain.HistoryItem, error)
	GetByID(ctx context.Context, userID, id string) (*domain.HistoryItem, error)
	Delete(ctx context.Context, userID, id string) error
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository builds a Postgres-backed repository.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

const historyColumns = `id, user_id, service, title, voice, audio_url, blob_name, time_label, date_label, created_at, updated_at`

func (r *historyRepository) Create(ctx context.Context, item *domain.HistoryItem) error {
	const query = `
        INSERT INTO audio_history (user_id, service, title, voice, audio_url, blob_name, time_label, date_label)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		item.UserID,
		string(item.Service),
		item.Title,
		item.Voice,
		item.AudioURL,
		item.BlobName,
		item.Time,
		item.Date,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	return mapPostgresError(err)
}

func (r *historyRepository) ListByUserAndService(ctx context.Context, userID string, service domain.ServiceType) ([]domain.HistoryItem, error) {
	query := `
        SELECT ` + historyColumns + `
        FROM audio_history WHERE user_id=$1 AND service=$2
        ORDER BY created_at DESC, updated_at DESC`
	rows, err := r.pool.Query(ctx, query, userID, string(service))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]domain.HistoryItem, 0)
	for rows.Next() {
		var item domain.HistoryItem
		if err := scanHistory(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}

func (r *historyRepository) GetByID(ctx context.Context, userID, id string) (*domain.HistoryItem, error) {
	query := `
        SELECT ` + historyColumns + `
        FROM audio_history WHERE id=$1 AND user_id=$2`
	var item domain.HistoryItem
	if err := scanHistory(r.pool.QueryRow(ctx, query, id, userID), &item); err != nil {
		return nil, mapPostgresError(err)
	}
	return &item, nil
}

func (r *historyRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM audio_history WHERE id=$1 AND user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHistory(row rowScanner, item *domain.HistoryItem) error {
	var service string
	if err := row.Scan(
		&item.ID,
		&item.UserID,
		&service,
		&item.Title,
		&item.Voice,
		&item.AudioURL,
		&item.BlobName,
		&item.Time,
		&item.Date,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		return err
	}
	item.Service = domain.ServiceType(service)
	return nil
}
