package postgres

import (
	"context"
	"database/sql"

	"eventalbum/internal/domain"
)

type mediaRepository struct {
	DB *sql.DB
}

func NewMediaRepository(db *sql.DB) domain.MediaRepository {
	return &mediaRepository{DB: db}
}

func (r *mediaRepository) Create(ctx context.Context, item *domain.MediaItem) error {
	query := `
		INSERT INTO media_items (event_id, contributor_name, message, url, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		item.EventID, item.ContributorName, item.Message, item.URL, item.UploadedAt,
	).Scan(&item.ID)
	if isMalformedID(err) {
		return domain.ErrNotFound
	}
	return err
}

func (r *mediaRepository) ListByEvent(ctx context.Context, eventID string) ([]*domain.MediaItem, error) {
	query := `
		SELECT id, event_id, contributor_name, message, url, uploaded_at
		FROM media_items
		WHERE event_id = $1
		ORDER BY uploaded_at DESC, id
	`
	rows, err := r.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		if isMalformedID(err) {
			return []*domain.MediaItem{}, nil
		}
		return nil, err
	}
	defer rows.Close()
	items := make([]*domain.MediaItem, 0)
	for rows.Next() {
		item := &domain.MediaItem{}
		var msg sql.NullString
		if err := rows.Scan(&item.ID, &item.EventID, &item.ContributorName, &msg, &item.URL, &item.UploadedAt); err != nil {
			return nil, err
		}
		if msg.Valid {
			item.Message = &msg.String
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *mediaRepository) DeleteByEvent(ctx context.Context, eventID string) (int64, error) {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM media_items WHERE event_id = $1`, eventID)
	if err != nil {
		if isMalformedID(err) {
			return 0, nil
		}
		return 0, err
	}
	return result.RowsAffected()
}
