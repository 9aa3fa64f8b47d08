package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"eventalbum/internal/domain"
)

const eventColumns = `id, slug, partner_one_name, partner_two_name, event_date, is_active, owner_id,
		cover_image_url, profile_image_url, background_image_url, created_at`

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// invalidTextRepresentation is raised when an id is not a valid UUID literal.
const invalidTextRepresentation = "22P02"

// isMalformedID reports whether the query failed because an id argument could not be
// cast to UUID. No row can match such an id.
func isMalformedID(err error) bool {
	var perr *pq.Error
	return errors.As(err, &perr) && perr.Code == invalidTextRepresentation
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var cover, profile, background sql.NullString
	err := row.Scan(
		&e.ID, &e.Slug, &e.PartnerOneName, &e.PartnerTwoName, &e.EventDate, &e.IsActive, &e.OwnerID,
		&cover, &profile, &background, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if cover.Valid {
		e.CoverImageURL = &cover.String
	}
	if profile.Valid {
		e.ProfileImageURL = &profile.String
	}
	if background.Valid {
		e.BackgroundImageURL = &background.String
	}
	return e, nil
}

// Create inserts the event. The unique index on slug is the reservation: a taken slug
// returns domain.ErrConflict.
func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (slug, partner_one_name, partner_two_name, event_date, is_active, owner_id,
			cover_image_url, profile_image_url, background_image_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		e.Slug, e.PartnerOneName, e.PartnerTwoName, e.EventDate, e.IsActive, e.OwnerID,
		e.CoverImageURL, e.ProfileImageURL, e.BackgroundImageURL, e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		var perr *pq.Error
		if errors.As(err, &perr) && perr.Code == uniqueViolation {
			return domain.ErrConflict
		}
		return err
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetBySlug(ctx context.Context, slug string, activeOnly bool) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`
	if activeOnly {
		query += ` AND is_active = TRUE`
	}
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// List returns a page of events, newest first, plus the total count. An empty ownerID
// lists every event.
func (r *eventRepository) List(ctx context.Context, ownerID string, params domain.PaginationParams) ([]*domain.Event, int, error) {
	where := ""
	args := []interface{}{}
	if ownerID != "" {
		where = "WHERE owner_id = $1"
		args = append(args, ownerID)
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + eventColumns + ` FROM events ` + where + ` ORDER BY created_at DESC`
	if limit := params.Limit(); limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, limit, params.Offset())
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

func (r *eventRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM events ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, u domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{}
	args := []interface{}{}
	n := 1
	if u.IsActive != nil {
		setClauses = append(setClauses, fmt.Sprintf("is_active = $%d", n))
		args = append(args, *u.IsActive)
		n++
	}
	if u.CoverImageURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("cover_image_url = NULLIF($%d, '')", n))
		args = append(args, *u.CoverImageURL)
		n++
	}
	if u.ProfileImageURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("profile_image_url = NULLIF($%d, '')", n))
		args = append(args, *u.ProfileImageURL)
		n++
	}
	if u.BackgroundImageURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("background_image_url = NULLIF($%d, '')", n))
		args = append(args, *u.BackgroundImageURL)
		n++
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes the event; media_items rows go with it via ON DELETE CASCADE.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM events WHERE id = $1`
	result, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		if isMalformedID(err) {
			return domain.ErrNotFound
		}
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
