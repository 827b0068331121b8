package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"vibeconnect/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

const eventColumns = `e.id, e.title, e.date, e.event_time, e.description, e.location,
		e.category, e.status, e.image, e.image_key, e.likes, e.views,
		e.created_by, e.created_at, e.updated_at,
		COALESCE(ARRAY_AGG(l.user_id) FILTER (WHERE l.user_id IS NOT NULL), '{}')`

func scanEvent(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Event, error) {
	e := &domain.Event{}
	var createdByNull sql.NullString
	var likedBy []string
	err := row.Scan(
		&e.ID, &e.Title, &e.Date, &e.Time, &e.Description, &e.Location,
		&e.Category, &e.Status, &e.Image, &e.ImageKey, &e.LikeCount, &e.ViewCount,
		&createdByNull, &e.CreatedAt, &e.UpdatedAt,
		pq.Array(&likedBy),
	)
	if err != nil {
		return nil, err
	}
	if createdByNull.Valid {
		e.CreatedBy = createdByNull.String
	}
	if likedBy == nil {
		likedBy = []string{}
	}
	e.LikedBy = likedBy
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (title, date, event_time, description, location, category, status,
			image, image_key, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`
	var createdBy interface{}
	if e.CreatedBy != "" {
		createdBy = e.CreatedBy
	}
	return r.DB.QueryRowContext(ctx, query,
		e.Title, e.Date, e.Time, e.Description, e.Location, e.Category, e.Status,
		e.Image, e.ImageKey, createdBy, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		LEFT JOIN event_likes l ON l.event_id = e.id
		WHERE e.id = $1
		GROUP BY e.id
	`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	e.ViewedBy = map[string]int{}
	rows, err := r.DB.QueryContext(ctx, `SELECT user_id, count FROM event_views WHERE event_id = $1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, err
		}
		e.ViewedBy[userID] = count
	}
	return e, rows.Err()
}

func (r *eventRepository) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	where := []string{}
	args := []interface{}{}
	n := 1
	if filter.Category != "" {
		where = append(where, fmt.Sprintf("e.category = $%d", n))
		args = append(args, filter.Category)
		n++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("e.status = $%d", n))
		args = append(args, filter.Status)
		n++
	}
	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		LEFT JOIN event_likes l ON l.event_id = e.id
		%s
		GROUP BY e.id
		ORDER BY e.created_at DESC
	`, eventColumns, whereClause)
	return r.queryEvents(ctx, query, args...)
}

func (r *eventRepository) ListLikedBy(ctx context.Context, userID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM events e
		LEFT JOIN event_likes l ON l.event_id = e.id
		WHERE e.id IN (SELECT event_id FROM event_likes WHERE user_id = $1)
		GROUP BY e.id
		ORDER BY e.created_at DESC
	`, eventColumns)
	return r.queryEvents(ctx, query, userID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...interface{}) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *eventRepository) Update(ctx context.Context, id string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []interface{}{}
	n := 1
	add := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Title != nil {
		add("title", *upd.Title)
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}
	if upd.Time != nil {
		add("event_time", *upd.Time)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.ImageKey != nil {
		add("image_key", *upd.ImageKey)
	}
	if n == 1 {
		// No fields to update; just fetch the current row
		return r.GetByID(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE events SET %s WHERE id = $%d`, strings.Join(setClauses, ", "), n)
	result, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, domain.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *eventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// RecordView registers one view inside a transaction. The event row is
// locked first so concurrent views of the same event serialize; views of
// different events only contend on their own rows.
func (r *eventRepository) RecordView(ctx context.Context, id, viewerID string, cap int) (int, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var views int
	err = tx.QueryRowContext(ctx, `SELECT views FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&views)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, domain.ErrNotFound
		}
		return 0, false, err
	}

	counted := true
	if viewerID != "" {
		// The conditional upsert leaves the tally untouched once it
		// reaches the cap, in which case no row is affected.
		result, err := tx.ExecContext(ctx, `
			INSERT INTO event_views (event_id, user_id, count)
			VALUES ($1, $2, 1)
			ON CONFLICT (event_id, user_id)
			DO UPDATE SET count = event_views.count + 1
			WHERE event_views.count < $3
		`, id, viewerID, cap)
		if err != nil {
			return 0, false, err
		}
		affected, _ := result.RowsAffected()
		counted = affected > 0
	}

	if counted {
		err = tx.QueryRowContext(ctx,
			`UPDATE events SET views = views + 1, updated_at = NOW() WHERE id = $1 RETURNING views`,
			id,
		).Scan(&views)
		if err != nil {
			return 0, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return views, counted, nil
}

// ToggleLike flips the user's like inside a transaction, locking the
// event row so concurrent toggles against the same event serialize.
func (r *eventRepository) ToggleLike(ctx context.Context, id, userID string) (int, bool, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, false, err
	}
	defer tx.Rollback()

	var eventID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM events WHERE id = $1 FOR UPDATE`, id).Scan(&eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, domain.ErrNotFound
		}
		return 0, false, err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM event_likes WHERE event_id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return 0, false, err
	}
	removed, _ := result.RowsAffected()
	liked := removed == 0
	if liked {
		if _, err := tx.ExecContext(ctx, `INSERT INTO event_likes (event_id, user_id) VALUES ($1, $2)`, id, userID); err != nil {
			return 0, false, err
		}
	}

	var likes int
	err = tx.QueryRowContext(ctx, `
		UPDATE events
		SET likes = (SELECT COUNT(*) FROM event_likes WHERE event_id = $1), updated_at = NOW()
		WHERE id = $1
		RETURNING likes
	`, id).Scan(&likes)
	if err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, err
	}
	return likes, liked, nil
}
