package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"vibeconnect/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var eventRowColumns = []string{
	"id", "title", "date", "event_time", "description", "location",
	"category", "status", "image", "image_key", "likes", "views",
	"created_by", "created_at", "updated_at", "liked_by",
}

func eventRow(id string) []driver.Value {
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return []driver.Value{
		id, "Launch", ts, "18:00", "Product launch party", "Berlin",
		"General", "Upcoming", "/uploads/events/a.png", "", 1, 2,
		"admin-1", ts, ts, "{alice}",
	}
}

func TestEventRepository_Create(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		event   *domain.Event
		mock    func(mock sqlmock.Sqlmock)
		wantID  string
		wantErr bool
	}{
		{
			name: "success",
			event: &domain.Event{
				Title: "Launch", Date: ts, Time: "18:00",
				Description: "Party", Location: "Berlin",
				Category: "General", Status: "Upcoming",
				Image: "/uploads/events/a.png", CreatedBy: "admin-1",
				CreatedAt: ts, UpdatedAt: ts,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events \(title, date, event_time, description, location, category, status`).
					WithArgs("Launch", ts, "18:00", "Party", "Berlin", "General", "Upcoming",
						"/uploads/events/a.png", "", "admin-1", ts, ts).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-1"))
			},
			wantID: "ev-uuid-1",
		},
		{
			name: "empty created_by stored as null",
			event: &domain.Event{
				Title: "Launch", Date: ts, Time: "18:00",
				Description: "Party", Location: "Berlin",
				Category: "General", Status: "Upcoming",
				Image: "/uploads/events/a.png", CreatedAt: ts, UpdatedAt: ts,
			},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).
					WithArgs("Launch", ts, "18:00", "Party", "Berlin", "General", "Upcoming",
						"/uploads/events/a.png", "", nil, ts, ts).
					WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-uuid-2"))
			},
			wantID: "ev-uuid-2",
		},
		{
			name:  "db error",
			event: &domain.Event{Title: "Launch"},
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(`INSERT INTO events`).WillReturnError(sql.ErrConnDone)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Create(ctx, tt.event)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantID, tt.event.ID)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("success with likes and view tallies", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events e`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventRowColumns).AddRow(eventRow("ev-1")...))
		mock.ExpectQuery(`SELECT user_id, count FROM event_views`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "count"}).
				AddRow("alice", 2).
				AddRow("bob", 1))

		repo := NewEventRepository(db)
		e, err := repo.GetByID(ctx, "ev-1")
		require.NoError(t, err)
		require.Equal(t, "ev-1", e.ID)
		require.Equal(t, "Launch", e.Title)
		require.Equal(t, []string{"alice"}, e.LikedBy)
		require.Equal(t, 1, e.LikeCount)
		require.Equal(t, 2, e.ViewCount)
		require.Equal(t, map[string]int{"alice": 2, "bob": 1}, e.ViewedBy)
		require.Equal(t, "admin-1", e.CreatedBy)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events e`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)

		repo := NewEventRepository(db)
		_, err = repo.GetByID(ctx, "ev-missing")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepository_List(t *testing.T) {
	ctx := context.Background()

	t.Run("no filter", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events e`).
			WillReturnRows(sqlmock.NewRows(eventRowColumns).
				AddRow(eventRow("ev-1")...).
				AddRow(eventRow("ev-2")...))

		repo := NewEventRepository(db)
		events, err := repo.List(ctx, domain.EventFilter{})
		require.NoError(t, err)
		require.Len(t, events, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("category and status filter", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`WHERE e.category = \$1 AND e.status = \$2`).
			WithArgs("Tech", "Upcoming").
			WillReturnRows(sqlmock.NewRows(eventRowColumns).AddRow(eventRow("ev-1")...))

		repo := NewEventRepository(db)
		events, err := repo.List(ctx, domain.EventFilter{Category: "Tech", Status: "Upcoming"})
		require.NoError(t, err)
		require.Len(t, events, 1)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events e`).
			WillReturnRows(sqlmock.NewRows(eventRowColumns))

		repo := NewEventRepository(db)
		events, err := repo.List(ctx, domain.EventFilter{})
		require.NoError(t, err)
		require.Empty(t, events)
		require.NotNil(t, events)
	})
}

func TestEventRepository_ListLikedBy(t *testing.T) {
	ctx := context.Background()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`WHERE e.id IN \(SELECT event_id FROM event_likes WHERE user_id = \$1\)`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(eventRowColumns).AddRow(eventRow("ev-1")...))

	repo := NewEventRepository(db)
	events, err := repo.ListLikedBy(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update then reload", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events SET updated_at = NOW\(\), title = \$1 WHERE id = \$2`).
			WithArgs("Relaunch", "ev-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`SELECT (.+) FROM events e`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventRowColumns).AddRow(eventRow("ev-1")...))
		mock.ExpectQuery(`SELECT user_id, count FROM event_views`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "count"}))

		title := "Relaunch"
		repo := NewEventRepository(db)
		e, err := repo.Update(ctx, "ev-1", domain.EventUpdate{Title: &title})
		require.NoError(t, err)
		require.Equal(t, "ev-1", e.ID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no affected rows maps to not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE events SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		title := "Relaunch"
		repo := NewEventRepository(db)
		_, err = repo.Update(ctx, "ev-missing", domain.EventUpdate{Title: &title})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty update just reloads", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(`SELECT (.+) FROM events e`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows(eventRowColumns).AddRow(eventRow("ev-1")...))
		mock.ExpectQuery(`SELECT user_id, count FROM event_views`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"user_id", "count"}))

		repo := NewEventRepository(db)
		e, err := repo.Update(ctx, "ev-1", domain.EventUpdate{})
		require.NoError(t, err)
		require.Equal(t, "Launch", e.Title)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		id      string
		mock    func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "success",
			id:   "ev-1",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-1").
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "not found",
			id:   "ev-missing",
			mock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(`DELETE FROM events WHERE id = \$1`).
					WithArgs("ev-missing").
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			tt.mock(mock)
			repo := NewEventRepository(db)
			err = repo.Delete(ctx, tt.id)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEventRepository_RecordView(t *testing.T) {
	ctx := context.Background()

	t.Run("guest view skips dedup and counts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT views FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"views"}).AddRow(4))
		mock.ExpectQuery(`UPDATE events SET views = views \+ 1`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"views"}).AddRow(5))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		views, counted, err := repo.RecordView(ctx, "ev-1", "", domain.ViewCountCap)
		require.NoError(t, err)
		require.True(t, counted)
		require.Equal(t, 5, views)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("identified view below cap counts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT views FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"views"}).AddRow(0))
		mock.ExpectExec(`INSERT INTO event_views`).
			WithArgs("ev-1", "alice", domain.ViewCountCap).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`UPDATE events SET views = views \+ 1`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"views"}).AddRow(1))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		views, counted, err := repo.RecordView(ctx, "ev-1", "alice", domain.ViewCountCap)
		require.NoError(t, err)
		require.True(t, counted)
		require.Equal(t, 1, views)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("identified view at cap leaves counter untouched", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT views FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"views"}).AddRow(2))
		mock.ExpectExec(`INSERT INTO event_views`).
			WithArgs("ev-1", "alice", domain.ViewCountCap).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		views, counted, err := repo.RecordView(ctx, "ev-1", "alice", domain.ViewCountCap)
		require.NoError(t, err)
		require.False(t, counted)
		require.Equal(t, 2, views)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT views FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		_, _, err = repo.RecordView(ctx, "ev-missing", "alice", domain.ViewCountCap)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_ToggleLike(t *testing.T) {
	ctx := context.Background()

	t.Run("like inserts membership", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
		mock.ExpectExec(`DELETE FROM event_likes`).
			WithArgs("ev-1", "alice").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`INSERT INTO event_likes`).
			WithArgs("ev-1", "alice").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`UPDATE events`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(3))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		likes, liked, err := repo.ToggleLike(ctx, "ev-1", "alice")
		require.NoError(t, err)
		require.True(t, liked)
		require.Equal(t, 3, likes)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unlike removes membership", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("ev-1"))
		mock.ExpectExec(`DELETE FROM event_likes`).
			WithArgs("ev-1", "alice").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`UPDATE events`).
			WithArgs("ev-1").
			WillReturnRows(sqlmock.NewRows([]string{"likes"}).AddRow(2))
		mock.ExpectCommit()

		repo := NewEventRepository(db)
		likes, liked, err := repo.ToggleLike(ctx, "ev-1", "alice")
		require.NoError(t, err)
		require.False(t, liked)
		require.Equal(t, 2, likes)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown event rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT id FROM events WHERE id = \$1 FOR UPDATE`).
			WithArgs("ev-missing").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		repo := NewEventRepository(db)
		_, _, err = repo.ToggleLike(ctx, "ev-missing", "alice")
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
