package domain

import (
	"context"
	"io"
	"time"
)

// Event status values.
const (
	StatusUpcoming  = "Upcoming"
	StatusOngoing   = "Ongoing"
	StatusCompleted = "Completed"
)

// DefaultCategory is assigned when an event is created without one.
const DefaultCategory = "General"

// ViewCountCap is the maximum number of views a single identified user
// contributes to an event's view count. Guest views are never capped.
const ViewCountCap = 2

// Event represents one listed happening.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Time        string    `json:"time"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`

	// Image is the stored reference (relative path for local storage,
	// absolute URL for S3). Never empty for a persisted event.
	Image string `json:"image"`
	// ImageKey is the artifact store deletion handle. Empty for local
	// storage, where replaced files are left in place.
	ImageKey string `json:"-"`

	LikeCount int      `json:"likes"`
	LikedBy   []string `json:"likedBy"`
	ViewCount int      `json:"views"`
	// ViewedBy maps user ID to that user's counted views, each in [1, ViewCountCap].
	ViewedBy map[string]int `json:"-"`

	// CreatedBy is the admin who created the event. Empty for backfilled records.
	CreatedBy string    `json:"createdBy,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasLike reports whether userID is in the event's liked-by set.
func (e *Event) HasLike(userID string) bool {
	for _, id := range e.LikedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// EventInput carries the descriptive fields for event creation.
type EventInput struct {
	Title       string
	Date        time.Time
	Time        string
	Description string
	Location    string
	Category    string
	Status      string
}

// EventUpdate carries a partial update; nil fields are left unchanged.
// Image and ImageKey are set together by the service when a new image
// artifact replaces the old one.
type EventUpdate struct {
	Title       *string
	Date        *time.Time
	Time        *string
	Description *string
	Location    *string
	Category    *string
	Status      *string
	Image       *string
	ImageKey    *string
}

// EventFilter narrows event listings. Zero values match everything.
type EventFilter struct {
	Category string
	Status   string
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	LikeCount     int  `json:"likes"`
	LikedByCaller bool `json:"likedByUser"`
}

// ImageUpload is an image payload received with a create or update request.
type ImageUpload struct {
	Content     io.Reader
	ContentType string
}

// EventRepository defines the interface for event storage.
//
// RecordView and ToggleLike mutate engagement counters atomically per
// event record: concurrent calls against the same event must not lose
// updates, while calls against different events proceed independently.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context, filter EventFilter) ([]*Event, error)
	ListLikedBy(ctx context.Context, userID string) ([]*Event, error)
	Update(ctx context.Context, id string, upd EventUpdate) (*Event, error)
	Delete(ctx context.Context, id string) error

	// RecordView registers one view. An empty viewerID is a guest view
	// and always counts. An identified viewer's count stops growing once
	// their personal tally reaches cap. Returns the resulting view count
	// and whether this call changed it.
	RecordView(ctx context.Context, id, viewerID string, cap int) (views int, counted bool, err error)

	// ToggleLike flips userID's membership in the event's liked-by set
	// and returns the resulting like count and membership.
	ToggleLike(ctx context.Context, id, userID string) (likes int, liked bool, err error)
}

// EventService defines the engagement engine consumed by the delivery layer.
type EventService interface {
	ListEvents(ctx context.Context, caller *Identity, filter EventFilter) ([]*EventView, error)
	ListLikedEvents(ctx context.Context, caller *Identity) ([]*EventView, error)
	GetEvent(ctx context.Context, caller *Identity, id string) (*EventView, error)
	CreateEvent(ctx context.Context, caller *Identity, input EventInput, image *ImageUpload) (*EventView, error)
	UpdateEvent(ctx context.Context, caller *Identity, id string, upd EventUpdate, image *ImageUpload) (*EventView, error)
	DeleteEvent(ctx context.Context, caller *Identity, id string) error
	IncrementView(ctx context.Context, caller *Identity, id string) (int, error)
	ToggleLike(ctx context.Context, caller *Identity, id string) (*LikeResult, error)
}

// EventView is the public shape of an event: the stored fields plus
// derived presentation fields. Derived fields are computed at read time
// and never persisted.
type EventView struct {
	Event
	PostedTime     string `json:"postedTime"`
	FormattedLikes string `json:"formattedLikes"`
	FormattedViews string `json:"formattedViews"`
	LikedByCaller  bool   `json:"likedByUser"`
}
