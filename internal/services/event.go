package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"vibeconnect/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	artifacts      domain.ArtifactStore
	logger         *slog.Logger
	publicBaseURL  string
	contextTimeout time.Duration
}

func NewEventService(eventRepo domain.EventRepository,
	artifacts domain.ArtifactStore,
	logger *slog.Logger,
	publicBaseURL string,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		artifacts:      artifacts,
		logger:         logger,
		publicBaseURL:  publicBaseURL,
		contextTimeout: timeout,
	}
}

func (s *eventService) ListEvents(ctx context.Context, caller *domain.Identity, filter domain.EventFilter) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return s.presentAll(events, caller), nil
}

func (s *eventService) ListLikedEvents(ctx context.Context, caller *domain.Identity) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListLikedBy(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("list liked events: %w", err)
	}
	return s.presentAll(events, caller), nil
}

func (s *eventService) GetEvent(ctx context.Context, caller *domain.Identity, id string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return s.present(event, caller), nil
}

func (s *eventService) CreateEvent(ctx context.Context, caller *domain.Identity, input domain.EventInput, image *domain.ImageUpload) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if image == nil {
		return nil, fmt.Errorf("%w: image is required", domain.ErrInvalidInput)
	}
	if err := validateEventInput(input); err != nil {
		return nil, err
	}

	artifact, err := s.artifacts.Store(ctx, image.Content, image.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}

	now := time.Now()
	event := &domain.Event{
		Title:       strings.TrimSpace(input.Title),
		Date:        input.Date,
		Time:        input.Time,
		Description: input.Description,
		Location:    input.Location,
		Category:    input.Category,
		Status:      input.Status,
		Image:       artifact.URL,
		ImageKey:    artifact.DeletionHandle,
		LikedBy:     []string{},
		ViewedBy:    map[string]int{},
		CreatedBy:   caller.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if event.Category == "" {
		event.Category = domain.DefaultCategory
	}
	if event.Status == "" {
		event.Status = domain.StatusUpcoming
	}

	if err := s.eventRepo.Create(ctx, event); err != nil {
		// Never leave a stored artifact referenced by no event. Deleting
		// the artifact is best effort; an orphan in the store is acceptable.
		s.deleteArtifact(ctx, artifact.DeletionHandle)
		return nil, fmt.Errorf("create event: %w", err)
	}
	return s.present(event, caller), nil
}

func (s *eventService) UpdateEvent(ctx context.Context, caller *domain.Identity, id string, upd domain.EventUpdate, image *domain.ImageUpload) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	if err := validateEventUpdate(upd); err != nil {
		return nil, err
	}

	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	if image != nil {
		artifact, err := s.artifacts.Store(ctx, image.Content, image.ContentType)
		if err != nil {
			return nil, fmt.Errorf("store image: %w", err)
		}
		// The old artifact is deleted best effort; a failure must not
		// block the update.
		s.deleteArtifact(ctx, event.ImageKey)
		upd.Image = &artifact.URL
		upd.ImageKey = &artifact.DeletionHandle
	}

	updated, err := s.eventRepo.Update(ctx, id, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return s.present(updated, caller), nil
}

func (s *eventService) DeleteEvent(ctx context.Context, caller *domain.Identity, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireAdmin(caller); err != nil {
		return err
	}
	event, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}

	// Artifact removal is best effort; the event is removed regardless.
	s.deleteArtifact(ctx, event.ImageKey)

	if err := s.eventRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// IncrementView records one view of the event. Identified viewers are
// deduplicated: each user's views stop counting after domain.ViewCountCap.
// Guest views always count, since guests carry no session state to
// deduplicate on. Returns the resulting view count.
func (s *eventService) IncrementView(ctx context.Context, caller *domain.Identity, id string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	viewerID := ""
	if caller != nil {
		viewerID = caller.UserID
	}
	views, _, err := s.eventRepo.RecordView(ctx, id, viewerID, domain.ViewCountCap)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("record view: %w", err)
	}
	return views, nil
}

// ToggleLike flips the caller's membership in the event's liked-by set.
// Each call flips state exactly once; a retried request after a timeout
// can therefore flip twice. Callers should not retry toggles blindly.
func (s *eventService) ToggleLike(ctx context.Context, caller *domain.Identity, id string) (*domain.LikeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := requireAuthenticated(caller); err != nil {
		return nil, err
	}
	likes, liked, err := s.eventRepo.ToggleLike(ctx, id, caller.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("toggle like: %w", err)
	}
	return &domain.LikeResult{LikeCount: likes, LikedByCaller: liked}, nil
}

// deleteArtifact requests deletion of a stored artifact. An empty handle
// (local storage, or a record without one) is a no-op; a failure is
// logged and swallowed.
func (s *eventService) deleteArtifact(ctx context.Context, handle string) {
	if handle == "" {
		return
	}
	if err := s.artifacts.Delete(ctx, handle); err != nil {
		s.logger.WarnContext(ctx, "failed to delete artifact", "handle", handle, "err", err)
	}
}

func validateEventInput(input domain.EventInput) error {
	var missing []string
	if strings.TrimSpace(input.Title) == "" {
		missing = append(missing, "title")
	}
	if input.Date.IsZero() {
		missing = append(missing, "date")
	}
	if strings.TrimSpace(input.Time) == "" {
		missing = append(missing, "time")
	}
	if strings.TrimSpace(input.Description) == "" {
		missing = append(missing, "description")
	}
	if strings.TrimSpace(input.Location) == "" {
		missing = append(missing, "location")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", domain.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if input.Status != "" && !validStatus(input.Status) {
		return fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, input.Status)
	}
	return nil
}

func validateEventUpdate(upd domain.EventUpdate) error {
	if upd.Title != nil && strings.TrimSpace(*upd.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
	}
	if upd.Status != nil && !validStatus(*upd.Status) {
		return fmt.Errorf("%w: invalid status %q", domain.ErrInvalidInput, *upd.Status)
	}
	return nil
}

func validStatus(status string) bool {
	switch status {
	case domain.StatusUpcoming, domain.StatusOngoing, domain.StatusCompleted:
		return true
	}
	return false
}
