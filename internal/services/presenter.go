package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"vibeconnect/internal/domain"
)

// Presentation of events: derived display fields layered on top of the
// stored record at read time. Nothing here mutates or persists state.

func (s *eventService) present(event *domain.Event, caller *domain.Identity) *domain.EventView {
	return presentEvent(event, caller, s.publicBaseURL, time.Now())
}

func (s *eventService) presentAll(events []*domain.Event, caller *domain.Identity) []*domain.EventView {
	now := time.Now()
	views := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		views = append(views, presentEvent(e, caller, s.publicBaseURL, now))
	}
	return views
}

func presentEvent(event *domain.Event, caller *domain.Identity, baseURL string, now time.Time) *domain.EventView {
	view := &domain.EventView{
		Event:          *event,
		PostedTime:     timeAgo(event.CreatedAt, now),
		FormattedLikes: formatCount(event.LikeCount),
		FormattedViews: formatCount(event.ViewCount),
	}
	view.Image = normalizeImageURL(event.Image, baseURL)
	if caller != nil {
		view.LikedByCaller = event.HasLike(caller.UserID)
	}
	return view
}

// timeAgo renders a relative-age label for the given creation time.
func timeAgo(createdAt, now time.Time) string {
	diff := now.Sub(createdAt)
	minutes := int(diff.Minutes())
	hours := int(diff.Hours())
	days := int(diff.Hours() / 24)

	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%d min ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	default:
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	}
}

func plural(n int) string {
	if n > 1 {
		return "s"
	}
	return ""
}

// formatCount renders counts >= 1000 as "1.2k" style strings.
func formatCount(n int) string {
	if n >= 1000 {
		return strconv.FormatFloat(float64(n)/1000, 'f', 1, 64) + "k"
	}
	return strconv.Itoa(n)
}

// normalizeImageURL prefixes relative local paths with the public base
// URL. Absolute references (remote artifact store) pass through unchanged.
func normalizeImageURL(image, baseURL string) string {
	if image == "" || strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(image, "/")
}
