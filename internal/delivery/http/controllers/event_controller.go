package controllers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"vibeconnect/internal/delivery/http/helpers"
	"vibeconnect/internal/delivery/http/middleware"
	"vibeconnect/internal/domain"
)

// maxUploadSize caps event image uploads at 5 MB.
const maxUploadSize = 5 << 20

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ListEvents godoc
// @Summary List events
// @Description List all events, newest first, with derived display fields. Optional category and status query filters.
// @Tags events
// @Produce json
// @Param category query string false "Filter by category"
// @Param status query string false "Filter by status (Upcoming | Ongoing | Completed)"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	filter := domain.EventFilter{
		Category: r.URL.Query().Get("category"),
		Status:   r.URL.Query().Get("status"),
	}
	caller := middleware.IdentityFromContext(r.Context())
	events, err := c.Service.ListEvents(r.Context(), caller, filter)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// ListLikedEvents godoc
// @Summary List events liked by the caller
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events/liked [get]
func (c *EventController) ListLikedEvents(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	events, err := c.Service.ListLikedEvents(r.Context(), caller)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get one event
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	event, err := c.Service.GetEvent(r.Context(), caller, r.PathValue("eventID"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// CreateEvent godoc
// @Summary Create an event
// @Description Create an event from a multipart form. Requires the admin role and an image part.
// @Tags events
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Title"
// @Param date formData string true "Calendar date (YYYY-MM-DD)"
// @Param time formData string true "Time label, e.g. 18:00"
// @Param description formData string true "Description"
// @Param location formData string true "Location"
// @Param category formData string false "Category (default General)"
// @Param status formData string false "Status (default Upcoming)"
// @Param image formData file true "Event image"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form")
		return
	}

	input := domain.EventInput{
		Title:       r.FormValue("title"),
		Time:        r.FormValue("time"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Category:    r.FormValue("category"),
		Status:      r.FormValue("status"),
	}
	if s := r.FormValue("date"); s != "" {
		date, err := parseDate(s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		input.Date = date
	}

	image, cleanup, err := formImage(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	defer cleanup()

	caller := middleware.IdentityFromContext(r.Context())
	event, err := c.Service.CreateEvent(r.Context(), caller, input, image)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Partially update an event from a multipart form; omitted fields are left unchanged. A new image part replaces the stored artifact.
// @Tags events
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid multipart form")
		return
	}

	upd := domain.EventUpdate{
		Title:       formString(r, "title"),
		Time:        formString(r, "time"),
		Description: formString(r, "description"),
		Location:    formString(r, "location"),
		Category:    formString(r, "category"),
		Status:      formString(r, "status"),
	}
	if s := formString(r, "date"); s != nil {
		date, err := parseDate(*s)
		if err != nil {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		upd.Date = &date
	}

	image, cleanup, err := formImage(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	defer cleanup()

	caller := middleware.IdentityFromContext(r.Context())
	event, err := c.Service.UpdateEvent(r.Context(), caller, r.PathValue("eventID"), upd, image)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains a confirmation message"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	if err := c.Service.DeleteEvent(r.Context(), caller, r.PathValue("eventID")); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}

// IncrementView godoc
// @Summary Record a view
// @Description Record one view of the event. Logged-in viewers are deduplicated; guests always count.
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the view count"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/view [patch]
func (c *EventController) IncrementView(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	views, err := c.Service.IncrementView(r.Context(), caller, r.PathValue("eventID"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]int{"views": views})
}

// ToggleLike godoc
// @Summary Toggle a like
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID"
// @Success 200 {object} helpers.APIResponse "data contains the like count and membership"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID}/like [patch]
func (c *EventController) ToggleLike(w http.ResponseWriter, r *http.Request) {
	caller := middleware.IdentityFromContext(r.Context())
	result, err := c.Service.ToggleLike(r.Context(), caller, r.PathValue("eventID"))
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// formString returns a pointer to the form value when the field was
// present in the request, nil when it was omitted. Distinguishing the
// two is what gives updates their partial semantics.
func formString(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

// formImage extracts the optional "image" file part. The caller must run
// cleanup after the service call to close the part.
func formImage(r *http.Request) (*domain.ImageUpload, func(), error) {
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, fmt.Errorf("invalid image upload: %w", err)
	}
	return &domain.ImageUpload{
		Content:     file,
		ContentType: header.Header.Get("Content-Type"),
	}, func() { file.Close() }, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
}
