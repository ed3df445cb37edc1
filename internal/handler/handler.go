// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/danmuller/event-registration-api/internal/model"
	"github.com/danmuller/event-registration-api/internal/repository"
	"github.com/danmuller/event-registration-api/internal/service"
)

// Service is the capability the handlers need from the service layer.
type Service interface {
	CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error)
	Register(ctx context.Context, eventID, userID string) error
	Cancel(ctx context.Context, eventID, userID string) error
	EventDetails(ctx context.Context, eventID string) (*model.EventDetails, error)
	UpcomingEvents(ctx context.Context) ([]model.Event, error)
	EventStats(ctx context.Context, eventID string) (*model.EventStats, error)
}

// EventHandler holds all HTTP handlers for the event registration API.
type EventHandler struct {
	svc Service
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(svc Service) *EventHandler {
	return &EventHandler{svc: svc}
}

// Routes mounts the API surface. The caller mounts the returned router under
// its path prefix.
func (h *EventHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Post("/register", h.CreateUser)
	r.Get("/events/upcoming", h.UpcomingEvents)
	r.Post("/{eventID}/register", h.Register)
	r.Post("/{eventID}/cancel", h.Cancel)
	r.Get("/{eventID}", h.EventDetails)
	r.Get("/{eventID}/stats", h.EventStats)
	return r
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps domain rejections to HTTP statuses. Unexpected
// storage faults are logged with full detail and surfaced as a generic 500;
// backend error text never reaches clients.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, repository.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "Event not found")
	case errors.Is(err, repository.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrEventInPast):
		writeError(w, http.StatusBadRequest, "Cannot register for a past event")
	case errors.Is(err, repository.ErrEventFull):
		writeError(w, http.StatusBadRequest, "Event is already full")
	case errors.Is(err, repository.ErrAlreadyRegistered):
		writeError(w, http.StatusConflict, "User is already registered for this event")
	case errors.Is(err, repository.ErrNotRegistered):
		writeError(w, http.StatusBadRequest, "User is not registered for this event")
	case errors.Is(err, service.ErrInvalidCapacity):
		writeError(w, http.StatusInternalServerError, "Event capacity is invalid")
	default:
		slog.Error("storage fault",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// Home handles GET / with a plaintext liveness message.
func (h *EventHandler) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Event Registration API"))
}

// CreateUser handles POST /register
// Creates a user account with the given name and email.
func (h *EventHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req model.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, err := h.svc.CreateUser(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateUserResponse{
		Message: "User registered successfully!",
		UserID:  user.ID,
	})
}

// Register handles POST /{eventID}/register
// Enrolls the user in the event, subject to the capacity and duplicate rules.
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req model.EventActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.Register(r.Context(), eventID, req.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.MessageResponse{
		Message: "User successfully registered for the event",
	})
}

// Cancel handles POST /{eventID}/cancel
// Removes the user's registration for the event.
func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	var req model.EventActionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.Cancel(r.Context(), eventID, req.UserID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{
		Message: "User successfully unregistered from the event",
	})
}

// EventDetails handles GET /{eventID}
// Returns the event and its registered users.
func (h *EventHandler) EventDetails(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	details, err := h.svc.EventDetails(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, details)
}

// UpcomingEvents handles GET /events/upcoming
// Returns future events ordered by date, then location.
func (h *EventHandler) UpcomingEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.UpcomingEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.UpcomingEventsResponse{UpcomingEvents: events})
}

// EventStats handles GET /{eventID}/stats
// Returns registration totals and capacity usage for the event.
func (h *EventHandler) EventStats(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	stats, err := h.svc.EventStats(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
