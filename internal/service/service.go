// Package service implements boundary validation and orchestration between
// HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danmuller/event-registration-api/internal/model"
	"github.com/danmuller/event-registration-api/internal/repository"
)

// ErrInvalidCapacity is returned by EventStats for an event whose stored
// capacity is zero, where percentage usage is undefined.
var ErrInvalidCapacity = errors.New("event capacity is invalid")

// ValidationError reports every violated field of a request at once.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 1 {
		return e.Fields[0] + " is required"
	}
	return strings.Join(e.Fields, " and ") + " are required"
}

// UserStore is the persistence capability needed for user creation.
type UserStore interface {
	Create(ctx context.Context, name, email string) (*model.User, error)
}

// EventStore is the read capability over events.
type EventStore interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]model.Event, error)
}

// RegistrationStore is the persistence capability over registrations.
type RegistrationStore interface {
	Register(ctx context.Context, eventID, userID string, now time.Time) error
	Cancel(ctx context.Context, eventID, userID string) error
	CountByEvent(ctx context.Context, eventID string) (int, error)
	ListUsersByEvent(ctx context.Context, eventID string) ([]model.User, error)
}

// EventService orchestrates all API operations.
type EventService struct {
	users         UserStore
	events        EventStore
	registrations RegistrationStore
}

// NewEventService constructs an EventService with its dependencies.
func NewEventService(users UserStore, events EventStore, registrations RegistrationStore) *EventService {
	return &EventService{users: users, events: events, registrations: registrations}
}

// CreateUser validates the request and creates a user account.
func (s *EventService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(req.Email) == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	user, err := s.users.Create(ctx, strings.TrimSpace(req.Name), strings.TrimSpace(req.Email))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Register enrolls a user in an event. The current instant is captured once
// here and used for the past-event check throughout the workflow.
func (s *EventService) Register(ctx context.Context, eventID, userID string) error {
	if err := validateEventID(eventID); err != nil {
		return err
	}
	if err := s.validateUserID(ctx, eventID, userID); err != nil {
		return err
	}
	return s.registrations.Register(ctx, eventID, userID, time.Now().UTC())
}

// Cancel removes a user's registration for an event.
func (s *EventService) Cancel(ctx context.Context, eventID, userID string) error {
	if err := validateEventID(eventID); err != nil {
		return err
	}
	if err := s.validateUserID(ctx, eventID, userID); err != nil {
		return err
	}
	return s.registrations.Cancel(ctx, eventID, userID)
}

// EventDetails returns an event together with its registered users.
func (s *EventService) EventDetails(ctx context.Context, eventID string) (*model.EventDetails, error) {
	if err := validateEventID(eventID); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	users, err := s.registrations.ListUsersByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event details: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return &model.EventDetails{Event: *event, RegisteredUsers: users}, nil
}

// UpcomingEvents lists events strictly after the current instant, ordered by
// date then location.
func (s *EventService) UpcomingEvents(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.ListUpcoming(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, nil
}

// EventStats reports capacity usage for one event. Remaining capacity may be
// negative; capacity is not re-validated here.
func (s *EventService) EventStats(ctx context.Context, eventID string) (*model.EventStats, error) {
	if err := validateEventID(eventID); err != nil {
		return nil, err
	}
	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Capacity == 0 {
		return nil, ErrInvalidCapacity
	}
	total, err := s.registrations.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("event stats: %w", err)
	}

	percent := float64(total) / float64(event.Capacity) * 100
	return &model.EventStats{
		EventID:            event.ID,
		Title:              event.Title,
		TotalRegistrations: total,
		RemainingCapacity:  event.Capacity - total,
		PercentUsed:        fmt.Sprintf("%.2f%%", percent),
	}, nil
}

// validateEventID rejects malformed event ids as not-found rather than
// letting the store fail the UUID cast.
func validateEventID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return repository.ErrEventNotFound
	}
	return nil
}

// validateUserID rejects malformed user ids as not-found. The event is
// checked first so a bad user id never masks a missing event.
func (s *EventService) validateUserID(ctx context.Context, eventID, userID string) error {
	if _, err := uuid.Parse(userID); err != nil {
		if _, evErr := s.events.GetByID(ctx, eventID); evErr != nil {
			return evErr
		}
		return repository.ErrUserNotFound
	}
	return nil
}
