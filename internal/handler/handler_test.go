package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/danmuller/event-registration-api/internal/model"
	"github.com/danmuller/event-registration-api/internal/repository"
	"github.com/danmuller/event-registration-api/internal/service"
)

// fakeService implements Service with per-test function hooks.
type fakeService struct {
	createUser     func(model.CreateUserRequest) (*model.User, error)
	register       func(eventID, userID string) error
	cancel         func(eventID, userID string) error
	eventDetails   func(eventID string) (*model.EventDetails, error)
	upcomingEvents func() ([]model.Event, error)
	eventStats     func(eventID string) (*model.EventStats, error)
}

func (f *fakeService) CreateUser(_ context.Context, req model.CreateUserRequest) (*model.User, error) {
	return f.createUser(req)
}

func (f *fakeService) Register(_ context.Context, eventID, userID string) error {
	return f.register(eventID, userID)
}

func (f *fakeService) Cancel(_ context.Context, eventID, userID string) error {
	return f.cancel(eventID, userID)
}

func (f *fakeService) EventDetails(_ context.Context, eventID string) (*model.EventDetails, error) {
	return f.eventDetails(eventID)
}

func (f *fakeService) UpcomingEvents(_ context.Context) ([]model.Event, error) {
	return f.upcomingEvents()
}

func (f *fakeService) EventStats(_ context.Context, eventID string) (*model.EventStats, error) {
	return f.eventStats(eventID)
}

func serve(t *testing.T, svc Service, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	NewEventHandler(svc).Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

const testEventID = "a3f6e0c2-98f5-4f6d-9c38-1f2b9a3c4d5e"

func TestHome_Plaintext(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	require.NotEmpty(t, rec.Body.String())
}

func TestCreateUser_Created(t *testing.T) {
	svc := &fakeService{
		createUser: func(req model.CreateUserRequest) (*model.User, error) {
			require.Equal(t, "Ada", req.Name)
			return &model.User{ID: "user-1", Name: req.Name, Email: req.Email}, nil
		},
	}
	rec := serve(t, svc, http.MethodPost, "/register", `{"name":"Ada","email":"ada@example.com"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[model.CreateUserResponse](t, rec)
	require.Equal(t, "user-1", resp.UserID)
	require.Equal(t, "User registered successfully!", resp.Message)
}

func TestCreateUser_ValidationListsAllFields(t *testing.T) {
	svc := &fakeService{
		createUser: func(model.CreateUserRequest) (*model.User, error) {
			return nil, &service.ValidationError{Fields: []string{"name", "email"}}
		},
	}
	rec := serve(t, svc, http.MethodPost, "/register", `{}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[model.ErrorResponse](t, rec)
	require.Equal(t, "name and email are required", resp.Error)
}

func TestCreateUser_StorageFaultIsGeneric(t *testing.T) {
	svc := &fakeService{
		createUser: func(model.CreateUserRequest) (*model.User, error) {
			return nil, errors.New(`pq: relation "users" does not exist`)
		},
	}
	rec := serve(t, svc, http.MethodPost, "/register", `{"name":"Ada","email":"a@b.c"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody[model.ErrorResponse](t, rec)
	require.Equal(t, "Internal server error", resp.Error)
	require.NotContains(t, rec.Body.String(), "relation")
}

func TestCreateUser_MalformedBody(t *testing.T) {
	rec := serve(t, &fakeService{}, http.MethodPost, "/register", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"event missing", repository.ErrEventNotFound, http.StatusNotFound, "Event not found"},
		{"user missing", repository.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"past event", repository.ErrEventInPast, http.StatusBadRequest, "Cannot register for a past event"},
		{"full", repository.ErrEventFull, http.StatusBadRequest, "Event is already full"},
		{"duplicate", repository.ErrAlreadyRegistered, http.StatusConflict, "User is already registered for this event"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{register: func(_, _ string) error { return tt.err }}
			rec := serve(t, svc, http.MethodPost, "/"+testEventID+"/register", `{"userId":"u"}`)

			require.Equal(t, tt.wantStatus, rec.Code)
			resp := decodeBody[model.ErrorResponse](t, rec)
			require.Equal(t, tt.wantError, resp.Error)
		})
	}
}

func TestRegister_Success(t *testing.T) {
	svc := &fakeService{
		register: func(eventID, userID string) error {
			require.Equal(t, testEventID, eventID)
			require.Equal(t, "user-1", userID)
			return nil
		},
	}
	rec := serve(t, svc, http.MethodPost, "/"+testEventID+"/register", `{"userId":"user-1"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody[model.MessageResponse](t, rec)
	require.Equal(t, "User successfully registered for the event", resp.Message)
}

func TestCancel_Success(t *testing.T) {
	svc := &fakeService{cancel: func(_, _ string) error { return nil }}
	rec := serve(t, svc, http.MethodPost, "/"+testEventID+"/cancel", `{"userId":"user-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[model.MessageResponse](t, rec)
	require.Equal(t, "User successfully unregistered from the event", resp.Message)
}

func TestCancel_NotRegistered(t *testing.T) {
	svc := &fakeService{cancel: func(_, _ string) error { return repository.ErrNotRegistered }}
	rec := serve(t, svc, http.MethodPost, "/"+testEventID+"/cancel", `{"userId":"user-1"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[model.ErrorResponse](t, rec)
	require.Equal(t, "User is not registered for this event", resp.Error)
}

func TestEventDetails_Shape(t *testing.T) {
	svc := &fakeService{
		eventDetails: func(eventID string) (*model.EventDetails, error) {
			return &model.EventDetails{
				Event:           model.Event{ID: eventID, Title: "GopherCon"},
				RegisteredUsers: []model.User{{ID: "u1", Name: "Ada"}},
			}, nil
		},
	}
	rec := serve(t, svc, http.MethodGet, "/"+testEventID, "")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Event           model.Event  `json:"event"`
		RegisteredUsers []model.User `json:"registeredUsers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "GopherCon", body.Event.Title)
	require.Len(t, body.RegisteredUsers, 1)
}

func TestEventDetails_NotFound(t *testing.T) {
	svc := &fakeService{
		eventDetails: func(string) (*model.EventDetails, error) {
			return nil, repository.ErrEventNotFound
		},
	}
	rec := serve(t, svc, http.MethodGet, "/"+testEventID, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpcomingEvents_EmptyArrayNotNull(t *testing.T) {
	svc := &fakeService{upcomingEvents: func() ([]model.Event, error) { return []model.Event{}, nil }}
	rec := serve(t, svc, http.MethodGet, "/events/upcoming", "")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"upcomingEvents":[]`)
}

func TestEventStats_Shape(t *testing.T) {
	svc := &fakeService{
		eventStats: func(eventID string) (*model.EventStats, error) {
			return &model.EventStats{
				EventID:            eventID,
				Title:              "GopherCon",
				TotalRegistrations: 2,
				RemainingCapacity:  1,
				PercentUsed:        "66.67%",
			}, nil
		},
	}
	rec := serve(t, svc, http.MethodGet, "/"+testEventID+"/stats", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody[model.EventStats](t, rec)
	require.Equal(t, testEventID, resp.EventID)
	require.Equal(t, "66.67%", resp.PercentUsed)
	require.Equal(t, 1, resp.RemainingCapacity)
}

func TestEventStats_InvalidCapacity(t *testing.T) {
	svc := &fakeService{
		eventStats: func(string) (*model.EventStats, error) {
			return nil, service.ErrInvalidCapacity
		},
	}
	rec := serve(t, svc, http.MethodGet, "/"+testEventID+"/stats", "")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody[model.ErrorResponse](t, rec)
	require.Equal(t, "Event capacity is invalid", resp.Error)
}
