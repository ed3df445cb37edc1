// Package model defines the core domain types for the event registration API.
package model

import "time"

// User is an attendee account. Created via POST /register, never updated or
// deleted by this system.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Event is a registerable event. Events are seeded externally (see cmd/seed);
// this API only reads them.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Registration links a user to an event. At most one registration exists per
// (user, event) pair.
type Registration struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// EventDetails is an event together with its registered users. The roster
// order is store-default and not guaranteed.
type EventDetails struct {
	Event           Event  `json:"event"`
	RegisteredUsers []User `json:"registeredUsers"`
}

// EventStats reports capacity usage for one event. RemainingCapacity can go
// negative: capacity is enforced at registration time, not re-validated here.
type EventStats struct {
	EventID            string `json:"eventId"`
	Title              string `json:"title"`
	TotalRegistrations int    `json:"totalRegistrations"`
	RemainingCapacity  int    `json:"remainingCapacity"`
	PercentUsed        string `json:"percentUsed"`
}

// CreateUserRequest is the payload for POST /register.
type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// EventActionRequest is the payload for POST /{eventID}/register and
// POST /{eventID}/cancel.
type EventActionRequest struct {
	UserID string `json:"userId"`
}

// CreateUserResponse confirms a new user account.
type CreateUserResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

// MessageResponse is a bare confirmation envelope.
type MessageResponse struct {
	Message string `json:"message"`
}

// UpcomingEventsResponse wraps the upcoming-events listing.
type UpcomingEventsResponse struct {
	UpcomingEvents []Event `json:"upcomingEvents"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
