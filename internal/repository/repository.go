// Package repository implements all database queries for the event
// registration API. It uses pgx directly (no ORM) for transparency and
// performance.
package repository

import "errors"

// ErrEventNotFound is returned when the requested event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrUserNotFound is returned when the requested user does not exist.
var ErrUserNotFound = errors.New("user not found")

// ErrEventInPast is returned when registering for an event whose date has
// already passed.
var ErrEventInPast = errors.New("cannot register for a past event")

// ErrEventFull is returned when an event has no remaining capacity.
var ErrEventFull = errors.New("event is already full")

// ErrAlreadyRegistered is returned when the same user registers twice for one
// event.
var ErrAlreadyRegistered = errors.New("user is already registered for this event")

// ErrNotRegistered is returned when cancelling a registration that does not
// exist.
var ErrNotRegistered = errors.New("user is not registered for this event")
