package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/danmuller/event-registration-api/internal/model"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation.
const uniqueViolation = "23505"

// RegistrationRepository handles persistence for registrations.
type RegistrationRepository struct {
	db *pgxpool.Pool
}

// NewRegistrationRepository constructs a RegistrationRepository.
func NewRegistrationRepository(db *pgxpool.Pool) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// Register records a registration for (userID, eventID), validating in fixed
// order: event exists, user exists, event not in the past, event not full,
// not already registered.
//
// All checks and the insert run inside one transaction that holds a row-level
// lock on the event (SELECT ... FOR UPDATE). Concurrent attempts against the
// same event serialize on that lock, so the capacity count and duplicate
// check cannot race past each other. The UNIQUE (user_id, event_id)
// constraint backstops the duplicate check.
//
// now is captured once by the caller; the past-event comparison uses it
// rather than re-reading the clock.
func (r *RegistrationRepository) Register(ctx context.Context, eventID, userID string, now time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the event row for the duration of the transaction.
	var date time.Time
	var capacity int
	err = tx.QueryRow(ctx,
		`SELECT date, capacity FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&date, &capacity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrEventNotFound
		}
		return fmt.Errorf("lock event row: %w", err)
	}

	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	if date.Before(now) {
		return ErrEventInPast
	}

	var count int
	err = tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("count registrations: %w", err)
	}
	if count >= capacity {
		return ErrEventFull
	}

	var duplicate bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE user_id = $1 AND event_id = $2)`,
		userID, eventID,
	).Scan(&duplicate)
	if err != nil {
		return fmt.Errorf("check duplicate: %w", err)
	}
	if duplicate {
		return ErrAlreadyRegistered
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO registrations (id, user_id, event_id, created_at)
		 VALUES ($1, $2, $3, $4)`,
		uuid.New().String(), userID, eventID, time.Now().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyRegistered
		}
		return fmt.Errorf("insert registration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Cancel removes the registration for (userID, eventID), validating in fixed
// order: event exists, user exists, registration exists. Cancellation is
// always permitted once a registration exists, including for past events.
func (r *RegistrationRepository) Cancel(ctx context.Context, eventID, userID string) error {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`,
		eventID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !exists {
		return ErrEventNotFound
	}

	err = r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`,
		userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM registrations WHERE user_id = $1 AND event_id = $2`,
		userID, eventID,
	)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotRegistered
	}
	return nil
}

// CountByEvent returns the number of registrations for an event.
func (r *RegistrationRepository) CountByEvent(ctx context.Context, eventID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = $1`,
		eventID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// ListUsersByEvent returns the users registered for an event. Row order is
// store-default and not guaranteed.
func (r *RegistrationRepository) ListUsersByEvent(ctx context.Context, eventID string) ([]model.User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT u.id, u.name, u.email, u.created_at
		 FROM users u
		 JOIN registrations r ON u.id = r.user_id
		 WHERE r.event_id = $1`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("list registered users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
