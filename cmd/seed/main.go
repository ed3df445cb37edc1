// cmd/seed inserts a handful of upcoming events for local development.
// Event lifecycle is external to the API itself, which only reads events.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/danmuller/event-registration-api/internal/config"
	"github.com/danmuller/event-registration-api/internal/database"
)

type seedEvent struct {
	title    string
	in       time.Duration
	location string
	capacity int
}

var seedEvents = []seedEvent{
	{"Go Meetup: Generics in Practice", 7 * 24 * time.Hour, "Berlin", 50},
	{"Cloud Native Night", 14 * 24 * time.Hour, "Austin", 120},
	{"Intro to PostgreSQL Internals", 21 * 24 * time.Hour, "Lisbon", 30},
	{"API Design Workshop", 30 * 24 * time.Hour, "Berlin", 25},
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(cfg); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	now := time.Now().UTC()
	for _, e := range seedEvents {
		id := uuid.New().String()
		_, err := pool.Exec(ctx,
			`INSERT INTO events (id, title, date, location, capacity)
			 VALUES ($1, $2, $3, $4, $5)`,
			id, e.title, now.Add(e.in), e.location, e.capacity,
		)
		if err != nil {
			return fmt.Errorf("insert event %q: %w", e.title, err)
		}
		slog.Info("seeded event", "id", id, "title", e.title)
	}
	return nil
}
