// Package session keeps the short rolling conversation memory each query
// pipeline run reads and appends to.
package session

import (
	"context"
	"time"

	"agribot/internal/models"
)

// DefaultCapacity is the number of exchanges retained per session.
const DefaultCapacity = 5

// Store is the session memory contract. Get on an unknown session returns an
// empty, usable context, never an error: memory loss degrades answers, it
// must not fail queries.
type Store interface {
	// Get returns the session context for id, creating an empty one if the
	// session is unknown or expired.
	Get(ctx context.Context, id string) (*models.SessionContext, error)

	// Append records one completed exchange, evicting the oldest entry once
	// the capacity is reached.
	Append(ctx context.Context, id string, exchange models.Exchange) error

	// SetContext merges the given keys into the session's sticky context
	// (location, last crop discussed).
	SetContext(ctx context.Context, id string, values map[string]string) error

	// Clear removes the session entirely.
	Clear(ctx context.Context, id string) error

	// Close releases store resources.
	Close() error
}

func emptyContext(id string) *models.SessionContext {
	return &models.SessionContext{
		SessionID: id,
		CreatedAt: time.Now().UTC(),
		Exchanges: []models.Exchange{},
		Context:   map[string]string{},
	}
}
