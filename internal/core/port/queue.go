package port

import (
	"context"

	"setlist/internal/core/domain"
)

// OrderQueue is the ordered collection of pending requests. Position
// encodes play priority; index 0 plays next.
type OrderQueue interface {
	// Push resolves song and chart from the catalog and appends a
	// resolved order, returning its id.
	Push(ctx context.Context, songID int, difficulty domain.Difficulty) (string, error)
	// PushAmbiguous appends an ambiguous order holding the candidate
	// songs, returning its id. Charts are not validated at this stage.
	PushAmbiguous(ctx context.Context, candidateIDs []int, difficulty domain.Difficulty) (string, error)
	// Confirm replaces an ambiguous order in place with the chosen
	// candidate. Confirming an already resolved order is a no-op.
	Confirm(ctx context.Context, orderID string, choice int) error
	// Complete removes a resolved order, first asking the configured
	// song selector to accept it.
	Complete(ctx context.Context, orderID string) error
	// Remove drops an order if present; absent ids are a no-op.
	Remove(ctx context.Context, orderID string) error
	// Move extracts an order and reinserts it at newIndex, clamped to
	// the list bounds.
	Move(ctx context.Context, orderID string, newIndex int) error
	// Snapshot returns a copy of the current queue in play order.
	Snapshot() []domain.Order
}
