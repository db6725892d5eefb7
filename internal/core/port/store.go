package port

import (
	"context"

	"setlist/internal/core/domain"
)

// OrderStore persists the queue between runs. Only resolved orders are
// ever stored; ambiguous orders are transient and user-specific.
type OrderStore interface {
	Load(ctx context.Context) ([]domain.Order, error)
	Save(ctx context.Context, orders []domain.Order) error
}
