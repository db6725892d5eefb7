package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"setlist/internal/core/domain"

	"github.com/rs/zerolog/log"
)

// OrderFile persists the resolved order queue as a JSON array on disk.
type OrderFile struct {
	path string
}

func NewOrderFile(path string) *OrderFile {
	return &OrderFile{path: path}
}

// Load reads the persisted queue. A missing file is an empty queue.
func (f *OrderFile) Load(_ context.Context) ([]domain.Order, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		log.Debug().Str("path", f.path).Msg("no persisted orders")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading order file: %w", err)
	}

	orders, err := domain.UnmarshalOrders(data)
	if err != nil {
		return nil, err
	}

	return orders, nil
}

// Save writes the queue atomically via a temp file rename.
func (f *OrderFile) Save(_ context.Context, orders []domain.Order) error {
	if orders == nil {
		orders = []domain.Order{}
	}

	data, err := json.MarshalIndent(orders, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding orders: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating order file dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing order file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replacing order file: %w", err)
	}

	return nil
}
