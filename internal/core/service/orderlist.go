package service

import (
	"context"
	"fmt"
	"sync"

	"setlist/internal/core/domain"
	"setlist/internal/core/port"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog/log"
)

// setOrderList is the push that mirrors the full queue to every
// connected overlay client.
const setOrderList = "setOrderList"

// OrderList owns the ordered collection of pending requests. Every
// successful mutation broadcasts the full queue to all clients and
// persists the resolved subset; ambiguous orders never reach the store.
type OrderList struct {
	mu     sync.Mutex
	orders []domain.Order

	catalog    port.SongCatalog
	dispatcher port.ClientDispatcher
	store      port.OrderStore
	selector   port.SongSelector

	removeListener func()
}

// NewOrderList builds an order list over the given collaborators.
// selector may be nil when no playback bridge is configured; completion
// then removes orders unconditionally.
func NewOrderList(catalog port.SongCatalog, dispatcher port.ClientDispatcher,
	store port.OrderStore, selector port.SongSelector) *OrderList {
	return &OrderList{
		catalog:    catalog,
		dispatcher: dispatcher,
		store:      store,
		selector:   selector,
	}
}

// Init loads persisted orders and pushes the queue to every client that
// is already connected, and to each client that connects later.
func (l *OrderList) Init(ctx context.Context) error {
	orders, err := l.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading persisted orders: %w", err)
	}

	l.mu.Lock()
	l.orders = orders
	l.mu.Unlock()

	l.removeListener = l.dispatcher.AddNewClientListener(func(clientID string) {
		l.dispatcher.Dispatch(clientID, port.ClientCommand{Action: setOrderList, Args: l.Snapshot()})
	})
	l.dispatcher.DispatchAll(port.ClientCommand{Action: setOrderList, Args: l.Snapshot()})

	log.Info().Int("orders", len(orders)).Msg("order list initialized")

	return nil
}

// Close detaches the order list from the dispatcher.
func (l *OrderList) Close() {
	if l.removeListener != nil {
		l.removeListener()
		l.removeListener = nil
	}
}

// Push appends a resolved order for the given song and difficulty.
func (l *OrderList) Push(ctx context.Context, songID int, difficulty domain.Difficulty) (string, error) {
	song, ok := l.catalog.GetSong(songID)
	if !ok {
		return "", domain.NewOrderError("no song %d in catalog", songID)
	}
	chart, ok := l.catalog.GetChart(songID, difficulty)
	if !ok {
		return "", domain.NewOrderError("no chart for song %d at difficulty %s", songID, difficulty)
	}

	order := &domain.ResolvedOrder{OrderID: newOrderID(), Song: song, Chart: chart}

	l.mu.Lock()
	l.orders = append(l.orders, order)
	l.mu.Unlock()

	log.Info().Str("orderId", order.OrderID).Str("title", song.Title).
		Stringer("difficulty", difficulty).Msg("order pushed")

	return order.OrderID, l.publish(ctx)
}

// PushAmbiguous appends an ambiguous order carrying the candidate
// songs. Charts are not validated until the order is confirmed.
func (l *OrderList) PushAmbiguous(ctx context.Context, candidateIDs []int, difficulty domain.Difficulty) (string, error) {
	candidates := make([]*domain.Song, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		song, ok := l.catalog.GetSong(id)
		if !ok {
			return "", domain.NewOrderError("no song %d in catalog", id)
		}
		candidates = append(candidates, song)
	}

	order := &domain.AmbiguousOrder{OrderID: newOrderID(), Candidates: candidates, Difficulty: difficulty}

	l.mu.Lock()
	l.orders = append(l.orders, order)
	l.mu.Unlock()

	log.Info().Str("orderId", order.OrderID).Int("candidates", len(candidates)).
		Stringer("difficulty", difficulty).Msg("ambiguous order pushed")

	return order.OrderID, l.publish(ctx)
}

// Confirm resolves an ambiguous order to its choice-th candidate,
// keeping the order id and queue position. Confirming an order that is
// already resolved is a no-op, so duplicate confirmations are harmless.
// When the chosen candidate has no chart at the requested difficulty
// the order is removed entirely and an error returned.
func (l *OrderList) Confirm(ctx context.Context, orderID string, choice int) error {
	l.mu.Lock()
	index, order := l.findLocked(orderID)
	if order == nil {
		l.mu.Unlock()
		return domain.NewOrderError("no order %s", orderID)
	}

	ambiguous, ok := order.(*domain.AmbiguousOrder)
	if !ok {
		l.mu.Unlock()
		return nil
	}

	if choice < 0 || choice >= len(ambiguous.Candidates) {
		l.mu.Unlock()
		return domain.NewOrderError("no candidate %d on order %s", choice, orderID)
	}

	song := ambiguous.Candidates[choice]
	chart, ok := l.catalog.GetChart(song.ID, ambiguous.Difficulty)
	if !ok {
		l.orders = append(l.orders[:index], l.orders[index+1:]...)
		l.mu.Unlock()
		if err := l.publish(ctx); err != nil {
			return err
		}
		return domain.NewOrderError("no chart for song %d at difficulty %s", song.ID, ambiguous.Difficulty)
	}

	l.orders[index] = &domain.ResolvedOrder{OrderID: orderID, Song: song, Chart: chart}
	l.mu.Unlock()

	log.Info().Str("orderId", orderID).Str("title", song.Title).Msg("order confirmed")

	return l.publish(ctx)
}

// Complete removes a resolved order from the queue. With a selector
// configured the order is only removed once the external system accepts
// the selection; a rejection leaves it queued. The selector call runs
// outside the lock, so the order is re-fetched by id afterwards and may
// legitimately be gone by then.
func (l *OrderList) Complete(ctx context.Context, orderID string) error {
	l.mu.Lock()
	_, order := l.findLocked(orderID)
	if order == nil {
		l.mu.Unlock()
		return domain.NewOrderError("no order %s", orderID)
	}
	resolved, ok := order.(*domain.ResolvedOrder)
	if !ok {
		l.mu.Unlock()
		return domain.NewOrderError("order %s is not confirmed", orderID)
	}
	songID := resolved.Song.ID
	difficulty := resolved.Chart.Difficulty
	l.mu.Unlock()

	if l.selector != nil {
		accepted, err := l.selector.SelectSong(ctx, songID, difficulty)
		if err != nil {
			return fmt.Errorf("selecting song %d at difficulty %s: %w", songID, difficulty, err)
		}
		if !accepted {
			return domain.NewOrderError("selection of song %d at difficulty %s rejected", songID, difficulty)
		}
	}

	l.mu.Lock()
	index, order := l.findLocked(orderID)
	if order == nil {
		// Removed while the selector call was in flight.
		l.mu.Unlock()
		return nil
	}
	l.orders = append(l.orders[:index], l.orders[index+1:]...)
	l.mu.Unlock()

	log.Info().Str("orderId", orderID).Msg("order completed")

	return l.publish(ctx)
}

// Remove drops the order if present. Absent ids are a no-op.
func (l *OrderList) Remove(ctx context.Context, orderID string) error {
	l.mu.Lock()
	index, order := l.findLocked(orderID)
	if order == nil {
		l.mu.Unlock()
		return nil
	}
	l.orders = append(l.orders[:index], l.orders[index+1:]...)
	l.mu.Unlock()

	log.Info().Str("orderId", orderID).Msg("order removed")

	return l.publish(ctx)
}

// Move extracts the order and reinserts it at newIndex, preserving the
// relative order of everything else. The index is clamped to the list
// bounds.
func (l *OrderList) Move(ctx context.Context, orderID string, newIndex int) error {
	l.mu.Lock()
	index, order := l.findLocked(orderID)
	if order == nil {
		l.mu.Unlock()
		return domain.NewOrderError("no order %s", orderID)
	}

	l.orders = append(l.orders[:index], l.orders[index+1:]...)
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(l.orders) {
		newIndex = len(l.orders)
	}
	l.orders = append(l.orders[:newIndex], append([]domain.Order{order}, l.orders[newIndex:]...)...)
	l.mu.Unlock()

	log.Info().Str("orderId", orderID).Int("newIndex", newIndex).Msg("order moved")

	return l.publish(ctx)
}

// Snapshot returns a copy of the queue in play order.
func (l *OrderList) Snapshot() []domain.Order {
	l.mu.Lock()
	defer l.mu.Unlock()

	snapshot := make([]domain.Order, len(l.orders))
	copy(snapshot, l.orders)
	return snapshot
}

// publish broadcasts the queue to all clients and persists the resolved
// subset. A failed save surfaces as a failed command; the in-memory
// mutation stands either way.
func (l *OrderList) publish(ctx context.Context) error {
	snapshot := l.Snapshot()

	l.dispatcher.DispatchAll(port.ClientCommand{Action: setOrderList, Args: snapshot})

	resolved := make([]domain.Order, 0, len(snapshot))
	for _, order := range snapshot {
		if !order.Ambiguous() {
			resolved = append(resolved, order)
		}
	}

	if err := l.store.Save(ctx, resolved); err != nil {
		return fmt.Errorf("persisting orders: %w", err)
	}

	return nil
}

// findLocked returns the index and order for an id, or (-1, nil).
// Callers hold l.mu.
func (l *OrderList) findLocked(orderID string) (int, domain.Order) {
	for i, order := range l.orders {
		if order.ID() == orderID {
			return i, order
		}
	}
	return -1, nil
}

func newOrderID() string {
	return uuid.Must(uuid.NewV4()).String()
}
