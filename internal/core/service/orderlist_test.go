package service

import (
	"context"
	"errors"
	"testing"

	"setlist/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrderList(t *testing.T) (*OrderList, *MockDispatcher, *MockStore) {
	t.Helper()

	catalog := catalogOf(
		song(1, "First", domain.DifficultyMaster, domain.DifficultyExpert),
		song(2, "Second", domain.DifficultyMaster),
		song(3, "Third", domain.DifficultyMaster),
		song(4, "Chartless"),
	)
	dispatcher := &MockDispatcher{}
	store := &MockStore{}

	orders := NewOrderList(catalog, dispatcher, store, nil)
	require.NoError(t, orders.Init(context.Background()))

	return orders, dispatcher, store
}

func orderIDs(orders []domain.Order) []string {
	ids := make([]string, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID())
	}
	return ids
}

func TestPushAppendsResolvedOrder(t *testing.T) {
	orders, _, _ := newOrderList(t)

	id, err := orders.Push(context.Background(), 1, domain.DifficultyMaster)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	snapshot := orders.Snapshot()
	require.Len(t, snapshot, 1)

	resolved, ok := snapshot[0].(*domain.ResolvedOrder)
	require.True(t, ok)
	assert.Equal(t, 1, resolved.Song.ID)
	assert.Equal(t, domain.DifficultyMaster, resolved.Chart.Difficulty)
}

func TestInvalidOperationsReturnOrderError(t *testing.T) {
	type TestCase struct {
		description string
		op          func(ctx context.Context, orders *OrderList, ambiguousID string) error
	}

	testCases := []TestCase{
		{
			description: "push unknown song",
			op: func(ctx context.Context, orders *OrderList, _ string) error {
				_, err := orders.Push(ctx, 99, domain.DifficultyMaster)
				return err
			},
		},
		{
			description: "push song without chart at difficulty",
			op: func(ctx context.Context, orders *OrderList, _ string) error {
				_, err := orders.Push(ctx, 4, domain.DifficultyUltima)
				return err
			},
		},
		{
			description: "push ambiguous with unknown candidate",
			op: func(ctx context.Context, orders *OrderList, _ string) error {
				_, err := orders.PushAmbiguous(ctx, []int{1, 99}, domain.DifficultyMaster)
				return err
			},
		},
		{
			description: "confirm unknown order",
			op: func(ctx context.Context, orders *OrderList, _ string) error {
				return orders.Confirm(ctx, "missing", 0)
			},
		},
		{
			description: "complete unknown order",
			op: func(ctx context.Context, orders *OrderList, _ string) error {
				return orders.Complete(ctx, "missing")
			},
		},
		{
			description: "complete unconfirmed order",
			op: func(ctx context.Context, orders *OrderList, ambiguousID string) error {
				return orders.Complete(ctx, ambiguousID)
			},
		},
		{
			description: "move unknown order",
			op: func(ctx context.Context, orders *OrderList, _ string) error {
				return orders.Move(ctx, "missing", 0)
			},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			orders, _, _ := newOrderList(t)
			ctx := context.Background()

			ambiguousID, err := orders.PushAmbiguous(ctx, []int{1, 2}, domain.DifficultyMaster)
			require.NoError(t, err)

			err = testCase.op(ctx, orders, ambiguousID)

			var orderErr *domain.OrderError
			require.ErrorAs(t, err, &orderErr)
			assert.Len(t, orders.Snapshot(), 1, "failed operation left the queue untouched")
		})
	}
}

func TestOrderIDsAreUnique(t *testing.T) {
	orders, _, _ := newOrderList(t)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := orders.Push(ctx, 1, domain.DifficultyMaster)
		require.NoError(t, err)
	}
	_, err := orders.PushAmbiguous(ctx, []int{1, 2}, domain.DifficultyMaster)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, id := range orderIDs(orders.Snapshot()) {
		assert.False(t, seen[id], "duplicate order id %s", id)
		seen[id] = true
	}
}

func TestConfirmResolvesInPlace(t *testing.T) {
	orders, _, _ := newOrderList(t)
	ctx := context.Background()

	first, err := orders.Push(ctx, 3, domain.DifficultyMaster)
	require.NoError(t, err)
	ambiguous, err := orders.PushAmbiguous(ctx, []int{1, 2}, domain.DifficultyMaster)
	require.NoError(t, err)
	last, err := orders.Push(ctx, 3, domain.DifficultyMaster)
	require.NoError(t, err)

	require.NoError(t, orders.Confirm(ctx, ambiguous, 1))

	snapshot := orders.Snapshot()
	assert.Equal(t, []string{first, ambiguous, last}, orderIDs(snapshot))

	resolved, ok := snapshot[1].(*domain.ResolvedOrder)
	require.True(t, ok)
	assert.Equal(t, 2, resolved.Song.ID)
}

func TestConfirmIdempotentOnResolvedOrder(t *testing.T) {
	orders, dispatcher, _ := newOrderList(t)
	ctx := context.Background()

	id, err := orders.Push(ctx, 1, domain.DifficultyMaster)
	require.NoError(t, err)

	before := orders.Snapshot()
	pushesBefore := len(dispatcher.Pushes())

	require.NoError(t, orders.Confirm(ctx, id, 5))

	assert.Equal(t, before, orders.Snapshot())
	assert.Len(t, dispatcher.Pushes(), pushesBefore, "no events for a duplicate confirmation")
}

func TestConfirmChoiceOutOfRange(t *testing.T) {
	orders, _, _ := newOrderList(t)
	ctx := context.Background()

	id, err := orders.PushAmbiguous(ctx, []int{1, 2}, domain.DifficultyMaster)
	require.NoError(t, err)

	for _, choice := range []int{-1, 2, 10} {
		err := orders.Confirm(ctx, id, choice)
		var orderErr *domain.OrderError
		require.ErrorAs(t, err, &orderErr)
	}

	snapshot := orders.Snapshot()
	require.Len(t, snapshot, 1)
	assert.True(t, snapshot[0].Ambiguous(), "failed confirmation left the order untouched")
}

func TestConfirmMissingChartRemovesOrder(t *testing.T) {
	orders, _, _ := newOrderList(t)
	ctx := context.Background()

	// Song 4 has no charts, so confirming it at any difficulty fails.
	id, err := orders.PushAmbiguous(ctx, []int{1, 4}, domain.DifficultyUltima)
	require.NoError(t, err)

	err = orders.Confirm(ctx, id, 1)

	var orderErr *domain.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Empty(t, orders.Snapshot())
}

func TestCompleteWithoutSelectorRemoves(t *testing.T) {
	orders, _, _ := newOrderList(t)
	ctx := context.Background()

	id, err := orders.Push(ctx, 1, domain.DifficultyMaster)
	require.NoError(t, err)

	require.NoError(t, orders.Complete(ctx, id))
	assert.Empty(t, orders.Snapshot())
}

func TestCompleteRejectedSelectionLeavesOrderQueued(t *testing.T) {
	catalog := catalogOf(song(1, "First", domain.DifficultyMaster))
	dispatcher := &MockDispatcher{}
	store := &MockStore{}
	selector := &MockSelector{accept: false}

	orders := NewOrderList(catalog, dispatcher, store, selector)
	require.NoError(t, orders.Init(context.Background()))

	ctx := context.Background()
	id, err := orders.Push(ctx, 1, domain.DifficultyMaster)
	require.NoError(t, err)

	err = orders.Complete(ctx, id)

	var orderErr *domain.OrderError
	require.ErrorAs(t, err, &orderErr)
	assert.Equal(t, 1, selector.calls)
	assert.Len(t, orders.Snapshot(), 1, "rejected selection keeps the order")
}

func TestCompleteAcceptedSelectionRemoves(t *testing.T) {
	catalog := catalogOf(song(1, "First", domain.DifficultyMaster))
	selector := &MockSelector{accept: true}

	orders := NewOrderList(catalog, &MockDispatcher{}, &MockStore{}, selector)
	require.NoError(t, orders.Init(context.Background()))

	ctx := context.Background()
	id, err := orders.Push(ctx, 1, domain.DifficultyMaster)
	require.NoError(t, err)

	require.NoError(t, orders.Complete(ctx, id))
	assert.Empty(t, orders.Snapshot())
}

func TestCompleteSelectorError(t *testing.T) {
	catalog := catalogOf(song(1, "First", domain.DifficultyMaster))
	selector := &MockSelector{err: errors.New("mock error")}

	orders := NewOrderList(catalog, &MockDispatcher{}, &MockStore{}, selector)
	require.NoError(t, orders.Init(context.Background()))

	ctx := context.Background()
	id, err := orders.Push(ctx, 1, domain.DifficultyMaster)
	require.NoError(t, err)

	require.Error(t, orders.Complete(ctx, id))
	assert.Len(t, orders.Snapshot(), 1)
}

func TestRemoveAbsentIsNoOp(t *testing.T) {
	orders, dispatcher, _ := newOrderList(t)

	pushesBefore := len(dispatcher.Pushes())
	require.NoError(t, orders.Remove(context.Background(), "missing"))
	assert.Len(t, dispatcher.Pushes(), pushesBefore)
}

func TestMovePreservesRelativeOrder(t *testing.T) {
	orders, _, _ := newOrderList(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := orders.Push(ctx, 1, domain.DifficultyMaster)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, orders.Move(ctx, ids[3], 0))
	assert.Equal(t, []string{ids[3], ids[0], ids[1], ids[2], ids[4]}, orderIDs(orders.Snapshot()))

	require.NoError(t, orders.Move(ctx, ids[3], 2))
	assert.Equal(t, []string{ids[0], ids[1], ids[3], ids[2], ids[4]}, orderIDs(orders.Snapshot()))
}

func TestMoveClampsIndex(t *testing.T) {
	orders, _, _ := newOrderList(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := orders.Push(ctx, 1, domain.DifficultyMaster)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	require.NoError(t, orders.Move(ctx, ids[0], 99))
	assert.Equal(t, []string{ids[1], ids[2], ids[0]}, orderIDs(orders.Snapshot()))

	require.NoError(t, orders.Move(ctx, ids[0], -5))
	assert.Equal(t, []string{ids[0], ids[1], ids[2]}, orderIDs(orders.Snapshot()))
}

func TestPersistedSetIsResolvedSubsetInOrder(t *testing.T) {
	orders, _, store := newOrderList(t)
	ctx := context.Background()

	first, err := orders.Push(ctx, 1, domain.DifficultyMaster)
	require.NoError(t, err)
	_, err = orders.PushAmbiguous(ctx, []int{1, 2}, domain.DifficultyMaster)
	require.NoError(t, err)
	second, err := orders.Push(ctx, 2, domain.DifficultyMaster)
	require.NoError(t, err)

	saved := store.LastSaved()
	assert.Equal(t, []string{first, second}, orderIDs(saved))
	for _, order := range saved {
		assert.False(t, order.Ambiguous(), "ambiguous orders are never persisted")
	}
}

func TestInitLoadsPersistedOrders(t *testing.T) {
	catalog := catalogOf(song(1, "First", domain.DifficultyMaster))
	dispatcher := &MockDispatcher{}
	store := &MockStore{orders: []domain.Order{
		&domain.ResolvedOrder{
			OrderID: "persisted",
			Song:    &domain.Song{ID: 1},
			Chart:   &domain.Chart{SongID: 1, Difficulty: domain.DifficultyMaster},
		},
	}}

	orders := NewOrderList(catalog, dispatcher, store, nil)
	require.NoError(t, orders.Init(context.Background()))

	assert.Equal(t, []string{"persisted"}, orderIDs(orders.Snapshot()))

	pushes := dispatcher.Pushes()
	require.NotEmpty(t, pushes)
	assert.Equal(t, "setOrderList", pushes[len(pushes)-1].Action)
}

func TestEveryMutationBroadcastsQueue(t *testing.T) {
	orders, dispatcher, _ := newOrderList(t)
	ctx := context.Background()

	id, err := orders.Push(ctx, 1, domain.DifficultyMaster)
	require.NoError(t, err)

	pushes := dispatcher.Pushes()
	require.NotEmpty(t, pushes)
	last := pushes[len(pushes)-1]
	assert.Equal(t, "setOrderList", last.Action)

	broadcast, ok := last.Args.([]domain.Order)
	require.True(t, ok)
	require.Len(t, broadcast, 1)
	assert.Equal(t, id, broadcast[0].ID())
}
