package command

import (
	"context"

	"setlist/internal/core/domain"
	"setlist/internal/core/port"
)

// Argument shapes for the order actions, matching the wire payloads.

type OrderPushArgs struct {
	SongID     int               `json:"songId"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

type OrderAmbiguousPushArgs struct {
	Candidates []int             `json:"candidates"`
	Difficulty domain.Difficulty `json:"difficulty"`
}

type OrderConfirmArgs struct {
	OrderID     string `json:"orderId"`
	SongIDIndex int    `json:"songIdIndex"`
}

type OrderCompleteArgs struct {
	OrderID string `json:"orderId"`
}

type OrderRemoveArgs struct {
	OrderID string `json:"orderId"`
}

type OrderMoveArgs struct {
	OrderID  string `json:"orderId"`
	NewIndex int    `json:"newIndex"`
}

// RegisterOrderCommands binds the six queue actions to the given queue.
func RegisterOrderCommands(r *Registry, queue port.OrderQueue) {
	r.Register("orderPush", func(args any) (Command, error) {
		var a OrderPushArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return Func(func(ctx context.Context) (any, error) {
			return queue.Push(ctx, a.SongID, a.Difficulty)
		}), nil
	})

	r.Register("orderAmbiguousPush", func(args any) (Command, error) {
		var a OrderAmbiguousPushArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return Func(func(ctx context.Context) (any, error) {
			return queue.PushAmbiguous(ctx, a.Candidates, a.Difficulty)
		}), nil
	})

	r.Register("orderConfirm", func(args any) (Command, error) {
		var a OrderConfirmArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return Func(func(ctx context.Context) (any, error) {
			return nil, queue.Confirm(ctx, a.OrderID, a.SongIDIndex)
		}), nil
	})

	r.Register("orderComplete", func(args any) (Command, error) {
		var a OrderCompleteArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return Func(func(ctx context.Context) (any, error) {
			return nil, queue.Complete(ctx, a.OrderID)
		}), nil
	})

	r.Register("orderRemove", func(args any) (Command, error) {
		var a OrderRemoveArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return Func(func(ctx context.Context) (any, error) {
			return nil, queue.Remove(ctx, a.OrderID)
		}), nil
	})

	r.Register("orderMove", func(args any) (Command, error) {
		var a OrderMoveArgs
		if err := DecodeArgs(args, &a); err != nil {
			return nil, err
		}
		return Func(func(ctx context.Context) (any, error) {
			return nil, queue.Move(ctx, a.OrderID, a.NewIndex)
		}), nil
	})
}
