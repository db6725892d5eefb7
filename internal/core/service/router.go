package service

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"setlist/internal/core/domain/command"
	"setlist/internal/core/port"

	"github.com/rs/zerolog/log"
)

// ChatRouter turns live-chat events into registry invocations. It
// tracks at most one pending disambiguation per chat user: a bare
// number from a user with a pending ambiguous order confirms that
// order, and a new ambiguous request evicts the user's previous one.
type ChatRouter struct {
	parser *Parser
	runner port.CommandRunner

	mu      sync.Mutex
	pending map[string]string
}

func NewChatRouter(parser *Parser, runner port.CommandRunner) *ChatRouter {
	return &ChatRouter{
		parser:  parser,
		runner:  runner,
		pending: make(map[string]string),
	}
}

// Handle processes one chat event. Parse failures are logged and
// silently dropped; chat has no back-channel besides the queue itself.
func (r *ChatRouter) Handle(ctx context.Context, event port.ChatEvent) {
	text := strings.TrimSpace(event.Text)
	log.Debug().Str("user", event.UserID).Str("text", text).Msg("chat message received")

	if choice, err := strconv.Atoi(text); err == nil {
		r.confirmPending(ctx, event.UserID, choice)
		return
	}

	parsed, err := r.parser.Parse(text)
	if err != nil {
		log.Debug().Err(err).Str("user", event.UserID).Msg("not a queue command")
		return
	}

	log.Info().Str("user", event.UserID).Str("action", parsed.Action).Msg("chat command")

	switch parsed.Action {
	case "orderPush":
		result := r.runner.Run(ctx, parsed.Action, parsed.Args)
		if result.Success && event.Privileged {
			r.pinToFront(ctx, result.Data)
		}
	case "orderAmbiguousPush":
		result := r.runner.Run(ctx, parsed.Action, parsed.Args)
		if !result.Success {
			return
		}
		orderID, _ := result.Data.(string)
		r.trackPending(ctx, event.UserID, orderID)
		if event.Privileged {
			r.pinToFront(ctx, result.Data)
		}
	case "orderRemove", "orderMove":
		if event.Admin {
			r.runner.Run(ctx, parsed.Action, parsed.Args)
		}
	}
}

func (r *ChatRouter) confirmPending(ctx context.Context, userID string, choice int) {
	r.mu.Lock()
	orderID, ok := r.pending[userID]
	r.mu.Unlock()
	if !ok {
		return
	}

	result := r.runner.Run(ctx, "orderConfirm", command.OrderConfirmArgs{
		OrderID:     orderID,
		SongIDIndex: choice - 1,
	})
	if result.Success {
		r.mu.Lock()
		delete(r.pending, userID)
		r.mu.Unlock()
	}
}

// trackPending records the user's new ambiguous order, evicting any
// previous one they left unconfirmed.
func (r *ChatRouter) trackPending(ctx context.Context, userID, orderID string) {
	r.mu.Lock()
	previous, hadPrevious := r.pending[userID]
	r.pending[userID] = orderID
	r.mu.Unlock()

	if hadPrevious {
		r.runner.Run(ctx, "orderRemove", command.OrderRemoveArgs{OrderID: previous})
	}
}

func (r *ChatRouter) pinToFront(ctx context.Context, data any) {
	orderID, ok := data.(string)
	if !ok {
		return
	}
	r.runner.Run(ctx, "orderMove", command.OrderMoveArgs{OrderID: orderID, NewIndex: 0})
}

// ConsoleRouter routes local console lines through the same parser and
// registry as chat, with a single pending-disambiguation slot.
type ConsoleRouter struct {
	parser *Parser
	runner port.CommandRunner

	mu      sync.Mutex
	pending string
}

func NewConsoleRouter(parser *Parser, runner port.CommandRunner) *ConsoleRouter {
	return &ConsoleRouter{parser: parser, runner: runner}
}

// HandleLine processes one console line.
func (r *ConsoleRouter) HandleLine(ctx context.Context, line string) {
	text := strings.TrimSpace(line)
	if text == "" {
		return
	}

	if choice, err := strconv.Atoi(text); err == nil {
		r.mu.Lock()
		orderID := r.pending
		r.mu.Unlock()
		if orderID == "" {
			return
		}
		result := r.runner.Run(ctx, "orderConfirm", command.OrderConfirmArgs{
			OrderID:     orderID,
			SongIDIndex: choice - 1,
		})
		if result.Success {
			r.mu.Lock()
			r.pending = ""
			r.mu.Unlock()
		}
		return
	}

	parsed, err := r.parser.Parse(text)
	if err != nil {
		log.Debug().Err(err).Msg("not a console command")
		return
	}

	log.Info().Str("action", parsed.Action).Msg("console command")

	result := r.runner.Run(ctx, parsed.Action, parsed.Args)
	if parsed.Action == "orderAmbiguousPush" && result.Success {
		if orderID, ok := result.Data.(string); ok {
			r.mu.Lock()
			r.pending = orderID
			r.mu.Unlock()
		}
	}
}
