package chat

import (
	"context"
	"strconv"

	"setlist/internal/core/port"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog/log"
)

// Handler receives one inbound chat event.
type Handler func(ctx context.Context, event port.ChatEvent)

// Telegram feeds messages from a Telegram group into the chat router,
// so a chat room can drive the request queue the same way live-stream
// chat does. Admin ids come from config; there is no
// privileged-viewer notion on this transport.
type Telegram struct {
	bot *bot.Bot
}

func NewTelegram(token string, adminIDs []int64, handler Handler) (*Telegram, error) {
	admins := make(map[int64]bool, len(adminIDs))
	for _, id := range adminIDs {
		admins[id] = true
	}

	b, err := bot.New(token, bot.WithDefaultHandler(newUpdateHandler(admins, handler)))
	if err != nil {
		return nil, err
	}

	return &Telegram{bot: b}, nil
}

func newUpdateHandler(admins map[int64]bool, handler Handler) bot.HandlerFunc {
	return func(ctx context.Context, _ *bot.Bot, update *models.Update) {
		event, ok := toChatEvent(update, admins)
		if !ok {
			return
		}
		handler(ctx, event)
	}
}

// toChatEvent converts one bot update into a chat event. Updates that
// carry no message or no sender are skipped.
func toChatEvent(update *models.Update, admins map[int64]bool) (port.ChatEvent, bool) {
	if update == nil || update.Message == nil || update.Message.From == nil {
		return port.ChatEvent{}, false
	}

	return port.ChatEvent{
		UserID: strconv.FormatInt(update.Message.From.ID, 10),
		Text:   update.Message.Text,
		Admin:  admins[update.Message.From.ID],
	}, true
}

// Start blocks polling for updates until the context is canceled.
func (t *Telegram) Start(ctx context.Context) {
	log.Info().Msg("telegram chat source listening")
	t.bot.Start(ctx)
}
