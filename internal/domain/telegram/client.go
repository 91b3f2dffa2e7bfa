package telegram

import (
	"context"

	"gopkg.in/telebot.v3"
)

// Client delivers one direct message to a Telegram user. Implementations may block
// on a shared rate limit and must return ctx.Err() once ctx is cancelled.
// A nil options value sends plain text.
type Client interface {
	SendMessage(ctx context.Context, recipientUserID int64, text string, options *telebot.SendOptions) error
}
