package bot

import (
	"strings"

	"gopkg.in/telebot.v4"
)

// AccessMiddleware lets through only the configured Telegram users.
// Everyone is allowed when no user is configured.
func (b *Bot) AccessMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(tCtx telebot.Context) error {
		if len(b.allowed) == 0 {
			return next(tCtx)
		}

		sender := tCtx.Sender()
		if sender != nil {
			if _, ok := b.allowed[sender.ID]; ok {
				return next(tCtx)
			}
			b.log.Info("Access denied", "username", sender.Username, "id", sender.ID)
		}

		if tCtx.Callback() != nil {
			return tCtx.Respond(&telebot.CallbackResponse{
				Text:      b.localizer.Get(senderLang(sender), "access.denied"),
				ShowAlert: true,
			})
		}
		return tCtx.Send(b.localizer.Get(senderLang(sender), "access.denied"))
	}
}

// MetricsMiddleware counts the received commands and button presses.
func (b *Bot) MetricsMiddleware(next telebot.HandlerFunc) telebot.HandlerFunc {
	return func(tCtx telebot.Context) error {
		name := commandName(tCtx)
		if _, known := b.commands[name]; strings.HasPrefix(name, "/") && !known {
			name = "unknown"
		}
		b.metrics.CommandReceived(name)
		return next(tCtx)
	}
}

// commandName labels an update for metrics without unbounded values.
func commandName(tCtx telebot.Context) string {
	if callback := tCtx.Callback(); callback != nil {
		return "callback:" + strings.TrimPrefix(callback.Unique, "\f")
	}

	msg := tCtx.Message()
	switch {
	case msg == nil:
		return "other"
	case msg.Document != nil:
		return "document"
	case strings.HasPrefix(msg.Text, "/"):
		command, _, _ := strings.Cut(msg.Text, " ")
		command, _, _ = strings.Cut(command, "@")
		return command
	default:
		return "text"
	}
}
