package bot

import (
	"context"
	"log/slog"

	"github.com/UnknownOlympus/hestia/internal/notify"
	"github.com/UnknownOlympus/hestia/internal/undo"
	"gopkg.in/telebot.v4"
)

// actionUnique routes the inline button of a notice.
const actionUnique = "notice_action"

// Sender is the part of the Telegram API used to show notices.
type Sender interface {
	Send(to telebot.Recipient, what any, opts ...any) (*telebot.Message, error)
	EditReplyMarkup(msg telebot.Editable, markup *telebot.ReplyMarkup) (*telebot.Message, error)
}

// noticeKeys maps the notice texts and action labels to catalog keys.
var noticeKeys = map[string]string{
	notify.MsgRateLimited:  "notice.rate_limited",
	notify.MsgLoadFailed:   "notice.load_failed",
	notify.MsgAddFailed:    "notice.add_failed",
	notify.MsgAdded:        "notice.added",
	notify.MsgUpdateFailed: "notice.update_failed",
	notify.MsgUpdated:      "notice.updated",
	notify.MsgDeleted:      "notice.deleted",
	notify.MsgDeleteFailed: "notice.delete_failed",
	notify.MsgDeleteDone:   "notice.delete_done",
	notify.MsgRestored:     "notice.restored",
	notify.MsgImported:     "notice.imported",
	notify.MsgImportFailed: "notice.import_failed",
	notify.MsgExported:     "notice.exported",
	notify.MsgExportFailed: "notice.export_failed",
	notify.ActionUndo:      "notice.undo",
}

// chatNotifier shows notices as messages in one chat. A notice action becomes
// an inline button that is removed when the notice duration ends.
type chatNotifier struct {
	translate func(text string) string
	sender    Sender
	chat      telebot.Recipient
	actions   *ActionRegistry
	scheduler undo.Scheduler
	log       *slog.Logger
}

func newChatNotifier(
	sender Sender,
	chat telebot.Recipient,
	actions *ActionRegistry,
	scheduler undo.Scheduler,
	log *slog.Logger,
	translate func(text string) string,
) *chatNotifier {
	if scheduler == nil {
		scheduler = undo.RealScheduler{}
	}
	if translate == nil {
		translate = func(text string) string { return text }
	}
	return &chatNotifier{
		translate: translate,
		sender:    sender,
		chat:      chat,
		actions:   actions,
		scheduler: scheduler,
		log:       log,
	}
}

func (n *chatNotifier) Notify(ctx context.Context, notice notify.Notice) {
	text := levelIcon(notice.Level) + " " + n.translate(notice.Text)

	if notice.Action == nil {
		if _, err := n.sender.Send(n.chat, text); err != nil {
			n.log.ErrorContext(ctx, "Failed to send notice", "chat", n.chat.Recipient(), "error", err)
		}
		return
	}

	token := n.actions.Register(notice.Action.Run)
	markup := &telebot.ReplyMarkup{}
	markup.Inline(markup.Row(markup.Data(n.translate(notice.Action.Label), actionUnique, token)))

	msg, err := n.sender.Send(n.chat, text, markup)
	if err != nil {
		n.actions.Drop(token)
		n.log.ErrorContext(ctx, "Failed to send notice", "chat", n.chat.Recipient(), "error", err)
		return
	}

	n.scheduler.AfterFunc(notice.Duration, func() {
		if _, ok := n.actions.Take(token); !ok {
			return
		}
		if _, err := n.sender.EditReplyMarkup(msg, nil); err != nil {
			n.log.Debug("Failed to remove expired notice button", "chat", n.chat.Recipient(), "error", err)
		}
	})
}

func levelIcon(level notify.Level) string {
	switch level {
	case notify.LevelSuccess:
		return "✅"
	case notify.LevelError:
		return "❌"
	default:
		return "ℹ️"
	}
}
