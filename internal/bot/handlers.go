package bot

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/telebot.v4"
	"gopkg.in/telebot.v4/react"
)

// maxUploadSize bounds the workbooks accepted for import.
const maxUploadSize = 10 << 20

// exportFileName is the name of exported workbooks.
const exportFileName = "employees.xlsx"

// sessionAction runs one command against a session with the command payload.
type sessionAction func(s *Session, ctx context.Context, arg string) (string, error)

// noArg adapts a session method that takes no argument.
func noArg(run func(*Session, context.Context) (string, error)) sessionAction {
	return func(s *Session, ctx context.Context, _ string) (string, error) {
		return run(s, ctx)
	}
}

// local adapts a session method that never calls the backend.
func local(run func(*Session) string) sessionAction {
	return func(s *Session, _ context.Context, _ string) (string, error) {
		return run(s), nil
	}
}

// pageCommand answers with the rendered page and the pager buttons.
func (b *Bot) pageCommand(action sessionAction) telebot.HandlerFunc {
	return b.command(action, true)
}

// textCommand answers with plain text.
func (b *Bot) textCommand(action sessionAction) telebot.HandlerFunc {
	return b.command(action, false)
}

func (b *Bot) command(action sessionAction, pager bool) telebot.HandlerFunc {
	return func(tCtx telebot.Context) error {
		timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		session := b.session(tCtx)
		text, err := action(session, timeoutCtx, payload(tCtx))
		if err != nil {
			// The failure notice was already sent by the session notifier.
			b.log.WarnContext(timeoutCtx, "Command failed", "chat", tCtx.Chat().ID, "text", tCtx.Text(), "error", err)
			return nil
		}

		if pager {
			return tCtx.Send(text, b.pagerOpts(session)...)
		}
		return tCtx.Send(text)
	}
}

// payload is the text after the command, empty for menu buttons.
func payload(tCtx telebot.Context) string {
	msg := tCtx.Message()
	if msg == nil || !strings.HasPrefix(msg.Text, "/") {
		return ""
	}
	return msg.Payload
}

// startHandler process command /start.
func (b *Bot) startHandler(tCtx telebot.Context) error {
	b.log.Info("User started the bot", "id", tCtx.Sender().ID, "username", tCtx.Sender().Username)

	session := b.session(tCtx)
	return tCtx.Send(session.T("welcome"), b.buildMainMenu(session))
}

// helpHandler lists the commands.
func (b *Bot) helpHandler(tCtx telebot.Context) error {
	return tCtx.Send(b.session(tCtx).T("help"), telebot.ModeMarkdown)
}

// exportHandler sends the server workbook, or with "/export page" a workbook
// built from the loaded page.
func (b *Bot) exportHandler(tCtx telebot.Context) error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session := b.session(tCtx)
	pageOnly := strings.EqualFold(strings.TrimSpace(payload(tCtx)), "page")

	exportFn, caption := session.Export, ""
	if pageOnly {
		exportFn, caption = session.ExportPage, session.T("export.local.caption")
	}

	buf, err := exportFn(timeoutCtx)
	if err != nil {
		b.log.WarnContext(timeoutCtx, "Export failed", "chat", tCtx.Chat().ID, "page_only", pageOnly, "error", err)
		if pageOnly {
			return tCtx.Send(session.T("error.internal"))
		}
		return nil
	}

	return tCtx.Send(&telebot.Document{
		File:     telebot.FromReader(buf),
		FileName: exportFileName,
		Caption:  caption,
	})
}

// routeTextHandler routes menu buttons to their commands and form lines to the open form.
func (b *Bot) routeTextHandler(tCtx telebot.Context) error {
	text := tCtx.Text()

	if command, ok := menuCommand(b.localizer, text); ok {
		if handler, exists := b.commands[command]; exists {
			return handler(tCtx)
		}
	}

	session := b.session(tCtx)
	if session.FormOpen() {
		return tCtx.Send(session.Input(text))
	}

	return tCtx.Reply(session.T("text.unexpected"))
}

// documentHandler previews an uploaded workbook and asks for confirmation.
func (b *Bot) documentHandler(tCtx telebot.Context) error {
	session := b.session(tCtx)
	doc := tCtx.Message().Document

	if !strings.EqualFold(filepath.Ext(doc.FileName), ".xlsx") || doc.FileSize > maxUploadSize {
		return tCtx.Reply(session.T("import.not_xlsx"))
	}

	reader, err := b.bot.File(&doc.File)
	if err != nil {
		b.log.Error("Failed to download uploaded workbook", "file", doc.FileName, "error", err)
		return tCtx.Send(session.T("error.internal"))
	}
	defer reader.Close()

	data, err := io.ReadAll(io.LimitReader(reader, maxUploadSize))
	if err != nil {
		b.log.Error("Failed to read uploaded workbook", "file", doc.FileName, "error", err)
		return tCtx.Send(session.T("error.internal"))
	}

	text, ok := session.Preview(doc.FileName, data)
	if !ok {
		_ = tCtx.Bot().React(tCtx.Recipient(), tCtx.Message(), react.React(react.ThumbDown))
		return tCtx.Reply(text)
	}
	return tCtx.Reply(text, b.buildImportMenu(session))
}

// pagerHandler moves between pages and edits the page message in place.
func (b *Bot) pagerHandler(tCtx telebot.Context) error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session := b.session(tCtx)
	move := session.Next
	if tCtx.Callback().Unique == btnPagePrev.Unique {
		move = session.Prev
	}

	text, err := move(timeoutCtx)
	_ = tCtx.Respond()
	if err != nil {
		b.log.WarnContext(timeoutCtx, "Page change failed", "chat", tCtx.Chat().ID, "error", err)
		return nil
	}

	if err = tCtx.Edit(text, b.pagerOpts(session)...); err != nil {
		// Editing to identical content is refused by Telegram.
		b.log.DebugContext(timeoutCtx, "Failed to edit page message", "error", err)
	}
	return nil
}

// importConfirmHandler uploads the previewed workbook.
func (b *Bot) importConfirmHandler(tCtx telebot.Context) error {
	timeoutCtx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	session := b.session(tCtx)
	_ = tCtx.Respond()
	b.removeButtons(tCtx)

	text, err := session.ConfirmImport(timeoutCtx)
	if err != nil {
		b.log.WarnContext(timeoutCtx, "Import failed", "chat", tCtx.Chat().ID, "error", err)
		return nil
	}
	return tCtx.Send(text, b.pagerOpts(session)...)
}

// importCancelHandler drops the previewed workbook.
func (b *Bot) importCancelHandler(tCtx telebot.Context) error {
	session := b.session(tCtx)
	_ = tCtx.Respond()
	b.removeButtons(tCtx)

	return tCtx.Send(session.CancelImport())
}

// noticeActionHandler runs the action of a notice button, e.g. Undo.
func (b *Bot) noticeActionHandler(tCtx telebot.Context) error {
	run, ok := b.actions.Take(tCtx.Callback().Data)
	if !ok {
		_ = tCtx.Respond(&telebot.CallbackResponse{Text: b.session(tCtx).T("action.expired")})
		b.removeButtons(tCtx)
		return nil
	}

	_ = tCtx.Respond()
	b.removeButtons(tCtx)
	run()
	return nil
}

func (b *Bot) removeButtons(tCtx telebot.Context) {
	if msg := tCtx.Callback().Message; msg != nil {
		if _, err := b.bot.EditReplyMarkup(msg, nil); err != nil {
			b.log.Debug("Failed to remove inline buttons", "error", err)
		}
	}
}
