package bot

import "gopkg.in/telebot.v4"

// buildMainMenu creates the reply keyboard with translated text.
func (b *Bot) buildMainMenu(session *Session) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}

	rows := make([]telebot.Row, 0, len(mainMenu))
	for _, buttons := range mainMenu {
		row := make([]telebot.Btn, 0, len(buttons))
		for _, button := range buttons {
			row = append(row, menu.Text(session.T(button.TextKey)))
		}
		rows = append(rows, menu.Row(row...))
	}
	menu.Reply(rows...)

	return menu
}

// pagerOpts returns the send options of a page message: the inline pager when
// there is more than one page.
func (b *Bot) pagerOpts(session *Session) []any {
	if markup := buildPager(session); markup != nil {
		return []any{markup}
	}
	return nil
}

// buildPager creates the prev/next inline buttons, nil for a single page.
func buildPager(session *Session) *telebot.ReplyMarkup {
	page, pages := session.Pager()
	if pages <= 1 {
		return nil
	}

	menu := &telebot.ReplyMarkup{}
	var row []telebot.Btn
	if page > 1 {
		row = append(row, menu.Data(session.T("list.button.prev"), btnPagePrev.Unique))
	}
	if page < pages {
		row = append(row, menu.Data(session.T("list.button.next"), btnPageNext.Unique))
	}
	menu.Inline(menu.Row(row...))

	return menu
}

// buildImportMenu creates the confirmation buttons of an import preview.
func (b *Bot) buildImportMenu(session *Session) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(menu.Row(
		menu.Data(session.T("import.button.confirm"), btnImportConfirm.Unique),
		menu.Data(session.T("import.button.cancel"), btnImportCancel.Unique),
	))

	return menu
}

// buildLanguageMenu creates the language selection buttons.
func (b *Bot) buildLanguageMenu(session *Session) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data(session.T("language.button.english"), "language_en")),
		menu.Row(menu.Data(session.T("language.button.ukrainian"), "language_uk")),
	)

	return menu
}
