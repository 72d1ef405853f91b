package bot

import (
	"github.com/UnknownOlympus/hestia/internal/i18n"
	"gopkg.in/telebot.v4"
)

// languageHandler handles the language selection request from the user.
// It presents the user with a menu to choose their preferred language.
func (b *Bot) languageHandler(tCtx telebot.Context) error {
	session := b.session(tCtx)
	return tCtx.Send(session.T("language.select"), b.buildLanguageMenu(session))
}

// languageChangeHandler switches the session language and sends the
// keyboard again with the new labels.
func (b *Bot) languageChangeHandler(tCtx telebot.Context) error {
	session := b.session(tCtx)
	callbackData := tCtx.Callback().Unique
	b.log.Debug("User selected language", "callbackData", callbackData, "chat", tCtx.Chat().ID)

	var langCode string
	switch callbackData {
	case "language_en":
		langCode = "en"
	case "language_uk":
		langCode = "uk"
	default:
		b.log.Error("Unknown language callback", "data", callbackData)
		return tCtx.Respond(&telebot.CallbackResponse{Text: "Unknown language"})
	}

	session.SetLang(langCode)
	b.log.Info("User changed language", "chat", tCtx.Chat().ID, "language", langCode)

	_ = tCtx.Respond(&telebot.CallbackResponse{Text: "✅"})
	b.removeButtons(tCtx)
	return tCtx.Send(session.T("language.changed"), b.buildMainMenu(session))
}

func senderLang(sender *telebot.User) string {
	if sender == nil {
		return i18n.DefaultLanguage
	}
	return i18n.NormalizeLanguageCode(sender.LanguageCode)
}
