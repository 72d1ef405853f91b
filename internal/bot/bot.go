package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/hestia/internal/i18n"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/notify"
	"gopkg.in/telebot.v4"
)

// requestTimeout bounds the backend calls made while handling one update.
const requestTimeout = 15 * time.Second

// Options configures the Telegram connection.
type Options struct {
	Token        string
	Poller       time.Duration
	AllowedUsers []int64 // Everyone may use the bot when empty
}

// Bot contains the bot API instance and other information.
type Bot struct {
	bot       *telebot.Bot
	log       *slog.Logger
	metrics   *metrics.Metrics
	sessions  *SessionManager
	actions   *ActionRegistry
	localizer *i18n.Localizer
	allowed   map[int64]struct{}
	commands  map[string]telebot.HandlerFunc
}

// NewBot creates a new bot with the given token. Every chat gets its own
// session built from deps.
func NewBot(log *slog.Logger, deps SessionDeps, opts Options) (*Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  opts.Token,
		Poller: &telebot.LongPoller{Timeout: opts.Poller},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}
	log.Info("Authorized on account", "account", bot.Me.Username)

	localizer, err := i18n.NewLocalizer()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize localizer: %w", err)
	}
	deps.Localizer = localizer

	botInstance := &Bot{
		bot:       bot,
		log:       log,
		metrics:   deps.Metrics,
		actions:   NewActionRegistry(),
		localizer: localizer,
		allowed:   make(map[int64]struct{}, len(opts.AllowedUsers)),
	}
	for _, id := range opts.AllowedUsers {
		botInstance.allowed[id] = struct{}{}
	}
	if len(botInstance.allowed) == 0 {
		log.Warn("No allowed users configured, the bot is open to everyone")
	}

	botInstance.sessions = NewSessionManager(func(chatID int64, lang string) *Session {
		log.Info("New chat session", "chat", chatID, "lang", lang)
		chatLog := log.With("chat", chatID)
		// Notices are only emitted by the session's controllers, after session is set.
		var session *Session
		notifier := notify.Multi{
			newChatNotifier(bot, &telebot.Chat{ID: chatID}, botInstance.actions, deps.Scheduler, chatLog,
				func(text string) string { return session.NoticeText(text) }),
			notify.NewLog(chatLog),
		}
		chatDeps := deps
		chatDeps.Log = chatLog
		session = NewSession(chatDeps, notifier, lang)
		return session
	})

	botInstance.registerRoutes()

	return botInstance, nil
}

// Start launches the bot to listen for updates.
func (b *Bot) Start() {
	b.log.Info("Telegram bot is starting...")
	b.bot.Start()
}

// Stop stops polling and commits the deletions still waiting for their undo window.
func (b *Bot) Stop(ctx context.Context) error {
	b.log.Info("Telegram bot is stopped...")
	b.bot.Stop()

	if err := b.sessions.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush pending deletes: %w", err)
	}
	return nil
}

// registerRoutes configures all routes (commands).
func (b *Bot) registerRoutes() {
	b.bot.Use(b.AccessMiddleware, b.MetricsMiddleware)

	b.commands = map[string]telebot.HandlerFunc{
		"/start":    b.startHandler,
		"/help":     b.helpHandler,
		"/list":     b.pageCommand(noArg((*Session).List)),
		"/next":     b.pageCommand(noArg((*Session).Next)),
		"/prev":     b.pageCommand(noArg((*Session).Prev)),
		"/page":     b.pageCommand((*Session).GoTo),
		"/size":     b.pageCommand((*Session).Resize),
		"/dept":     b.pageCommand((*Session).Department),
		"/status":   b.pageCommand((*Session).Status),
		"/sort":     b.pageCommand((*Session).Sort),
		"/search":   b.pageCommand((*Session).Search),
		"/delete":   b.pageCommand((*Session).Delete),
		"/undo":     b.pageCommand(local((*Session).Undo)),
		"/find":     b.textCommand((*Session).Find),
		"/show":     b.textCommand((*Session).Show),
		"/edit":     b.textCommand((*Session).Edit),
		"/save":     b.textCommand(noArg((*Session).Save)),
		"/new":      b.textCommand(local((*Session).NewForm)),
		"/cancel":   b.textCommand(local((*Session).Cancel)),
		"/stats":    b.textCommand(noArg((*Session).Stats)),
		"/export":   b.exportHandler,
		"/language": b.languageHandler,
	}
	for command, handler := range b.commands {
		b.bot.Handle(command, handler)
	}

	b.bot.Handle(telebot.OnText, b.routeTextHandler)
	b.bot.Handle(telebot.OnDocument, b.documentHandler)

	// Language selection callbacks
	b.bot.Handle("\flanguage_en", b.languageChangeHandler)
	b.bot.Handle("\flanguage_uk", b.languageChangeHandler)

	// Inline button callbacks
	b.bot.Handle(&btnPagePrev, b.pagerHandler)
	b.bot.Handle(&btnPageNext, b.pagerHandler)
	b.bot.Handle(&btnImportConfirm, b.importConfirmHandler)
	b.bot.Handle(&btnImportCancel, b.importCancelHandler)
	b.bot.Handle(&btnNoticeAction, b.noticeActionHandler)
}

// session returns the session of the chat the update came from.
func (b *Bot) session(tCtx telebot.Context) *Session {
	return b.sessions.Get(tCtx.Chat().ID, senderLang(tCtx.Sender()))
}
