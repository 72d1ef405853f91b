package bot

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/UnknownOlympus/hestia/internal/i18n"
	"github.com/UnknownOlympus/hestia/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v4"
)

type sentMessage struct {
	text   string
	markup *telebot.ReplyMarkup
}

// fakeSender records what would be sent to Telegram.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMessage
	edited  []telebot.Editable
	sendErr error
}

func (s *fakeSender) Send(_ telebot.Recipient, what any, opts ...any) (*telebot.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sendErr != nil {
		return nil, s.sendErr
	}

	msg := sentMessage{text: what.(string)}
	for _, opt := range opts {
		if markup, ok := opt.(*telebot.ReplyMarkup); ok {
			msg.markup = markup
		}
	}
	s.sent = append(s.sent, msg)
	return &telebot.Message{ID: len(s.sent), Chat: &telebot.Chat{ID: 1}}, nil
}

func (s *fakeSender) EditReplyMarkup(msg telebot.Editable, _ *telebot.ReplyMarkup) (*telebot.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.edited = append(s.edited, msg)
	return nil, nil
}

func TestChatNotifier_Plain(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	actions := NewActionRegistry()
	scheduler := &fakeScheduler{}
	notifier := newChatNotifier(sender, &telebot.Chat{ID: 1}, actions, scheduler, discardLogger(), nil)

	notifier.Notify(context.Background(), notify.Error(notify.MsgLoadFailed))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "❌ "+notify.MsgLoadFailed, sender.sent[0].text)
	assert.Nil(t, sender.sent[0].markup)
	assert.Zero(t, scheduler.Len(), "plain notices stay in the chat")
}

func TestChatNotifier_Action(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	actions := NewActionRegistry()
	scheduler := &fakeScheduler{}
	notifier := newChatNotifier(sender, &telebot.Chat{ID: 1}, actions, scheduler, discardLogger(), nil)

	ran := 0
	notifier.Notify(context.Background(), notify.Notice{
		Level:    notify.LevelSuccess,
		Text:     notify.MsgDeleted,
		Duration: 5 * time.Second,
		Action:   &notify.Action{Label: notify.ActionUndo, Run: func() { ran++ }},
	})

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "✅ "+notify.MsgDeleted, sender.sent[0].text)
	require.NotNil(t, sender.sent[0].markup)

	button := sender.sent[0].markup.InlineKeyboard[0][0]
	assert.Equal(t, notify.ActionUndo, button.Text)
	assert.Equal(t, actionUnique, button.Unique)
	assert.Equal(t, 1, actions.Len())

	t.Run("button runs once", func(t *testing.T) {
		run, ok := actions.Take(button.Data)
		require.True(t, ok)
		run()
		assert.Equal(t, 1, ran)

		_, ok = actions.Take(button.Data)
		assert.False(t, ok)
	})

	t.Run("expiry after use keeps the message", func(t *testing.T) {
		require.Equal(t, 1, scheduler.Len())
		assert.Equal(t, 5*time.Second, scheduler.Timer(0).delay)

		scheduler.Timer(0).Fire()
		assert.Empty(t, sender.edited)
	})
}

func TestChatNotifier_ActionExpires(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	actions := NewActionRegistry()
	scheduler := &fakeScheduler{}
	notifier := newChatNotifier(sender, &telebot.Chat{ID: 1}, actions, scheduler, discardLogger(), nil)

	notifier.Notify(context.Background(), notify.Notice{
		Text:   notify.MsgDeleted,
		Action: &notify.Action{Label: notify.ActionUndo, Run: func() {}},
	})
	scheduler.Timer(0).Fire()

	assert.Zero(t, actions.Len())
	require.Len(t, sender.edited, 1)
}

func TestChatNotifier_SessionLanguage(t *testing.T) {
	t.Parallel()

	loc := testLocalizer(t)
	session := &Session{loc: loc, lang: "uk"}
	sender := &fakeSender{}
	notifier := newChatNotifier(
		sender, &telebot.Chat{ID: 1}, NewActionRegistry(), &fakeScheduler{}, discardLogger(), session.NoticeText,
	)

	notifier.Notify(context.Background(), notify.Notice{
		Level:    notify.LevelSuccess,
		Text:     notify.MsgDeleted,
		Duration: 5 * time.Second,
		Action:   &notify.Action{Label: notify.ActionUndo, Run: func() {}},
	})
	notifier.Notify(context.Background(), notify.Error(notify.MsgRateLimited))
	notifier.Notify(context.Background(), notify.Error("Email already exists"))

	require.Len(t, sender.sent, 3)
	assert.Equal(t, "✅ "+loc.Get("uk", "notice.deleted"), sender.sent[0].text)
	assert.NotContains(t, sender.sent[0].text, notify.MsgDeleted)
	assert.Equal(t, loc.Get("uk", "notice.undo"), sender.sent[0].markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "❌ "+loc.Get("uk", "notice.rate_limited"), sender.sent[1].text)
	assert.Equal(t, "❌ Email already exists", sender.sent[2].text, "server messages pass through")

	t.Run("follows language switch", func(t *testing.T) {
		session.SetLang("en")
		notifier.Notify(context.Background(), notify.Success(notify.MsgRestored))
		assert.Equal(t, "✅ "+loc.Get("en", "notice.restored"), sender.sent[3].text)
	})
}

func TestNoticeKeysInCatalogs(t *testing.T) {
	t.Parallel()

	loc := testLocalizer(t)
	for text, key := range noticeKeys {
		for _, lang := range i18n.Languages {
			assert.NotEqual(t, key, loc.Get(lang, key), "%q has no %s text", text, lang)
		}
	}
}

func TestChatNotifier_SendFailure(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{sendErr: errors.New("chat not found")}
	actions := NewActionRegistry()
	scheduler := &fakeScheduler{}
	notifier := newChatNotifier(sender, &telebot.Chat{ID: 1}, actions, scheduler, discardLogger(), nil)

	notifier.Notify(context.Background(), notify.Notice{
		Text:   notify.MsgDeleted,
		Action: &notify.Action{Label: notify.ActionUndo, Run: func() {}},
	})

	assert.Zero(t, actions.Len())
	assert.Zero(t, scheduler.Len())
}

func TestActionRegistry(t *testing.T) {
	t.Parallel()

	registry := NewActionRegistry()
	first := registry.Register(func() {})
	second := registry.Register(func() {})
	assert.NotEqual(t, first, second)
	assert.LessOrEqual(t, len(first), 64)
	assert.Equal(t, 2, registry.Len())

	registry.Drop(first)
	_, ok := registry.Take(first)
	assert.False(t, ok)

	_, ok = registry.Take(second)
	assert.True(t, ok)
	assert.Zero(t, registry.Len())
}
