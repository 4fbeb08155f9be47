package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"dialoguebot/internal/dialogue"
	"dialoguebot/internal/escalation"
	"dialoguebot/internal/menu"
	"dialoguebot/internal/providers"
	"dialoguebot/internal/storage/stubs"
)

const (
	testChat  int64 = 456
	adminChat int64 = 999
)

// fakeSender records everything the bot sends to Telegram.
type fakeSender struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	raw      []string
	params   []tgbotapi.Params
	failSend func(tgbotapi.Chattable) error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend != nil {
		if err := f.failSend(c); err != nil {
			return tgbotapi.Message{}, err
		}
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.raw = append(f.raw, endpoint)
	f.params = append(f.params, params)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts returns the text of every message and edit sent to chatID, in order.
func (f *fakeSender) texts(chatID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			if m.ChatID == chatID {
				out = append(out, m.Text)
			}
		case tgbotapi.EditMessageTextConfig:
			if m.ChatID == chatID {
				out = append(out, m.Text)
			}
		}
	}
	return out
}

func (f *fakeSender) last() tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

func (f *fakeSender) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent, f.requests, f.raw, f.params = nil, nil, nil, nil
}

type gatewayFunc func(ctx context.Context, name, query string) ([]string, error)

func (g gatewayFunc) Invoke(ctx context.Context, name, query string) ([]string, error) {
	return g(ctx, name, query)
}

func defaultCatalog(t *testing.T) *menu.Catalog {
	t.Helper()
	c, err := menu.Default()
	require.NoError(t, err)
	return c
}

type testBot struct {
	*Bot
	sender  *fakeSender
	journal *stubs.MemoryJournal
	logs    *observer.ObservedLogs
}

func newTestBot(t *testing.T, gw Gateway, opts Options) *testBot {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	sender := &fakeSender{}
	journal := stubs.NewMemoryJournal()
	require.NoError(t, journal.Initialize(context.Background()))

	if gw == nil {
		gw = gatewayFunc(func(context.Context, string, string) ([]string, error) {
			t.Fatal("unexpected provider call")
			return nil, nil
		})
	}

	b := NewBot(sender, dialogue.NewMachine(defaultCatalog(t)), dialogue.NewStore(), gw, journal,
		escalation.New(logger, sender, adminChat), logger, opts)
	t.Cleanup(func() { _ = b.Shutdown(context.Background()) })

	return &testBot{Bot: b, sender: sender, journal: journal, logs: logs}
}

func commandUpdate(chatID int64, text string) tgbotapi.Update {
	cmdLen := len(strings.Fields(text)[0])
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: chatID},
		From:     &tgbotapi.User{ID: chatID},
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: cmdLen}},
	}}
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID},
		Text: text,
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: chatID},
		Message: &tgbotapi.Message{MessageID: 77, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func buttonLabels(markup tgbotapi.InlineKeyboardMarkup) []string {
	var labels []string
	for _, row := range markup.InlineKeyboard {
		for _, btn := range row {
			labels = append(labels, btn.Text)
			if btn.CallbackData != nil && *btn.CallbackData != btn.Text {
				labels = append(labels, "payload mismatch: "+*btn.CallbackData)
			}
		}
	}
	return labels
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		update tgbotapi.Update
		chat   int64
		event  dialogue.Event
		ok     bool
	}{
		{"start command", commandUpdate(1, "/start"), 1, dialogue.CommandEvent{Command: dialogue.CommandStart}, true},
		{"command with bot name", commandUpdate(1, "/help@some_bot"), 1, dialogue.CommandEvent{Command: dialogue.CommandHelp}, true},
		{"unknown command is text", commandUpdate(1, "/weather now"), 1, dialogue.TextEvent{Text: "/weather now"}, true},
		{"plain text", textUpdate(2, "Ann"), 2, dialogue.TextEvent{Text: "Ann"}, true},
		{"callback", callbackUpdate(3, "Get Live Scores"), 3, dialogue.CallbackEvent{Payload: "Get Live Scores"}, true},
		{"callback without message", tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
			ID: "x", From: &tgbotapi.User{ID: 4}, Data: "d",
		}}, 4, dialogue.CallbackEvent{Payload: "d"}, true},
		{"sticker", tgbotapi.Update{Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: 5}, Sticker: &tgbotapi.Sticker{FileID: "s"},
		}}, 5, dialogue.TextEvent{}, true},
		{"edited message", tgbotapi.Update{EditedMessage: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: 6}, Text: "edit",
		}}, 6, dialogue.UnrecognizedEvent{}, true},
		{"no chat", tgbotapi.Update{}, 0, dialogue.UnrecognizedEvent{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat, ev, ok := classify(tt.update)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.chat, chat)
			assert.Equal(t, tt.event, ev)
		})
	}
}

func TestHandleUpdate_FullDialogue(t *testing.T) {
	var calls []string
	gw := gatewayFunc(func(_ context.Context, name, query string) ([]string, error) {
		calls = append(calls, name+"/"+query)
		return []string{"Movie 1:\nTitle: A\n", "Movie 2:\nTitle: B\n"}, nil
	})
	b := newTestBot(t, gw, Options{})
	ctx := context.Background()

	// /start switches the menu button and asks for a name.
	b.HandleUpdate(ctx, commandUpdate(testChat, "/start"))
	assert.Equal(t, []string{dialogue.PromptName}, b.sender.texts(testChat))
	require.Equal(t, []string{"setChatMenuButton"}, b.sender.raw)
	assert.Equal(t, commandsMenuButton, b.sender.params[0]["menu_button"])
	assert.Equal(t, fmt.Sprint(testChat), b.sender.params[0]["chat_id"])
	assert.Equal(t, dialogue.AwaitingName{}, b.store.Get(testChat))

	// The name leads to the topic keyboard.
	b.sender.reset()
	b.HandleUpdate(ctx, textUpdate(testChat, "  Ann  "))
	msg, ok := b.sender.last().(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, dialogue.PromptTopic, msg.Text)
	markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, defaultCatalog(t).TopOptions(), buttonLabels(markup))
	assert.Equal(t, dialogue.MenuSelection{Name: "Ann"}, b.store.Get(testChat))

	// Choosing a topic edits the message that carried the keyboard.
	b.sender.reset()
	b.HandleUpdate(ctx, callbackUpdate(testChat, "top trending movies"))
	require.Len(t, b.sender.requests, 1)
	answer, ok := b.sender.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-top trending movies", answer.CallbackQueryID)

	edit, ok := b.sender.last().(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 77, edit.MessageID)
	assert.Equal(t, dialogue.PromptSubOption, edit.Text)
	require.NotNil(t, edit.ReplyMarkup)
	subOptions, err := defaultCatalog(t).SubOptions("top trending movies")
	require.NoError(t, err)
	assert.Equal(t, subOptions, buttonLabels(*edit.ReplyMarkup))
	assert.Equal(t, dialogue.AwaitingMovieChoice{Name: "Ann"}, b.store.Get(testChat))

	// A sub-option relays the provider result with its header.
	b.sender.reset()
	b.HandleUpdate(ctx, callbackUpdate(testChat, "Popular Movie"))
	assert.Equal(t, []string{"movies/Popular Movie"}, calls)
	assert.Equal(t, []string{"Popular Movies", "Movie 1:\nTitle: A\n", "Movie 2:\nTitle: B\n"}, b.sender.texts(testChat))
	assert.Equal(t, dialogue.AwaitingMovieChoice{Name: "Ann"}, b.store.Get(testChat))

	transitions := b.journal.Transitions(testChat)
	require.Len(t, transitions, 4)
	assert.Equal(t, "command:start", transitions[0].Event)
	assert.True(t, transitions[0].Reset)
	assert.Equal(t, "menu_selection", transitions[1].ToState)
	assert.NotEmpty(t, transitions[0].TraceID)
	assert.NotEqual(t, transitions[0].TraceID, transitions[1].TraceID)

	pc := b.journal.ProviderCalls(testChat)
	require.Len(t, pc, 1)
	assert.Equal(t, "ok", pc[0].Outcome)
	assert.Equal(t, 2, pc[0].Blocks)
	assert.False(t, pc[0].Discarded)
}

func TestHandleUpdate_BogusTopicResetsSilently(t *testing.T) {
	b := newTestBot(t, nil, Options{})
	b.store.Set(testChat, dialogue.MenuSelection{Name: "Ann"})

	b.HandleUpdate(context.Background(), callbackUpdate(testChat, "Get weather"))

	assert.Empty(t, b.sender.texts(testChat))
	assert.Equal(t, dialogue.Start{}, b.store.Get(testChat))
	assert.Equal(t, 1, b.logs.FilterMessage("unrecognized service").Len())
}

func TestHandleUpdate_EditFailureFallsBackToNewMessage(t *testing.T) {
	b := newTestBot(t, nil, Options{})
	b.sender.failSend = func(c tgbotapi.Chattable) error {
		if _, ok := c.(tgbotapi.EditMessageTextConfig); ok {
			return errors.New("message to edit not found")
		}
		return nil
	}
	b.store.Set(testChat, dialogue.MenuSelection{Name: "Ann"})

	b.HandleUpdate(context.Background(), callbackUpdate(testChat, "Get Live Scores"))

	msg, ok := b.sender.last().(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, dialogue.PromptSubOption, msg.Text)
	assert.Equal(t, dialogue.AwaitingSoccerChoice{Name: "Ann"}, b.store.Get(testChat))
}

func TestHandleUpdate_ProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		state      dialogue.State
		payload    string
		err        error
		want       string
		wantState  dialogue.State
		wantReport bool
	}{
		{
			name:      "crypto not implemented",
			state:     dialogue.AwaitingCryptoChoice{Name: "Ann"},
			payload:   "BTC chart",
			err:       &providers.ServiceError{Provider: "crypto", Kind: providers.ErrNotImplemented},
			want:      dialogue.NotImplementedText,
			wantState: dialogue.AwaitingCryptoChoice{Name: "Ann"},
		},
		{
			name:      "soccer no data",
			state:     dialogue.AwaitingSoccerChoice{Name: "Ann"},
			payload:   "Current Live match",
			err:       &providers.ServiceError{Provider: "soccer", Kind: providers.ErrNoDataForQuery},
			want:      dialogue.NoDataText,
			wantState: dialogue.AwaitingSoccerChoice{Name: "Ann"},
		},
		{
			name:       "movies parse failure",
			state:      dialogue.AwaitingMovieChoice{Name: "Ann"},
			payload:    "Upcoming Movie",
			err:        &providers.ServiceError{Provider: "movies", Kind: providers.ErrUpstreamParseFailed, Detail: "<html>"},
			want:       dialogue.FetchFailedText,
			wantState:  dialogue.AwaitingMovieChoice{Name: "Ann"},
			wantReport: true,
		},
		{
			name:       "conversation failure resets",
			state:      dialogue.AwaitingPromptChoice{Context: "chat"},
			payload:    "hello",
			err:        &providers.ServiceError{Provider: "conversation", Kind: providers.ErrUpstreamRequestFailed, Status: 429},
			want:       dialogue.FetchFailedText,
			wantState:  dialogue.Start{},
			wantReport: true,
		},
		{
			name:       "missing credential",
			state:      dialogue.AwaitingMovieChoice{Name: "Ann"},
			payload:    "Popular Movie",
			err:        &providers.ServiceError{Provider: "movies", Kind: providers.ErrAuthConfigMissing},
			want:       dialogue.FetchFailedText,
			wantState:  dialogue.AwaitingMovieChoice{Name: "Ann"},
			wantReport: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := gatewayFunc(func(context.Context, string, string) ([]string, error) { return nil, tt.err })
			b := newTestBot(t, gw, Options{})
			b.store.Set(testChat, tt.state)

			b.HandleUpdate(context.Background(), callbackUpdate(testChat, tt.payload))

			assert.Equal(t, []string{tt.want}, b.sender.texts(testChat))
			assert.Equal(t, tt.wantState, b.store.Get(testChat))

			admin := b.sender.texts(adminChat)
			if tt.wantReport {
				require.Len(t, admin, 1)
				assert.Contains(t, admin[0], "Error in provider")
			} else {
				assert.Empty(t, admin)
			}
			assert.Equal(t, providers.KindName(tt.err), b.journal.ProviderCalls(testChat)[0].Outcome)
		})
	}
}

func TestHandleUpdate_StaleResultIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := gatewayFunc(func(context.Context, string, string) ([]string, error) {
		close(started)
		<-release
		return []string{"late block"}, nil
	})
	b := newTestBot(t, gw, Options{})
	b.store.Set(testChat, dialogue.AwaitingMovieChoice{Name: "Ann"})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.HandleUpdate(ctx, callbackUpdate(testChat, "Popular Movie"))
	}()

	<-started
	b.HandleUpdate(ctx, commandUpdate(testChat, "/cancel"))
	close(release)
	<-done

	texts := b.sender.texts(testChat)
	assert.Equal(t, []string{dialogue.CancelledText}, texts)
	assert.Equal(t, dialogue.Start{}, b.store.Get(testChat))

	pc := b.journal.ProviderCalls(testChat)
	require.Len(t, pc, 1)
	assert.True(t, pc[0].Discarded)
}

func TestHandleUpdate_FailedCallAfterResetKeepsNewDialogue(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := gatewayFunc(func(context.Context, string, string) ([]string, error) {
		close(started)
		<-release
		return nil, &providers.ServiceError{Provider: "conversation", Kind: providers.ErrUpstreamRequestFailed}
	})
	b := newTestBot(t, gw, Options{})
	b.store.Set(testChat, dialogue.AwaitingPromptChoice{Context: "chat"})
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		b.HandleUpdate(ctx, callbackUpdate(testChat, "hello"))
	}()

	<-started
	b.HandleUpdate(ctx, commandUpdate(testChat, "/start"))
	close(release)
	<-done

	assert.Equal(t, dialogue.AwaitingName{}, b.store.Get(testChat))
	assert.NotContains(t, b.sender.texts(testChat), dialogue.FetchFailedText)
}

func TestHandleUpdate_ProviderTimeout(t *testing.T) {
	gw := gatewayFunc(func(ctx context.Context, _, _ string) ([]string, error) {
		<-ctx.Done()
		return nil, &providers.ServiceError{Provider: "movies", Kind: providers.ErrUpstreamRequestFailed, Err: ctx.Err()}
	})
	b := newTestBot(t, gw, Options{ProviderTimeout: 20 * time.Millisecond})
	b.store.Set(testChat, dialogue.AwaitingMovieChoice{Name: "Ann"})

	b.HandleUpdate(context.Background(), callbackUpdate(testChat, "Popular Movie"))

	assert.Equal(t, []string{dialogue.FetchFailedText}, b.sender.texts(testChat))
}

func TestHandleUpdate_BlockCap(t *testing.T) {
	gw := gatewayFunc(func(context.Context, string, string) ([]string, error) {
		blocks := make([]string, 25)
		for i := range blocks {
			blocks[i] = fmt.Sprintf("block %d", i)
		}
		return blocks, nil
	})
	b := newTestBot(t, gw, Options{MaxResultBlocks: 3})
	b.store.Set(testChat, dialogue.AwaitingSoccerChoice{Name: "Ann"})

	b.HandleUpdate(context.Background(), callbackUpdate(testChat, "today event"))

	assert.Equal(t, []string{"Today's events:", "block 0", "block 1", "block 2"}, b.sender.texts(testChat))
}

func TestHandleUpdate_EmptyResult(t *testing.T) {
	gw := gatewayFunc(func(context.Context, string, string) ([]string, error) { return nil, nil })
	b := newTestBot(t, gw, Options{})
	b.store.Set(testChat, dialogue.AwaitingMovieChoice{Name: "Ann"})

	b.HandleUpdate(context.Background(), callbackUpdate(testChat, "Upcoming Movie"))

	assert.Equal(t, []string{dialogue.NoDataText}, b.sender.texts(testChat))
}

func TestHandleUpdate_PanicIsRecoveredAndReported(t *testing.T) {
	gw := gatewayFunc(func(context.Context, string, string) ([]string, error) { panic("boom") })
	b := newTestBot(t, gw, Options{})
	b.store.Set(testChat, dialogue.AwaitingMovieChoice{Name: "Ann"})

	assert.NotPanics(t, func() {
		b.HandleUpdate(context.Background(), callbackUpdate(testChat, "Popular Movie"))
	})

	admin := b.sender.texts(adminChat)
	require.Len(t, admin, 1)
	assert.Contains(t, admin[0], "panic: boom")
	msg := b.sender.last().(tgbotapi.MessageConfig)
	assert.True(t, msg.DisableNotification)
}

func TestHandleUpdate_SendFailureDoesNotEscape(t *testing.T) {
	b := newTestBot(t, nil, Options{})
	b.sender.failSend = func(tgbotapi.Chattable) error { return errors.New("bot was blocked by the user") }

	assert.NotPanics(t, func() {
		b.HandleUpdate(context.Background(), commandUpdate(testChat, "/help"))
	})
	assert.Equal(t, 1, b.logs.FilterMessage("Failed to send message").Len())
}

func TestHandleUpdate_UnrecognizedUpdate(t *testing.T) {
	b := newTestBot(t, nil, Options{})
	b.store.Set(testChat, dialogue.MenuSelection{Name: "Ann"})

	b.HandleUpdate(context.Background(), tgbotapi.Update{EditedMessage: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: testChat}, Text: "Anna",
	}})

	assert.Empty(t, b.sender.texts(testChat))
	assert.Equal(t, dialogue.MenuSelection{Name: "Ann"}, b.store.Get(testChat))
	assert.Equal(t, 1, b.logs.FilterMessage("received unknown update").Len())
}

func TestHandleUpdate_MessageWithoutText(t *testing.T) {
	photo := tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: testChat}, Photo: []tgbotapi.PhotoSize{{FileID: "p"}},
	}}

	t.Run("awaiting name asks again", func(t *testing.T) {
		b := newTestBot(t, nil, Options{})
		b.store.Set(testChat, dialogue.AwaitingName{})

		b.HandleUpdate(context.Background(), photo)

		assert.Equal(t, []string{dialogue.PromptNameAgain}, b.sender.texts(testChat))
		assert.Equal(t, dialogue.AwaitingName{}, b.store.Get(testChat))
	})

	t.Run("other states report invalid state", func(t *testing.T) {
		b := newTestBot(t, nil, Options{})
		b.store.Set(testChat, dialogue.MenuSelection{Name: "Ann"})

		b.HandleUpdate(context.Background(), photo)

		assert.Equal(t, []string{dialogue.InvalidStateText}, b.sender.texts(testChat))
		assert.Equal(t, dialogue.MenuSelection{Name: "Ann"}, b.store.Get(testChat))
	})
}

func TestHandleUpdate_LongReplyIsSplit(t *testing.T) {
	long := strings.Repeat("é", maxMessageLength+10)
	gw := gatewayFunc(func(context.Context, string, string) ([]string, error) { return []string{long}, nil })
	b := newTestBot(t, gw, Options{})
	b.store.Set(testChat, dialogue.AwaitingPromptChoice{Context: "chat"})

	b.HandleUpdate(context.Background(), callbackUpdate(testChat, "hi"))

	texts := b.sender.texts(testChat)
	require.Len(t, texts, 2)
	assert.Equal(t, long, texts[0]+texts[1])
}

func TestSplitMessage(t *testing.T) {
	assert.Equal(t, []string{"abc"}, splitMessage("abc", 3))
	assert.Equal(t, []string{"ab", "cd", "e"}, splitMessage("abcde", 2))
	assert.Equal(t, []string{""}, splitMessage("", 2))
}

func TestRegisterCommands(t *testing.T) {
	b := newTestBot(t, nil, Options{})
	require.NoError(t, b.RegisterCommands())

	require.Len(t, b.sender.requests, 1)
	cfg, ok := b.sender.requests[0].(tgbotapi.SetMyCommandsConfig)
	require.True(t, ok)
	require.Len(t, cfg.Commands, 3)
	assert.Equal(t, "help", cfg.Commands[0].Command)
	assert.Equal(t, "Display this text.", cfg.Commands[0].Description)
	assert.Equal(t, "cancel", cfg.Commands[2].Command)
}

func TestDispatch_ProcessesAndShutsDown(t *testing.T) {
	b := newTestBot(t, nil, Options{MaxConcurrentUpdates: 2})

	updates := make(chan tgbotapi.Update)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		b.Run(updates)
	}()

	for i := int64(1); i <= 5; i++ {
		updates <- commandUpdate(i, "/start")
	}
	close(updates)
	<-runDone

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, b.Shutdown(ctx))

	for i := int64(1); i <= 5; i++ {
		assert.Equal(t, dialogue.AwaitingName{}, b.store.Get(i), "chat %d", i)
	}
	assert.False(t, b.Dispatch(commandUpdate(1, "/help")))
}

func TestShutdown_TimesOutOnStuckUpdate(t *testing.T) {
	release := make(chan struct{})
	gw := gatewayFunc(func(ctx context.Context, _, _ string) ([]string, error) {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil, nil
	})
	b := newTestBot(t, gw, Options{ProviderTimeout: time.Minute})
	defer close(release)
	b.store.Set(testChat, dialogue.AwaitingMovieChoice{Name: "Ann"})

	require.True(t, b.Dispatch(callbackUpdate(testChat, "Popular Movie")))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := b.Shutdown(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebhookHandler(t *testing.T) {
	b := newTestBot(t, nil, Options{})
	h := b.WebhookHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, WebhookPath, nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := `{"update_id":1,"message":{"message_id":1,"date":0,"chat":{"id":456,"type":"private"},
		"text":"/start","entities":[{"type":"bot_command","offset":0,"length":6}]}}`
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, b.Shutdown(context.Background()))
	assert.Equal(t, dialogue.AwaitingName{}, b.store.Get(testChat))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, WebhookPath, strings.NewReader(body)))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
