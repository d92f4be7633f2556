// Package telegram connects the counting router to the Telegram Bot API.
package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"kazoeru/internal/command"
	"kazoeru/internal/matcher"
	"kazoeru/internal/praise"
	"kazoeru/internal/storage"
)

const queueSize = 64

type Bot struct {
	api    client
	self   tgbotapi.User
	router *command.Router
	logger *zap.Logger

	mu     sync.Mutex
	queues map[int64]chan *tgbotapi.Message
	wg     sync.WaitGroup
}

func New(botToken string, debug bool, router *command.Router, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	logger.Info("authorized on telegram", zap.String("username", api.Self.UserName), zap.Int64("id", api.Self.ID))
	return newBot(api, api.Self, router, logger), nil
}

func newBot(api client, self tgbotapi.User, router *command.Router, logger *zap.Logger) *Bot {
	return &Bot{
		api:    api,
		self:   self,
		router: router,
		logger: logger,
		queues: make(map[int64]chan *tgbotapi.Message),
	}
}

// Start consumes updates until ctx is cancelled. Messages of one chat are handled
// in arrival order; different chats are handled concurrently.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.dispatch(ctx, update.Message)
			}
		}
	}
}

// dispatch hands msg to its chat's worker, starting one on first use.
// Workers live until ctx is cancelled.
func (b *Bot) dispatch(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	b.mu.Lock()
	q, ok := b.queues[chatID]
	if !ok {
		q = make(chan *tgbotapi.Message, queueSize)
		b.queues[chatID] = q
		b.wg.Add(1)
		go b.work(ctx, q)
	}
	b.mu.Unlock()

	select {
	case q <- msg:
	case <-ctx.Done():
	}
}

func (b *Bot) work(ctx context.Context, q <-chan *tgbotapi.Message) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-q:
			b.handleIncomingMessage(ctx, msg)
		}
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	in := command.Message{
		ChannelID:   strconv.FormatInt(msg.Chat.ID, 10),
		AuthorID:    strconv.FormatInt(msg.From.ID, 10),
		AuthorIsBot: msg.From.IsBot,
		Text:        msg.Text,
		MentionsBot: b.mentionsBot(msg),
	}

	res, err := b.router.Route(ctx, in)
	if err != nil {
		b.logger.Error("failed to handle message",
			zap.String("rule", res.Rule),
			zap.String("kind", errorKind(err)),
			zap.Int64("chat", msg.Chat.ID),
			zap.Int64("user", msg.From.ID),
			zap.Int("message_id", msg.MessageID),
			zap.Error(err))
		return
	}
	if res.Rule != "" {
		b.logger.Debug("message routed",
			zap.String("rule", res.Rule),
			zap.Int64("chat", msg.Chat.ID),
			zap.Int64("user", msg.From.ID),
			zap.Bool("reply", res.HasReply))
	}
	if !res.HasReply {
		return
	}
	b.reply(msg, res.Reply.Text)
}

// mentionsBot reports whether an @username entity names the bot or a
// text_mention entity points at it.
func (b *Bot) mentionsBot(msg *tgbotapi.Message) bool {
	if len(msg.Entities) == 0 {
		return false
	}
	var text []uint16
	for _, e := range msg.Entities {
		switch e.Type {
		case "text_mention":
			if e.User != nil && e.User.ID == b.self.ID {
				return true
			}
		case "mention":
			if b.self.UserName == "" {
				continue
			}
			if text == nil {
				text = utf16.Encode([]rune(msg.Text))
			}
			// entity offsets count UTF-16 code units
			if e.Offset < 0 || e.Length <= 0 || e.Offset+e.Length > len(text) {
				continue
			}
			name := string(utf16.Decode(text[e.Offset : e.Offset+e.Length]))
			if strings.EqualFold(strings.TrimPrefix(name, "@"), b.self.UserName) {
				return true
			}
		}
	}
	return false
}

func (b *Bot) reply(to *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(to.Chat.ID, text)
	out.ReplyToMessageID = to.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.logger.Warn("failed to send reply",
			zap.Int64("chat", to.Chat.ID),
			zap.Int("message_id", to.MessageID),
			zap.Error(err))
	}
}

// SendText posts text to a chat without replying to anything.
func (b *Bot) SendText(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, storage.ErrStorage):
		return "storage"
	case errors.Is(err, praise.ErrConfig):
		return "config"
	case errors.Is(err, matcher.ErrFormat):
		return "format"
	default:
		return "unknown"
	}
}
