package channels

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/config/channel"
)

// telegramMaxLen is Telegram's per-message text limit (in characters).
const telegramMaxLen = 4000

// TelegramChannel implements the Telegram bot via long polling. Group and
// supergroup chats share one conversation per chat; private chats are keyed
// by the sender.
type TelegramChannel struct {
	Base
	cfg *channel.TelegramConfig
	bot *tgbotapi.BotAPI
}

// NewTelegramChannel creates a TelegramChannel.
func NewTelegramChannel(cfg *channel.TelegramConfig, b bus.Bus, logger *zap.Logger) *TelegramChannel {
	return &TelegramChannel{
		Base: NewBase(bus.ChannelTelegram, b, cfg.AllowFrom, logger),
		cfg:  cfg,
	}
}

func (t *TelegramChannel) Name() string { return bus.ChannelTelegram.String() }

func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	client := http.DefaultClient
	if t.cfg.Proxy != "" {
		proxyURL, err := url.Parse(t.cfg.Proxy)
		if err != nil {
			return fmt.Errorf("telegram: invalid proxy: %w", err)
		}
		client = &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxyURL)}}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.cfg.Token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}
	t.bot = bot
	t.logger.Info("telegram: connected", zap.String("username", bot.Self.UserName))

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			t.handleUpdate(update)
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

func (t *TelegramChannel) handleUpdate(update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	content := msg.Text
	if content == "" {
		content = msg.Caption
	}
	if content == "" {
		return
	}

	senderID := strconv.FormatInt(msg.From.ID, 10)
	if msg.From.UserName != "" {
		senderID = senderID + "|" + msg.From.UserName
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	var groupID string
	if !msg.Chat.IsPrivate() {
		groupID = chatID
	}

	t.HandleMessage(senderID, chatID, groupID, content, map[string]any{
		"message_id": msg.MessageID,
		"username":   msg.From.UserName,
	})
}

func (t *TelegramChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	chatID, err := strconv.ParseInt(msg.ChatId(), 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat_id: %s", msg.ChatId())
	}

	var replyMsgID int
	if t.cfg.ReplyToMessage {
		replyMsgID, _ = msg.Metadata()["message_id"].(int)
	}

	for _, chunk := range splitMessage(msg.Content(), telegramMaxLen) {
		m := tgbotapi.NewMessage(chatID, chunk)
		if replyMsgID != 0 {
			m.ReplyToMessageID = replyMsgID
		}
		if _, err := t.bot.Send(m); err != nil {
			return fmt.Errorf("telegram: send: %w", err)
		}
	}
	return nil
}
