package channels

import (
	"context"
	"regexp"
	"slices"
	"strings"

	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/config/channel"
)

// SlackChannel implements Slack via Socket Mode. Each Slack channel is one
// conversation; direct messages are keyed by the user.
type SlackChannel struct {
	Base
	cfg       *channel.SlackConfig
	webClient *slackgo.Client
	smClient  *socketmode.Client
	botUserID string
	mentionRe *regexp.Regexp
}

func NewSlackChannel(cfg *channel.SlackConfig, b bus.Bus, logger *zap.Logger) *SlackChannel {
	return &SlackChannel{
		Base: NewBase(bus.ChannelSlack, b, nil, logger), // Slack uses its own allow logic
		cfg:  cfg,
	}
}

func (s *SlackChannel) Name() string { return bus.ChannelSlack.String() }

func (s *SlackChannel) Start(ctx context.Context) error {
	if s.cfg.BotToken == "" || s.cfg.AppToken == "" {
		s.logger.Warn("slack: bot/app token not configured")
		<-ctx.Done()
		return ctx.Err()
	}

	s.webClient = slackgo.New(s.cfg.BotToken,
		slackgo.OptionAppLevelToken(s.cfg.AppToken))

	if resp, err := s.webClient.AuthTestContext(ctx); err == nil {
		s.setBotUserID(resp.UserID)
		s.logger.Info("slack: connected", zap.String("bot_user_id", s.botUserID))
	}

	s.smClient = socketmode.New(s.webClient)

	go s.smClient.RunContext(ctx) //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-s.smClient.Events:
			if !ok {
				return nil
			}
			s.handleEvent(evt)
		}
	}
}

func (s *SlackChannel) setBotUserID(id string) {
	s.botUserID = id
	if id != "" {
		s.mentionRe = regexp.MustCompile(`<@` + regexp.QuoteMeta(id) + `>\s*`)
	}
}

func (s *SlackChannel) handleEvent(evt socketmode.Event) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return
	}
	if evt.Request != nil {
		s.smClient.Ack(*evt.Request)
	}
	cb, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	switch ev := cb.InnerEvent.Data.(type) {
	case *slackevents.MessageEvent:
		s.handleInnerEvent(slackInbound{
			evType:      "message",
			user:        ev.User,
			channel:     ev.Channel,
			channelType: ev.ChannelType,
			text:        ev.Text,
			subtype:     ev.SubType,
			ts:          ev.TimeStamp,
			threadTS:    ev.ThreadTimeStamp,
		})
	case *slackevents.AppMentionEvent:
		s.handleInnerEvent(slackInbound{
			evType:   "app_mention",
			user:     ev.User,
			channel:  ev.Channel,
			text:     ev.Text,
			ts:       ev.TimeStamp,
			threadTS: ev.ThreadTimeStamp,
		})
	}
}

// slackInbound is the subset of a message or app_mention event the channel
// acts on.
type slackInbound struct {
	evType      string
	user        string
	channel     string
	channelType string
	text        string
	subtype     string
	ts          string
	threadTS    string
}

func (s *SlackChannel) handleInnerEvent(ev slackInbound) {
	if ev.subtype != "" || ev.user == "" || ev.channel == "" {
		return
	}
	if ev.user == s.botUserID {
		return
	}
	// Avoid double-processing mention + message events.
	if ev.evType == "message" && s.botUserID != "" && strings.Contains(ev.text, "<@"+s.botUserID+">") {
		return
	}

	if !s.isAllowedSlack(ev.user, ev.channel, ev.channelType) {
		return
	}
	if ev.channelType != "im" && !s.shouldRespond(ev.evType, ev.text) {
		return
	}

	text := s.stripMention(ev.text)
	threadTS := ev.threadTS
	if s.cfg.ReplyInThread && threadTS == "" {
		threadTS = ev.ts
	}

	var groupID string
	if ev.channelType != "im" {
		groupID = ev.channel
	}

	s.HandleMessage(ev.user, ev.channel, groupID, text, map[string]any{
		"slack": map[string]any{
			"thread_ts":    threadTS,
			"channel_type": ev.channelType,
		},
	})
}

func (s *SlackChannel) isAllowedSlack(user, channelID, channelType string) bool {
	if channelType == "im" {
		if !s.cfg.DM.Enabled {
			return false
		}
		if s.cfg.DM.Policy == "allowlist" {
			return slices.Contains(s.cfg.DM.AllowFrom, user)
		}
		return true
	}
	if s.cfg.GroupPolicy == "allowlist" {
		return slices.Contains(s.cfg.GroupAllowFrom, channelID)
	}
	return true
}

// shouldRespond applies the group policy. The bot needs to see ordinary
// channel chatter to chime in on its own, so "open" is the default.
func (s *SlackChannel) shouldRespond(evType, text string) bool {
	switch s.cfg.GroupPolicy {
	case "", "open", "allowlist":
		return true
	case "mention":
		if evType == "app_mention" {
			return true
		}
		return s.botUserID != "" && strings.Contains(text, "<@"+s.botUserID+">")
	}
	return false
}

func (s *SlackChannel) stripMention(text string) string {
	if s.mentionRe == nil {
		return text
	}
	return strings.TrimSpace(s.mentionRe.ReplaceAllString(text, ""))
}

func (s *SlackChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if s.webClient == nil {
		return nil
	}
	meta := map[string]any{}
	if m, ok := msg.Metadata()["slack"].(map[string]any); ok {
		meta = m
	}
	threadTS, _ := meta["thread_ts"].(string)
	channelType, _ := meta["channel_type"].(string)

	options := []slackgo.MsgOption{slackgo.MsgOptionText(msg.Content(), false)}
	if threadTS != "" && channelType != "im" {
		options = append(options, slackgo.MsgOptionTS(threadTS))
	}

	_, _, err := s.webClient.PostMessageContext(ctx, msg.ChatId(), options...)
	return err
}
