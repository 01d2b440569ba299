package channels

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/crystaldolphin/dolphinchat/internal/bus"
	"github.com/crystaldolphin/dolphinchat/internal/config/channel"
)

const (
	qqTokenURL       = "https://bots.qq.com/app/getAppAccessToken"
	qqAPIBase        = "https://api.sgroup.qq.com"
	qqSandboxAPIBase = "https://sandbox.api.sgroup.qq.com"

	qqIntentGroupAndC2C = 1 << 25

	qqEventGroupAt = "GROUP_AT_MESSAGE_CREATE"
	qqEventC2C     = "C2C_MESSAGE_CREATE"

	qqSeenWindow = 1000
)

// QQChannel connects to the QQ bot gateway WebSocket and handles group
// @-mentions and C2C (private) messages.
type QQChannel struct {
	Base
	cfg        *channel.QQConfig
	httpClient *http.Client
	tokenURL   string
	apiBase    string

	tokenMu  sync.Mutex
	token    string
	tokenExp time.Time

	seen   *lru.Cache[string, struct{}] // recent message ids; the gateway redelivers after a reconnect
	seq    atomic.Int64 // last dispatch sequence, echoed in heartbeats
	msgSeq atomic.Int64 // per-process reply counter; QQ rejects repeated msg_seq
}

func NewQQChannel(cfg *channel.QQConfig, b bus.Bus, logger *zap.Logger) *QQChannel {
	seen, _ := lru.New[string, struct{}](qqSeenWindow) // errors only on a non-positive size
	apiBase := qqAPIBase
	if cfg.Sandbox {
		apiBase = qqSandboxAPIBase
	}
	return &QQChannel{
		Base:       NewBase(bus.ChannelQQ, b, cfg.AllowFrom, logger),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		tokenURL:   qqTokenURL,
		apiBase:    apiBase,
		seen:       seen,
	}
}

func (q *QQChannel) Name() string { return bus.ChannelQQ.String() }

func (q *QQChannel) Start(ctx context.Context) error {
	if q.cfg.AppID == "" || q.cfg.Secret == "" {
		q.logger.Warn("qq: appId or secret not configured")
		<-ctx.Done()
		return ctx.Err()
	}
	for {
		if err := q.connectOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			q.logger.Warn("qq: gateway disconnected, reconnecting", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
		}
	}
}

func (q *QQChannel) connectOnce(ctx context.Context) error {
	token, err := q.getAccessToken(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	wsURL, err := q.getGatewayURL(ctx, token)
	if err != nil {
		return fmt.Errorf("get gateway: %w", err)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	q.logger.Info("qq: gateway connected")

	// Unblock ReadMessage on shutdown.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	return q.gatewayLoop(ctx, conn, token)
}

func (q *QQChannel) getAccessToken(ctx context.Context) (string, error) {
	q.tokenMu.Lock()
	defer q.tokenMu.Unlock()
	if q.token != "" && time.Now().Before(q.tokenExp) {
		return q.token, nil
	}
	data, _ := json.Marshal(map[string]string{
		"appId":        q.cfg.AppID,
		"clientSecret": q.cfg.Secret,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.tokenURL, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   string `json:"expires_in"`
	}
	_ = json.Unmarshal(b, &result)
	if result.AccessToken == "" {
		return "", fmt.Errorf("qq: get token failed: %s", string(b))
	}
	q.token = result.AccessToken
	q.tokenExp = time.Now().Add(7100 * time.Second) // tokens last ~7200s
	return q.token, nil
}

func (q *QQChannel) getGatewayURL(ctx context.Context, token string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, q.apiBase+"/gateway", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "QQBot "+token)
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	var result struct {
		URL string `json:"url"`
	}
	b, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(b, &result)
	if result.URL == "" {
		return "", fmt.Errorf("qq: no gateway url: %s", string(b))
	}
	return result.URL, nil
}

// qqPayload is one gateway frame.
type qqPayload struct {
	Op int             `json:"op"`
	T  string          `json:"t"`
	S  int64           `json:"s"`
	D  json.RawMessage `json:"d"`
}

func (q *QQChannel) gatewayLoop(ctx context.Context, conn *websocket.Conn, token string) error {
	heartbeatStop := make(chan struct{})
	defer close(heartbeatStop)

	var writeMu sync.Mutex
	write := func(v any) error {
		data, _ := json.Marshal(v)
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var payload qqPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			continue
		}

		switch payload.Op {
		case 10: // HELLO
			var hello struct {
				HeartbeatInterval int `json:"heartbeat_interval"`
			}
			_ = json.Unmarshal(payload.D, &hello)
			go q.heartbeatLoop(ctx, write, time.Duration(hello.HeartbeatInterval)*time.Millisecond, heartbeatStop)
			if err := write(map[string]any{
				"op": 2,
				"d": map[string]any{
					"token":   "QQBot " + token,
					"intents": qqIntentGroupAndC2C,
					"shard":   []int{0, 1},
				},
			}); err != nil {
				return err
			}
		case 0: // DISPATCH
			if payload.S > 0 {
				q.seq.Store(payload.S)
			}
			q.handleDispatch(payload.T, payload.D)
		case 7, 9: // RECONNECT, INVALID_SESSION
			return fmt.Errorf("qq: gateway requested reconnect (op %d)", payload.Op)
		}
	}
}

func (q *QQChannel) heartbeatLoop(ctx context.Context, write func(any) error, interval time.Duration, stop <-chan struct{}) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			var seq any
			if s := q.seq.Load(); s > 0 {
				seq = s
			}
			_ = write(map[string]any{"op": 1, "d": seq})
		case <-stop:
			return
		case <-ctx.Done():
			return
		}
	}
}

// qqMessage covers both group @-messages and C2C messages.
type qqMessage struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	GroupOpenID string `json:"group_openid"`
	Author      struct {
		ID           string `json:"id"`
		UserOpenID   string `json:"user_openid"`
		MemberOpenID string `json:"member_openid"`
	} `json:"author"`
}

func (q *QQChannel) handleDispatch(event string, data json.RawMessage) {
	if event != qqEventGroupAt && event != qqEventC2C {
		return
	}
	var msg qqMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		q.logger.Debug("qq: bad message payload", zap.Error(err))
		return
	}
	if msg.ID != "" {
		if dup, _ := q.seen.ContainsOrAdd(msg.ID, struct{}{}); dup {
			return
		}
	}

	metadata := map[string]any{"message_id": msg.ID}

	switch event {
	case qqEventGroupAt:
		senderID := firstNonEmpty(msg.Author.MemberOpenID, msg.Author.ID)
		if msg.Content == "" || msg.GroupOpenID == "" {
			return
		}
		metadata["qq_group"] = true
		q.HandleMessage(senderID, msg.GroupOpenID, msg.GroupOpenID, msg.Content, metadata)
	case qqEventC2C:
		senderID := firstNonEmpty(msg.Author.UserOpenID, msg.Author.ID)
		if msg.Content == "" || senderID == "" {
			return
		}
		q.HandleMessage(senderID, senderID, "", msg.Content, metadata)
	}
}

func (q *QQChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	token, err := q.getAccessToken(ctx)
	if err != nil {
		return err
	}
	body := map[string]any{
		"content":  msg.Content(),
		"msg_type": 0,
		"msg_seq":  q.msgSeq.Add(1),
	}
	if mid, ok := msg.Metadata()["message_id"].(string); ok && mid != "" {
		body["msg_id"] = mid
	}

	path := "/v2/users/%s/messages"
	if group, _ := msg.Metadata()["qq_group"].(bool); group {
		path = "/v2/groups/%s/messages"
	}
	url := q.apiBase + fmt.Sprintf(path, msg.ChatId())

	data, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "QQBot "+token)
	req.Header.Set("Content-Type", "application/json")
	resp, err := q.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qq: send failed: HTTP %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
