package voicevendor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Config controls the realtime websocket connection to the voice vendor.
type Config struct {
	APIKey  string
	BaseURL string
}

// Realtime implements Dialer over the vendor's conversational websocket API.
type Realtime struct {
	cfg Config
}

func NewRealtime(cfg Config) *Realtime {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "wss://api.voice.example.com/v1"
	}
	return &Realtime{cfg: cfg}
}

func (r *Realtime) Dial(ctx context.Context, agentID string, transport TransportMode) (Session, error) {
	if strings.TrimSpace(r.cfg.APIKey) == "" {
		return nil, errors.New("voice vendor API key is not configured")
	}
	if agentID == "" {
		return nil, errors.New("agent id is required")
	}

	wsURL, err := buildConversationURL(r.cfg.BaseURL, agentID, transport)
	if err != nil {
		return nil, err
	}

	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+r.cfg.APIKey)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to voice vendor: %w", err)
	}

	s := &realtimeSession{
		conn:   conn,
		events: make(chan Event, 64),
		done:   make(chan struct{}),
	}

	go s.readLoop()
	go func() {
		<-ctx.Done()
		_ = s.Close()
	}()

	return s, nil
}

func buildConversationURL(base, agentID string, transport TransportMode) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid vendor base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported vendor URL scheme %q", u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/convai/conversation"

	q := u.Query()
	q.Set("agent_id", agentID)
	if transport != "" {
		q.Set("transport", string(transport))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// frame is the vendor wire format. Unknown frame types are ignored so the
// adapter tolerates vendor-side additions.
type frame struct {
	Type     string `json:"type"`
	Source   string `json:"source,omitempty"`
	Text     string `json:"text,omitempty"`
	Speaking bool   `json:"speaking,omitempty"`
	Code     string `json:"code,omitempty"`
	Message  string `json:"message,omitempty"`
}

type realtimeSession struct {
	conn *websocket.Conn

	events chan Event
	done   chan struct{}

	closeOnce sync.Once
}

func (s *realtimeSession) Events() <-chan Event { return s.events }

func (s *realtimeSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		deadline := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = s.conn.WriteMessage(websocket.CloseMessage, deadline)
		err = s.conn.Close()
	})
	return err
}

func (s *realtimeSession) readLoop() {
	defer close(s.events)

	for {
		_, payload, err := s.conn.ReadMessage()
		if err != nil {
			select {
			case <-s.done:
				// local teardown; report a clean disconnect
				s.emit(Event{Kind: EventDisconnected})
			default:
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					s.emit(Event{Kind: EventDisconnected})
				} else {
					s.emit(Event{Kind: EventError, Code: CodeNetwork, Detail: err.Error()})
				}
			}
			return
		}

		var f frame
		if err := json.Unmarshal(payload, &f); err != nil {
			continue
		}

		switch f.Type {
		case "conversation_initiation_metadata":
			s.emit(Event{Kind: EventConnected})
		case "user_transcript":
			s.emit(Event{Kind: EventMessage, Source: SourceUser, Text: f.Text})
		case "agent_response":
			s.emit(Event{Kind: EventMessage, Source: SourceAI, Text: f.Text})
		case "agent_speaking":
			s.emit(Event{Kind: EventSpeaking, Speaking: f.Speaking})
		case "session_ended":
			s.emit(Event{Kind: EventDisconnected})
		case "error":
			s.emit(Event{Kind: EventError, Code: ErrorCode(f.Code), Detail: f.Message})
		}
	}
}

func (s *realtimeSession) emit(e Event) {
	select {
	case s.events <- e:
	case <-s.done:
	}
}
