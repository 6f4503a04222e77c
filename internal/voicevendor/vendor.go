package voicevendor

import "context"

// TransportMode selects how the realtime session carries audio.
type TransportMode string

const (
	TransportWebSocket TransportMode = "websocket"
	TransportWebRTC    TransportMode = "webrtc"
)

// Source identifies which party produced a transcript message.
type Source string

const (
	SourceUser Source = "user"
	SourceAI   Source = "ai"
)

// EventKind discriminates session events.
type EventKind string

const (
	EventConnected    EventKind = "connected"
	EventDisconnected EventKind = "disconnected"
	EventMessage      EventKind = "message"
	EventSpeaking     EventKind = "speaking"
	EventError        EventKind = "error"
)

// ErrorCode is the vendor's structured failure code, when it provides one.
// An empty code means only Detail text is available.
type ErrorCode string

const (
	CodeQuotaExceeded ErrorCode = "quota_exceeded"
	CodeUnauthorized  ErrorCode = "unauthorized"
	CodeNetwork       ErrorCode = "network"
)

// Event is one asynchronous occurrence on a realtime session.
// Source/Text are set for message events, Speaking for speaking events,
// Code/Detail for error events.
type Event struct {
	Kind     EventKind
	Source   Source
	Text     string
	Speaking bool
	Code     ErrorCode
	Detail   string
}

// Session is an open realtime conversation with the hosted voice agent.
// Events is closed when the session ends for any reason; Close is safe to
// call more than once and is best-effort.
type Session interface {
	Events() <-chan Event
	Close() error
}

// Dialer opens realtime sessions. Implementations must not leak goroutines
// after Close or context cancellation.
type Dialer interface {
	Dial(ctx context.Context, agentID string, transport TransportMode) (Session, error)
}
