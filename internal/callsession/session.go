package callsession

import "time"

// Phase models the connection lifecycle of one voice call.
// Exactly one phase holds at a time; transitions are totally ordered
// per session.
type Phase string

const (
	PhaseIdle                 Phase = "idle"
	PhaseRequestingPermission Phase = "requesting_permission"
	PhaseConnecting           Phase = "connecting"
	PhaseConnected            Phase = "connected"
	PhaseDisconnected         Phase = "disconnected"
	PhaseFailed               Phase = "failed"
)

// Sender identifies the party a transcript message is attributed to.
type Sender string

const (
	SenderAI   Sender = "ai"
	SenderUser Sender = "user"
)

// Message is one transcript entry. Ordering is insertion order; Timestamp is
// for display formatting only.
type Message struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Snapshot is a point-in-time copy of the session state, safe to hand to UI
// code without further synchronization.
type Snapshot struct {
	Phase           Phase      `json:"phase"`
	StartedAt       time.Time  `json:"started_at"`
	DurationSeconds int        `json:"duration_seconds"`
	Transcript      []Message  `json:"transcript"`
	LastError       *CallError `json:"last_error,omitempty"`
	RemoteSpeaking  bool       `json:"remote_speaking"`

	// MuteIndicator is a display-only flag; the vendor SDK owns the real
	// microphone state and keeps transmitting regardless.
	MuteIndicator bool `json:"mute_indicator"`
}

// QuickAction is a predefined shortcut that inserts a canned user utterance
// into the transcript. The live vendor conversation produces any reply.
type QuickAction string

const (
	QuickActionNilReturn      QuickAction = "nil_return"
	QuickActionCheckBalance   QuickAction = "check_balance"
	QuickActionUploadDocument QuickAction = "upload_document"
	QuickActionGeneralHelp    QuickAction = "general_help"
)

// Greeting seeded as the first AI message once the vendor acknowledges the
// connection. Amua is the assistant persona of the portal.
const greetingText = "Karibu! Mimi ni Amua, msaidizi wako wa sauti wa KRA. Ninaweza kukusaidia na ushuru wako. Unahitaji msaada gani leo?"

var quickActionPhrases = map[QuickAction]string{
	QuickActionNilReturn:      "Nataka kujaza NIL returns",
	QuickActionCheckBalance:   "Nataka kukagua salio langu",
	QuickActionUploadDocument: "Nataka kutuma hati",
	QuickActionGeneralHelp:    "Nahitaji msaada",
}

// Sink is the contract between the controller and whatever renders the call.
// Implementations must be cheap and non-blocking; they are invoked on
// controller goroutines.
type Sink interface {
	PhaseChanged(p Phase)
	MessageAppended(m Message)
	SpeakingChanged(speaking bool)
	DurationTick(seconds int)
	// Notice carries advisory UI text (e.g. the mute-indicator hint).
	Notice(text string)
	SessionFailed(e *CallError)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) PhaseChanged(Phase)       {}
func (NopSink) MessageAppended(Message)  {}
func (NopSink) SpeakingChanged(bool)     {}
func (NopSink) DurationTick(int)         {}
func (NopSink) Notice(string)            {}
func (NopSink) SessionFailed(*CallError) {}
