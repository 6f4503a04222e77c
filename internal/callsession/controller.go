package callsession

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"gavalink/internal/callstate"
	"gavalink/internal/voicevendor"

	"github.com/google/uuid"
)

var (
	ErrSessionActive = errors.New("a call session is already active")
	ErrNotConnected  = errors.New("call is not connected")
	ErrNotFailed     = errors.New("retry is only valid from a failed call")
)

// MicrophonePermission is the runtime media permission API. Request blocks
// until the user grants or denies access; any returned error is treated as
// an explicit denial.
type MicrophonePermission interface {
	Request(ctx context.Context) error
}

// Config wires a Controller to its environment.
type Config struct {
	AgentID   string
	Transport voicevendor.TransportMode

	// TickInterval defaults to one second; tests shorten it.
	TickInterval time.Duration

	Logger *slog.Logger
}

// Controller owns exactly one call session at a time. It mediates between the
// vendor's asynchronous event stream and the session model, publishes shared
// state into the callstate store, and exposes the imperative action surface
// the call screen binds to.
//
// All transitions are serialized under one mutex, so observable phase changes
// form a total order. Each session carries a generation number; vendor
// callbacks and ticks from a torn-down session compare generations and are
// discarded, which makes late callbacks provably inert.
type Controller struct {
	dialer voicevendor.Dialer
	mic    MicrophonePermission
	state  *callstate.Store
	sink   Sink
	cfg    Config
	log    *slog.Logger

	// clock is injectable for deterministic tests.
	clock func() time.Time

	mu             sync.Mutex
	gen            uint64
	phase          Phase
	startedAt      time.Time
	duration       int
	transcript     []Message
	lastErr        *CallError
	remoteSpeaking bool
	muteIndicator  bool
	vendorSess     voicevendor.Session
	tickerStop     chan struct{}
}

func NewController(dialer voicevendor.Dialer, mic MicrophonePermission, state *callstate.Store, sink Sink, cfg Config) *Controller {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if sink == nil {
		sink = NopSink{}
	}
	return &Controller{
		dialer: dialer,
		mic:    mic,
		state:  state,
		sink:   sink,
		cfg:    cfg,
		log:    cfg.Logger,
		clock:  time.Now,
		phase:  PhaseIdle,
	}
}

// Snapshot returns a copy of the current session state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	transcript := make([]Message, len(c.transcript))
	copy(transcript, c.transcript)
	return Snapshot{
		Phase:           c.phase,
		StartedAt:       c.startedAt,
		DurationSeconds: c.duration,
		Transcript:      transcript,
		LastError:       c.lastErr,
		RemoteSpeaking:  c.remoteSpeaking,
		MuteIndicator:   c.muteIndicator,
	}
}

// Start begins a new session. Valid when no session is active (Idle, or a
// previous session ended in Disconnected). The heavy lifting happens on a
// goroutine; permission prompts and vendor dialing must not block the caller.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	switch c.phase {
	case PhaseIdle, PhaseDisconnected:
	default:
		c.mu.Unlock()
		return ErrSessionActive
	}
	gen := c.beginSessionLocked()
	c.mu.Unlock()

	c.state.StartCall()
	c.sink.PhaseChanged(PhaseRequestingPermission)

	go c.establish(ctx, gen)
	return nil
}

// Retry re-runs the connection sequence after a failure. Valid only from
// PhaseFailed.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.phase != PhaseFailed {
		c.mu.Unlock()
		return ErrNotFailed
	}
	gen := c.beginSessionLocked()
	c.mu.Unlock()

	// The call is still "in" from the store's perspective; StartCall is a
	// no-op on retry but kept for the failed-before-start edge.
	c.state.StartCall()
	c.sink.PhaseChanged(PhaseRequestingPermission)

	go c.establish(ctx, gen)
	return nil
}

// beginSessionLocked invalidates any in-flight work, resets per-session state
// and moves to RequestingPermission. Returns the new session generation.
func (c *Controller) beginSessionLocked() uint64 {
	c.gen++
	c.stopTickerLocked()
	c.resetSessionLocked()
	c.phase = PhaseRequestingPermission
	return c.gen
}

func (c *Controller) resetSessionLocked() {
	c.startedAt = time.Time{}
	c.duration = 0
	c.transcript = nil
	c.lastErr = nil
	c.remoteSpeaking = false
	c.muteIndicator = false
	c.vendorSess = nil
}

// End tears the session down. It is idempotent, always succeeds from the
// caller's perspective, and guarantees the microphone-holding vendor session
// is released on every exit path. Teardown errors are logged, never surfaced.
func (c *Controller) End(context.Context) {
	c.mu.Lock()
	wasActive := c.phase != PhaseIdle
	c.gen++ // late callbacks from this session are now inert
	sess := c.vendorSess
	c.stopTickerLocked()
	c.resetSessionLocked()
	c.phase = PhaseIdle
	c.mu.Unlock()

	if sess != nil {
		if err := sess.Close(); err != nil {
			c.log.Warn("vendor session teardown failed", "err", err)
		}
	}

	c.state.EndCall()
	if wasActive {
		c.sink.PhaseChanged(PhaseIdle)
	}
}

// ToggleMute flips the display-only recording indicator. The vendor SDK owns
// the real microphone state and keeps transmitting either way, so the sink
// gets an advisory notice making that explicit.
func (c *Controller) ToggleMute() error {
	c.mu.Lock()
	if c.phase != PhaseConnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.muteIndicator = !c.muteIndicator
	on := c.muteIndicator
	c.mu.Unlock()

	if on {
		c.sink.Notice("Recording indicator off. The assistant can still hear you.")
	} else {
		c.sink.Notice("Recording indicator on.")
	}
	return nil
}

// QuickAction appends the fixed phrase for a shortcut as a user message.
// No local reply is synthesized; the live vendor conversation responds.
func (c *Controller) QuickAction(action QuickAction) error {
	phrase, ok := quickActionPhrases[action]
	if !ok {
		return errors.New("unknown quick action")
	}

	c.mu.Lock()
	if c.phase != PhaseConnected {
		c.mu.Unlock()
		return ErrNotConnected
	}
	msg := c.appendMessageLocked(SenderUser, phrase)
	c.mu.Unlock()

	c.sink.MessageAppended(msg)
	return nil
}

func (c *Controller) appendMessageLocked(sender Sender, text string) Message {
	msg := Message{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: c.clock(),
	}
	c.transcript = append(c.transcript, msg)
	return msg
}

// establish runs the permission + dial sequence for one session generation.
// Every step re-checks the generation so an End during the sequence wins.
func (c *Controller) establish(ctx context.Context, gen uint64) {
	if err := c.mic.Request(ctx); err != nil {
		c.fail(gen, newCallError(FailurePermissionDenied, err))
		return
	}

	if !c.advance(gen, PhaseRequestingPermission, PhaseConnecting) {
		return
	}

	sess, err := c.dialer.Dial(ctx, c.cfg.AgentID, c.cfg.Transport)
	if err != nil {
		c.fail(gen, classifyText(err.Error()))
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		// Torn down while dialing: the completed session must not dangle.
		c.mu.Unlock()
		if cerr := sess.Close(); cerr != nil {
			c.log.Warn("vendor session teardown failed", "err", cerr)
		}
		return
	}
	c.vendorSess = sess
	c.mu.Unlock()

	go c.pump(sess, gen)
}

// advance performs a guarded phase transition. Returns false when the session
// generation is stale or the current phase is not the expected one.
func (c *Controller) advance(gen uint64, from, to Phase) bool {
	c.mu.Lock()
	if gen != c.gen || c.phase != from {
		c.mu.Unlock()
		return false
	}
	c.phase = to
	c.mu.Unlock()
	c.sink.PhaseChanged(to)
	return true
}

// pump consumes vendor events for one session generation. FIFO channel order
// preserves event-arrival order in the transcript.
func (c *Controller) pump(sess voicevendor.Session, gen uint64) {
	for ev := range sess.Events() {
		switch ev.Kind {
		case voicevendor.EventConnected:
			c.onConnected(gen)
		case voicevendor.EventMessage:
			c.onMessage(gen, ev.Source, ev.Text)
		case voicevendor.EventSpeaking:
			c.onSpeaking(gen, ev.Speaking)
		case voicevendor.EventDisconnected:
			c.onDisconnected(gen)
		case voicevendor.EventError:
			c.fail(gen, classifyVendor(ev.Code, ev.Detail))
		}
	}
}

func (c *Controller) onConnected(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.phase != PhaseConnecting {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseConnected
	c.startedAt = c.clock()
	c.duration = 0
	greeting := c.appendMessageLocked(SenderAI, greetingText)
	c.startTickerLocked(gen)
	c.mu.Unlock()

	c.state.SetConnected(true)
	c.state.SetDuration(0)
	c.sink.PhaseChanged(PhaseConnected)
	c.sink.MessageAppended(greeting)
}

func (c *Controller) onMessage(gen uint64, source voicevendor.Source, text string) {
	if text == "" {
		return
	}
	sender := SenderAI
	if source == voicevendor.SourceUser {
		sender = SenderUser
	}

	c.mu.Lock()
	if gen != c.gen || c.phase != PhaseConnected {
		c.mu.Unlock()
		return
	}
	msg := c.appendMessageLocked(sender, text)
	c.mu.Unlock()

	c.sink.MessageAppended(msg)
}

func (c *Controller) onSpeaking(gen uint64, speaking bool) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.remoteSpeaking = speaking
	c.mu.Unlock()

	c.sink.SpeakingChanged(speaking)
}

// onDisconnected freezes the session: transcript and duration are kept so the
// call screen can show the final state until the citizen ends or restarts.
func (c *Controller) onDisconnected(gen uint64) {
	c.mu.Lock()
	if gen != c.gen || c.phase != PhaseConnected {
		c.mu.Unlock()
		return
	}
	c.phase = PhaseDisconnected
	c.stopTickerLocked()
	c.mu.Unlock()

	c.state.SetConnected(false)
	c.sink.PhaseChanged(PhaseDisconnected)
}

// fail moves the session generation to PhaseFailed with a classified error.
// Partial transcripts are not retained.
func (c *Controller) fail(gen uint64, cerr *CallError) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	sess := c.vendorSess
	c.vendorSess = nil
	c.stopTickerLocked()
	c.phase = PhaseFailed
	c.transcript = nil
	c.remoteSpeaking = false
	c.lastErr = cerr
	c.mu.Unlock()

	if sess != nil {
		if err := sess.Close(); err != nil {
			c.log.Warn("vendor session teardown failed", "err", err)
		}
	}

	c.log.Error("call session failed", "kind", cerr.Kind, "err", cerr.Error())
	c.state.SetConnected(false)
	c.sink.PhaseChanged(PhaseFailed)
	c.sink.SessionFailed(cerr)
}

// startTickerLocked runs the one-second duration counter for the connected
// session. The goroutine is tied 1:1 to the session generation and stops on
// the stop channel, a stale generation, or any phase move away from Connected.
func (c *Controller) startTickerLocked(gen uint64) {
	stop := make(chan struct{})
	c.tickerStop = stop

	go func() {
		t := time.NewTicker(c.cfg.TickInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				if !c.tick(gen) {
					return
				}
			}
		}
	}()
}

func (c *Controller) tick(gen uint64) bool {
	c.mu.Lock()
	if gen != c.gen || c.phase != PhaseConnected {
		c.mu.Unlock()
		return false
	}
	c.duration++
	d := c.duration
	c.mu.Unlock()

	c.state.SetDuration(d)
	c.sink.DurationTick(d)
	return true
}

func (c *Controller) stopTickerLocked() {
	if c.tickerStop != nil {
		close(c.tickerStop)
		c.tickerStop = nil
	}
}
