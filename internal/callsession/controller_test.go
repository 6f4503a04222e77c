package callsession

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gavalink/internal/callstate"
	"gavalink/internal/voicevendor"
)

type fakeMic struct {
	err error
	// gate, when set, blocks Request until closed.
	gate chan struct{}

	mu    sync.Mutex
	calls int
}

func (m *fakeMic) Request(ctx context.Context) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.gate != nil {
		select {
		case <-m.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

type fakeSession struct {
	events chan voicevendor.Event

	mu     sync.Mutex
	closed bool
}

func newFakeSession() *fakeSession {
	return &fakeSession{events: make(chan voicevendor.Event, 16)}
}

func (s *fakeSession) Events() <-chan voicevendor.Event { return s.events }

func (s *fakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeSession) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

type fakeDialer struct {
	session *fakeSession
	err     error
	// gate, when set, blocks Dial until closed.
	gate chan struct{}

	mu    sync.Mutex
	calls int
}

func (d *fakeDialer) Dial(ctx context.Context, agentID string, transport voicevendor.TransportMode) (voicevendor.Session, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	if d.gate != nil {
		<-d.gate
	}
	if d.err != nil {
		return nil, d.err
	}
	return d.session, nil
}

func (d *fakeDialer) dialCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type recSink struct {
	mu      sync.Mutex
	notices []string
	failed  []*CallError
}

func (r *recSink) PhaseChanged(Phase)      {}
func (r *recSink) MessageAppended(Message) {}
func (r *recSink) SpeakingChanged(bool)    {}
func (r *recSink) DurationTick(int)        {}
func (r *recSink) Notice(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, text)
}
func (r *recSink) SessionFailed(e *CallError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, e)
}

func newTestController(dialer voicevendor.Dialer, mic MicrophonePermission, store *callstate.Store, sink Sink) *Controller {
	return NewController(dialer, mic, store, sink, Config{
		AgentID:      "agent_amua",
		Transport:    voicevendor.TransportWebSocket,
		TickInterval: 5 * time.Millisecond,
	})
}

func waitFor(t *testing.T, desc string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", desc)
}

func waitPhase(t *testing.T, c *Controller, p Phase) {
	t.Helper()
	waitFor(t, "phase "+string(p), func() bool { return c.Snapshot().Phase == p })
}

func TestControllerConnectSeedsGreeting(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	store := callstate.NewStore()
	c := newTestController(dialer, &fakeMic{}, store, nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })

	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	snap := c.Snapshot()
	if len(snap.Transcript) != 1 {
		t.Fatalf("expected seeded greeting only, got %d messages", len(snap.Transcript))
	}
	if snap.Transcript[0].Sender != SenderAI {
		t.Fatalf("greeting must be attributed to the assistant")
	}
	if snap.StartedAt.IsZero() {
		t.Fatalf("expected startedAt stamped on connect")
	}

	cs := store.Snapshot()
	if !cs.InCall || !cs.Connected {
		t.Fatalf("expected in-call connected store state, got %+v", cs)
	}
}

func TestControllerStartRejectsActiveSession(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	c := newTestController(dialer, &fakeMic{}, callstate.NewStore(), nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if err := c.Start(context.Background()); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("expected ErrSessionActive, got %v", err)
	}
}

func TestControllerPermissionDeniedThenRetry(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	mic := &fakeMic{err: errors.New("NotAllowedError: permission denied")}
	store := callstate.NewStore()
	sink := &recSink{}
	c := newTestController(dialer, mic, store, sink)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitPhase(t, c, PhaseFailed)

	snap := c.Snapshot()
	if snap.LastError == nil || snap.LastError.Kind != FailurePermissionDenied {
		t.Fatalf("expected permission denial, got %+v", snap.LastError)
	}
	if len(snap.Transcript) != 0 {
		t.Fatalf("failed session must not retain transcript")
	}
	if dialer.dialCalls() != 0 {
		t.Fatalf("vendor must not be dialed without microphone access")
	}
	if cs := store.Snapshot(); !cs.InCall || cs.Connected {
		t.Fatalf("expected in-call disconnected store state, got %+v", cs)
	}

	// Permission granted on retry.
	mic.err = nil
	if err := c.Retry(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	snap = c.Snapshot()
	if snap.LastError != nil {
		t.Fatalf("retry must clear the classified error")
	}
	if len(snap.Transcript) != 1 {
		t.Fatalf("expected exactly the seeded greeting after retry, got %d", len(snap.Transcript))
	}
}

func TestControllerRetryOnlyValidFromFailed(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeDialer{session: newFakeSession()}, &fakeMic{}, callstate.NewStore(), nil)
	if err := c.Retry(context.Background()); !errors.Is(err, ErrNotFailed) {
		t.Fatalf("expected ErrNotFailed, got %v", err)
	}
}

func TestControllerQuickActionAppendsFixedPhrase(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	c := newTestController(dialer, &fakeMic{}, callstate.NewStore(), nil)

	if err := c.QuickAction(QuickActionNilReturn); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("quick actions require a connected call, got %v", err)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	if err := c.QuickAction(QuickActionNilReturn); err != nil {
		t.Fatalf("quick action failed: %v", err)
	}

	snap := c.Snapshot()
	if len(snap.Transcript) != 2 {
		t.Fatalf("expected greeting + one user message, got %d", len(snap.Transcript))
	}
	last := snap.Transcript[1]
	if last.Sender != SenderUser || last.Text != "Nataka kujaza NIL returns" {
		t.Fatalf("unexpected quick action message: %+v", last)
	}

	// No locally synthesized reply may show up afterwards.
	time.Sleep(30 * time.Millisecond)
	if got := len(c.Snapshot().Transcript); got != 2 {
		t.Fatalf("no local AI reply may be synthesized, transcript grew to %d", got)
	}
}

func TestControllerDisconnectFreezesDuration(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	store := callstate.NewStore()
	c := newTestController(dialer, &fakeMic{}, store, nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	waitFor(t, "ticks", func() bool { return c.Snapshot().DurationSeconds >= 3 })

	sess.events <- voicevendor.Event{Kind: voicevendor.EventDisconnected}
	waitPhase(t, c, PhaseDisconnected)

	frozen := c.Snapshot().DurationSeconds
	time.Sleep(40 * time.Millisecond)
	if got := c.Snapshot().DurationSeconds; got != frozen {
		t.Fatalf("duration must freeze on disconnect: %d != %d", got, frozen)
	}
	if len(c.Snapshot().Transcript) == 0 {
		t.Fatalf("disconnect must not clear the transcript")
	}

	cs := store.Snapshot()
	if cs.Connected {
		t.Fatalf("store must mirror disconnect")
	}
	if !cs.InCall {
		t.Fatalf("the call stays in progress until explicitly ended")
	}
}

func TestControllerVendorErrorClassified(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	sink := &recSink{}
	c := newTestController(dialer, &fakeMic{}, callstate.NewStore(), sink)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	sess.events <- voicevendor.Event{Kind: voicevendor.EventError, Detail: "network error: quota exceeded"}
	waitPhase(t, c, PhaseFailed)

	snap := c.Snapshot()
	if snap.LastError == nil || snap.LastError.Kind != FailureQuotaExhausted {
		t.Fatalf("quota must win over network, got %+v", snap.LastError)
	}
	if !sess.isClosed() {
		t.Fatalf("vendor session must be released on failure")
	}
}

func TestControllerEndDuringPermissionRequest(t *testing.T) {
	t.Parallel()

	gate := make(chan struct{})
	mic := &fakeMic{gate: gate}
	dialer := &fakeDialer{session: newFakeSession()}
	store := callstate.NewStore()
	c := newTestController(dialer, mic, store, nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	c.End(context.Background())
	close(gate) // permission grant arrives after teardown

	time.Sleep(20 * time.Millisecond)
	if dialer.dialCalls() != 0 {
		t.Fatalf("a torn-down session must not dial the vendor")
	}
	if got := c.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("expected idle after end, got %s", got)
	}
	if cs := store.Snapshot(); cs.InCall || cs.Connected || cs.DurationSeconds != 0 {
		t.Fatalf("expected cleared store, got %+v", cs)
	}
}

func TestControllerEndDuringDialClosesLateSession(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	gate := make(chan struct{})
	dialer := &fakeDialer{session: sess, gate: gate}
	c := newTestController(dialer, &fakeMic{}, callstate.NewStore(), nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial in flight", func() bool { return dialer.dialCalls() == 1 })

	c.End(context.Background())
	close(gate) // dial completes after teardown

	waitFor(t, "late session closed", sess.isClosed)
	if got := c.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("expected idle after end, got %s", got)
	}
}

func TestControllerLateEventsAfterEndAreInert(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	c := newTestController(dialer, &fakeMic{}, callstate.NewStore(), nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	c.End(context.Background())

	sess.events <- voicevendor.Event{Kind: voicevendor.EventMessage, Source: voicevendor.SourceAI, Text: "stale"}
	sess.events <- voicevendor.Event{Kind: voicevendor.EventError, Detail: "stale failure"}

	time.Sleep(20 * time.Millisecond)
	snap := c.Snapshot()
	if snap.Phase != PhaseIdle {
		t.Fatalf("stale events must not move the phase, got %s", snap.Phase)
	}
	if len(snap.Transcript) != 0 {
		t.Fatalf("stale events must not mutate the transcript")
	}
	if !sess.isClosed() {
		t.Fatalf("end must release the vendor session")
	}
}

func TestControllerEndIsIdempotent(t *testing.T) {
	t.Parallel()

	c := newTestController(&fakeDialer{session: newFakeSession()}, &fakeMic{}, callstate.NewStore(), nil)
	c.End(context.Background())
	c.End(context.Background())
	if got := c.Snapshot().Phase; got != PhaseIdle {
		t.Fatalf("expected idle, got %s", got)
	}
}

func TestControllerMuteIndicatorIsDisplayOnly(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	sink := &recSink{}
	c := newTestController(dialer, &fakeMic{}, callstate.NewStore(), sink)

	if err := c.ToggleMute(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("mute requires a connected call, got %v", err)
	}

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	if err := c.ToggleMute(); err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if !c.Snapshot().MuteIndicator {
		t.Fatalf("expected indicator flipped on")
	}

	sink.mu.Lock()
	notices := len(sink.notices)
	sink.mu.Unlock()
	if notices != 1 {
		t.Fatalf("expected one advisory notice, got %d", notices)
	}
}

func TestControllerSpeakingChangesTrackVendor(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	c := newTestController(dialer, &fakeMic{}, callstate.NewStore(), nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	sess.events <- voicevendor.Event{Kind: voicevendor.EventSpeaking, Speaking: true}
	waitFor(t, "speaking on", func() bool { return c.Snapshot().RemoteSpeaking })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventSpeaking, Speaking: false}
	waitFor(t, "speaking off", func() bool { return !c.Snapshot().RemoteSpeaking })
}

func TestControllerTranscriptKeepsArrivalOrder(t *testing.T) {
	t.Parallel()

	sess := newFakeSession()
	dialer := &fakeDialer{session: sess}
	c := newTestController(dialer, &fakeMic{}, callstate.NewStore(), nil)

	if err := c.Start(context.Background()); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	waitFor(t, "dial", func() bool { return dialer.dialCalls() == 1 })
	sess.events <- voicevendor.Event{Kind: voicevendor.EventConnected}
	waitPhase(t, c, PhaseConnected)

	texts := []string{"Habari", "Nataka msaada", "Sawa kabisa"}
	sess.events <- voicevendor.Event{Kind: voicevendor.EventMessage, Source: voicevendor.SourceUser, Text: texts[0]}
	sess.events <- voicevendor.Event{Kind: voicevendor.EventMessage, Source: voicevendor.SourceAI, Text: texts[1]}
	sess.events <- voicevendor.Event{Kind: voicevendor.EventMessage, Source: voicevendor.SourceUser, Text: texts[2]}

	waitFor(t, "messages", func() bool { return len(c.Snapshot().Transcript) == 4 })

	snap := c.Snapshot()
	for i, want := range texts {
		if got := snap.Transcript[i+1].Text; got != want {
			t.Fatalf("transcript order broken at %d: got %q want %q", i, got, want)
		}
	}
	ids := map[string]bool{}
	for _, m := range snap.Transcript {
		if ids[m.ID] {
			t.Fatalf("duplicate message id %q", m.ID)
		}
		ids[m.ID] = true
	}
}
