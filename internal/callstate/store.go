package callstate

import "sync"

// Snapshot is the call state visible to every portal surface.
//
// Invariant: Connected implies InCall. A call is "in" from the moment the
// citizen starts it, through permission prompts, connection failures and
// retries, until it is explicitly ended.
type Snapshot struct {
	InCall          bool `json:"in_call"`
	Connected       bool `json:"connected"`
	DurationSeconds int  `json:"duration_seconds"`
}

// Listener observes every state change. Listeners run outside the store lock.
type Listener func(Snapshot)

// Store is the process-wide call state shared by the call screen, the floating
// indicator and any other mounted surface. One instance is constructed at
// application start and lives for the process lifetime.
//
// Only the session controller and the explicit StartCall/EndCall actions may
// mutate it. Setters are guarded: mutating a call that is not in progress is a
// logic error and is dropped.
type Store struct {
	mu        sync.Mutex
	inCall    bool
	connected bool
	duration  int

	nextSub   int
	listeners map[int]Listener
}

func NewStore() *Store {
	return &Store{listeners: map[int]Listener{}}
}

// StartCall marks a call as in progress. It does not imply a connection.
func (s *Store) StartCall() {
	s.mu.Lock()
	if s.inCall {
		s.mu.Unlock()
		return
	}
	s.inCall = true
	snap, ls := s.snapshotLocked()
	s.mu.Unlock()
	notify(ls, snap)
}

// EndCall atomically resets all fields to their initial values.
// Calling it when no call is in progress is a no-op, so the reset is
// observed exactly once per call.
func (s *Store) EndCall() {
	s.mu.Lock()
	if !s.inCall {
		s.mu.Unlock()
		return
	}
	s.inCall = false
	s.connected = false
	s.duration = 0
	snap, ls := s.snapshotLocked()
	s.mu.Unlock()
	notify(ls, snap)
}

// SetConnected mirrors the session phase. Dropped unless a call is in progress.
func (s *Store) SetConnected(v bool) {
	s.mu.Lock()
	if !s.inCall {
		s.mu.Unlock()
		return
	}
	s.connected = v
	snap, ls := s.snapshotLocked()
	s.mu.Unlock()
	notify(ls, snap)
}

// SetDuration mirrors the session duration. Dropped unless a call is in progress.
func (s *Store) SetDuration(seconds int) {
	s.mu.Lock()
	if !s.inCall {
		s.mu.Unlock()
		return
	}
	s.duration = seconds
	snap, ls := s.snapshotLocked()
	s.mu.Unlock()
	notify(ls, snap)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{InCall: s.inCall, Connected: s.connected, DurationSeconds: s.duration}
}

// Subscribe registers a listener for every subsequent change and returns an
// unsubscribe function. The listener is not invoked with the current state.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) snapshotLocked() (Snapshot, []Listener) {
	snap := Snapshot{InCall: s.inCall, Connected: s.connected, DurationSeconds: s.duration}
	ls := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		ls = append(ls, l)
	}
	return snap, ls
}

func notify(ls []Listener, snap Snapshot) {
	for _, l := range ls {
		l(snap)
	}
}
