package callstate

import "testing"

func TestStoreGuardsSettersOutsideCall(t *testing.T) {
	s := NewStore()

	s.SetConnected(true)
	s.SetDuration(10)
	if snap := s.Snapshot(); snap.Connected || snap.DurationSeconds != 0 {
		t.Fatalf("setters must be dropped outside a call, got %+v", snap)
	}

	s.StartCall()
	s.SetConnected(true)
	s.SetDuration(10)
	snap := s.Snapshot()
	if !snap.InCall || !snap.Connected || snap.DurationSeconds != 10 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestStoreEndCallResetsAtomically(t *testing.T) {
	s := NewStore()
	s.StartCall()
	s.SetConnected(true)
	s.SetDuration(42)

	var resets int
	unsub := s.Subscribe(func(snap Snapshot) {
		if !snap.InCall && !snap.Connected && snap.DurationSeconds == 0 {
			resets++
		}
	})
	defer unsub()

	s.EndCall()
	s.EndCall() // idempotent; reset observed once

	if resets != 1 {
		t.Fatalf("expected exactly one reset notification, got %d", resets)
	}
	if snap := s.Snapshot(); snap.InCall || snap.Connected || snap.DurationSeconds != 0 {
		t.Fatalf("expected initial state after end, got %+v", snap)
	}
}

func TestStoreConnectedImpliesInCall(t *testing.T) {
	s := NewStore()
	s.StartCall()
	s.SetConnected(true)
	s.EndCall()
	// A stale SetConnected after EndCall must not resurrect the call.
	s.SetConnected(true)
	if snap := s.Snapshot(); snap.Connected && !snap.InCall {
		t.Fatalf("invariant violated: connected without in-call: %+v", snap)
	}
	if snap := s.Snapshot(); snap.Connected {
		t.Fatalf("stale setter must be dropped after end, got %+v", snap)
	}
}

func TestIndicatorVisible(t *testing.T) {
	cases := []struct {
		route  string
		snap   Snapshot
		expect bool
	}{
		{"/citizen", Snapshot{InCall: true}, true},
		{"/call", Snapshot{InCall: true}, false},
		{"/citizen", Snapshot{}, false},
		{"/payments", Snapshot{InCall: true, Connected: true}, true},
	}
	for _, tc := range cases {
		if got := IndicatorVisible(tc.route, tc.snap); got != tc.expect {
			t.Fatalf("IndicatorVisible(%q, %+v) = %v, want %v", tc.route, tc.snap, got, tc.expect)
		}
	}
}

func TestWidgetVisible(t *testing.T) {
	allowed := []string{"/", "/citizen"}
	cases := []struct {
		route  string
		expect bool
	}{
		{"/", true},
		{"/citizen", true},
		{"/citizen/returns", true},
		{"/officer", false},
		{"/call", false},
	}
	for _, tc := range cases {
		if got := WidgetVisible(tc.route, allowed); got != tc.expect {
			t.Fatalf("WidgetVisible(%q) = %v, want %v", tc.route, got, tc.expect)
		}
	}
}
