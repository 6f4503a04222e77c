package callsession

import (
	"testing"

	"gavalink/internal/voicevendor"
)

func TestClassifyTextPriorityOrder(t *testing.T) {
	cases := []struct {
		detail string
		want   FailureKind
	}{
		{"quota exceeded for this account", FailureQuotaExhausted},
		{"monthly credit limit reached", FailureQuotaExhausted},
		// quota indicators win even when network indicators are present
		{"network error while checking QUOTA", FailureQuotaExhausted},
		{"401 Unauthorized", FailureAuth},
		{"invalid api key", FailureAuth},
		// auth wins over network ordering
		{"connection rejected: unauthorized", FailureAuth},
		{"Failed to fetch", FailureNetwork},
		{"websocket connection dropped", FailureNetwork},
		{"something exploded", FailureUnknown},
		{"", FailureUnknown},
	}

	for _, tc := range cases {
		got := classifyText(tc.detail)
		if got.Kind != tc.want {
			t.Fatalf("classifyText(%q) = %s, want %s", tc.detail, got.Kind, tc.want)
		}
		if got.Message == "" {
			t.Fatalf("classified error must carry a user-facing message")
		}
	}
}

func TestClassifyVendorPrefersStructuredCode(t *testing.T) {
	// Code wins even over contradictory detail text.
	got := classifyVendor(voicevendor.CodeUnauthorized, "quota exceeded")
	if got.Kind != FailureAuth {
		t.Fatalf("structured code must win, got %s", got.Kind)
	}

	got = classifyVendor("", "quota exceeded")
	if got.Kind != FailureQuotaExhausted {
		t.Fatalf("expected text fallback, got %s", got.Kind)
	}
}

func TestCallErrorWrapsCause(t *testing.T) {
	cause := errTest("denied")
	e := newCallError(FailurePermissionDenied, cause)
	if e.Unwrap() != cause {
		t.Fatalf("expected wrapped cause")
	}
	if e.Error() == "" || e.Message == "" {
		t.Fatalf("expected error and message text")
	}
}

type errTest string

func (e errTest) Error() string { return string(e) }
