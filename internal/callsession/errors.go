package callsession

import (
	"strings"

	"gavalink/internal/voicevendor"
)

// FailureKind classifies why a session ended up in PhaseFailed.
type FailureKind string

const (
	FailurePermissionDenied FailureKind = "permission_denied"
	FailureQuotaExhausted   FailureKind = "quota_exhausted"
	FailureAuth             FailureKind = "auth_failure"
	FailureNetwork          FailureKind = "network_failure"
	FailureUnknown          FailureKind = "unknown"
)

// CallError is the only error shape the UI ever sees: a classified kind plus
// a human-readable message. Raw vendor errors never leave this package.
type CallError struct {
	Kind    FailureKind `json:"kind"`
	Message string      `json:"message"`

	cause error
}

func (e *CallError) Error() string {
	if e.cause != nil {
		return string(e.Kind) + ": " + e.cause.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *CallError) Unwrap() error { return e.cause }

func newCallError(kind FailureKind, cause error) *CallError {
	return &CallError{Kind: kind, Message: userMessage(kind), cause: cause}
}

func userMessage(kind FailureKind) string {
	switch kind {
	case FailurePermissionDenied:
		return "Microphone access is required for voice calls. Please allow microphone access and try again."
	case FailureQuotaExhausted:
		return "The voice service is out of credit. Please top up the voice service account and try again."
	case FailureAuth:
		return "Could not authenticate with the voice service. Please check the service credentials."
	case FailureNetwork:
		return "Could not reach the voice service. Please check your connection and try again."
	default:
		return "Something went wrong with the voice call. Please try again later."
	}
}

// classifyVendor maps a vendor error event to a CallError. A structured code
// wins outright; otherwise substring heuristics on the detail text apply, in
// fixed priority order: quota before auth before network. The ordering is
// carried over from the portal's behavior and is deliberate even when several
// indicators match at once.
func classifyVendor(code voicevendor.ErrorCode, detail string) *CallError {
	switch code {
	case voicevendor.CodeQuotaExceeded:
		return &CallError{Kind: FailureQuotaExhausted, Message: userMessage(FailureQuotaExhausted)}
	case voicevendor.CodeUnauthorized:
		return &CallError{Kind: FailureAuth, Message: userMessage(FailureAuth)}
	case voicevendor.CodeNetwork:
		return &CallError{Kind: FailureNetwork, Message: userMessage(FailureNetwork)}
	}
	return classifyText(detail)
}

// classifyText falls back to case-insensitive substring matching on raw error
// text. Known fragility: the vendor does not document these strings.
func classifyText(detail string) *CallError {
	lower := strings.ToLower(detail)

	switch {
	case containsAny(lower, "quota", "credit", "limit"):
		return &CallError{Kind: FailureQuotaExhausted, Message: userMessage(FailureQuotaExhausted)}
	case containsAny(lower, "unauthorized", "401", "api key", "api-key", "apikey"):
		return &CallError{Kind: FailureAuth, Message: userMessage(FailureAuth)}
	case containsAny(lower, "network", "fetch", "connection", "connect"):
		return &CallError{Kind: FailureNetwork, Message: userMessage(FailureNetwork)}
	default:
		return &CallError{Kind: FailureUnknown, Message: userMessage(FailureUnknown)}
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
