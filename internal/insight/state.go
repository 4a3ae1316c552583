// Package insight consumes the AI backend's chunked line-delimited event
// protocol for long-running analyses, one state machine per insight kind,
// with a client-side staleness cache and a single non-streaming fallback
// on stream failure.
package insight

import "time"

// Kind names one long-running analysis query.
type Kind string

// Phase is the position of one kind's state machine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseStreaming
	PhaseComplete
	PhaseStreamFailed
	PhaseFallbackRequested
	PhaseFallbackComplete
	PhaseFallbackFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseStreaming:
		return "streaming"
	case PhaseComplete:
		return "complete"
	case PhaseStreamFailed:
		return "stream_failed"
	case PhaseFallbackRequested:
		return "fallback_requested"
	case PhaseFallbackComplete:
		return "fallback_complete"
	case PhaseFallbackFailed:
		return "fallback_failed"
	default:
		return "idle"
	}
}

// Terminal reports whether the machine stops here.
func (p Phase) Terminal() bool {
	return p == PhaseComplete || p == PhaseFallbackComplete || p == PhaseFallbackFailed
}

// Completed reports whether the phase carries usable final content. The
// fallback's success is treated identically to a streamed completion.
func (p Phase) Completed() bool {
	return p == PhaseComplete || p == PhaseFallbackComplete
}

// State is one kind's observable condition. Values are copied out; the
// client owns the only mutable copy.
type State struct {
	Kind          Kind
	Phase         Phase
	StatusMessage string
	Content       string
	FetchedAt     time.Time
	Err           string
}

// Fresh reports whether a completed state is still within the staleness
// window at the given instant.
func (s State) Fresh(now time.Time, staleness time.Duration) bool {
	return s.Phase.Completed() && now.Sub(s.FetchedAt) < staleness
}
