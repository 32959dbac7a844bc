package moderation

import (
	"sync/atomic"
	"time"
)

// Directive is the escalation decision for a warning count.
type Directive int

const (
	DirectiveNone Directive = iota
	DirectiveMute
	DirectiveBan
)

func (d Directive) String() string {
	switch d {
	case DirectiveMute:
		return "mute"
	case DirectiveBan:
		return "ban"
	default:
		return "none"
	}
}

// Thresholds holds the warning counts that trigger automatic sanctions.
type Thresholds struct {
	MuteCount    int
	MuteDuration time.Duration
	BanCount     int
}

// Decide maps a warning count to an escalation directive.
// Ban is evaluated first so it takes precedence when both thresholds
// are crossed at once.
func Decide(warningCount int, t Thresholds) Directive {
	if warningCount >= t.BanCount {
		return DirectiveBan
	}

	if warningCount >= t.MuteCount {
		return DirectiveMute
	}

	return DirectiveNone
}

// ThresholdStore holds the process-wide escalation thresholds.
// Values are read atomically at decision time, so runtime updates apply
// to the next warning without locking. Updates are intentionally not
// persisted; a restart resets to the configured defaults.
type ThresholdStore struct {
	value atomic.Pointer[Thresholds]
}

// NewThresholdStore creates a threshold store with initial values.
func NewThresholdStore(t Thresholds) *ThresholdStore {
	s := &ThresholdStore{}
	s.value.Store(&t)

	return s
}

// Load returns the current thresholds.
func (s *ThresholdStore) Load() Thresholds {
	return *s.value.Load()
}

// SetMute updates the mute threshold and duration.
func (s *ThresholdStore) SetMute(count int, duration time.Duration) {
	t := s.Load()
	t.MuteCount = count
	t.MuteDuration = duration
	s.value.Store(&t)
}

// SetBan updates the ban threshold.
func (s *ThresholdStore) SetBan(count int) {
	t := s.Load()
	t.BanCount = count
	s.value.Store(&t)
}
