package deliveryjob

import (
	"math"
)

// Broadcast configuration defaults and bounds. Per-job overrides supplied at
// creation are clamped into these bounds; escalation on retry never exceeds
// the caps.
const (
	// DefaultRadiusKm is the initial broadcast search radius.
	DefaultRadiusKm = 5.0
	// MinRadiusKm is the lower bound for the broadcast radius.
	MinRadiusKm = 1.0
	// MaxRadiusKm is the cap for the broadcast radius, including escalation.
	MaxRadiusKm = 50.0

	// DefaultDurationSec is the initial broadcast duration.
	DefaultDurationSec = 60
	// MinDurationSec is the lower bound for the broadcast duration.
	MinDurationSec = 10
	// MaxDurationSec is the cap for the broadcast duration, including escalation.
	MaxDurationSec = 300

	// DefaultMaxAttempts is the number of broadcast attempts before a job is
	// escalated to manual assignment.
	DefaultMaxAttempts = 3
	// MinMaxAttempts is the lower bound for the attempt budget.
	MinMaxAttempts = 1
	// MaxMaxAttempts is the upper bound for the attempt budget.
	MaxMaxAttempts = 5

	// RadiusEscalationFactor widens the radius on every retry.
	RadiusEscalationFactor = 1.5
	// DurationEscalationFactor lengthens the duration on every retry.
	DurationEscalationFactor = 1.2
)

// BroadcastSettings carries the per-job broadcast configuration: initial
// search radius, broadcast duration and the attempt budget. It is an
// immutable value object; values outside the configured bounds are clamped,
// and non-positive values select the defaults.
type BroadcastSettings struct {
	radiusKm    float64
	durationSec int
	maxAttempts int
}

// DefaultBroadcastSettings returns the settings used when a job spec carries
// no overrides.
func DefaultBroadcastSettings() BroadcastSettings {
	return BroadcastSettings{
		radiusKm:    DefaultRadiusKm,
		durationSec: DefaultDurationSec,
		maxAttempts: DefaultMaxAttempts,
	}
}

// NewBroadcastSettings creates settings from per-job overrides. A zero or
// negative value selects the default for that knob; anything else is clamped
// into the configured bounds.
func NewBroadcastSettings(radiusKm float64, durationSec int, maxAttempts int) BroadcastSettings {
	s := DefaultBroadcastSettings()

	if radiusKm > 0 {
		s.radiusKm = clampFloat(radiusKm, MinRadiusKm, MaxRadiusKm)
	}
	if durationSec > 0 {
		s.durationSec = clampInt(durationSec, MinDurationSec, MaxDurationSec)
	}
	if maxAttempts > 0 {
		s.maxAttempts = clampInt(maxAttempts, MinMaxAttempts, MaxMaxAttempts)
	}

	return s
}

// RadiusKm returns the initial broadcast radius in kilometers.
func (s BroadcastSettings) RadiusKm() float64 {
	return s.radiusKm
}

// DurationSec returns the initial broadcast duration in seconds.
func (s BroadcastSettings) DurationSec() int {
	return s.durationSec
}

// MaxAttempts returns the broadcast attempt budget.
func (s BroadcastSettings) MaxAttempts() int {
	return s.maxAttempts
}

// escalateRadius widens a radius by the escalation factor, capped at MaxRadiusKm.
func escalateRadius(radiusKm float64) float64 {
	return math.Min(radiusKm*RadiusEscalationFactor, MaxRadiusKm)
}

// escalateDuration lengthens a duration by the escalation factor, rounded to
// the nearest second and capped at MaxDurationSec.
func escalateDuration(durationSec int) int {
	escalated := int(math.Round(float64(durationSec) * DurationEscalationFactor))
	if escalated > MaxDurationSec {
		return MaxDurationSec
	}
	return escalated
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
