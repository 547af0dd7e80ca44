package ratelimit

import "time"

// Sleeper abstracts blocking waits so pacing is testable without
// real wall-clock delays.
type Sleeper interface {
	Sleep(d time.Duration)
}

// SleeperFunc adapts a function to the Sleeper interface
type SleeperFunc func(d time.Duration)

// Sleep calls the underlying function
func (f SleeperFunc) Sleep(d time.Duration) { f(d) }

// RealSleeper blocks with time.Sleep
type RealSleeper struct{}

// Sleep blocks for the given duration
func (RealSleeper) Sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// Pacer enforces the courtesy delays around each photo's archive unit:
// an unconditional delay on entering the unit and a shorter cooldown after
// completing it. The delays are fixed, not adaptive.
type Pacer struct {
	unitDelay    time.Duration
	unitCooldown time.Duration
	sleeper      Sleeper
}

// NewPacer creates a pacer with the given unit delays
func NewPacer(unitDelay, unitCooldown time.Duration) *Pacer {
	return &Pacer{
		unitDelay:    unitDelay,
		unitCooldown: unitCooldown,
		sleeper:      RealSleeper{},
	}
}

// NewPacerWithSleeper creates a pacer with an injected sleeper (used by tests)
func NewPacerWithSleeper(unitDelay, unitCooldown time.Duration, s Sleeper) *Pacer {
	return &Pacer{
		unitDelay:    unitDelay,
		unitCooldown: unitCooldown,
		sleeper:      s,
	}
}

// PreUnit blocks for the per-photo entry delay
func (p *Pacer) PreUnit() {
	p.sleeper.Sleep(p.unitDelay)
}

// PostUnit blocks for the post-completion cooldown
func (p *Pacer) PostUnit() {
	p.sleeper.Sleep(p.unitCooldown)
}
