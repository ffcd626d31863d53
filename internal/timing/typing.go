package timing

import (
	"context"
	"math/rand"
	"time"
)

const (
	// MaxTypingDuration caps the emulated typing time for any reply length.
	MaxTypingDuration = 10 * time.Second

	// signalInterval is the longest pause between two typing signals; the
	// channel drops the indicator after roughly ten seconds of silence.
	signalInterval = 8 * time.Second
)

// Signaler fires a single "typing" indicator in the channel. Idempotent,
// safe to call repeatedly.
type Signaler interface {
	SignalTyping(ctx context.Context) error
}

// TypingDuration draws a human-plausible typing time for a reply of length
// characters: uniform over [1 + L/12, 2 + L/8] seconds, clamped to the cap.
func TypingDuration(rng *rand.Rand, length int) time.Duration {
	lo := 1 + float64(length)/12
	hi := 2 + float64(length)/8
	seconds := lo + rng.Float64()*(hi-lo)

	d := time.Duration(seconds * float64(time.Second))
	if d > MaxTypingDuration {
		d = MaxTypingDuration
	}
	return d
}

// Emulator keeps the typing indicator alive for a planned duration.
type Emulator struct {
	// Sleep is overridable for tests; nil means a real context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// EmulateTyping signals "typing" and sleeps in signal-interval steps until
// the planned duration is spent. A failed signal aborts silently: the caller
// falls through to the actual send either way.
func (e *Emulator) EmulateTyping(ctx context.Context, s Signaler, d time.Duration) {
	sleep := e.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	remaining := d
	for remaining > 0 {
		if err := s.SignalTyping(ctx); err != nil {
			return
		}
		step := remaining
		if step > signalInterval {
			step = signalInterval
		}
		if err := sleep(ctx, step); err != nil {
			return
		}
		remaining -= step
	}
}

// SleepContext blocks for d or until the context is cancelled.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
