package postprocess

import (
	"time"

	"github.com/matzehuels/impred/pkg/impred"
)

// MinIterationTime pads every iteration to at least Min of wall-clock
// time, measured between consecutive calls. It is meant for animations
// and has no effect on the layout itself.
type MinIterationTime struct {
	impred.Attachment

	Min time.Duration

	// Now and Sleep default to time.Now and time.Sleep.
	Now   func() time.Time
	Sleep func(time.Duration)

	last time.Time
}

func (m *MinIterationTime) Process(ctx *impred.Context) error {
	m.Check(ctx)
	now, sleep := m.Now, m.Sleep
	if now == nil {
		now = time.Now
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	t := now()
	if !m.last.IsZero() {
		if wait := m.Min - t.Sub(m.last); wait > 0 {
			sleep(wait)
			t = t.Add(wait)
		}
	}
	m.last = t
	return nil
}

var _ impred.PostProcessor = (*MinIterationTime)(nil)
