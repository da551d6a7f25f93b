// Package progress implements a thin progress bar wrapper ticked once per
// dispatched simulation event, coalescing its redraws so a long run doesn't
// spend its time budget repainting a terminal.
package progress

import (
	"github.com/schollz/progressbar/v3"

	dtime "github.com/kshprenger/dscale/time"
)

// coalesceTimes bounds how many times the bar actually redraws over a run,
// mirroring the original's K_PROGRESS_TIMES constant.
const coalesceTimes = 20

// Bar renders a Simulation's progress toward its configured time budget.
type Bar struct {
	bar     *progressbar.ProgressBar
	delta   int64
	prevLog int64
}

// New builds a Bar tracking progress toward total Jiffies of virtual time.
// Passing hidden=true (for non-interactive or test runs) suppresses all
// rendering while still accepting MakeProgress/Finish calls.
func New(total dtime.Jiffies, hidden bool) *Bar {
	var bar *progressbar.ProgressBar
	if hidden {
		bar = progressbar.DefaultBytesSilent(int64(total))
	} else {
		bar = progressbar.NewOptions64(
			int64(total),
			progressbar.OptionSetDescription("simulating"),
			progressbar.OptionShowCount(),
		)
	}

	delta := int64(total) / coalesceTimes
	if delta == 0 {
		delta = 1
	}

	return &Bar{bar: bar, delta: delta}
}

// MakeProgress advances the bar to time, redrawing only when time has
// reached a later multiple of 1/coalesceTimes of the total budget than it
// had at the last redraw.
func (b *Bar) MakeProgress(time dtime.Jiffies) {
	d := int64(time) / b.delta
	if d <= b.prevLog {
		return
	}
	b.prevLog = d
	_ = b.bar.Set64(int64(time))
}

// Finish marks the bar complete.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
}
