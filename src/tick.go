package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Periodic tick sources for the transmitter.
 *
 * Description:	On the target a hardware timer interrupts at
 *		SAMPLE_RATE_HZ and calls the handler.  Here a Tick
 *		binds a handler to something that plays that part:
 *
 *		CountedTick	Back to back, as fast as possible.  For
 *				rendering to files and for tests.
 *
 *		PacedTick	Wall clock.  Wakes up every Interval and
 *				runs however many ticks are owed, so the
 *				long term rate is exact even though
 *				individual ticks are bunched up.
 *
 *		AudioTick	Sound card clock (tick_audio.go).
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"runtime"
	"time"
)

type Tick interface {
	// Run calls handler once per tick until ctx is done or the
	// source runs out.  handler must not block.
	Run(ctx context.Context, handler func()) error
}

// How often CountedTick looks at the context.
const countedTickCheck = 1000

// CountedTick calls the handler N times.  N of 0 means until cancelled.
type CountedTick struct {
	N uint64
}

func (c CountedTick) Run(ctx context.Context, handler func()) error {
	var n uint64

	for c.N == 0 || n < c.N {
		if n%countedTickCheck == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		handler()
		n++
	}

	return nil
}

type PacedTick struct {
	Rate     int           // Ticks per second.
	Interval time.Duration // Catch up this often.

	// Ticks more than MaxLag behind are dropped rather than
	// bursted out, and reported here.  Called from Run, not from
	// the handler.
	MaxLag time.Duration
	OnSlip func(missed uint64)
}

func NewPacedTick() *PacedTick {
	return &PacedTick{
		Rate:     SAMPLE_RATE_HZ,
		Interval: time.Millisecond,
		MaxLag:   100 * time.Millisecond,
		OnSlip:   nil,
	}
}

// ticksAt is the number of ticks due after elapsed, without
// overflowing for very long runs.
func ticksAt(elapsed time.Duration, rate int) uint64 {
	var secs = uint64(elapsed / time.Second)
	var rem = uint64(elapsed % time.Second)

	return secs*uint64(rate) + rem*uint64(rate)/uint64(time.Second)
}

// catchUp tracks how many ticks have been run against how many are
// owed.
type catchUp struct {
	rate   int
	maxLag uint64 // Ticks.  0 for no limit.
	done   uint64
}

// at returns how many ticks to run now, elapsed after the start, and
// how many to drop first.
func (c *catchUp) at(elapsed time.Duration) (run uint64, missed uint64) {
	var owed = ticksAt(elapsed, c.rate)
	if owed <= c.done {
		return 0, 0
	}

	if c.maxLag > 0 && owed-c.done > c.maxLag {
		missed = owed - c.done - c.maxLag
	}

	run = owed - c.done - missed
	c.done = owed

	return run, missed
}

/*-------------------------------------------------------------------
 *
 * Name:	PacedTick.Run
 *
 * Purpose:	Call handler at Rate per second, on average, until ctx
 *		is done.
 *
 * Description:	The OS thread is locked and its priority raised where
 *		the platform allows it.  Failing to raise priority is
 *		not fatal, the timing will just be worse.
 *
 *--------------------------------------------------------------------*/

func (p *PacedTick) Run(ctx context.Context, handler func()) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := raisePriority(); err != nil {
		logger.Warn("Could not raise tick priority", "err", err)
	}

	var c = &catchUp{rate: p.Rate, maxLag: ticksAt(p.MaxLag, p.Rate), done: 0}

	var ticker = time.NewTicker(p.Interval)
	defer ticker.Stop()

	var start = time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			var run, missed = c.at(now.Sub(start))

			if missed > 0 && p.OnSlip != nil {
				p.OnSlip(missed)
			}

			for range run {
				handler()
			}
		}
	}
}
