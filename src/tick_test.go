package beacon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCountedTick(t *testing.T) {
	var n int
	var err = CountedTick{N: 12345}.Run(t.Context(), func() { n++ })

	require.NoError(t, err)
	assert.Equal(t, 12345, n)
}

func TestCountedTickCancelled(t *testing.T) {
	var ctx, cancel = context.WithCancel(t.Context())

	var n int
	var err = CountedTick{N: 0}.Run(ctx, func() {
		n++
		if n == 5000 {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.GreaterOrEqual(t, n, 5000)
	assert.Less(t, n, 5000+countedTickCheck+1)
}

func TestTicksAt(t *testing.T) {
	assert.Equal(t, uint64(0), ticksAt(0, SAMPLE_RATE_HZ))
	assert.Equal(t, uint64(200), ticksAt(time.Millisecond, SAMPLE_RATE_HZ))
	assert.Equal(t, uint64(PREAMBLE_SAMPLES), ticksAt(PREAMBLE_DURATION_MS*time.Millisecond, SAMPLE_RATE_HZ))
	assert.Equal(t, uint64(1), ticksAt(5*time.Microsecond, SAMPLE_RATE_HZ))
	assert.Equal(t, uint64(0), ticksAt(4*time.Microsecond, SAMPLE_RATE_HZ))

	// A year of ticks doesn't overflow.
	var year = 365 * 24 * time.Hour
	assert.Equal(t, uint64(365*24*3600)*SAMPLE_RATE_HZ, ticksAt(year, SAMPLE_RATE_HZ))
}

func TestCatchUp(t *testing.T) {
	var c = &catchUp{rate: SAMPLE_RATE_HZ, maxLag: 0, done: 0}

	var run, missed = c.at(time.Millisecond)
	assert.Equal(t, uint64(200), run)
	assert.Zero(t, missed)

	// Late wakeup, everything owed is run.
	run, missed = c.at(10 * time.Millisecond)
	assert.Equal(t, uint64(1800), run)
	assert.Zero(t, missed)

	// Early or repeated wakeup.
	run, missed = c.at(10 * time.Millisecond)
	assert.Zero(t, run)
	assert.Zero(t, missed)

	run, _ = c.at(9 * time.Millisecond)
	assert.Zero(t, run)

	assert.Equal(t, uint64(2000), c.done)
}

func TestCatchUpSlip(t *testing.T) {
	var c = &catchUp{rate: SAMPLE_RATE_HZ, maxLag: ticksAt(time.Millisecond, SAMPLE_RATE_HZ), done: 0}

	var run, missed = c.at(time.Millisecond)
	assert.Equal(t, uint64(200), run, "exactly at the limit")
	assert.Zero(t, missed)

	run, missed = c.at(time.Second)
	assert.Equal(t, uint64(200), run)
	assert.Equal(t, uint64(SAMPLE_RATE_HZ-400), missed)
	assert.Equal(t, uint64(SAMPLE_RATE_HZ), c.done)
}

func TestCatchUpRate(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var steps = rapid.SliceOfN(rapid.Int64Range(0, int64(50*time.Millisecond)), 1, 100).Draw(t, "steps")

		var c = &catchUp{rate: SAMPLE_RATE_HZ, maxLag: 0, done: 0}
		var elapsed time.Duration
		var total uint64

		for _, step := range steps {
			elapsed += time.Duration(step)
			var run, missed = c.at(elapsed)
			assert.Zero(t, missed)
			total += run
		}

		assert.Equal(t, ticksAt(elapsed, SAMPLE_RATE_HZ), total)
	})
}

func TestPacedTickRuns(t *testing.T) {
	var p = NewPacedTick()
	p.Rate = 10000

	var ctx, cancel = context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	var n atomic.Int64
	var start = time.Now()

	require.NoError(t, p.Run(ctx, func() { n.Add(1) }))

	// Never ahead of the clock.  How far behind depends on the machine.
	var limit = ticksAt(time.Since(start), p.Rate)
	assert.Positive(t, n.Load())
	assert.LessOrEqual(t, uint64(n.Load()), limit)
}

func TestPacedTickSlip(t *testing.T) {
	var p = &PacedTick{
		Rate:     100000,
		Interval: 20 * time.Millisecond,
		MaxLag:   time.Millisecond,
	}

	var missed atomic.Uint64
	p.OnSlip = func(n uint64) { missed.Add(n) }

	var ctx, cancel = context.WithTimeout(t.Context(), 100*time.Millisecond)
	defer cancel()

	require.NoError(t, p.Run(ctx, func() {}))

	// Every 20 ms wakeup owes 2000 ticks but only 100 are allowed.
	assert.Positive(t, missed.Load())
}
