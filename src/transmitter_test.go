package beacon

import (
	"context"
	"math/cmplx"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
	"pgregory.net/rapid"
)

func newTestTransmitter(t *testing.T) (*Transmitter, *CaptureSink) {
	t.Helper()

	var sink = NewCaptureSink(CYCLE_SAMPLES)
	var tx = NewTransmitter(BuildFrame(DefaultPayload), sink)

	return tx, sink
}

func runTicks(tx *Transmitter, n int) {
	for range n {
		tx.OnTick()
	}
}

func TestTransmitterInitial(t *testing.T) {
	var tx, sink = newTestTransmitter(t)

	assert.Equal(t, TxState{Phase: PHASE_PREAMBLE}, tx.State())
	assert.Equal(t, uint16(DAC_OFFSET), tx.LastCode())
	assert.Equal(t, PHASE_PREAMBLE, tx.Phase())
	assert.Zero(t, tx.Samples())
	assert.Zero(t, tx.Cycles())
	assert.Empty(t, sink.Codes)
}

func TestTransmitterNeedsFrameAndSink(t *testing.T) {
	assert.Panics(t, func() { NewTransmitter(nil, NullSink{}) })
	assert.Panics(t, func() { NewTransmitter(BuildFrame(DefaultPayload), nil) })
}

func TestTransmitterPreamble(t *testing.T) {
	var tx, sink = newTestTransmitter(t)

	runTicks(tx, PREAMBLE_SAMPLES-1)

	assert.Equal(t, PHASE_PREAMBLE, tx.State().Phase)

	tx.OnTick()

	var s = tx.State()
	assert.Equal(t, PHASE_DATA, s.Phase)
	assert.Equal(t, 0, s.CarrierPhase, "32000 is a multiple of 5")
	assert.Equal(t, 0, s.SymbolIndex)
	assert.Equal(t, 0, s.SymbolSampleCount)
	assert.Equal(t, 0, s.PreambleCount)

	require.Len(t, sink.Codes, PREAMBLE_SAMPLES)
	for i, c := range sink.Codes {
		if c != dacTables.Carrier[i%CARRIER_PHASES] {
			t.Fatalf("preamble sample %d is %d, expected %d", i, c, dacTables.Carrier[i%CARRIER_PHASES])
		}
	}

	// The last sample written was still preamble.
	assert.Equal(t, PHASE_PREAMBLE, tx.Phase())
	assert.Equal(t, dacTables.Carrier[(PREAMBLE_SAMPLES-1)%CARRIER_PHASES], tx.LastCode())
}

// assertWrappedToPreamble checks the state just after the guard ends.
// Only the idle count is reset there; the symbol index stays past the
// end of the frame until the next preamble finishes.
func assertWrappedToPreamble(t *testing.T, s TxState) {
	t.Helper()

	assert.Equal(t, PHASE_PREAMBLE, s.Phase)
	assert.Equal(t, 0, s.PreambleCount)
	assert.Equal(t, 0, s.IdleCount)
	assert.Equal(t, 0, s.SymbolSampleCount)
	assert.Equal(t, MESSAGE_BITS, s.SymbolIndex)
}

func TestTransmitterFullCycle(t *testing.T) {
	var tx, sink = newTestTransmitter(t)
	var frame = tx.Frame()

	runTicks(tx, CYCLE_SAMPLES)

	require.Len(t, sink.Codes, CYCLE_SAMPLES)

	for k := range DATA_SAMPLES {
		var bit = k / SAMPLES_PER_SYMBOL

		var symbol uint8
		if bit < MESSAGE_BITS {
			symbol = frame[bit]
		}

		var n = PREAMBLE_SAMPLES + k
		var want = dacTables.Symbol[symbol][n%CARRIER_PHASES]

		if sink.Codes[n] != want {
			t.Fatalf("data sample %d (bit %d) is %d, expected %d", k, bit, sink.Codes[n], want)
		}
	}

	assertWrappedToPreamble(t, tx.State())
	assert.Equal(t, 0, tx.State().CarrierPhase, "93500 is a multiple of 5 too")
	assert.Equal(t, uint64(1), tx.Cycles())
	assert.Equal(t, uint64(CYCLE_SAMPLES), tx.Samples())
}

func TestTransmitterSecondCycleRepeats(t *testing.T) {
	var tx, sink = newTestTransmitter(t)

	runTicks(tx, 2*CYCLE_SAMPLES)

	require.Len(t, sink.Codes, 2*CYCLE_SAMPLES)
	assert.Equal(t, sink.Codes[:CYCLE_SAMPLES], sink.Codes[CYCLE_SAMPLES:])
	assert.Equal(t, uint64(2), tx.Cycles())
}

func TestTransmitterSymbolBoundary(t *testing.T) {
	var tx, _ = newTestTransmitter(t)

	tx.phase = PHASE_DATA
	tx.symbolIndex = 7
	tx.symbolSampleCount = SAMPLES_PER_SYMBOL - 1

	tx.OnTick()

	var s = tx.State()
	assert.Equal(t, 8, s.SymbolIndex)
	assert.Equal(t, 0, s.SymbolSampleCount)
	assert.Equal(t, PHASE_DATA, s.Phase)
}

func TestTransmitterIdleGuard(t *testing.T) {
	var tx, sink = newTestTransmitter(t)

	tx.phase = PHASE_DATA
	tx.symbolIndex = MESSAGE_BITS

	runTicks(tx, SAMPLES_PER_SYMBOL)

	assert.Equal(t, 1, tx.State().IdleCount)
	assert.Equal(t, PHASE_DATA, tx.State().Phase)

	runTicks(tx, SAMPLES_PER_SYMBOL)

	assertWrappedToPreamble(t, tx.State())
	assert.Equal(t, (2*SAMPLES_PER_SYMBOL)%CARRIER_PHASES, tx.State().CarrierPhase)
	assert.Equal(t, uint64(1), tx.Cycles())

	// Guard symbols are sent as 0.
	for i, c := range sink.Codes {
		assert.Equal(t, dacTables.Symbol[0][i%CARRIER_PHASES], c, "sample %d", i)
	}
}

func TestTransmitterPhaseContinuous(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var n = rapid.IntRange(0, 2*CYCLE_SAMPLES).Draw(t, "n")

		var tx = NewTransmitter(BuildFrame(DefaultPayload), NullSink{})
		runTicks(tx, n)

		assert.Equal(t, n%CARRIER_PHASES, tx.State().CarrierPhase)
		assert.Equal(t, uint64(n), tx.Samples())
		assert.Equal(t, uint64(n/CYCLE_SAMPLES), tx.Cycles())

		var wantPhase = PHASE_PREAMBLE
		if n%CYCLE_SAMPLES >= PREAMBLE_SAMPLES {
			wantPhase = PHASE_DATA
		}
		assert.Equal(t, wantPhase, tx.State().Phase)
	})
}

func TestTransmitterObserveConcurrently(t *testing.T) {
	var tx = NewTransmitter(BuildFrame(DefaultPayload), NullSink{})

	var ctx, cancel = context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			assert.LessOrEqual(t, tx.LastCode(), uint16(DAC_MAX))
			assert.Contains(t, []TxPhase{PHASE_PREAMBLE, PHASE_DATA}, tx.Phase())
		}
	}()

	require.NoError(t, CountedTick{N: CYCLE_SAMPLES}.Run(ctx, tx.OnTick))

	cancel()
	wg.Wait()

	assert.Equal(t, uint64(1), tx.Cycles())
}

// peakBin is the index of the largest non-DC FFT bin.
func peakBin(codes []uint16) int {
	var x = make([]float64, len(codes))
	for i, c := range codes {
		x[i] = float64(c)
	}

	var mean = stat.Mean(x, nil)
	for i := range x {
		x[i] -= mean
	}

	var coeff = fourier.NewFFT(len(x)).Coefficients(nil, x)

	var best = 1
	for i := 1; i < len(coeff); i++ {
		if cmplx.Abs(coeff[i]) > cmplx.Abs(coeff[best]) {
			best = i
		}
	}

	return best
}

func TestTransmitterCarrierFrequency(t *testing.T) {
	var tx, sink = newTestTransmitter(t)

	runTicks(tx, 1000)

	// 1000 points at 200 kHz is 200 Hz per bin.
	var fft = fourier.NewFFT(1000)
	assert.InDelta(t, CARRIER_FREQ_HZ, fft.Freq(peakBin(sink.Codes))*SAMPLE_RATE_HZ, 1)
}

func TestTransmitterDataStaysOnCarrier(t *testing.T) {
	var tx, sink = newTestTransmitter(t)

	runTicks(tx, PREAMBLE_SAMPLES)
	sink.Codes = sink.Codes[:0]
	runTicks(tx, 20*SAMPLES_PER_SYMBOL)

	var n = len(sink.Codes)
	var fft = fourier.NewFFT(n)
	assert.InDelta(t, CARRIER_FREQ_HZ, fft.Freq(peakBin(sink.Codes))*SAMPLE_RATE_HZ, 2*SYMBOL_RATE_HZ)
}
