package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Sample rate state machine for the beacon.
 *
 * Description:	Two phases:
 *
 *		PREAMBLE	Unmodulated carrier for PREAMBLE_SAMPLES
 *				ticks, then DATA.
 *
 *		DATA		One frame bit per SAMPLES_PER_SYMBOL ticks.
 *				After the last bit, IDLE_SYMBOLS symbols
 *				with the bit forced to 0, then PREAMBLE.
 *
 *		The carrier phase index steps once per tick and is
 *		never reset, so phase is continuous across every
 *		transition.
 *
 *		OnTick is the only writer of the state below.  It must
 *		not block, allocate or log.  The foreground can watch
 *		progress through LastCode, Phase, Samples and Cycles.
 *
 *---------------------------------------------------------------*/

import (
	"sync/atomic"
)

type TxPhase int

const (
	PHASE_PREAMBLE TxPhase = iota
	PHASE_DATA
)

func (p TxPhase) String() string {
	switch p {
	case PHASE_PREAMBLE:
		return "preamble"
	case PHASE_DATA:
		return "data"
	default:
		return "unknown"
	}
}

// Observation port layout: DAC code in the low 16 bits, phase above.
const observePhaseShift = 16

type Transmitter struct {
	frame  *Frame
	tables *DACTables
	sink   SampleSink

	// Owned by the tick context.
	phase             TxPhase
	carrierPhase      uint8  // 0 .. CARRIER_PHASES-1
	preambleCount     uint32 // 0 .. PREAMBLE_SAMPLES
	symbolSampleCount uint16 // 0 .. SAMPLES_PER_SYMBOL-1
	symbolIndex       uint16 // 0 .. MESSAGE_BITS
	idleCount         uint16 // 0 .. IDLE_SYMBOLS-1

	// Written by the tick, read anywhere.
	observe atomic.Uint32
	samples atomic.Uint64
	cycles  atomic.Uint64
}

// NewTransmitter starts in PREAMBLE with all counters at zero and the
// observation port showing mid-scale, which is what the DAC is
// initialized to.
func NewTransmitter(frame *Frame, sink SampleSink) *Transmitter {
	assertf(frame != nil, "nil frame")
	assertf(sink != nil, "nil sink")

	var t = &Transmitter{ //nolint:exhaustruct
		frame:  frame,
		tables: &dacTables,
		sink:   sink,
		phase:  PHASE_PREAMBLE,
	}

	t.observe.Store(DAC_OFFSET)

	return t
}

/*-------------------------------------------------------------------
 *
 * Name:	OnTick
 *
 * Purpose:	Produce one DAC sample and advance.
 *
 * Description:	Order within a tick is fixed:
 *			table lookup,
 *			DAC write,
 *			counter updates,
 *			transition check.
 *
 *--------------------------------------------------------------------*/

func (t *Transmitter) OnTick() {
	var code uint16

	if t.phase == PHASE_PREAMBLE {
		code = t.tables.Carrier[t.carrierPhase]
	} else {
		var symbol uint8 // Idle guard sends 0.
		if t.symbolIndex < MESSAGE_BITS {
			symbol = t.frame[t.symbolIndex]
		}

		code = t.tables.Symbol[symbol][t.carrierPhase]
	}

	t.sink.WriteDAC(code)
	t.observe.Store(uint32(code) | uint32(t.phase)<<observePhaseShift)
	t.samples.Add(1)

	if t.carrierPhase < CARRIER_PHASES-1 {
		t.carrierPhase++
	} else {
		t.carrierPhase = 0
	}

	if t.phase == PHASE_PREAMBLE {
		t.preambleCount++
		if t.preambleCount >= PREAMBLE_SAMPLES {
			t.phase = PHASE_DATA
			t.preambleCount = 0
			t.symbolIndex = 0
			t.symbolSampleCount = 0
		}
	} else {
		t.symbolSampleCount++
		if t.symbolSampleCount >= SAMPLES_PER_SYMBOL {
			t.symbolSampleCount = 0

			if t.symbolIndex < MESSAGE_BITS {
				t.symbolIndex++
			} else {
				t.idleCount++
				if t.idleCount >= IDLE_SYMBOLS {
					t.phase = PHASE_PREAMBLE
					t.idleCount = 0
					t.cycles.Add(1)
				}
			}
		}
	}

	if debugAssertions {
		t.checkInvariants()
	}
}

func (t *Transmitter) checkInvariants() {
	assertf(t.carrierPhase < CARRIER_PHASES, "carrier phase %d", t.carrierPhase)
	assertf(t.symbolIndex <= MESSAGE_BITS, "symbol index %d", t.symbolIndex)
	assertf(t.symbolSampleCount < SAMPLES_PER_SYMBOL, "symbol sample count %d", t.symbolSampleCount)
	assertf(t.preambleCount < PREAMBLE_SAMPLES, "preamble count %d", t.preambleCount)
	assertf(t.idleCount < IDLE_SYMBOLS, "idle count %d", t.idleCount)
}

// LastCode is the most recent DAC code written.
func (t *Transmitter) LastCode() uint16 {
	return uint16(t.observe.Load())
}

// Phase is the phase the most recent sample was generated in.
func (t *Transmitter) Phase() TxPhase {
	return TxPhase(t.observe.Load() >> observePhaseShift)
}

// Samples is the number of ticks handled so far.
func (t *Transmitter) Samples() uint64 {
	return t.samples.Load()
}

// Cycles is the number of completed preamble + data + guard cycles.
func (t *Transmitter) Cycles() uint64 {
	return t.cycles.Load()
}

func (t *Transmitter) Frame() *Frame {
	return t.frame
}

// TxState is a copy of the tick owned state.
type TxState struct {
	Phase             TxPhase
	CarrierPhase      int
	PreambleCount     int
	SymbolSampleCount int
	SymbolIndex       int
	IdleCount         int
}

// State must only be called from the tick context, or when no tick
// source is running.
func (t *Transmitter) State() TxState {
	return TxState{
		Phase:             t.phase,
		CarrierPhase:      int(t.carrierPhase),
		PreambleCount:     int(t.preambleCount),
		SymbolSampleCount: int(t.symbolSampleCount),
		SymbolIndex:       int(t.symbolIndex),
		IdleCount:         int(t.idleCount),
	}
}
