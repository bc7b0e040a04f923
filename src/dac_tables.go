package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Precomputed DAC codes for the carrier and for each
 *		data symbol, one per carrier phase index.
 *
 * Description:	At 200 kHz a 40 kHz carrier is exactly 5 samples per
 *		cycle, so the whole modulator collapses to a table
 *		lookup by (symbol, phase index).
 *
 *		Everything is Q15 with a signed 32 bit accumulator.
 *		Q15 * Q15 is Q30.  The carrier term is cos(wt) cos(1.1)
 *		and is scaled >> 18 into roughly +/- 1860 around mid-scale.
 *
 *		The modulated terms are the full unit phasor
 *		cos(wt +/- 1.1), so >> 18 would give +/- 4096 and run off
 *		both ends of a 12 bit DAC.  They get one more bit of
 *		shift, which lands them at +/- 2048, the same envelope
 *		as the preamble within 10%.
 *
 *---------------------------------------------------------------*/

import (
	"gonum.org/v1/gonum/stat"
)

// Carrier wave, 5 samples @ 200 kHz = 40 kHz, Q15.
var cos_table = [CARRIER_PHASES]int16{32767, 10126, -26510, -26510, 10126}
var sin_table = [CARRIER_PHASES]int16{0, 31163, 19260, -19260, -31163}

// Phase shift of +/- 1.1 rad, Q15.

const COS_1P1_Q15 = 14865
const SIN_1P1_Q15 = 29197

const CARRIER_DAC_SHIFT = 18
const SYMBOL_DAC_SHIFT = 19

type DACTables struct {
	Carrier [CARRIER_PHASES]uint16

	// First index is the symbol bit.
	//	0 = +1.1 rad.
	//	1 = -1.1 rad.
	Symbol [2][CARRIER_PHASES]uint16
}

// Read only after package initialization.
var dacTables = ComputeDACTables()

func dacCode(acc int32, shift uint) uint16 {
	var code = int32(DAC_OFFSET) + (acc >> shift)

	assertf(code >= 0 && code <= DAC_MAX, "DAC code %d out of range", code)

	return uint16(code)
}

/*-------------------------------------------------------------------
 *
 * Name:	ComputeDACTables
 *
 * Purpose:	Fold the carrier and modulation arithmetic into tables.
 *
 * Returns:	The tables.  Panics if any code falls outside 0 .. 4095.
 *
 *--------------------------------------------------------------------*/

func ComputeDACTables() DACTables {
	var t DACTables

	for i := range CARRIER_PHASES {
		var c = int32(cos_table[i])
		var s = int32(sin_table[i])

		t.Carrier[i] = dacCode(c*COS_1P1_Q15, CARRIER_DAC_SHIFT)

		t.Symbol[0][i] = dacCode(c*COS_1P1_Q15-s*SIN_1P1_Q15, SYMBOL_DAC_SHIFT)
		t.Symbol[1][i] = dacCode(c*COS_1P1_Q15+s*SIN_1P1_Q15, SYMBOL_DAC_SHIFT)
	}

	return t
}

// DefaultDACTables returns a copy of the tables the transmitter uses.
func DefaultDACTables() DACTables {
	return dacTables
}

// TableStats summarizes one table for diagnostics.  Not for the tick path.
type TableStats struct {
	Mean float64
	Min  uint16
	Max  uint16
}

func tableStats(codes []uint16) TableStats {
	var x = make([]float64, len(codes))
	var ts = TableStats{Mean: 0, Min: DAC_MAX, Max: 0}

	for i, c := range codes {
		x[i] = float64(c)
		ts.Min = min(ts.Min, c)
		ts.Max = max(ts.Max, c)
	}

	ts.Mean = stat.Mean(x, nil)

	return ts
}

// Stats returns carrier, symbol 0 and symbol 1 summaries, in that order.
func (t *DACTables) Stats() [3]TableStats {
	return [3]TableStats{
		tableStats(t.Carrier[:]),
		tableStats(t.Symbol[0][:]),
		tableStats(t.Symbol[1][:]),
	}
}
