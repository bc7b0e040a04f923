package beacon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestDACTablesKnown(t *testing.T) {
	var tables = DefaultDACTables()

	assert.Equal(t, [CARRIER_PHASES]uint16{3906, 2622, 544, 544, 2622}, tables.Carrier)
	assert.Equal(t, [CARRIER_PHASES]uint16{2977, 599, 223, 2368, 4070}, tables.Symbol[0])
	assert.Equal(t, [CARRIER_PHASES]uint16{2977, 4070, 2368, 223, 599}, tables.Symbol[1])
}

func TestDACTablesInRange(t *testing.T) {
	var tables = ComputeDACTables()

	for _, row := range [][CARRIER_PHASES]uint16{tables.Carrier, tables.Symbol[0], tables.Symbol[1]} {
		for _, c := range row {
			assert.LessOrEqual(t, c, uint16(DAC_MAX))
		}
	}
}

func TestDACTablesCentred(t *testing.T) {
	var tables = DefaultDACTables()

	for i, s := range tables.Stats() {
		assert.InDelta(t, DAC_OFFSET, s.Mean, 2.0, "table %d", i)
	}
}

func TestDACTablesStats(t *testing.T) {
	var tables = DefaultDACTables()
	var stats = tables.Stats()

	assert.Equal(t, TableStats{Mean: 2047.6, Min: 544, Max: 3906}, stats[0])
	assert.Equal(t, uint16(223), stats[1].Min)
	assert.Equal(t, uint16(4070), stats[2].Max)
}

// Same first sample for both symbols: the phase shift is symmetric
// about the carrier at phase index 0.
func TestDACTablesSymbolsMirror(t *testing.T) {
	var tables = DefaultDACTables()

	for i := range CARRIER_PHASES {
		var j = (CARRIER_PHASES - i) % CARRIER_PHASES
		assert.Equal(t, tables.Symbol[0][i], tables.Symbol[1][j], "index %d", i)
	}
}

// The Q15 tables should agree with floating point to within rounding.
func TestDACTablesMatchFloat(t *testing.T) {
	var tables = DefaultDACTables()

	var carrier = make([]float64, CARRIER_PHASES)
	var sym0 = make([]float64, CARRIER_PHASES)
	var got0 = make([]float64, CARRIER_PHASES)
	var gotCarrier = make([]float64, CARRIER_PHASES)

	for i := range CARRIER_PHASES {
		var wt = 2 * math.Pi * float64(i) / CARRIER_PHASES

		carrier[i] = DAC_OFFSET + 4096*math.Cos(wt)*math.Cos(1.1)
		sym0[i] = DAC_OFFSET + 2048*math.Cos(wt+1.1)

		gotCarrier[i] = float64(tables.Carrier[i])
		got0[i] = float64(tables.Symbol[0][i])
	}

	assert.True(t, floats.EqualApprox(carrier, gotCarrier, 3), "carrier %v vs %v", gotCarrier, carrier)
	assert.True(t, floats.EqualApprox(sym0, got0, 3), "symbol 0 %v vs %v", got0, sym0)
}
