// Package beacon is the signal core of a 40 kHz emergency locator beacon.
package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Generate the beacon waveform, one 12 bit DAC code per
 *		sample tick:
 *
 *			160 ms of unmodulated carrier (preamble).
 *			121 data bits, +/- 1.1 radian phase shift keying.
 *			2 idle symbols of guard.
 *
 *		and then around again, forever.
 *
 * Description:	Everything that costs anything is done once at startup.
 *		The frame is built into a bit buffer and the carrier
 *		arithmetic is folded into two small DAC tables, so the
 *		tick handler is two table reads, a DAC write and a few
 *		counters.
 *
 *---------------------------------------------------------------*/

// Modulation parameters.

const CARRIER_FREQ_HZ = 40000 // 40 kHz carrier
const SYMBOL_RATE_HZ = 400    // 400 baud
const SAMPLE_RATE_HZ = 200000 // 200 kHz sampling

const SAMPLES_PER_SYMBOL = SAMPLE_RATE_HZ / SYMBOL_RATE_HZ // 500

// Samples in one carrier cycle.  Must divide evenly.
const CARRIER_PHASES = SAMPLE_RATE_HZ / CARRIER_FREQ_HZ // 5

// 12 bit DAC.

const DAC_OFFSET = 2048 // Mid-scale.
const DAC_MAX = 4095

// Frame timing.

const PREAMBLE_DURATION_MS = 160

const PREAMBLE_SAMPLES = PREAMBLE_DURATION_MS * SAMPLE_RATE_HZ / 1000 // 32,000

const IDLE_SYMBOLS = 2 // 5 ms guard interval

const DATA_SAMPLES = (MESSAGE_BITS + IDLE_SYMBOLS) * SAMPLES_PER_SYMBOL // 61,500

// Ticks from the start of one preamble to the start of the next.
const CYCLE_SAMPLES = PREAMBLE_SAMPLES + DATA_SAMPLES // 93,500

// Generator polynomial for BCH(31,21).
const BCH_POLY = 0x3B3

func init() {
	assertf(SAMPLE_RATE_HZ%CARRIER_FREQ_HZ == 0, "sample rate %d is not a multiple of carrier %d", SAMPLE_RATE_HZ, CARRIER_FREQ_HZ)
	assertf(SAMPLE_RATE_HZ%SYMBOL_RATE_HZ == 0, "sample rate %d is not a multiple of symbol rate %d", SAMPLE_RATE_HZ, SYMBOL_RATE_HZ)
}
