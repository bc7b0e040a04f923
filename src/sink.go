package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Where the DAC codes go.
 *
 * Description:	The transmitter hands each code to a SampleSink and
 *		never looks at the result; a real DAC write can't fail.
 *		Sinks that do I/O remember the first error, stop writing,
 *		and report it from Err and Close, like bufio.Writer.
 *
 *---------------------------------------------------------------*/

import (
	"io"
)

type SampleSink interface {
	WriteDAC(code uint16)
}

// SampleSinkCloser is a sink that owns a file, port or device.
type SampleSinkCloser interface {
	SampleSink
	Err() error
	io.Closer
}

// SplitDACCode splits a 12 bit code the way the DAC data registers
// take it: upper nibble and low byte.
func SplitDACCode(code uint16) (hi uint8, lo uint8) {
	return uint8((code >> 8) & 0x0F), uint8(code & 0xFF)
}

// dacToPCM16 maps a 12 bit offset binary code to a signed 16 bit sample.
func dacToPCM16(code uint16) int16 {
	return int16((int32(code&DAC_MAX) - DAC_OFFSET) << 4)
}

type NullSink struct{}

func (NullSink) WriteDAC(uint16) {}

// CaptureSink keeps every code in memory.
type CaptureSink struct {
	Codes []uint16
}

func NewCaptureSink(capacity int) *CaptureSink {
	return &CaptureSink{Codes: make([]uint16, 0, capacity)}
}

func (c *CaptureSink) WriteDAC(code uint16) {
	c.Codes = append(c.Codes, code)
}

// MultiSink writes each code to every sink in turn.
type MultiSink []SampleSink

func (m MultiSink) WriteDAC(code uint16) {
	for _, s := range m {
		s.WriteDAC(code)
	}
}
