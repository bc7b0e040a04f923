package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Drive an external DAC board over a serial port.
 *
 * Description:	Each sample is the DAC's two data registers, upper
 *		nibble and low byte, repacked 7 bits per byte so that
 *		only the first byte of a sample has the top bit set:
 *
 *			1 h h h h l		h = upper nibble
 *			0 l l l l l l l		l = low byte
 *
 *		The board can resynchronize on any byte with bit 7 set.
 *
 *		At 200 kHz this is 400 kbytes/sec, far more than a real
 *		UART.  It's intended for USB CDC devices which ignore
 *		the speed setting, and pacing comes from the tick
 *		source, not from the port.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"

	"github.com/pkg/term"
)

const SERIAL_SYNC = 0x80

const serialChunk = 512 // bytes, must be even

type SerialDACSink struct {
	port *term.Term
	buf  [serialChunk]byte
	n    int
	err  error
}

/*-------------------------------------------------------------------
 *
 * Name:	OpenSerialDACSink
 *
 * Inputs:	devicename	- Usually /dev/tty... or /dev/ttyACM...
 *
 *		baud		- Speed.  If 0, leave it alone.
 *
 *--------------------------------------------------------------------*/

func OpenSerialDACSink(devicename string, baud int) (*SerialDACSink, error) {
	var port, err = term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("could not open serial port %s: %w", devicename, err)
	}

	if baud != 0 {
		if speedErr := port.SetSpeed(baud); speedErr != nil {
			port.Close()
			return nil, fmt.Errorf("serial port %s speed %d: %w", devicename, baud, speedErr)
		}
	}

	return &SerialDACSink{port: port}, nil //nolint:exhaustruct
}

// EncodeSerialSample packs one code into its two wire bytes.
func EncodeSerialSample(code uint16) (byte, byte) {
	var hi, lo = SplitDACCode(code)

	return SERIAL_SYNC | hi<<1 | lo>>7, lo & 0x7F
}

// DecodeSerialSample is the inverse of EncodeSerialSample.
func DecodeSerialSample(b0, b1 byte) uint16 {
	var hi = (b0 >> 1) & 0x0F
	var lo = (b0&1)<<7 | (b1 & 0x7F)

	return uint16(hi)<<8 | uint16(lo)
}

func (s *SerialDACSink) WriteDAC(code uint16) {
	if s.err != nil {
		return
	}

	s.buf[s.n], s.buf[s.n+1] = EncodeSerialSample(code)
	s.n += 2

	if s.n == len(s.buf) {
		s.flush()
	}
}

func (s *SerialDACSink) flush() {
	if s.n == 0 || s.err != nil {
		return
	}

	var written, err = s.port.Write(s.buf[:s.n])
	if err == nil && written != s.n {
		err = fmt.Errorf("short write to serial port: %d of %d", written, s.n)
	}

	s.err = err
	s.n = 0
}

func (s *SerialDACSink) Err() error {
	return s.err
}

func (s *SerialDACSink) Close() error {
	if s.port == nil {
		return s.err
	}

	s.flush()

	var closeErr = s.port.Close()
	s.port = nil

	if s.err != nil {
		return s.err
	}

	return closeErr
}
