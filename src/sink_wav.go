package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Write the DAC samples to a .WAV file so the waveform
 *		can be inspected with ordinary audio / SDR tools.
 *
 * Description:	16 bit mono PCM at SAMPLE_RATE_HZ.  The 12 bit offset
 *		binary code is re-centred on zero and scaled by 16.
 *
 *		The header is written with zero lengths at open and
 *		fixed up at close.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

type wavHeader struct { /* .WAV file header. */
	Riff            [4]byte /* "RIFF" */
	Filesize        int32   /* file length - 8 */
	Wave            [4]byte /* "WAVE" */
	Fmt             [4]byte /* "fmt " */
	Fmtsize         int32   /* 16. */
	Wformattag      int16   /* 1 for PCM. */
	Nchannels       int16   /* 1 for mono. */
	Nsamplespersec  int32   /* sampling freq, Hz. */
	Navgbytespersec int32   /* = nblockalign * nsamplespersec. */
	Nblockalign     int16   /* = wbitspersample / 8 * nchannels. */
	Wbitspersample  int16   /* 16. */
	Data            [4]byte /* "data" */
	Datasize        int32   /* number of bytes following. */
}

type WAVSink struct {
	file      *os.File
	buf       *bufio.Writer
	header    wavHeader
	byteCount int64
	err       error
}

func newWAVHeader(samplesPerSec int) wavHeader {
	var h = wavHeader{ //nolint:exhaustruct
		Riff:           [4]byte{'R', 'I', 'F', 'F'},
		Wave:           [4]byte{'W', 'A', 'V', 'E'},
		Fmt:            [4]byte{'f', 'm', 't', ' '},
		Fmtsize:        16, // Always 16.
		Wformattag:     1,  // 1 for PCM.
		Nchannels:      1,
		Nsamplespersec: int32(samplesPerSec),
		Wbitspersample: 16,
		Data:           [4]byte{'d', 'a', 't', 'a'},
	}

	h.Nblockalign = h.Wbitspersample / 8 * h.Nchannels
	h.Navgbytespersec = int32(h.Nblockalign) * h.Nsamplespersec

	return h
}

/*-------------------------------------------------------------------
 *
 * Name:	CreateWAVSink
 *
 * Purpose:	Create a .WAV file and write a provisional header.
 *
 * Inputs:	fname	- File to create, truncating any existing one.
 *
 *--------------------------------------------------------------------*/

func CreateWAVSink(fname string) (*WAVSink, error) {
	var f, openErr = os.Create(fname) //nolint:gosec // We expect to write to a user-supplied file from CLI
	if openErr != nil {
		return nil, fmt.Errorf("couldn't open %s for write: %w", fname, openErr)
	}

	var w = &WAVSink{ //nolint:exhaustruct
		file:   f,
		header: newWAVHeader(SAMPLE_RATE_HZ),
	}

	var writeErr = binary.Write(f, binary.LittleEndian, w.header)
	if writeErr != nil {
		f.Close()
		return nil, fmt.Errorf("couldn't write header to %s: %w", fname, writeErr)
	}

	w.buf = bufio.NewWriterSize(f, 64*1024)

	return w, nil
}

func (w *WAVSink) WriteDAC(code uint16) {
	if w.err != nil {
		return
	}

	var s = uint16(dacToPCM16(code))

	if err := w.buf.WriteByte(byte(s)); err != nil {
		w.err = err
		return
	}

	if err := w.buf.WriteByte(byte(s >> 8)); err != nil {
		w.err = err
		return
	}

	w.byteCount += 2
}

func (w *WAVSink) Err() error {
	return w.err
}

// Samples is the number of samples written so far.
func (w *WAVSink) Samples() int64 {
	return w.byteCount / 2
}

/*-------------------------------------------------------------------
 *
 * Name:	Close
 *
 * Purpose:	Flush, go back to the beginning of the file and fill
 *		in the sizes in the header.
 *
 *--------------------------------------------------------------------*/

func (w *WAVSink) Close() error {
	if w.file == nil {
		return w.err
	}

	defer func() {
		w.file = nil
	}()

	if w.err == nil {
		w.err = w.buf.Flush()
	}

	if w.err != nil {
		w.file.Close()
		return w.err
	}

	w.header.Filesize = int32(w.byteCount + int64(binary.Size(w.header)) - 8)
	w.header.Datasize = int32(w.byteCount)

	var _, seekErr = w.file.Seek(0, io.SeekStart)
	if seekErr != nil {
		w.file.Close()
		return fmt.Errorf("couldn't seek in audio file: %w", seekErr)
	}

	var writeErr = binary.Write(w.file, binary.LittleEndian, w.header)
	if writeErr != nil {
		w.file.Close()
		return fmt.Errorf("couldn't write header to audio file: %w", writeErr)
	}

	return w.file.Close()
}
