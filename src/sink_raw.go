package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Raw capture of DAC codes: little endian uint16, one
 *		per sample, exactly what was handed to the DAC.
 *
 * Description:	A cycle is 93,500 samples, so long captures add up.
 *		Names ending in ".zst" are zstd compressed on the fly;
 *		the codes only take a handful of distinct values and
 *		squash very well.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

type RawSink struct {
	file    *os.File
	zw      *zstd.Encoder // nil when not compressing
	buf     *bufio.Writer
	scratch [2]byte
	count   int64
	err     error
}

func CreateRawSink(fname string) (*RawSink, error) {
	var f, openErr = os.Create(fname) //nolint:gosec // User supplied output file.
	if openErr != nil {
		return nil, fmt.Errorf("couldn't open %s for write: %w", fname, openErr)
	}

	var r = &RawSink{file: f} //nolint:exhaustruct
	var w io.Writer = f

	if strings.HasSuffix(fname, ".zst") {
		var zw, zErr = zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if zErr != nil {
			f.Close()
			return nil, fmt.Errorf("zstd encoder for %s: %w", fname, zErr)
		}

		r.zw = zw
		w = zw
	}

	r.buf = bufio.NewWriterSize(w, 64*1024)

	return r, nil
}

func (r *RawSink) WriteDAC(code uint16) {
	if r.err != nil {
		return
	}

	binary.LittleEndian.PutUint16(r.scratch[:], code)

	var _, err = r.buf.Write(r.scratch[:])
	if err != nil {
		r.err = err
		return
	}

	r.count++
}

func (r *RawSink) Err() error {
	return r.err
}

func (r *RawSink) Samples() int64 {
	return r.count
}

func (r *RawSink) Close() error {
	if r.file == nil {
		return r.err
	}

	var errs = []error{r.err}

	errs = append(errs, r.buf.Flush())
	if r.zw != nil {
		errs = append(errs, r.zw.Close())
	}
	errs = append(errs, r.file.Close())

	r.file = nil
	r.err = errors.Join(errs...)

	return r.err
}

// ReadRawCapture reads back a capture written by RawSink.
func ReadRawCapture(fname string) ([]uint16, error) {
	var f, openErr = os.Open(fname) //nolint:gosec
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	var rd io.Reader = bufio.NewReader(f)

	if strings.HasSuffix(fname, ".zst") {
		var zr, zErr = zstd.NewReader(rd)
		if zErr != nil {
			return nil, fmt.Errorf("zstd decoder for %s: %w", fname, zErr)
		}
		defer zr.Close()

		rd = zr
	}

	var data, readErr = io.ReadAll(rd)
	if readErr != nil {
		return nil, readErr
	}

	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%s: odd length %d", fname, len(data))
	}

	var codes = make([]uint16, len(data)/2)
	for i := range codes {
		codes[i] = binary.LittleEndian.Uint16(data[2*i:])
	}

	return codes, nil
}
