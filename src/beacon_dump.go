package beacon

/*------------------------------------------------------------------
 *
 * Name:	beacon-dump
 *
 * Purpose:	Show what the beacon would send, without sending it.
 *
 * Description:	Prints the frame by segment with its parity checks,
 *		the location it decodes to, and the DAC tables.
 *
 *		With --capture, a raw capture made by the beacon or
 *		gen_beacon is compared sample by sample against a fresh
 *		rendering of the same configuration.
 *
 *		With --wire, the first few samples are shown as the
 *		bytes the serial DAC board would receive.
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
)

func BeaconDumpMain(args []string) int {
	var flags = pflag.NewFlagSet("beacon-dump", pflag.ContinueOnError)

	var configFileName = flags.StringP("config-file", "c", "", "Configuration file name.")
	var captureFile = flags.StringP("capture", "r", "", "Raw capture (.u16 or .zst) to check against the configuration.")
	var wireSamples = flags.IntP("wire", "w", 0, "Hex dump the serial bytes for this many samples.")
	var version = flags.BoolP("version", "v", false, "Print version and exit.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "beacon-dump - print the beacon frame and DAC tables.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: beacon-dump [options]\n")
		flags.PrintDefaults()
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *help {
		flags.Usage()
		return 0
	}

	if *version {
		printVersion(true)
		return 0
	}

	var cfg, cfgErr = LoadConfig(*configFileName)
	if cfgErr == nil {
		cfgErr = cfg.Resolve()
	}
	if cfgErr != nil {
		logger.Error("Configuration", "err", cfgErr)
		return 1
	}

	var frame = BuildFrame(cfg.Payload)

	var ok = DumpFrame(os.Stdout, frame)
	fmt.Println()
	DumpTables(os.Stdout, dacTables)

	if *wireSamples > 0 {
		fmt.Println()
		DumpWire(os.Stdout, frame, *wireSamples)
	}

	if *captureFile != "" {
		fmt.Println()
		if err := CheckCapture(os.Stdout, *captureFile, frame); err != nil {
			logger.Error("Capture", "file", *captureFile, "err", err)
			return 1
		}
	}

	if !ok {
		return 1
	}

	return 0
}

// DumpFrame prints the frame and reports whether it parses cleanly.
func DumpFrame(w io.Writer, frame *Frame) bool {
	fmt.Fprintf(w, "Frame, %d bits:\n", MESSAGE_BITS)
	fmt.Fprintf(w, "%s\n\n", frame)
	fmt.Fprint(w, frame.Segments())
	fmt.Fprintln(w)

	var ff, err = ParseFrame(frame)
	if err != nil {
		fmt.Fprintf(w, "Frame check FAILED: %s\n", err)
		return false
	}

	fmt.Fprintf(w, "Frame check ok.  Position parity 0x%03X, id parity 0x%03X.\n", ff.PositionParity, ff.IDParity)
	fmt.Fprintf(w, "Country %d, aircraft 0x%06X.\n", ff.Payload.CountryCode, ff.Payload.AircraftID)

	var ll = DecodeLocation(ff.Payload.Position, ff.Payload.PositionOffset)

	fmt.Fprintf(w, "Location %.5f %.5f", ll.Lat.Degrees(), ll.Lng.Degrees())

	// Polar regions and garbage positions have no MGRS.
	if mgrs, mgrsErr := FormatMGRS(ll); mgrsErr == nil {
		fmt.Fprintf(w, ", MGRS %s", mgrs)
	}
	fmt.Fprintln(w)

	return true
}

func DumpTables(w io.Writer, t DACTables) {
	var stats = t.Stats()

	var rows = []struct {
		name  string
		codes [CARRIER_PHASES]uint16
	}{
		{"carrier", t.Carrier},
		{"symbol 0", t.Symbol[0]},
		{"symbol 1", t.Symbol[1]},
	}

	fmt.Fprintf(w, "DAC tables, offset %d, full scale %d:\n", DAC_OFFSET, DAC_MAX)

	for i, r := range rows {
		fmt.Fprintf(w, "  %-8s ", r.name)
		for _, c := range r.codes {
			fmt.Fprintf(w, " %4d", c)
		}
		fmt.Fprintf(w, "    mean %7.1f  min %4d  max %4d\n", stats[i].Mean, stats[i].Min, stats[i].Max)
	}
}

func DumpWire(w io.Writer, frame *Frame, samples int) {
	var codes = NewCaptureSink(samples)
	RenderSamples(context.Background(), frame, codes, uint64(samples)) //nolint:errcheck

	fmt.Fprintf(w, "Serial bytes, first %d samples:\n", samples)
	HexDump(w, SerialWire(codes.Codes))
}

/*-------------------------------------------------------------------
 *
 * Name:	CheckCapture
 *
 * Purpose:	Compare a raw capture with what frame should produce.
 *
 * Returns:	Error if the file can't be read or any sample differs.
 *
 *--------------------------------------------------------------------*/

func CheckCapture(w io.Writer, fname string, frame *Frame) error {
	var got, err = ReadRawCapture(fname)
	if err != nil {
		return err
	}

	var want = NewCaptureSink(len(got))
	if _, err := RenderSamples(context.Background(), frame, want, uint64(len(got))); err != nil {
		return err
	}

	for i := range got {
		if got[i] != want.Codes[i] {
			return fmt.Errorf("sample %d (cycle %d, offset %d) is %d, expected %d",
				i, i/CYCLE_SAMPLES, i%CYCLE_SAMPLES, got[i], want.Codes[i])
		}
	}

	fmt.Fprintf(w, "Capture %s: %d samples, %d complete cycles, all match.\n",
		fname, len(got), len(got)/CYCLE_SAMPLES)

	return nil
}
