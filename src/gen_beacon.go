package beacon

/*------------------------------------------------------------------
 *
 * Name:	gen_beacon
 *
 * Purpose:	Test program for generating the beacon waveform.
 *
 * Description:	Runs the transmitter from a counted tick, as fast as
 *		possible, and writes the samples to a file.  Output
 *		type follows the file name:
 *
 *			.wav		16 bit PCM at 200 kHz.
 *			.zst		Raw DAC codes, zstd compressed.
 *			anything else	Raw DAC codes.
 *
 * Examples:	One complete cycle with the default payload:
 *
 *			gen_beacon -o b.wav
 *
 *		Three cycles for somewhere else, as a timestamped
 *		compressed capture:
 *
 *			gen_beacon -n 3 --lat -33.86 --lon 151.21 -o "b-%Y%m%d-%H%M%S.u16.zst"
 *
 *		Just the preamble and the first 10 bits:
 *
 *			gen_beacon -s 37000 -o b.wav
 *
 *------------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// RenderSamples runs a new transmitter for exactly n ticks into sink.
func RenderSamples(ctx context.Context, frame *Frame, sink SampleSink, n uint64) (*Transmitter, error) {
	var tx = NewTransmitter(frame, sink)

	var err = CountedTick{N: n}.Run(ctx, tx.OnTick)

	return tx, err
}

// CreateFileSink picks the file format from the name.
func CreateFileSink(fname string) (SampleSinkCloser, error) {
	if strings.HasSuffix(strings.ToLower(fname), ".wav") {
		return CreateWAVSink(fname)
	}

	return CreateRawSink(fname)
}

func parseUintFlag(name string, s string, bits int) (uint32, error) {
	var v, err = strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("--%s %q: %w", name, s, err)
	}

	return uint32(v), nil
}

func GenBeaconMain(args []string) int {
	var flags = pflag.NewFlagSet("gen_beacon", pflag.ContinueOnError)

	var configFileName = flags.StringP("config-file", "c", "", "Configuration file name.  Payload and location are taken from it.")
	var outputFile = flags.StringP("output-file", "o", "", "Output file, .wav or raw.  strftime patterns allowed.")
	var cycles = flags.IntP("cycles", "n", 1, "Number of complete preamble + data + guard cycles.")
	var samples = flags.Uint64P("samples", "s", 0, "Number of samples.  Overrides --cycles.")
	var country = flags.StringP("country", "C", "", "Country code, 10 bits.")
	var aircraft = flags.StringP("aircraft", "A", "", "Aircraft id, 24 bits.")
	var lat = flags.Float64("lat", 0, "Latitude, decimal degrees, negative for south.  Needs --lon.")
	var lon = flags.Float64("lon", 0, "Longitude, decimal degrees, negative for west.  Needs --lat.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "gen_beacon - write the beacon waveform to a file.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: gen_beacon [options] -o file\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Example:  gen_beacon -o x.wav\n")
		fmt.Fprintf(os.Stderr, "Example:  gen_beacon -n 3 --lat 42.25 --lon 2.75 -o x.u16.zst\n")
	}

	if err := flags.Parse(args); err != nil {
		return 2
	}

	if *help {
		flags.Usage()
		return 0
	}

	if *outputFile == "" {
		fmt.Fprintf(os.Stderr, "An output file is required.\n\n")
		flags.Usage()
		return 2
	}

	var cfg, cfgErr = LoadConfig(*configFileName)
	if cfgErr != nil {
		logger.Error("Configuration", "err", cfgErr)
		return 1
	}

	if *country != "" {
		var v, err = parseUintFlag("country", *country, COUNTRY_BITS)
		if err != nil {
			logger.Error("Bad option", "err", err)
			return 2
		}
		cfg.Payload.CountryCode = uint16(v)
	}

	if *aircraft != "" {
		var v, err = parseUintFlag("aircraft", *aircraft, AIRCRAFT_BITS)
		if err != nil {
			logger.Error("Bad option", "err", err)
			return 2
		}
		cfg.Payload.AircraftID = v
	}

	if flags.Changed("lat") != flags.Changed("lon") {
		logger.Error("Bad option", "err", "--lat and --lon go together")
		return 2
	}

	if flags.Changed("lat") {
		cfg.Location = &LocationConfig{Latitude: *lat, Longitude: *lon, MGRS: ""}
	}

	if err := cfg.Resolve(); err != nil {
		logger.Error("Configuration", "err", err)
		return 1
	}

	var n = *samples
	if n == 0 {
		if *cycles < 1 {
			logger.Error("Bad option", "err", "--cycles must be at least 1")
			return 2
		}
		n = uint64(*cycles) * CYCLE_SAMPLES
	}

	var fname, expandErr = ExpandTimePattern(*outputFile, time.Now())
	if expandErr != nil {
		logger.Error("Output file", "err", expandErr)
		return 1
	}

	var sink, sinkErr = CreateFileSink(fname)
	if sinkErr != nil {
		logger.Error("Output file", "err", sinkErr)
		return 1
	}

	var frame = BuildFrame(cfg.Payload)

	var tx, runErr = RenderSamples(context.Background(), frame, sink, n)

	var closeErr = sink.Close()
	if runErr != nil || closeErr != nil {
		logger.Error("Writing samples", "file", fname, "run", runErr, "close", closeErr)
		return 1
	}

	fmt.Printf("Wrote %d samples (%d complete cycles) to %s\n", tx.Samples(), tx.Cycles(), fname)
	fmt.Printf("Frame %s\n", frame)

	return 0
}
