package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Main program for the beacon transmitter.
 *
 * Description:	Startup, in order:
 *
 *		1. Read configuration.
 *		2. Build the frame.  (The DAC tables were computed at
 *		   package initialization.)
 *		3. Open the output, which stands in for the DAC with
 *		   its initial code of mid-scale.
 *		4. Bind the transmitter to the tick source and start it.
 *		5. Sit in the foreground serving the monitor and key
 *		   line until interrupted.
 *
 *		Watchdog, clock, DAC and timer register setup belong to
 *		the platform and are not done here.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"
)

// output is an opened sink plus the tick that should drive it.
type output struct {
	sink   SampleSink
	tick   Tick
	closer func() error
}

func openOutput(cfg *Config, now time.Time) (*output, error) {
	var o = &output{sink: NullSink{}, tick: NewPacedTick(), closer: func() error { return nil }}

	var path = cfg.Output.Path

	switch cfg.Output.Type {
	case OUTPUT_WAV, OUTPUT_RAW:
		var fname, err = ExpandTimePattern(path, now)
		if err != nil {
			return nil, err
		}

		var s SampleSinkCloser
		if cfg.Output.Type == OUTPUT_WAV {
			s, err = CreateWAVSink(fname)
		} else {
			s, err = CreateRawSink(fname)
		}
		if err != nil {
			return nil, err
		}

		o.sink = s
		o.closer = s.Close

		logger.Info("Writing samples", "file", fname)

	case OUTPUT_SERIAL:
		var s, err = OpenSerialDACSink(path, cfg.Output.Baud)
		if err != nil {
			return nil, err
		}

		o.sink = s
		o.closer = s.Close

	case OUTPUT_AUDIO:
		var a = NewAudioTick(path)
		o.sink = a
		o.tick = a

	case OUTPUT_NULL:
	default:
		return nil, fmt.Errorf("unknown output type %q: %w", cfg.Output.Type, ErrBadConfig)
	}

	if cfg.Output.Capture != "" {
		if err := o.teeCapture(cfg.Output.Capture, now); err != nil {
			o.closer() //nolint:errcheck
			return nil, err
		}
	}

	return o, nil
}

// teeCapture adds a raw capture file next to the real output.
func (o *output) teeCapture(pattern string, now time.Time) error {
	var fname, err = ExpandTimePattern(pattern, now)
	if err != nil {
		return err
	}

	var capture, createErr = CreateRawSink(fname)
	if createErr != nil {
		return createErr
	}

	var multi = MultiSink{o.sink, capture}
	var closeOutput = o.closer

	o.sink = multi
	o.closer = func() error {
		return errors.Join(closeOutput(), capture.Close())
	}

	logger.Info("Capturing samples", "file", fname)

	return nil
}

/*-------------------------------------------------------------------
 *
 * Name:        BeaconMain
 *
 * Inputs:	args	- Command line, without the program name.
 *
 * Returns:	Exit status.
 *
 *--------------------------------------------------------------------*/

func BeaconMain(args []string) int {
	var flags = pflag.NewFlagSet("beacon", pflag.ContinueOnError)

	var configFileName = flags.StringP("config-file", "c", "", "Configuration file name.  Default is to search for beacon.yaml.")
	var outputType = flags.StringP("output", "o", "", "Output type: wav, raw, serial, audio or null.")
	var outputPath = flags.StringP("path", "p", "", "Output file (strftime patterns allowed), serial device or audio device name.")
	var captureFile = flags.StringP("capture", "r", "", "Also write a raw capture here, strftime patterns allowed.")
	var monitorAddr = flags.StringP("monitor", "m", "", "Monitor listen address, e.g. :9417.")
	var duration = flags.DurationP("duration", "t", 0, "Stop after this long.  0 runs until interrupted.")
	var logLevel = flags.StringP("log-level", "d", "", "Log level: debug, info, warn, error.")
	var logFileName = flags.StringP("log-file", "L", "", "Log file name, strftime patterns allowed.")
	var version = flags.BoolP("version", "v", false, "Print version and exit.")
	var help = flags.BoolP("help", "h", false, "Display help text.")

	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "beacon - 40 kHz PSK locator beacon transmitter.\n")
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "Usage: beacon [options]\n")
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
		printVersion(false)
		return 0
	}

	var cfg, cfgErr = LoadConfig(*configFileName)
	if cfgErr != nil {
		logger.Error("Configuration", "err", cfgErr)
		return 1
	}

	if *outputType != "" {
		cfg.Output.Type = *outputType
	}
	if *outputPath != "" {
		cfg.Output.Path = *outputPath
	}
	if *captureFile != "" {
		cfg.Output.Capture = *captureFile
	}
	if *monitorAddr != "" {
		cfg.Monitor.Listen = *monitorAddr
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFileName != "" {
		cfg.Log.File = *logFileName
	}

	if err := cfg.Resolve(); err != nil {
		logger.Error("Configuration", "err", err)
		return 1
	}

	if err := LogInit(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Error("Logging", "err", err)
		return 1
	}
	defer LogTerm()

	cfg.logSource()

	var ctx, stop = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	if err := RunBeacon(ctx, cfg); err != nil {
		logger.Error("Beacon stopped", "err", err)
		return 1
	}

	return 0
}

/*-------------------------------------------------------------------
 *
 * Name:        RunBeacon
 *
 * Purpose:     Build, bind and run the transmitter until ctx is done.
 *
 *--------------------------------------------------------------------*/

func RunBeacon(ctx context.Context, cfg *Config) error {
	var frame = BuildFrame(cfg.Payload)

	logger.Info("Frame built", "bits", MESSAGE_BITS, "frame", frame.String())
	logger.Debug("Frame segments\n" + frame.Segments())

	var out, outErr = openOutput(cfg, time.Now())
	if outErr != nil {
		return outErr
	}

	var tx = NewTransmitter(frame, out.sink)

	var ctx2, cancel = context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	var errs = make(chan error, 3)

	if cfg.Monitor.Listen != "" {
		var mon, monErr = NewMonitor(tx)
		if monErr != nil {
			out.closer() //nolint:errcheck
			return monErr
		}

		if paced, ok := out.tick.(*PacedTick); ok {
			paced.OnSlip = mon.Metrics().RecordSlip
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			var err = mon.Serve(ctx2, cfg.Monitor.Listen, cfg.Monitor.Announce, cfg.Monitor.Name)
			if err != nil {
				cancel()
			}
			errs <- err
		}()
	}

	if cfg.KeyLine.Chip != "" {
		var line, lineErr = OpenKeyLine(cfg.KeyLine.Chip, cfg.KeyLine.Offset)
		if lineErr != nil {
			cancel()
			wg.Wait()
			out.closer() //nolint:errcheck
			return lineErr
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			var err = DriveKeyLine(ctx2, tx, line, cfg.KeyLine.Invert)
			if err != nil {
				cancel()
			}
			errs <- err
		}()
	}

	logger.Info("Transmitting", "output", cfg.Output.Type, "rate", SAMPLE_RATE_HZ,
		"carrier", CARRIER_FREQ_HZ, "baud", SYMBOL_RATE_HZ)

	var runErr = out.tick.Run(ctx2, tx.OnTick)

	cancel()
	wg.Wait()
	close(errs)

	var all = []error{runErr}
	for err := range errs {
		all = append(all, err)
	}
	all = append(all, out.closer())

	logger.Info("Stopped", "samples", tx.Samples(), "cycles", tx.Cycles())

	// Being stopped is how the beacon normally ends.
	all = slices.DeleteFunc(all, func(err error) bool {
		return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	})

	return errors.Join(all...)
}
