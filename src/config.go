package beacon

/*------------------------------------------------------------------
 *
 * Purpose:	Read the beacon configuration file.
 *
 * Description:	YAML.  Everything is optional; anything missing keeps
 *		its default.  Example:
 *
 *			payload:
 *			  country_code: 0x2A5
 *			  aircraft_id: 0x00A5F3C
 *			location:		# overrides payload position / offset
 *			  latitude: 42.25
 *			  longitude: 2.75
 *			  # mgrs: 19TCH0613026010	# instead of lat / lon
 *			output:
 *			  type: serial		# wav, raw, serial, audio, null
 *			  path: /dev/ttyACM0
 *			monitor:
 *			  listen: ":9417"
 *			  announce: true
 *			key_line:
 *			  chip: gpiochip0
 *			  offset: 17
 *			log:
 *			  level: info
 *
 *		The payload is compiled into the frame once at startup.
 *		There's no reloading.
 *
 *------------------------------------------------------------------*/

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Either latitude and longitude, or an MGRS grid reference.
type LocationConfig struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	MGRS      string  `yaml:"mgrs"`
}

type OutputConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"` // File (strftime patterns ok), serial device, or audio device name.
	Baud int    `yaml:"baud"`

	// Raw capture of everything sent, alongside the real output.
	// strftime patterns ok.  Empty to disable.
	Capture string `yaml:"capture"`
}

type MonitorConfig struct {
	Listen   string `yaml:"listen"` // Empty to disable.
	Announce bool   `yaml:"announce"`
	Name     string `yaml:"name"`
}

type KeyLineConfig struct {
	Chip   string `yaml:"chip"` // Empty to disable.
	Offset int    `yaml:"offset"`
	Invert bool   `yaml:"invert"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	Payload  Payload         `yaml:"payload"`
	Location *LocationConfig `yaml:"location"`
	Output   OutputConfig    `yaml:"output"`
	Monitor  MonitorConfig   `yaml:"monitor"`
	KeyLine  KeyLineConfig   `yaml:"key_line"`
	Log      LogConfig       `yaml:"log"`

	source string // File it was read from, if any.
}

const (
	OUTPUT_WAV    = "wav"
	OUTPUT_RAW    = "raw"
	OUTPUT_SERIAL = "serial"
	OUTPUT_AUDIO  = "audio"
	OUTPUT_NULL   = "null"
)

func DefaultConfig() *Config {
	return &Config{
		Payload:  DefaultPayload,
		Location: nil,
		Output:   OutputConfig{Type: OUTPUT_NULL, Path: "", Baud: 0, Capture: ""},
		Monitor:  MonitorConfig{Listen: "", Announce: false, Name: ""},
		KeyLine:  KeyLineConfig{Chip: "", Offset: 0, Invert: false},
		Log:      LogConfig{Level: "info", File: ""},
		source:   "",
	}
}

// Tried in order when no file is named.
var configSearchLocations = []string{
	"beacon.yaml", // Current working directory
	"/etc/beacon/beacon.yaml",
	"/usr/local/etc/beacon/beacon.yaml",
}

var ErrBadConfig = errors.New("bad configuration")

/*------------------------------------------------------------------
 *
 * Function:	LoadConfig
 *
 * Purpose:	Read configuration, applying defaults.
 *
 * Inputs:	path	- File name.  Empty means search
 *			  configSearchLocations, and carry on with
 *			  defaults if none is there.
 *
 * Returns:	Configuration, not yet resolved.  Callers apply any
 *		command line overrides and then call Resolve.
 *
 *------------------------------------------------------------------*/

func LoadConfig(path string) (*Config, error) {
	var cfg = DefaultConfig()

	if path == "" {
		for _, location := range configSearchLocations {
			if _, err := os.Stat(location); err == nil {
				path = location
				break
			}
		}

		if path == "" {
			return cfg, nil
		}
	}

	var f, openErr = os.Open(path) //nolint:gosec
	if openErr != nil {
		return nil, fmt.Errorf("config: %w", openErr)
	}
	defer f.Close()

	if err := cfg.decode(f); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	cfg.source = path

	return cfg, nil
}

// Source is the file the configuration came from, or empty for defaults.
func (cfg *Config) Source() string {
	return cfg.source
}

// logSource reports where the configuration came from.  Called once
// logging is set up.
func (cfg *Config) logSource() {
	if cfg.source == "" {
		logger.Debug("No configuration file found, using defaults", "searched", configSearchLocations)
		return
	}

	logger.Info("Read configuration", "file", cfg.source)
}

func (cfg *Config) decode(r io.Reader) error {
	var dec = yaml.NewDecoder(r)
	dec.KnownFields(true)

	var err = dec.Decode(cfg)
	if errors.Is(err, io.EOF) {
		return nil // Empty file.
	}

	return err
}

// ParseConfig reads and resolves configuration from YAML text.
func ParseConfig(text []byte) (*Config, error) {
	var cfg = DefaultConfig()

	if err := cfg.decode(bytes.NewReader(text)); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, cfg.Resolve()
}

/*------------------------------------------------------------------
 *
 * Function:	Resolve
 *
 * Purpose:	Turn a location into position fields, then check
 *		everything.
 *
 *------------------------------------------------------------------*/

func (cfg *Config) Resolve() error {
	if cfg.Location != nil {
		var ll = LatLngDegrees(cfg.Location.Latitude, cfg.Location.Longitude)

		if cfg.Location.MGRS != "" {
			var mgrsLL, err = ParseMGRS(cfg.Location.MGRS)
			if err != nil {
				return fmt.Errorf("location: %s: %w", err, ErrBadLocation)
			}
			ll = mgrsLL
		}

		var position, offset, err = EncodeLocation(ll)
		if err != nil {
			return fmt.Errorf("location: %w", err)
		}

		cfg.Payload.Position = position
		cfg.Payload.PositionOffset = offset
	}

	if err := cfg.Payload.Validate(); err != nil {
		return fmt.Errorf("payload: %w", err)
	}

	switch cfg.Output.Type {
	case OUTPUT_NULL, OUTPUT_AUDIO:
	case OUTPUT_WAV, OUTPUT_RAW, OUTPUT_SERIAL:
		if cfg.Output.Path == "" {
			return fmt.Errorf("output type %s needs a path: %w", cfg.Output.Type, ErrBadConfig)
		}
	default:
		return fmt.Errorf("unknown output type %q: %w", cfg.Output.Type, ErrBadConfig)
	}

	if cfg.KeyLine.Chip != "" && cfg.KeyLine.Offset < 0 {
		return fmt.Errorf("key line offset %d: %w", cfg.KeyLine.Offset, ErrBadConfig)
	}

	return nil
}
