package beacon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfigEmpty(t *testing.T) {
	var cfg, err = ParseConfig(nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Empty(t, cfg.Source())
}

func TestParseConfigPayload(t *testing.T) {
	var cfg, err = ParseConfig([]byte(`
payload:
  country_code: 0x155
  aircraft_id: 0xABCDEF
  position: 0x1FFFFF
  position_offset: 0
output:
  type: wav
  path: /tmp/beacon-%Y%m%d.wav
log:
  level: debug
`))

	require.NoError(t, err)
	assert.Equal(t, Payload{CountryCode: 0x155, AircraftID: 0xABCDEF, Position: 0x1FFFFF, PositionOffset: 0}, cfg.Payload)
	assert.Equal(t, OUTPUT_WAV, cfg.Output.Type)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseConfigLocationOverridesPosition(t *testing.T) {
	var cfg, err = ParseConfig([]byte(`
payload:
  position: 0x12345
location:
  latitude: 42.25
  longitude: -2.75
`))

	require.NoError(t, err)

	var position, offset, encErr = EncodeLocation(LatLngDegrees(42.25, -2.75))
	require.NoError(t, encErr)

	assert.Equal(t, position, cfg.Payload.Position)
	assert.Equal(t, offset, cfg.Payload.PositionOffset)
	assert.Equal(t, DefaultPayload.AircraftID, cfg.Payload.AircraftID, "untouched fields keep defaults")
}

func TestParseConfigRejects(t *testing.T) {
	var cases = map[string]struct {
		text string
		want error
	}{
		"wide country": {"payload:\n  country_code: 0x400\n", ErrFieldRange},
		"wide id":      {"payload:\n  aircraft_id: 0x1000000\n", ErrFieldRange},
		"bad location": {"location:\n  latitude: 95\n  longitude: 0\n", ErrBadLocation},
		"bad mgrs":     {"location:\n  mgrs: ZZZ\n", ErrBadLocation},
		"bad output":   {"output:\n  type: carrier-pigeon\n", ErrBadConfig},
		"no path":      {"output:\n  type: serial\n", ErrBadConfig},
		"bad offset":   {"key_line:\n  chip: gpiochip0\n  offset: -1\n", ErrBadConfig},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			var _, err = ParseConfig([]byte(c.text))
			assert.ErrorIs(t, err, c.want)
		})
	}
}

func TestParseConfigMGRS(t *testing.T) {
	var cfg, err = ParseConfig([]byte("location:\n  mgrs: 19TCH0613026010\n"))
	require.NoError(t, err)

	var ll = DecodeLocation(cfg.Payload.Position, cfg.Payload.PositionOffset)

	assert.InDelta(t, 42.662139, ll.Lat.Degrees(), 0.002)
	assert.InDelta(t, -71.365553, ll.Lng.Degrees(), 0.002)
}

func TestParseConfigUnknownField(t *testing.T) {
	var _, err = ParseConfig([]byte("payload:\n  contry_code: 1\n"))
	assert.ErrorContains(t, err, "contry_code")
}

func TestLoadConfigFile(t *testing.T) {
	var fname = filepath.Join(t.TempDir(), "beacon.yaml")
	require.NoError(t, os.WriteFile(fname, []byte("output:\n  type: raw\n  path: x.u16\n"), 0o600))

	var cfg, err = LoadConfig(fname)
	require.NoError(t, err)
	require.NoError(t, cfg.Resolve())

	assert.Equal(t, OUTPUT_RAW, cfg.Output.Type)
	assert.Equal(t, DefaultPayload, cfg.Payload)
	assert.Equal(t, fname, cfg.Source())
}

func TestLoadConfigLeavesResolveToCaller(t *testing.T) {
	var fname = filepath.Join(t.TempDir(), "beacon.yaml")
	require.NoError(t, os.WriteFile(fname, []byte("output:\n  type: wav\n"), 0o600))

	var cfg, err = LoadConfig(fname)
	require.NoError(t, err, "path can still come from the command line")

	assert.ErrorIs(t, cfg.Resolve(), ErrBadConfig)

	cfg.Output.Path = "out.wav"
	assert.NoError(t, cfg.Resolve())
}

func TestLoadConfigMissing(t *testing.T) {
	var _, err = LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadConfigSearch(t *testing.T) {
	var saved = configSearchLocations
	t.Cleanup(func() { configSearchLocations = saved })

	var dir = t.TempDir()
	var second = filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(second, []byte("payload:\n  country_code: 7\n"), 0o600))

	configSearchLocations = []string{filepath.Join(dir, "first.yaml"), second}

	var cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, uint16(7), cfg.Payload.CountryCode)
	assert.Equal(t, second, cfg.Source())

	configSearchLocations = []string{filepath.Join(dir, "first.yaml")}

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Empty(t, cfg.Source(), "defaults")
}
