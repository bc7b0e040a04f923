package beacon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Each of these runs the tools one after the other, the way they'd be
// used from a shell.

func Test_GenThenCheck(t *testing.T) {
	var tmpdir = t.TempDir()
	var file = filepath.Join(tmpdir, "three.u16.zst")

	require.Equal(t, 0, GenBeaconMain([]string{"-n", "3", "-o", file}))

	AssertOutputContains(t, func() {
		assert.Equal(t, 0, BeaconDumpMain([]string{"--capture", file}))
	}, "280500 samples, 3 complete cycles, all match")
}

func Test_GenThenCheckOtherConfig(t *testing.T) {
	var tmpdir = t.TempDir()
	var file = filepath.Join(tmpdir, "one.u16")
	var config = filepath.Join(tmpdir, "beacon.yaml")

	require.NoError(t, os.WriteFile(config, []byte("payload:\n  aircraft_id: 0x123456\n"), 0o600))

	require.Equal(t, 0, GenBeaconMain([]string{"-o", file}))

	CaptureStdout(t, func() {
		assert.Equal(t, 1, BeaconDumpMain([]string{"-c", config, "--capture", file}))
	})
}

func Test_RunThenCheck(t *testing.T) {
	var tmpdir = t.TempDir()
	var file = filepath.Join(tmpdir, "run.u16")

	t.Cleanup(LogTerm)

	require.Equal(t, 0, BeaconMain([]string{"-o", "raw", "-p", file, "-t", "100ms", "-L", filepath.Join(tmpdir, "log")}))

	AssertOutputContains(t, func() {
		assert.Equal(t, 0, BeaconDumpMain([]string{"--capture", file}))
	}, "all match")
}
