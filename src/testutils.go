package beacon

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// CaptureStdout runs command with os.Stdout redirected and returns what
// it printed.
func CaptureStdout(t *testing.T, command func()) string {
	t.Helper()

	var oldStdout = os.Stdout
	defer func() {
		os.Stdout = oldStdout
	}()

	var r, w, _ = os.Pipe()
	os.Stdout = w

	var output = make(chan []byte)
	go func() {
		var b, _ = io.ReadAll(r)
		output <- b
	}()

	command()

	w.Close() //nolint:gosec

	os.Stdout = oldStdout

	var outputBytes = <-output

	require.NotNil(t, outputBytes)

	return string(outputBytes)
}

func AssertOutputContains(t *testing.T, command func(), expectedOutputContains string) {
	t.Helper()

	assert.Contains(t, CaptureStdout(t, command), expectedOutputContains)
}
