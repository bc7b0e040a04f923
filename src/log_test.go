package beacon

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandTimePattern(t *testing.T) {
	var now = time.Date(2026, 10, 18, 9, 5, 3, 0, time.UTC)

	var s, err = ExpandTimePattern("beacon-%Y%m%d-%H%M%S.wav", now)
	require.NoError(t, err)
	assert.Equal(t, "beacon-20261018-090503.wav", s)

	s, err = ExpandTimePattern("plain.wav", now)
	require.NoError(t, err)
	assert.Equal(t, "plain.wav", s)
}

func TestLogInitLevel(t *testing.T) {
	var buf bytes.Buffer
	SetLogOutput(&buf)
	t.Cleanup(func() {
		SetLogOutput(os.Stderr)
		require.NoError(t, LogInit("info", ""))
	})

	require.NoError(t, LogInit("warn", ""))

	logger.Info("quiet")
	logger.Warn("loud")

	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")

	assert.Error(t, LogInit("shouty", ""))
}

func TestLogInitFile(t *testing.T) {
	var dir = t.TempDir()
	t.Cleanup(LogTerm)

	require.NoError(t, LogInit("info", filepath.Join(dir, "%Y.log")))

	logger.Info("to the file")
	LogTerm()

	var text, err = os.ReadFile(filepath.Join(dir, time.Now().Format("2006")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(text), "to the file")
}
