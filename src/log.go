package beacon

/*------------------------------------------------------------------
 *
 * Purpose:	Logging for the foreground: startup, configuration,
 *		monitor, key line.  Nothing on the tick path logs.
 *
 * Description: Goes to stderr, or to a file if one is given.  The
 *		file name may contain strftime patterns, e.g.
 *
 *			-L /var/log/beacon/%Y-%m-%d.log
 *
 *		which is expanded once, when the log is opened.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lestrrat-go/strftime"
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ //nolint:exhaustruct
	ReportTimestamp: true,
	TimeFormat:      time.DateTime,
	Prefix:          "beacon",
})

var logFile *os.File

// ExpandTimePattern expands strftime patterns in a file name.
func ExpandTimePattern(pattern string, t time.Time) (string, error) {
	var s, err = strftime.Format(pattern, t)
	if err != nil {
		return "", fmt.Errorf("bad time pattern %q: %w", pattern, err)
	}

	return s, nil
}

/*------------------------------------------------------------------
 *
 * Function:	LogInit
 *
 * Purpose:	Set the level and destination of the package logger.
 *
 * Inputs:	level	- debug, info, warn or error.
 *
 *		path	- Log file name, possibly with strftime
 *			  patterns.  Empty string for stderr.
 *
 *------------------------------------------------------------------*/

func LogInit(level string, path string) error {
	var lvl, lvlErr = log.ParseLevel(level)
	if lvlErr != nil {
		return fmt.Errorf("log level: %w", lvlErr)
	}

	logger.SetLevel(lvl)

	if path == "" {
		return nil
	}

	var fname, expandErr = ExpandTimePattern(path, time.Now())
	if expandErr != nil {
		return expandErr
	}

	var f, openErr = os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec
	if openErr != nil {
		return fmt.Errorf("can't open log file %s: %w", fname, openErr)
	}

	LogTerm()

	logFile = f
	logger.SetOutput(f)

	return nil
}

// LogTerm closes any log file and goes back to stderr.
func LogTerm() {
	if logFile != nil {
		logger.SetOutput(os.Stderr)
		logFile.Close()
		logFile = nil
	}
}

// SetLogOutput is for tests and embedding.
func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}
