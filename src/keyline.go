package beacon

/*------------------------------------------------------------------
 *
 * Purpose:   	Frame active output line.
 *
 * Description:	A GPIO line that is on while the transmitter is
 *		sending data and off during the preamble.  Handy for
 *		triggering a scope or a recorder, or keying a power
 *		amplifier into a higher output level for the burst.
 *
 *		This is never touched from the tick.  A foreground
 *		goroutine polls the transmitter's observation port, so
 *		the edge is late by up to one poll interval.
 *
 *---------------------------------------------------------------*/

import (
	"context"
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// KeyLine is satisfied by *gpiocdev.Line.
type KeyLine interface {
	SetValue(value int) error
	Close() error
}

const keyLinePoll = time.Millisecond

func OpenKeyLine(chip string, offset int) (KeyLine, error) {
	var line, err = gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("beacon"))
	if err != nil {
		return nil, fmt.Errorf("gpio %s line %d: %w", chip, offset, err)
	}

	return line, nil
}

func keyLineLevel(phase TxPhase, invert bool) int {
	var on = phase == PHASE_DATA
	if on != invert {
		return 1
	}

	return 0
}

/*-------------------------------------------------------------------
 *
 * Name:	DriveKeyLine
 *
 * Purpose:	Follow the transmitter phase on a key line until ctx
 *		is done, then turn the line off and close it.
 *
 *--------------------------------------------------------------------*/

func DriveKeyLine(ctx context.Context, tx *Transmitter, line KeyLine, invert bool) error {
	defer line.Close()

	var last = -1

	var set = func(level int) error {
		if level == last {
			return nil
		}

		if err := line.SetValue(level); err != nil {
			return fmt.Errorf("key line: %w", err)
		}

		logger.Debug("Key line", "level", level, "phase", tx.Phase())
		last = level

		return nil
	}

	var ticker = time.NewTicker(keyLinePoll)
	defer ticker.Stop()

	for {
		if err := set(keyLineLevel(tx.Phase(), invert)); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return set(keyLineLevel(PHASE_PREAMBLE, invert))
		case <-ticker.C:
		}
	}
}
