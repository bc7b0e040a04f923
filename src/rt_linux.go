//go:build linux

package beacon

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Highest priority nice allows.
const tickNice = -20

// raisePriority locks memory and raises the calling thread's priority.
// Needs CAP_IPC_LOCK and CAP_SYS_NICE (or root); both failures are reported.
func raisePriority() error {
	var errs []error

	if err := unix.Mlockall(unix.MCL_CURRENT | unix.MCL_FUTURE); err != nil {
		errs = append(errs, fmt.Errorf("mlockall: %w", err))
	}

	// Thread id, not pid.  Run has locked us to this thread.
	if err := unix.Setpriority(unix.PRIO_PROCESS, unix.Gettid(), tickNice); err != nil {
		errs = append(errs, fmt.Errorf("setpriority %d: %w", tickNice, err))
	}

	return errors.Join(errs...)
}
