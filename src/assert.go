package beacon

import "fmt"

// assertf panics when an internal invariant does not hold.
// These are programming errors, never bad input.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		panic("beacon: assertion failed: " + fmt.Sprintf(format, args...))
	}
}
