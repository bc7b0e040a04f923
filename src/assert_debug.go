//go:build !beacon_release

package beacon

// Tick path invariant checks.  Build with -tags beacon_release to drop them.
const debugAssertions = true
