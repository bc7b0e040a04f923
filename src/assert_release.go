//go:build beacon_release

package beacon

const debugAssertions = false
