/* Write the beacon waveform to a file */
package main

import (
	"os"

	beacon "github.com/doismellburning/beacon/src"
)

func main() {
	os.Exit(beacon.GenBeaconMain(os.Args[1:]))
}
