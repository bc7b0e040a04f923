/* Print the beacon frame and DAC tables */
package main

import (
	"os"

	beacon "github.com/doismellburning/beacon/src"
)

func main() {
	os.Exit(beacon.BeaconDumpMain(os.Args[1:]))
}
