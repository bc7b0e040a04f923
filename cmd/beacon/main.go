/* 40 kHz PSK locator beacon */
package main

import (
	"os"

	beacon "github.com/doismellburning/beacon/src"
)

func main() {
	os.Exit(beacon.BeaconMain(os.Args[1:]))
}
