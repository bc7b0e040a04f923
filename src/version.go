package beacon

import (
	"fmt"
	"runtime/debug"
	"strconv"
)

// Set at build time via `-ldflags "-X 'github.com/doismellburning/beacon/src.BEACON_VERSION=X'"`
var BEACON_VERSION string

func getBuildSettingOrDefault(bi *debug.BuildInfo, key string, defaultValue string) string {
	if bi == nil {
		return defaultValue
	}

	for _, bs := range bi.Settings {
		if bs.Key == key {
			return bs.Value
		}
	}

	return defaultValue
}

func versionString() string {
	var buildInfo, _ = debug.ReadBuildInfo()

	var buildTimeStr = getBuildSettingOrDefault(buildInfo, "vcs.time", "UNKNOWN")

	var (
		buildCommit               = getBuildSettingOrDefault(buildInfo, "vcs.revision", "UNKNOWN")
		buildDirtyStr             = getBuildSettingOrDefault(buildInfo, "vcs.modified", "INVALID")
		buildDirty, buildDirtyErr = strconv.ParseBool(buildDirtyStr)
	)

	if buildDirty {
		buildCommit += "-DIRTY"
	} else if buildDirtyErr != nil {
		buildCommit += "-UNKNOWNDIRTY"
	}

	var version = BEACON_VERSION
	if version == "" {
		version = "!UNKNOWN!"
	}

	return fmt.Sprintf("Beacon - Version %s (revision %s, built at %s)", version, buildCommit, buildTimeStr)
}

func printVersion(verbose bool) {
	fmt.Println(versionString())

	if verbose {
		var buildInfo, _ = debug.ReadBuildInfo()
		fmt.Printf("\nBuildInfo: %+v\n", buildInfo)
	}
}
