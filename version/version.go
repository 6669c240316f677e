// Package version carries build metadata set with -ldflags "-X".
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns the version with commit and build date when they
// are known.
func GetFullVersion() string {
	if GitCommit == "unknown" {
		return Version
	}
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	if BuildDate == "unknown" {
		return fmt.Sprintf("%s (%s)", Version, short)
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, short, BuildDate)
}
