// Package version carries the build version stamped in via -ldflags.
package version

import "fmt"

// Overridden at build time:
//
//	go build -ldflags "-X quilbridge/internal/version.Version=1.2.0 -X quilbridge/internal/version.Commit=abc123"
var (
	Version = "0.0.0-dev"
	Commit  = ""
)

// String returns the version with the commit suffix when present.
func String() string {
	if Commit == "" {
		return Version
	}
	return fmt.Sprintf("%s (%s)", Version, Commit)
}
