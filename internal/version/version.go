// Package version carries the build identity stamped in at link time:
//
//	-ldflags "-X github.com/MeKo-Tech/lumo/internal/version.Version=v1.2.3"
package version

import "fmt"

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Info returns the build identity as (version, commit, date).
func Info() (string, string, string) {
	return Version, GitCommit, BuildDate
}

// String renders the identity on one line, for startup logs.
func String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate)
}
