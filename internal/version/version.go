package version

import "fmt"

//nolint:gochecknoglobals // Overridden through -ldflags "-X".
var (
	// Version is the semantic version of the sentinel.
	Version = "0.1.0"
	// Commit is the short git SHA of the build, or "none".
	Commit = "none"
	// BuildTime is the UTC build timestamp, or "unknown".
	BuildTime = "unknown"
)

// Short returns the semantic version only.
func Short() string {
	return Version
}

// Full returns the version line printed by the version subcommand.
func Full() string {
	return fmt.Sprintf("redlight-sentinel %s (commit %s, built %s)", Version, Commit, BuildTime)
}
