// Package version holds build-time version information, set via -ldflags.
package version

var (
	// Version is the semantic version of this build.
	Version = "0.1.0"

	// Commit is the git commit SHA of this build.
	Commit = "unknown"
)
