package config

import (
	"fmt"
)

// Build identity for the folio-portal binaries, stamped at link time:
//
//	-ldflags "-X .../internal/config.Version=v1.2.0 ..."
var (
	Version   = "dev"
	Build     = "unknown"
	GitCommit = "unknown"
)

// GetVersion returns the stamped release version, "dev" for local builds.
func GetVersion() string {
	return Version
}

// GetBuild returns the build timestamp.
func GetBuild() string {
	return Build
}

// GetGitCommit returns the commit the binary was built from.
func GetGitCommit() string {
	return GitCommit
}

// GetFullVersion returns the version with build and commit appended, as
// printed by the -version flag and the version endpoints.
func GetFullVersion() string {
	return fmt.Sprintf("%s (build: %s, commit: %s)", Version, Build, GitCommit)
}
