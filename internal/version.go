package internal

import (
	"fmt"
	"runtime"
	"strings"
)

const (

	// Name of the server, used for log groups, paths, and usage text.
	Name = "compd"

	// String to indicate an undefined variable
	undefined = "(undefined)"

	// String to indicate a local (non-pipeline) build
	localBuild = "(local)"

	// Main branch name used in version strings
	mainBranch = "main"
)

var (
	version   = "" // Version number (e.g., "1.4.0")
	stage     = "" // Development stage or git branch (e.g., "beta", "main")
	gitCommit = "" // Git commit hash (e.g., "a1b2c3d4")
)

// Returns the current version.
//
// If the version is not set, returns "(undefined)". If the version includes a
// "v" or "V" prefix (e.g., "v1.0.0"), it is stripped.
func Version() string {
	v := strings.ToLower(strings.TrimSpace(version))
	return orUndefined(strings.TrimPrefix(v, "v"))
}

// Returns the development stage (e.g., "beta").
//
// The stage should correspond to the git branch name used during the build.
// It is reported in lower case. If it is not set, returns "(undefined)".
func Stage() string {
	return orUndefined(strings.ToLower(strings.TrimSpace(stage)))
}

// Returns the git commit hash.
//
// If the commit hash is not set, returns "(undefined)".
func GitCommit() string {
	return orUndefined(strings.TrimSpace(gitCommit))
}

// Returns true if this is a local (non-pipeline) build.
//
// A build is considered local if any of the version, git commit, or stage
// variables are unset. Pipeline builds should set all three variables via
// linker flags.
func IsLocal() bool {
	return strings.TrimSpace(version) == "" ||
		strings.TrimSpace(stage) == "" ||
		strings.TrimSpace(gitCommit) == ""
}

// Returns a detailed version string.
//
// If this is a local build, returns "(local)". Otherwise, returns a string
// formatted as "<version>+<stage> <git-commit> [<os>/<arch>]". The stage is
// omitted for builds from the main branch.
func VersionString() string {
	if IsLocal() {
		return localBuild
	}

	suffix := ""
	if s := Stage(); s != mainBranch {
		suffix = "+" + s
	}

	return fmt.Sprintf("%s%s %s [%s/%s]", Version(), suffix, GitCommit(), runtime.GOOS, runtime.GOARCH)
}

func orUndefined(s string) string {
	if s == "" {
		return undefined
	}
	return s
}
