// Package version exposes build metadata set via -ldflags.
package version

import "runtime"

var (
	// Version is the semantic version of the build
	Version = "1.0.0"

	// GitCommit is the git commit hash the binary was built from
	GitCommit = "unknown"

	// BuildDate is the UTC build timestamp
	BuildDate = "unknown"
)

// Info holds version information for the running service
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// Get returns the version information of the running service
func Get() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}
}
