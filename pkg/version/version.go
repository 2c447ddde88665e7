// Package version provides build information for the searchkit binaries.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X searchkit/pkg/version.Version=..." at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// BuildInfo is the JSON form of the version output.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// String returns a one-line version string for the named program.
func String(program string) string {
	return fmt.Sprintf("%s %s (commit: %s, built: %s, go: %s)", program, Version, Commit, Date, runtime.Version())
}

// GetInfo returns structured build information.
func GetInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}
