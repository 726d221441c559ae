// Package version exposes the build metadata stamped into the
// twinegen binary through -ldflags.
package version

import (
	"fmt"
	"runtime"
)

// Set at build time via ldflags; untagged builds report "dev".
var (
	CommitHash = "dev"
	BuildTime  = "unknown"
	Version    = "dev"
)

// Info is the resolved build metadata of the running binary.
type Info struct {
	CommitHash string `json:"commit_hash"`
	BuildTime  string `json:"build_time"`
	Version    string `json:"version"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

// Get combines the stamped values with the running toolchain.
func Get() Info {
	return Info{
		CommitHash: CommitHash,
		BuildTime:  BuildTime,
		Version:    Version,
		GoVersion:  runtime.Version(),
		Platform:   runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (i Info) String() string {
	return fmt.Sprintf("twinegen %s (commit %s, built %s)", i.Version, i.CommitHash, i.BuildTime)
}
