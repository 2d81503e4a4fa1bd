// Package buildinfo carries the version stamped in by the linker:
//
//	-ldflags "-X kiosk/internal/buildinfo.Version=v1.2.0 -X kiosk/internal/buildinfo.Commit=abc123"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// Short is the window title and log tag: the version for releases, else
// the commit, else "dev".
func Short() string {
	switch {
	case Version != "" && Version != "dev":
		return Version
	case Commit != "" && Commit != "unknown":
		return Commit
	default:
		return "dev"
	}
}

// Long is the full version line printed by the command tool.
func Long() string {
	return fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, Date)
}
