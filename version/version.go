// Package version reports build information for the tproll binary.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

var (
	// Version is the application version, set via ldflags.
	Version string
	// BuildDate is when the binary was built, set via ldflags.
	BuildDate string

	// Revision is the VCS revision recorded by the Go toolchain, with a
	// "-dirty" suffix for modified trees.
	Revision = revision(debug.ReadBuildInfo)
)

// String returns a one-line summary of the build for program, e.g.
//
//	tproll v0.3.0 (rev 1a2b3c4, built 2026-01-02, go1.25.0 linux/amd64)
//
// Fields that were not set at build time are left out.
func String(program string) string {
	v := Version
	if v == "" {
		v = "devel"
	}

	s := fmt.Sprintf("%s %s (rev %s", program, v, Revision)
	if BuildDate != "" {
		s += ", built " + BuildDate
	}

	return s + fmt.Sprintf(", %s %s/%s)", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func revision(read func() (*debug.BuildInfo, bool)) string {
	rev := "unknown"

	buildInfo, ok := read()
	if !ok {
		return rev
	}

	modified := false

	for _, v := range buildInfo.Settings {
		switch v.Key {
		case "vcs.revision":
			rev = v.Value
			if len(rev) > 12 {
				rev = rev[:12]
			}
		case "vcs.modified":
			modified = v.Value == "true"
		}
	}

	if modified {
		return rev + "-dirty"
	}

	return rev
}
