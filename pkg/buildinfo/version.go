// Package buildinfo exposes the version stamped into a binary.
//
// Release builds set the variables through ldflags:
//
//	go build -ldflags "-X github.com/treeline-io/treeline/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/treeline-io/treeline/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/treeline-io/treeline/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Unstamped builds (go install, go run) fall back to the module version
// and VCS metadata recorded by the toolchain, so `treeline version` is
// never blank.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	// Version is the semantic version, "dev" when unstamped.
	Version = "dev"

	// Commit is the git commit SHA, "none" when unstamped.
	Commit = "none"

	// Date is the build timestamp, "unknown" when unstamped.
	Date = "unknown"
)

func init() {
	if Version != "dev" {
		return
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		Version = v
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			Commit = s.Value
		case "vcs.time":
			Date = s.Value
		}
	}
}

// String returns the multi-line form printed by the version command.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the version template installed on the cobra root.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
