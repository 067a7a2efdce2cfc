// Package version reports build information injected at link time:
//
//	go build -ldflags "-X github.com/fiscal-integrations/manifestacao/internal/version.version=v1.2.0 \
//	  -X github.com/fiscal-integrations/manifestacao/internal/version.buildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ) \
//	  -X github.com/fiscal-integrations/manifestacao/internal/version.gitCommit=$(git rev-parse --short HEAD)"
package version

import "runtime/debug"

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

// Info holds the build information of the running binary
type Info struct {
	Version   string `json:"version" example:"1.0.0"`
	BuildDate string `json:"build_date" example:"2024-01-28T10:00:00Z"`
	GitCommit string `json:"git_commit" example:"a1b2c3d"`
}

// Get returns the build information. When the binary was built without ldflags
// the VCS details recorded by the Go toolchain are used instead.
func Get() Info {
	info := Info{Version: version, BuildDate: buildDate, GitCommit: gitCommit}

	if info.GitCommit != "unknown" {
		return info
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if len(s.Value) > 7 {
				info.GitCommit = s.Value[:7]
			} else {
				info.GitCommit = s.Value
			}
		case "vcs.time":
			if info.BuildDate == "unknown" {
				info.BuildDate = s.Value
			}
		}
	}
	return info
}
