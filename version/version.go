package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time:
//
//	go build -ldflags "-X github.com/juniofirstpay/httpsessions/version.Version=v1.2.0"
var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// Info describes the running binary.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildTime string `json:"build_time,omitempty"`
	GoVersion string `json:"go_version"`
	Dirty     bool   `json:"dirty,omitempty"`
}

// Get returns the linker-provided values, filling gaps from the VCS
// settings embedded by the go tool.
func Get() Info {
	info := Info{Version: Version, GitCommit: GitCommit, BuildTime: BuildTime}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.GitCommit == "" {
				info.GitCommit = shortCommit(s.Value)
			}
		case "vcs.time":
			if info.BuildTime == "" {
				info.BuildTime = s.Value
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// IsRelease reports whether the version was stamped and the tree was clean.
func (i Info) IsRelease() bool {
	return i.Version != "dev" && !i.Dirty
}

// String renders "v1.2.0 (abc1234, 2026-01-02T15:04:05Z)".
func (i Info) String() string {
	s := i.Version
	switch {
	case i.GitCommit != "" && i.BuildTime != "":
		s += fmt.Sprintf(" (%s, %s)", i.GitCommit, i.BuildTime)
	case i.GitCommit != "":
		s += fmt.Sprintf(" (%s)", i.GitCommit)
	}
	if i.Dirty {
		s += " dirty"
	}
	return s
}

func shortCommit(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
