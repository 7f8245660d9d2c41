// Package version reports build information for the gogb binary
package version

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"
)

const unknown = "unknown"

// Set at link time, e.g. -ldflags "-X gogb/internal/version.Version=1.0.0"
var (
	Version   = "dev"
	GitCommit = unknown
	BuildTime = unknown
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Version    string `json:"version"`
	GitCommit  string `json:"git_commit"`
	BuildTime  string `json:"build_time"`
	Modified   bool   `json:"modified"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
	CGOEnabled bool   `json:"cgo_enabled"`
}

// GetBuildInfo merges the link-time variables with the VCS stamp the Go
// toolchain embeds; link-time values win
func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	embedded, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, setting := range embedded.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.GitCommit == unknown {
				info.GitCommit = setting.Value
			}
		case "vcs.time":
			if info.BuildTime == unknown {
				info.BuildTime = setting.Value
			}
		case "vcs.modified":
			info.Modified = setting.Value == "true"
		case "CGO_ENABLED":
			info.CGOEnabled = setting.Value == "1"
		}
	}
	return info
}

// ShortCommit returns the first seven characters of the commit hash
func (b BuildInfo) ShortCommit() string {
	if len(b.GitCommit) > 7 {
		return b.GitCommit[:7]
	}
	return b.GitCommit
}

// GetVersion returns the release version, or dev-<commit> for untagged builds
func GetVersion() string {
	if Version != "dev" {
		return Version
	}
	if info := GetBuildInfo(); info.GitCommit != unknown {
		return "dev-" + info.ShortCommit()
	}
	return Version
}

// GetDetailedVersion returns a one-line description of the build
func GetDetailedVersion() string {
	info := GetBuildInfo()

	var sb strings.Builder
	sb.WriteString("gogb version ")
	sb.WriteString(info.Version)

	if info.GitCommit != unknown {
		fmt.Fprintf(&sb, " (commit %s", info.ShortCommit())
		if info.Modified {
			sb.WriteString(", modified")
		}
		sb.WriteString(")")
	}

	if info.BuildTime != unknown {
		built := info.BuildTime
		if parsed, err := time.Parse(time.RFC3339, built); err == nil {
			built = parsed.UTC().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(&sb, " built on %s", built)
	}

	fmt.Fprintf(&sb, " with %s for %s", info.GoVersion, info.Platform)
	return sb.String()
}

// WriteBuildInfo writes formatted build information to w
func WriteBuildInfo(w io.Writer) {
	info := GetBuildInfo()

	fmt.Fprintln(w, GetDetailedVersion())
	fmt.Fprintf(w, "Version:     %s\n", info.Version)
	fmt.Fprintf(w, "Git Commit:  %s\n", info.GitCommit)
	fmt.Fprintf(w, "Build Time:  %s\n", info.BuildTime)
	fmt.Fprintf(w, "Go Version:  %s\n", info.GoVersion)
	fmt.Fprintf(w, "Platform:    %s\n", info.Platform)
	fmt.Fprintf(w, "CGO Enabled: %t\n", info.CGOEnabled)
	fmt.Fprintf(w, "Built with:  %s\n", strings.Join(Dependencies(), ", "))
}

// PrintBuildInfo prints formatted build information to stdout
func PrintBuildInfo() {
	WriteBuildInfo(os.Stdout)
}

// Dependencies lists the modules linked into the binary as path@version
func Dependencies() []string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil
	}

	deps := make([]string, 0, len(info.Deps))
	for _, dep := range info.Deps {
		if dep.Replace != nil {
			dep = dep.Replace
		}
		deps = append(deps, dep.Path+"@"+dep.Version)
	}
	sort.Strings(deps)
	return deps
}
