package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// BinaryVersion is set at build time via -ldflags. Defaults to "dev".
var BinaryVersion = "dev"

// Commit is set at build time via -ldflags when building from a checkout.
var Commit = ""

// ModuleVersion returns the module version embedded by the Go toolchain (when available).
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// Info is the version payload printed by `catmigrate version`.
type Info struct {
	Version       string `json:"version"`
	ModuleVersion string `json:"moduleVersion,omitempty"`
	Commit        string `json:"commit,omitempty"`
	GoVersion     string `json:"goVersion"`
	Platform      string `json:"platform"`
	Arch          string `json:"arch"`
}

// Get collects build and runtime information.
func Get() Info {
	commit := Commit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return Info{
		Version:       BinaryVersion,
		ModuleVersion: ModuleVersion(),
		Commit:        commit,
		GoVersion:     runtime.Version(),
		Platform:      runtime.GOOS,
		Arch:          runtime.GOARCH,
	}
}
