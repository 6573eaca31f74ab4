package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is set via ldflags during build:
	// go build -ldflags "-X github.com/r9s-ai/open-billing-client/internal/version.Version=v0.3.0"
	Version = "dev"

	// Commit is the git commit hash
	Commit = "unknown"

	// BuildDate is the build date in RFC3339 format
	BuildDate = "unknown"
)

type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
}

func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i Info) String() string {
	return fmt.Sprintf(
		"billing-admin %s\ncommit: %s\nbuilt at: %s\ngo version: %s\nplatform: %s",
		i.Version,
		i.Commit,
		i.BuildDate,
		i.GoVersion,
		i.Platform,
	)
}

// UserAgent is sent with every request to the billing service.
func UserAgent() string {
	return "open-billing-client/" + Version
}

// Short returns a short version string
func Short() string {
	if Commit != "unknown" && len(Commit) > 7 {
		return fmt.Sprintf("%s (%s)", Version, Commit[:7])
	}
	return Version
}
