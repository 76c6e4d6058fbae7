package version

import (
	"fmt"
	"io"
	"runtime"
)

// These variables will be set at build time using ldflags
var (
	Version   = "dev"             // Version number
	GitCommit = "unknown"         // Git commit SHA
	BuildDate = "unknown"         // Build date
	GoVersion = runtime.Version() // Go version used to build
)

// GetVersion returns the version string
func GetVersion() string {
	return Version
}

// GetFullVersion returns a detailed version string
func GetFullVersion() string {
	return fmt.Sprintf("okta-assume version %s (commit %s, built %s, %s)",
		Version, GitCommit, BuildDate, GoVersion)
}

// GetUserAgent returns the User-Agent string sent to Okta.
func GetUserAgent() string {
	return fmt.Sprintf("okta-assume/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}

// PrintVersion writes the full version information to w.
func PrintVersion(w io.Writer) {
	fmt.Fprintf(w, "okta-assume %s\n", Version)
	fmt.Fprintf(w, "Git commit: %s\n", GitCommit)
	fmt.Fprintf(w, "Build date: %s\n", BuildDate)
	fmt.Fprintf(w, "Go version: %s\n", GoVersion)
	fmt.Fprintf(w, "Platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
