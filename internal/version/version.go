// Package version holds build metadata injected via ldflags:
//
//	-X github.com/commu-practical/helpmap/internal/version.Version=...
package version

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgentSuffix returns the build identifier appended to outbound User-Agent headers.
func UserAgentSuffix() string {
	return "helpmap/" + Version
}
