// Package version holds build information injected at link time, e.g.
//
//	go build -ldflags "-X github.com/oshokin/httplog/internal/version.Version=1.2.0"
package version

//nolint:gochecknoglobals // Overridden with -ldflags at build time.
var (
	// Version is the semantic version of the build.
	Version = "0.1.0"
	// Commit is the VCS revision of the build.
	Commit = "none"
	// BuildTime is the moment the binary was built.
	BuildTime = "unknown"
)

// Short returns the bare version string.
func Short() string {
	return Version
}

// Full returns the version together with the commit and the build time.
func Full() string {
	return "version: " + Version + ", commit: " + Commit + ", built at: " + BuildTime
}
