// Package version tracks the server release version.
package version

// Version is the current released version.
var Version = "0.3.0"

// DevVersion is the development version.
var DevVersion = "0.3.0"

// GetCurrentVersion returns the version for the given run mode.
func GetCurrentVersion(mode string) string {
	if mode == "dev" || mode == "demo" {
		return DevVersion
	}
	return Version
}
