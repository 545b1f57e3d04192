// Package chartgen provides the version information for chartgen.
package chartgen

// Version is the current version of chartgen.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}
