// Package version carries build metadata stamped via -ldflags.
package version

// The defaults identify a local development build.
var (
	Version = "dev"
	Commit  = "none"
	Date    = ""
	Dirty   = "false"
)
