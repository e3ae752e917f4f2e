// Package settings provides build metadata and per-run configuration shared
// by the riemax-docs CLI and the library packages underneath it.
package settings

// CliBinaryName is the canonical binary name for this tool.
const CliBinaryName = "riemax-docs"

// VersionInformation is populated at build time via ldflags and holds the
// commit hash, semantic version, and build timestamp of the running binary.
var VersionInformation = VersionInfo{
	Commit:       "unknown",
	BuildVersion: "v0.0.0-nightly",
	BuildTime:    "unknown",
}

// VersionInfo holds metadata about the build, including the commit hash,
// build version, and build timestamp.
type VersionInfo struct {
	Commit       string
	BuildVersion string
	BuildTime    string
}

// Run holds configuration settings for a single execution of the tool:
// logging verbosity, the resolved site config path, and output behavior.
type Run struct {
	MinLogLevel int8
	ConfigPath  string
	IsQuiet     bool
	NoColor     bool
	Strict      bool
}

// NewCliParams returns a Run populated with the defaults used when the tool
// is invoked from the command line.
func NewCliParams() *Run {
	return &Run{
		MinLogLevel: 0,
		IsQuiet:     false,
		NoColor:     false,
		Strict:      false,
	}
}
