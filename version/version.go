package version

import "fmt"

// Build and version details. Set via -ldflags at build time.
var (
	GitCommit = ""
	BuildDate = ""
	Version   = "unknown"
)

var tpl = `git commit: %s
build date: %s
version: %s`

// String formats a string with version details.
func String() string {
	return fmt.Sprintf(tpl, GitCommit, BuildDate, Version)
}

// LogFields returns build and version information as logger fields.
func LogFields() []interface{} {
	return []interface{}{
		"GitCommit", GitCommit,
		"BuildDate", BuildDate,
		"Version", Version,
	}
}
