// Package misc keeps build time information.
package misc

import (
	"os"
	"path/filepath"
	"strings"
)

// set by the linker: -X mailbuilder/misc.version=... -X mailbuilder/misc.gitHash=...
var (
	version = "dev"
	gitHash = "unknown"
	appName = ""
)

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns commit the program was built from.
func GetGitHash() string {
	return gitHash
}

// GetAppName returns program name without extension.
func GetAppName() string {
	if len(appName) > 0 {
		return appName
	}
	name := filepath.Base(os.Args[0])
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if len(name) == 0 || name == "." {
		return "mailbuilder"
	}
	return name
}
