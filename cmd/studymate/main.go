// Command studymate indexes lecture documents and retrieves context for questions.
package main

import (
	"os"
	"runtime/debug"

	"github.com/custodia-labs/studymate/internal/adapters/driving/cli"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	if err := cli.Execute(buildVersion()); err != nil {
		os.Exit(1)
	}
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}
