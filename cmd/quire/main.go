// Command quire bundles many small documents into a few balanced files.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/quire/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
