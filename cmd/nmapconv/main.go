// Command nmapconv converts nmap XML reports into JSON documents.
package main

import "github.com/anstrom/nmapconv/cmd/cli"

// Build information, set by ldflags.
var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cli.SetVersion(version, commit, buildTime)
	cli.Execute()
}
