// Command vestingd verifies vesting lock transitions and serves the
// verifier to a consensus engine.
package main

import (
	"fmt"
	"os"

	"github.com/blockberries/vesting/config"
	"github.com/blockberries/vesting/internal/cli"
)

func main() {
	// serve replaces this with the configured handler.
	_ = cli.SetupLogging(os.Stderr, config.Default().Log)

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
