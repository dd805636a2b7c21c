// main is the entry point for the churnlab CLI.
package main

import (
	"github.com/huangsam/churnlab/cmd"
	"github.com/huangsam/churnlab/internal/contract"
)

func main() {
	runErr := cmd.Execute()

	if err := cmd.StopProfiling(); err != nil {
		contract.LogWarn("Cannot stop profiling", err)
	}

	if runErr != nil {
		contract.LogFatal("Command failed", runErr)
	}
}
