package main

import (
	"fmt"
	"os"

	"bacgate/cmd/bacgate/command"
)

func main() {
	if err := command.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(command.ExitCode(err))
	}
}
