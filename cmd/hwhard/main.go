// Command hwhard drives the product lifecycle engine from the terminal.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/deviceprophet/hardware-is-hard-sub000/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		// Commands print their own formatted errors; cobra-level failures
		// (unknown flags, bad arg counts) are printed here.
		if !printed(err) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}

func printed(err error) bool {
	var exitErr *cli.ExitError
	return errors.As(err, &exitErr)
}
