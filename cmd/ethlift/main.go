package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/pendergraft/ethlift/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		// Drift under --exit-code is a result, not a failure worth a message.
		if !errors.Is(err, cli.ErrDriftDetected) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
