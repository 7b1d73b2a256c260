// reco-catalog maintains a file-backed product/user/review catalog and
// answers one-shot commands against it. Each invocation prints a single
// JSON result on stdout; exit code 1 marks an error envelope.
package main

import (
	"errors"
	"fmt"
	"os"

	"reco-catalog/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		// ErrCommandFailed means the error envelope already went to
		// stdout; anything else is a dispatch problem (bad flags, unknown
		// command) that cobra did not print because errors are silenced.
		if !errors.Is(err, cli.ErrCommandFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}
