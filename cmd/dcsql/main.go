// Command dcsql translates denial constraints into SQL violation queries.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dcsql/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "dcsql:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
