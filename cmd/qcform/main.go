// Command qcform records production-line quality-control readings.
package main

import (
	"os"

	"github.com/roach88/qcform/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
