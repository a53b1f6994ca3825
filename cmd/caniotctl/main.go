// Command caniotctl runs, observes, and pokes at a simulated or bridged
// CANIOT device from the command line.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
