// settingsctl is a command line controller for an SBP settings bus:
// it reads, writes and enumerates settings over a TCP or serial
// connection to the bus.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
