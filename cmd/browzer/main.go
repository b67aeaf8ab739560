// Command browzer serves routes from a manifest file with the browzer
// HTTP server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "browzer:", err)
		os.Exit(1)
	}
}
