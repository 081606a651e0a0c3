// Command saga is the CLI entry point for the saga local document store.
package main

import (
	"fmt"
	"os"

	"github.com/sagaeng/saga/cmd/saga/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
