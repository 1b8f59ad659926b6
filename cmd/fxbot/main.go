package main

import (
	"fmt"
	"os"

	"github.com/fxlab/fxbot/internal/monitoring"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		monitoring.RecordError("command")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
