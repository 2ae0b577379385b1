package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	root := &cobra.Command{
		Use:           "scoring-service",
		Short:         "Classical test theory scoring for answer sheets",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	serve := newServeCmd()
	root.AddCommand(serve, newScoreCmd(), newExportCmd())
	root.RunE = serve.RunE

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
