// Package main provides the repocert CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repocert/repocert/pkg/assess"
)

var version = "dev"

// errBelowGate marks a completed run whose score missed the --fail-below gate.
var errBelowGate = errors.New("score below required threshold")

func main() {
	rootCmd := &cobra.Command{
		Use:   "repocert",
		Short: "Repository quality assessment and certification",
		Long: `repocert evaluates a repository against a weighted attribute catalog,
computes an overall score, and awards a certification tier.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newAssessCmd(),
		newBadgeCmd(),
		newAlignCmd(),
		newSubmitCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		switch {
		case assess.IsConfigError(err):
			os.Exit(2)
		default:
			os.Exit(1)
		}
	}
}
