package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/repocert/repocert/pkg/bootstrap"
)

func newAlignCmd() *cobra.Command {
	var (
		repoPath string
		attrs    []string
		list     bool
	)

	cmd := &cobra.Command{
		Use:   "align",
		Short: "Write starter files for missing attributes",
		Long:  `Writes starter templates for attributes the repository lacks. Existing files are never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				fmt.Println(strings.Join(bootstrap.SupportedAttributes(), "\n"))
				return nil
			}

			root, err := resolveRepo(repoPath)
			if err != nil {
				return err
			}

			actions, err := bootstrap.Apply(root, attrs)
			if err != nil {
				return err
			}
			if len(actions) == 0 {
				fmt.Fprintln(os.Stderr, "Nothing to write; all targeted files already exist.")
				return nil
			}
			for _, a := range actions {
				fmt.Printf("wrote %s (%s)\n", a.Path, a.AttributeID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repoPath, "repo-path", "", "Path to repository root (default: current directory)")
	cmd.Flags().StringSliceVar(&attrs, "attr", nil, "Attribute IDs to bootstrap (default: all supported)")
	cmd.Flags().BoolVar(&list, "list", false, "List supported attributes and exit")

	return cmd
}
