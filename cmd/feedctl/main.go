package main

import (
	"fmt"
	"os"

	"catalogfeed/internal/app"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd(app.Load).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. load is called once, before the first
// subcommand runs.
func newRootCmd(load func() (*app.App, error)) *cobra.Command {
	var a *app.App

	rootCmd := &cobra.Command{
		Use:           "feedctl",
		Short:         "feedctl - operate the catalogue feed exporter",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = load()
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a == nil {
				return nil
			}
			return a.Close()
		},
	}

	current := func() *app.App { return a }

	// Add subcommands
	rootCmd.AddCommand(publishCmd(current))
	rootCmd.AddCommand(feedIDCmd(current))
	rootCmd.AddCommand(configCmd(current))
	rootCmd.AddCommand(storesCmd(current))

	return rootCmd
}
