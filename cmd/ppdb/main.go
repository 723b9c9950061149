package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	var opts rootOptions

	rootCmd := &cobra.Command{
		Use:           "ppdb",
		Short:         "PPDB enrollment server and session tools",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "use the development logger")

	rootCmd.AddCommand(
		serveCmd(&opts),
		migrateCmd(&opts),
		tokenCmd(&opts),
		staffCmd(&opts),
		checkCmd(&opts),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
