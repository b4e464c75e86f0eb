package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sydscene",
		Short: "Sydney event listings aggregator",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
	}
	cmd.AddCommand(NewRun(), NewScrape(), NewVersion())
	return cmd
}

func Execute() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}
