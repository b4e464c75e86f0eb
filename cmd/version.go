package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/sydscene/sydscene/internal/version"
)

func NewVersion() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Check the version info",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Printf("sydscene %s\n", version.Version)
			cmd.Printf("- commit: %s\n", version.CommitSHA)
			cmd.Printf("- os/type: %s\n", runtime.GOOS)
			cmd.Printf("- os/arch: %s\n", runtime.GOARCH)
			cmd.Printf("- go/version: %s\n", runtime.Version())
			return nil
		},
	}
}
