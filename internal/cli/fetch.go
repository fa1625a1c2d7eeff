package cli

import (
	"github.com/spf13/cobra"

	"pvpcwatch/internal/app"
)

var fetchURLs []string

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one ingestion pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.FetchOptions{
			URLs: fetchURLs,
		}
		return getApp().Fetch(cmd.Context(), opts)
	},
}

func init() {
	fetchCmd.Flags().StringArrayVar(&fetchURLs, "url", nil, "Source URL (repeatable; defaults to today's and tomorrow's archives)")
}
