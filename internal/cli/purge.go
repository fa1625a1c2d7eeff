package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeForce bool

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Discard every cached price",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !purgeForce {
			return fmt.Errorf("refusing to purge without --force")
		}
		return getApp().Purge(cmd.Context())
	},
}

func init() {
	purgeCmd.Flags().BoolVar(&purgeForce, "force", false, "Confirm discarding all cached prices")
}
