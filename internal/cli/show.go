package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"pvpcwatch/internal/app"
)

var (
	showLimit int
	showFare  string
	showDate  string
	showStart string
	showEnd   string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display stored hourly prices for one fare",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showLimit <= 0 {
			return fmt.Errorf("--limit must be greater than zero")
		}

		opts := app.ShowOptions{
			Limit: showLimit,
			Fare:  showFare,
			Date:  showDate,
			Start: showStart,
			End:   showEnd,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().IntVar(&showLimit, "limit", 48, "Number of rows to display")
	showCmd.Flags().StringVar(&showFare, "fare", "", "Fare class: general, night or vehicle (defaults to config)")
	showCmd.Flags().StringVar(&showDate, "date", "", "Exact hour slot (yyyy-MM-ddTHH:mmZ); exclusive with --start/--end")
	showCmd.Flags().StringVar(&showStart, "start", "", "Range start, inclusive (yyyy-MM-ddTHH:mmZ)")
	showCmd.Flags().StringVar(&showEnd, "end", "", "Range end, inclusive (yyyy-MM-ddTHH:mmZ)")
}
