package cli

import (
	"github.com/spf13/cobra"

	"pvpcwatch/internal/app"
)

var (
	exportFare      string
	exportFrom      string
	exportTo        string
	exportPNGPath   string
	exportCSVPath   string
	exportMaxPoints int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored prices as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Fare:      exportFare,
			From:      exportFrom,
			To:        exportTo,
			PNGPath:   exportPNGPath,
			CSVPath:   exportCSVPath,
			MaxPoints: exportMaxPoints,
		}
		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFare, "fare", "", "Fare class to export (defaults to config)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Range start, inclusive (yyyy-MM-ddTHH:mmZ)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Range end, inclusive (yyyy-MM-ddTHH:mmZ)")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().IntVar(&exportMaxPoints, "max-points", 0, "Maximum data points to export (defaults to config)")
}
