package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"pvpcwatch/internal/storage"
)

// Show prints stored prices for one fare class.
func (a *App) Show(ctx context.Context, opts ShowOptions) error {
	fare, err := a.resolveFare(opts.Fare)
	if err != nil {
		return err
	}

	filter, err := storage.NewFilter(opts.Date, opts.Start, opts.End)
	if err != nil {
		return err
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.Query(ctx, filter, fare, false)
	if err != nil {
		return err
	}
	if opts.Limit > 0 && len(rows) > opts.Limit {
		rows = rows[:opts.Limit]
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "no prices found")
		return nil
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Date (UTC)\tPrice (%s)\tDay avg\tOf avg %%\n", fare)
	for _, row := range rows {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			row.DateUTC,
			formatDecimal(row.Price, 4),
			formatDecimal(row.Avg, 4),
			formatDecimal(row.Increase, 2),
		)
	}
	return writer.Flush()
}

func formatDecimal(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
