package app

import (
	"context"
	"encoding/csv"
	"errors"
	"math"
	"os"
	"path/filepath"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"pvpcwatch/internal/dateutil"
	"pvpcwatch/internal/storage"
	"pvpcwatch/internal/tariff"
)

// Export writes stored prices for one fare class as CSV and/or a PNG chart.
func (a *App) Export(ctx context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	fare, err := a.resolveFare(opts.Fare)
	if err != nil {
		return err
	}

	filter, err := storage.NewFilter("", opts.From, opts.To)
	if err != nil {
		return err
	}

	opts.MaxPoints = a.Config.ResolveMaxPoints(opts.MaxPoints)

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	rows, err := store.Query(ctx, filter, fare, true)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		a.Logger.Info().Msg("no prices found for export window")
		return nil
	}

	downsampled := downsampleRows(rows, opts.MaxPoints)
	a.Logger.Info().Int("total", len(rows)).Int("exported", len(downsampled)).Msg("exporting prices")

	if opts.CSVPath != "" {
		if err := writePricesCSV(opts.CSVPath, fare, downsampled); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writePricesPNG(opts.PNGPath, fare, downsampled); err != nil {
			return err
		}
	}

	return nil
}

func downsampleRows(rows []storage.PriceRow, max int) []storage.PriceRow {
	if max <= 0 || len(rows) <= max {
		return rows
	}

	result := make([]storage.PriceRow, 0, max)
	step := float64(len(rows)-1) / float64(max-1)
	for i := 0; i < max; i++ {
		idx := int(math.Round(step * float64(i)))
		if idx >= len(rows) {
			idx = len(rows) - 1
		}
		result = append(result, rows[idx])
	}
	return result
}

func writePricesCSV(path string, fare tariff.Fare, rows []storage.PriceRow) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "fare", "price", "avg", "increase_pct"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.DateUTC,
			string(fare),
			row.Price.String(),
			row.Avg.String(),
			row.Increase.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writePricesPNG(path string, fare tariff.Fare, rows []storage.PriceRow) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, len(rows))
	price := make([]float64, len(rows))
	avg := make([]float64, len(rows))
	increase := make([]float64, len(rows))

	for i, row := range rows {
		t, err := time.Parse(dateutil.ISOLayout, row.DateUTC)
		if err != nil {
			return err
		}
		x[i] = t
		price[i] = row.Price.InexactFloat64()
		avg[i] = row.Avg.InexactFloat64()
		increase[i] = row.Increase.InexactFloat64()
	}

	priceFormatter := func(v interface{}) string {
		return chart.FloatValueFormatterWithFormat(v, "%.4f")
	}
	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name:           "Price (EUR/kWh)",
			ValueFormatter: priceFormatter,
		},
		YAxisSecondary: chart.YAxis{
			Name:           "Of day average (%)",
			ValueFormatter: priceFormatter,
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Price " + string(fare),
				XValues: x,
				YValues: price,
			},
			chart.TimeSeries{
				Name:    "Day average",
				XValues: x,
				YValues: avg,
			},
			chart.TimeSeries{
				Name:    "Of average %",
				XValues: x,
				YValues: increase,
				YAxis:   chart.YAxisSecondary,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
