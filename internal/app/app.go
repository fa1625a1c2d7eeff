package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"pvpcwatch/internal/config"
	"pvpcwatch/internal/esios"
	"pvpcwatch/internal/ingest"
	"pvpcwatch/internal/scheduler"
	"pvpcwatch/internal/storage"
	"pvpcwatch/internal/tariff"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newClient() *esios.Client {
	return esios.NewClient(esios.ClientOptions{
		BaseURL:   a.Config.Provider.BaseURL,
		Timeout:   a.Config.Provider.RequestTimeout,
		UserAgent: a.Config.Provider.UserAgent,
	}, a.Logger)
}

func (a *App) openStore() (*storage.Store, error) {
	return storage.Open(a.Config.Database.Path, a.Logger)
}

// sourceURLs resolves the source list for a run: the configured fixed URLs,
// or failing that the archive URLs for today and tomorrow (the provider
// publishes tomorrow's tariffs during the evening).
func (a *App) sourceURLs(client *esios.Client) []string {
	if len(a.Config.Provider.URLs) > 0 {
		return a.Config.Provider.URLs
	}
	now := time.Now()
	return []string{
		client.DayURL(now),
		client.DayURL(now.AddDate(0, 0, 1)),
	}
}

func (a *App) resolveFare(name string) (tariff.Fare, error) {
	if name == "" {
		return a.Config.DefaultFare(), nil
	}
	return tariff.ParseFare(name)
}

// Run executes the long-running ingestion service: a single worker consuming
// triggers, fed by the interval scheduler.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	client := a.newClient()
	svc := ingest.New(client, store, ingest.Options{
		FetchTimeout: a.Config.Provider.RequestTimeout,
		DefaultURLs:  func() []string { return a.sourceURLs(client) },
	}, a.Logger)

	// The change feed belongs to the presentation layer; the service itself
	// only logs it.
	changes := store.Subscribe()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				a.Logger.Debug().Msg("price table changed")
			}
		}
	}()

	sched := scheduler.New(scheduler.Options{
		Interval:     a.Config.Scheduler.Interval,
		AlignToStart: a.Config.Scheduler.AlignToInterval,
		StartupDelay: a.Config.Scheduler.StartupDelay,
	}, a.Logger)
	go func() {
		err := sched.Run(ctx, func(context.Context) error {
			svc.Trigger(ingest.Trigger{})
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	// Ingest immediately so a fresh start does not wait a full interval.
	svc.Trigger(ingest.Trigger{})

	a.Logger.Info().Msg("starting ingestion service")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("ingestion service stopped")
	return nil
}

// FetchOptions configure a one-shot ingestion run.
type FetchOptions struct {
	URLs []string
}

// ShowOptions configure the show command.
type ShowOptions struct {
	Limit int
	Fare  string
	Date  string
	Start string
	End   string
}

// ExportOptions hold parameters for exporting stored prices.
type ExportOptions struct {
	Fare      string
	From      string
	To        string
	PNGPath   string
	CSVPath   string
	MaxPoints int
}
