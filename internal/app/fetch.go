package app

import (
	"context"
	"fmt"

	"pvpcwatch/internal/ingest"
)

// Fetch runs one ingestion pass over the given URLs (or the default
// today/tomorrow sources) and exits. It stands in for an explicit push
// trigger.
func (a *App) Fetch(ctx context.Context, opts FetchOptions) error {
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

	summary := svc.RunOnce(ctx, opts.URLs)
	a.Logger.Info().
		Int("fetched", summary.Fetched).
		Int64("stored", summary.Stored).
		Int("failed", summary.Failed).
		Msg("fetch complete")

	if summary.Failed > 0 {
		return fmt.Errorf("%d source(s) failed; see log for details", summary.Failed)
	}
	return nil
}
