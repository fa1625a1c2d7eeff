package app

import "context"

// Purge discards every cached price. The store is a cache of remote truth;
// the next ingestion run repopulates it.
func (a *App) Purge(ctx context.Context) error {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	if err := store.Reset(ctx); err != nil {
		return err
	}

	a.Logger.Info().Int64("purged", count).Msg("price cache purged")
	return nil
}
