package ingest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"pvpcwatch/internal/esios"
	"pvpcwatch/internal/storage"
	"pvpcwatch/internal/tariff"
)

// PayloadFetcher retrieves one raw provider payload.
type PayloadFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Trigger asks the worker for one ingestion run. An empty URL list means
// "the default sources".
type Trigger struct {
	URLs []string
}

// Summary reports what one run accomplished. The counts are observability
// output only; they drive no retry logic.
type Summary struct {
	// Fetched is the number of records parsed and normalized across all URLs.
	Fetched int
	// Stored is the number of rows committed.
	Stored int64
	// Failed is the number of URLs that errored and were skipped.
	Failed int
}

// Options tune the ingestion service.
type Options struct {
	// FetchTimeout bounds each URL fetch so a stuck connection cannot wedge
	// the single worker.
	FetchTimeout time.Duration
	// DefaultURLs supplies the sources for a trigger that carries none.
	DefaultURLs func() []string
}

// Service drives fetch, parse, normalize and store for each trigger. Runs
// never overlap: triggers are consumed by a single worker, and a mutex
// guarantees serial upserts even for direct RunOnce callers.
type Service struct {
	fetcher PayloadFetcher
	store   storage.BatchWriter
	opts    Options
	logger  zerolog.Logger

	triggers chan Trigger
	runMu    sync.Mutex
}

// New constructs the ingestion service.
func New(fetcher PayloadFetcher, store storage.BatchWriter, opts Options, logger zerolog.Logger) *Service {
	return &Service{
		fetcher:  fetcher,
		store:    store,
		opts:     opts,
		logger:   logger.With().Str("component", "ingest").Logger(),
		triggers: make(chan Trigger, 1),
	}
}

// Trigger queues an ingestion run. A trigger arriving while another is
// already pending is coalesced into it.
func (s *Service) Trigger(t Trigger) {
	select {
	case s.triggers <- t:
	default:
		s.logger.Debug().Msg("trigger coalesced with pending run")
	}
}

// Run consumes triggers until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-s.triggers:
			summary := s.RunOnce(ctx, t.URLs)
			s.logger.Info().
				Int("fetched", summary.Fetched).
				Int64("stored", summary.Stored).
				Int("failed", summary.Failed).
				Msg("ingestion run complete")
		}
	}
}

// RunOnce executes one ingestion run over the given source URLs, processing
// them sequentially. One URL failing does not stop the others; a failed URL
// simply waits for the next trigger.
func (s *Service) RunOnce(ctx context.Context, urls []string) Summary {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if len(urls) == 0 && s.opts.DefaultURLs != nil {
		urls = s.opts.DefaultURLs()
	}

	var summary Summary
	for _, url := range urls {
		fetched, stored, err := s.processURL(ctx, url)
		if err != nil {
			summary.Failed++
			s.logger.Error().Err(err).Str("url", url).Str("state", "failed").Msg("source skipped")
			continue
		}
		summary.Fetched += fetched
		summary.Stored += stored
	}
	return summary
}

// processURL runs one source through the fetch, parse, normalize and store
// steps. Any error aborts the whole batch for this URL; nothing partial is
// ever committed.
func (s *Service) processURL(ctx context.Context, url string) (int, int64, error) {
	logger := s.logger.With().Str("url", url).Logger()

	logger.Debug().Str("state", "fetching").Msg("downloading payload")
	body, err := s.fetchBody(ctx, url)
	if err != nil {
		return 0, 0, err
	}
	if len(body) == 0 {
		logger.Info().Msg("empty payload; nothing to do")
		return 0, 0, nil
	}

	logger.Debug().Str("state", "parsing").Msg("decoding payload")
	entries, err := esios.ParsePayload(body)
	if err != nil {
		return 0, 0, err
	}

	logger.Debug().Str("state", "normalizing").Msg("normalizing batch")
	records, err := tariff.Normalize(entries)
	if err != nil {
		return 0, 0, err
	}
	if len(records) == 0 {
		return 0, 0, nil
	}

	logger.Debug().Str("state", "storing").Msg("writing batch")
	stored, err := s.store.UpsertBatch(ctx, records)
	if err != nil {
		return 0, 0, fmt.Errorf("store batch: %w", err)
	}

	logger.Info().Int("records", len(records)).Int64("stored", stored).Msg("source ingested")
	return len(records), stored, nil
}

func (s *Service) fetchBody(ctx context.Context, url string) ([]byte, error) {
	if s.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.FetchTimeout)
		defer cancel()
	}
	return s.fetcher.Fetch(ctx, url)
}

var _ PayloadFetcher = (*esios.Client)(nil)
