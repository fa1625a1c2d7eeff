package ingest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pvpcwatch/internal/esios"
	"pvpcwatch/internal/tariff"
)

const goodPayload = `{
  "PVPC": [
    {"Dia": "21/10/2016", "Hora": "00-01", "GEN": "10,00", "NOC": "5,00", "VHC": "4,00"},
    {"Dia": "21/10/2016", "Hora": "01-02", "GEN": "20,00", "NOC": "7,00", "VHC": "6,00"}
  ]
}`

type fakeStore struct {
	batches [][]tariff.PriceRecord
	err     error
}

func (f *fakeStore) UpsertBatch(ctx context.Context, records []tariff.PriceRecord) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.batches = append(f.batches, records)
	return int64(len(records)), nil
}

func newTestService(store *fakeStore) *Service {
	client := esios.NewClient(esios.ClientOptions{Timeout: time.Second}, zerolog.Nop())
	return New(client, store, Options{FetchTimeout: time.Second}, zerolog.Nop())
}

func TestRunOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(goodPayload))
	}))
	defer srv.Close()

	store := &fakeStore{}
	svc := newTestService(store)

	summary := svc.RunOnce(context.Background(), []string{srv.URL})
	assert.Equal(t, 2, summary.Fetched)
	assert.EqualValues(t, 2, summary.Stored)
	assert.Zero(t, summary.Failed)

	require.Len(t, store.batches, 1)
	require.Len(t, store.batches[0], 2)
	assert.Equal(t, "2016-10-20T22:00Z", store.batches[0][0].DateUTC)
}

func TestRunOnceFailedURLDoesNotBlockOthers(t *testing.T) {
	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(goodPayload))
	}))
	defer good.Close()

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer bad.Close()

	store := &fakeStore{}
	svc := newTestService(store)

	summary := svc.RunOnce(context.Background(), []string{bad.URL, good.URL})
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.Fetched)
	assert.EqualValues(t, 2, summary.Stored)
	require.Len(t, store.batches, 1)
}

func TestRunOnceEmptyBodyIsNothingToDo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &fakeStore{}
	svc := newTestService(store)

	summary := svc.RunOnce(context.Background(), []string{srv.URL})
	assert.Zero(t, summary.Failed)
	assert.Zero(t, summary.Fetched)
	assert.Empty(t, store.batches)
}

func TestRunOnceParseErrorLeavesStoreUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"PVPC": [{"Dia": "21/10/2016", "Hora": "00-01", "GEN": "abc", "NOC": "5,00", "VHC": "4,00"}]}`))
	}))
	defer srv.Close()

	store := &fakeStore{}
	svc := newTestService(store)

	summary := svc.RunOnce(context.Background(), []string{srv.URL})
	assert.Equal(t, 1, summary.Failed)
	assert.Empty(t, store.batches)
}

func TestRunOnceStoreErrorReported(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(goodPayload))
	}))
	defer srv.Close()

	store := &fakeStore{err: errors.New("disk full")}
	svc := newTestService(store)

	summary := svc.RunOnce(context.Background(), []string{srv.URL})
	assert.Equal(t, 1, summary.Failed)
	assert.Zero(t, summary.Stored)
}

func TestRunOnceUsesDefaultURLs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(goodPayload))
	}))
	defer srv.Close()

	store := &fakeStore{}
	client := esios.NewClient(esios.ClientOptions{Timeout: time.Second}, zerolog.Nop())
	svc := New(client, store, Options{
		FetchTimeout: time.Second,
		DefaultURLs:  func() []string { return []string{srv.URL} },
	}, zerolog.Nop())

	summary := svc.RunOnce(context.Background(), nil)
	assert.Equal(t, 2, summary.Fetched)
}

func TestTriggerCoalesces(t *testing.T) {
	svc := New(nil, &fakeStore{}, Options{}, zerolog.Nop())

	// Only one trigger fits in the queue; the rest coalesce instead of
	// blocking the caller.
	svc.Trigger(Trigger{})
	svc.Trigger(Trigger{})
	svc.Trigger(Trigger{})

	assert.Len(t, svc.triggers, 1)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	svc := New(nil, &fakeStore{}, Options{}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
