package esios

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
)

func noopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Timeout: time.Second, UserAgent: "test"}, noopLogger())
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, samplePayload, string(body))
}

func TestFetchEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Timeout: time.Second}, noopLogger())
	body, err := c.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestFetchHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(ClientOptions{Timeout: time.Second}, noopLogger())
	_, err := c.Fetch(context.Background(), srv.URL)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
}

func TestFetchConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(ClientOptions{Timeout: time.Second}, noopLogger())
	_, err := c.Fetch(context.Background(), srv.URL)
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
}

func TestDayURL(t *testing.T) {
	c := NewClient(ClientOptions{BaseURL: "https://example.test/archive"}, noopLogger())
	day := time.Date(2016, 10, 21, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "https://example.test/archive?date=21-10-2016", c.DayURL(day))
}
