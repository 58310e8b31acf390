package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSheetURL(t *testing.T) {
	got := SheetURL("abc123", "Formularantworten 2")
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?sheet=Formularantworten+2&tqx=out%3Acsv", got)

	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc/gviz/tq?tqx=out%3Acsv", SheetURL("abc", ""))
}

func TestClientFetch(t *testing.T) {
	t.Run("returns body on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "text/csv", r.Header.Get("Accept"))
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("header\n08.05.2025 10:00,60,No\n"))
		}))
		defer srv.Close()

		body, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "header\n08.05.2025 10:00,60,No\n", body)
	})

	t.Run("non-OK status is a StatusError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewClient(srv.URL, time.Second).Fetch(context.Background())
		require.Error(t, err)

		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		assert.Contains(t, statusErr.Body, "nope")
	})

	t.Run("unreachable host", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(url, time.Second).Fetch(context.Background())
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("header\n"))
		}))
		defer srv.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewClient(srv.URL, 0).Fetch(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
