package audio

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetch_Success(t *testing.T) {
	body := []byte("ID3\x04fake-mp3-frames")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rec/abc.mp3", r.URL.Path)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write(body)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, discardLogger())
	rec, err := f.Fetch(context.Background(), server.URL+"/rec/abc.mp3")
	require.NoError(t, err)
	assert.Equal(t, body, rec.Data)
	assert.Equal(t, "audio/mpeg", rec.ContentType)
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, discardLogger())
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFetch_EmptyBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	f := NewFetcher(5*time.Second, discardLogger())
	_, err := f.Fetch(context.Background(), server.URL)
	assert.True(t, errors.Is(err, ErrEmptyAudio))
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	f := NewFetcher(50*time.Millisecond, discardLogger())
	_, err := f.Fetch(context.Background(), server.URL)
	require.Error(t, err)
}

func TestFetch_BadURL(t *testing.T) {
	f := NewFetcher(0, discardLogger())
	_, err := f.Fetch(context.Background(), "://not-a-url")
	require.Error(t, err)
}
