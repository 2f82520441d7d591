package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/endless-browser/resource-convert/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetch(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("payload"))
	}))
	defer ts.Close()

	data, err := New(models.HTTPConfig{}).Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, defaultUserAgent, gotUA)
}

func TestFetchUserAgent(t *testing.T) {
	var gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	_, err := New(models.HTTPConfig{UserAgent: "custom/2.0"}).Fetch(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "custom/2.0", gotUA)
}

func TestFetchStatusNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := New(models.HTTPConfig{}).Fetch(context.Background(), ts.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetch)
	assert.Contains(t, err.Error(), "503")
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchBadURL(t *testing.T) {
	_, err := New(models.HTTPConfig{}).Fetch(context.Background(), "://nowhere")
	assert.ErrorIs(t, err, models.ErrFetch)
}
