package fetch

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lexfold/canondoc/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.BackoffBase = time.Millisecond
	cfg.MaxBackoff = 5 * time.Millisecond
	return cfg
}

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	f := NewFetcher(fastConfig())
	res, err := f.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.4 fake"), res.Body)
	assert.Equal(t, "application/pdf", res.ContentType)
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestFetch_RetriesTransientThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	f := NewFetcher(fastConfig())
	res, err := f.Fetch(t.Context(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, []byte("ok"), res.Body)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetch_PermanentFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	f := NewFetcher(fastConfig())
	_, err := f.Fetch(t.Context(), srv.URL)

	require.Error(t, err)
	assert.True(t, apperr.IsPermanentAcquisition(err))
	assert.Equal(t, int32(1), calls.Load(), "permanent failures must not be retried")
}

func TestFetch_TransientFailureExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	f := NewFetcher(fastConfig())
	_, err := f.Fetch(t.Context(), srv.URL)

	require.Error(t, err)
	assert.False(t, apperr.IsPermanentAcquisition(err))
	assert.Equal(t, int32(DefaultMaxAttempts), calls.Load())
}

func TestClassifyStatus(t *testing.T) {
	assert.NoError(t, classifyStatus(http.StatusOK))
	assert.True(t, apperr.IsPermanentAcquisition(classifyStatus(http.StatusNotFound)))
	assert.True(t, apperr.IsPermanentAcquisition(classifyStatus(http.StatusUnavailableForLegalReasons)))

	transient := classifyStatus(http.StatusTooManyRequests)
	require.Error(t, transient)
	assert.False(t, apperr.IsPermanentAcquisition(transient))
}
