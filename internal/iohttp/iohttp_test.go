package iohttp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gnames/factbook/internal/iohttp"
	"github.com/gnames/factbook/pkg/config"
	"github.com/gnames/factbook/pkg/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu       sync.Mutex
	outcomes []string
}

func (r *recorder) ObserveRequest(
	_ pipeline.SourceID,
	outcome string,
	_ time.Duration,
) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func client(retries int, opts ...iohttp.Option) *iohttp.Client {
	cfg := config.New().HTTP
	cfg.MaxRetries = retries
	cfg.TimeoutSec = 5
	opts = append(opts, iohttp.OptRetryInterval(time.Millisecond))
	return iohttp.New(cfg, opts...)
}

func TestGet(t *testing.T) {
	var ua, accept string
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			ua = r.Header.Get("User-Agent")
			accept = r.Header.Get("Accept")
			w.Write([]byte(`{"ok":true}`))
		}))
	defer srv.Close()

	res, err := client(0).Get(context.Background(), srv.URL,
		iohttp.WithAccept("application/sparql-results+json"))
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(res))
	assert.Contains(t, ua, "factbook")
	assert.Equal(t, "application/sparql-results+json", accept)
}

func TestGetRetries(t *testing.T) {
	tests := []struct {
		msg      string
		statuses []int
		retries  int
		calls    int32
		err      error
	}{
		{"recovers after 503", []int{503, 200}, 3, 2, nil},
		{"recovers after 429", []int{429, 429, 200}, 3, 3, nil},
		{"gives up", []int{500, 500, 500, 500, 500}, 2, 3, pipeline.ErrTransport},
		{"404 is permanent", []int{404, 200}, 3, 1, pipeline.ErrNotFound},
		{"400 is permanent", []int{400, 200}, 3, 1, pipeline.ErrSchema},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					i := calls.Add(1) - 1
					w.WriteHeader(v.statuses[i])
					w.Write([]byte(`[]`))
				}))
			defer srv.Close()

			rec := &recorder{}
			c := client(v.retries, iohttp.OptRecorder(rec)).
				For(pipeline.SourceIndicators)
			res, err := c.Get(context.Background(), srv.URL)
			assert.Equal(t, v.calls, calls.Load())
			assert.Len(t, rec.outcomes, int(v.calls))
			if v.err == nil {
				require.NoError(t, err)
				assert.Equal(t, "[]", string(res))
				assert.Equal(t, "ok", rec.outcomes[len(rec.outcomes)-1])
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, v.err)
			var se *iohttp.StatusError
			assert.True(t, errors.As(err, &se))
		})
	}
}

func TestGetTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
	defer srv.Close()

	_, err := client(0).Get(context.Background(), srv.URL,
		iohttp.WithTimeout(20*time.Millisecond))
	require.Error(t, err)
	assert.Equal(t, pipeline.FailureTransport, pipeline.Classify(err))
}

func TestGetCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client(5).Get(ctx, srv.URL)
	require.Error(t, err)
	assert.Equal(t, pipeline.FailureTransport, pipeline.Classify(err))
}

func TestGetUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := client(1).Get(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrTransport)
}
