package customsearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospect-cli/internal/resilience"
)

func TestSearch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("key"))
		assert.Equal(t, "test-cse", q.Get("cx"))
		assert.Equal(t, `site:linkedin.com/in/ "CTO" AND "Acme"`, q.Get("q"))
		assert.Equal(t, "10", q.Get("num"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{
			Items: []Result{
				{
					Title:   "Jane Doe - CTO - Acme | LinkedIn",
					Snippet: "Jane Doe is the CTO at Acme.",
					Link:    "https://www.linkedin.com/in/janedoe",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	resp, err := client.Search(context.Background(), `site:linkedin.com/in/ "CTO" AND "Acme"`, Credential{
		APIKey:   "test-key",
		EngineID: "test-cse",
	})

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Jane Doe - CTO - Acme | LinkedIn", resp.Items[0].Title)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", resp.Items[0].Link)
}

func TestSearch_NoItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	resp, err := client.Search(context.Background(), "anything", Credential{APIKey: "k", EngineID: "c"})

	require.NoError(t, err)
	assert.Empty(t, resp.Items)
}

func TestSearch_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rateLimitExceeded"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	resp, err := client.Search(context.Background(), "anything", Credential{APIKey: "k", EngineID: "c"})

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestSearch_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "keyInvalid"}`))
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	resp, err := client.Search(context.Background(), "anything", Credential{APIKey: "bad", EngineID: "c"})

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSearch_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0))
	resp, err := client.Search(ctx, "anything", Credential{APIKey: "k", EngineID: "c"})

	assert.Nil(t, resp)
	assert.Error(t, err)
}

func TestSearch_RetriesServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Response{Items: []Result{{Title: "ok"}}})
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL), WithRateLimit(0), WithRetry(resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Multiplier:     2,
	}))
	resp, err := client.Search(context.Background(), "q", Credential{})

	require.NoError(t, err)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 3, calls)
}
