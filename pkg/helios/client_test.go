package helios

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helios/internal/domain"
)

func TestNewClient(t *testing.T) {
	baseURL := "http://localhost:8080/"
	c := NewClient(baseURL)

	require.NotNil(t, c)
	assert.Equal(t, "http://localhost:8080", c.baseURL)
	require.NotNil(t, c.httpClient)
	assert.Zero(t, c.httpClient.Timeout, "default client should not time out")
	assert.Equal(t, 1, c.retryAttempts)
}

func TestNewClientOptions(t *testing.T) {
	c := NewClient("http://x", WithTimeout(5*time.Second), WithRetry(3, time.Millisecond), WithSessionID("s-1"))
	assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 3, c.retryAttempts)
	assert.Equal(t, "s-1", c.sessionID)
}

func TestListStories(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/stories", r.URL.Path)
		assert.Equal(t, "sess", r.Header.Get(SessionHeader))
		w.Write([]byte(`[{"id":"s1","title":"Rates rise","suggestedSymbol":"bbc"},{"id":"s2","title":"Oil"}]`))
	}))
	defer srv.Close()

	stories, err := NewClient(srv.URL, WithSessionID("sess")).ListStories(context.Background())
	require.NoError(t, err)
	require.Len(t, stories, 2)
	assert.Equal(t, "s1", stories[0].ID)
	assert.Equal(t, "bbc", stories[0].SuggestedSymbol)
}

func TestListStoriesNullBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`null`))
	}))
	defer srv.Close()

	stories, err := NewClient(srv.URL).ListStories(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, stories)
	assert.Empty(t, stories)
}

func TestGetStory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/story", r.URL.Path)
		assert.Equal(t, "a&b", r.URL.Query().Get("id"))
		json.NewEncoder(w).Encode(domain.StoryInsights{
			Story: domain.StoryDetail{ID: "a&b", Title: "Budget", SuggestedSymbol: "TSCO"},
			Recommendations: []domain.Recommendation{
				{Entity: "Tesco", Action: domain.ActionBuy, SuggestedSymbol: "TSCO", Confidence: 0.7},
			},
		})
	}))
	defer srv.Close()

	ins, err := NewClient(srv.URL).GetStory(context.Background(), "a&b")
	require.NoError(t, err)
	assert.Equal(t, "Budget", ins.Story.Title)
	require.NotNil(t, ins.Primary())
	assert.Equal(t, domain.ActionBuy, ins.Primary().Action)
}

func TestGetStoryErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Story not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetStory(context.Background(), "missing")
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Story not found", err.Error())
}

func TestGetPortfolioFallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`<html>bad gateway</html>`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetPortfolio(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Unable to load portfolio", err.Error())
}

func TestMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"startingCash": "lots"`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).GetPortfolio(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to load portfolio")
}

func TestRetryOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"startingCash":100000,"cash":100000,"equity":100000}`))
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL, WithRetry(3, time.Millisecond)).GetPortfolio(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100000.0, p.Equity)
	assert.EqualValues(t, 3, calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Story id is required"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, WithRetry(3, time.Millisecond)).GetStory(context.Background(), "")
	require.Error(t, err)
	assert.EqualValues(t, 1, calls.Load())
}

func TestSubmitTrade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/trades", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req domain.TradeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "BBC", req.Symbol)
		assert.Equal(t, domain.SideSell, req.Side)
		assert.Equal(t, 100, req.Quantity)

		w.Write([]byte(`{"portfolio":{"cash":85000,"positions":[{"symbol":"BBC","quantity":-100}]}}`))
	}))
	defer srv.Close()

	p, err := NewClient(srv.URL).SubmitTrade(context.Background(), domain.TradeRequest{
		Symbol: "BBC", Side: domain.SideSell, Quantity: 100, Price: 150,
	})
	require.NoError(t, err)
	assert.Equal(t, 85000.0, p.Cash)
	require.Len(t, p.Positions, 1)
	assert.Equal(t, -100, p.Positions[0].Quantity)
}

func TestSubmitTradeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"Quantity must be positive"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).SubmitTrade(context.Background(), domain.TradeRequest{Symbol: "BBC"})
	require.Error(t, err)
	assert.Equal(t, "Quantity must be positive", err.Error())
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := NewClient(srv.URL).ListStories(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Unable to load stories")
}
