package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adelacruz/artifacts-go/internal/domain/shared"
)

func testClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server, *shared.MockClock) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	client := NewClient("test-token", Options{
		BaseURL:           server.URL,
		MaxRetries:        3,
		BackoffBase:       time.Second,
		RequestsPerSecond: 1000,
		Clock:             clock,
	})
	return client, server, clock
}

func TestRequestSuccess(t *testing.T) {
	var gotAuth atomic.Value
	client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"name":"alice"}}`))
	}))

	var out struct {
		Data struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	err := client.request(context.Background(), http.MethodGet, "/characters/alice", nil, &out)

	require.NoError(t, err)
	assert.Equal(t, "alice", out.Data.Name)
	assert.Equal(t, "Bearer test-token", gotAuth.Load())
}

func TestRequestRetriesCooldownActive(t *testing.T) {
	var calls atomic.Int32
	client, _, clock := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(CodeCooldownActive)
			w.Write([]byte(`{"error":{"code":499,"message":"cooldown active"}}`))
			return
		}
		w.Write([]byte(`{"data":{}}`))
	}))

	start := clock.Now()
	err := client.request(context.Background(), http.MethodPost, "/my/alice/action/fight", nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	// Two backoff sleeps went through the mock clock.
	assert.True(t, clock.Now().After(start))
}

func TestRequestDoesNotRetryContentNotFound(t *testing.T) {
	var calls atomic.Int32
	client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(CodeContentNotFound)
		w.Write([]byte(`{"error":{"code":598,"message":"content not found"}}`))
	}))

	err := client.request(context.Background(), http.MethodGet, "/maps", nil, nil)

	require.Error(t, err)
	assert.True(t, IsStatus(err, CodeContentNotFound))
	assert.Equal(t, int32(1), calls.Load())
}

func TestRequestErrorEnvelopeWinsOverHTTPStatus(t *testing.T) {
	client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":478,"message":"missing trade items"}}`))
	}))

	err := client.request(context.Background(), http.MethodPost, "/my/alice/action/task/trade", nil, nil)

	require.Error(t, err)
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeMissingTradeItems, se.Code)
	assert.Equal(t, "missing trade items", se.Message)
}

func TestRequestExhaustsRetriesOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":500,"message":"boom"}}`))
	}))

	err := client.request(context.Background(), http.MethodGet, "/items", nil, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max retries exceeded")
	// MaxRetries 3 means one initial attempt plus three retries.
	assert.Equal(t, int32(4), calls.Load())
}

func TestRetryableCode(t *testing.T) {
	assert.True(t, retryableCode(http.StatusTooManyRequests))
	assert.True(t, retryableCode(CodeCooldownActive))
	assert.True(t, retryableCode(CodeActionLocked))
	assert.True(t, retryableCode(http.StatusInternalServerError))
	assert.True(t, retryableCode(http.StatusBadGateway))

	assert.False(t, retryableCode(CodeContentNotFound))
	assert.False(t, retryableCode(CodeInventoryFull))
	assert.False(t, retryableCode(CodeNotConsumable))
	assert.False(t, retryableCode(http.StatusNotFound))
}

func TestCircuitBreaker(t *testing.T) {
	outage := errors.New("connection refused")

	t.Run("opens after consecutive failures and recovers", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		cb := newCircuitBreaker(3, 30*time.Second, clock)

		for i := 0; i < 3; i++ {
			assert.ErrorIs(t, cb.Call(func() error { return outage }), outage)
		}

		// Open: calls are refused without running fn.
		ran := false
		err := cb.Call(func() error { ran = true; return nil })
		assert.ErrorIs(t, err, ErrCircuitOpen)
		assert.False(t, ran)

		// After the timeout one probe goes through; success closes it.
		clock.Advance(30 * time.Second)
		require.NoError(t, cb.Call(func() error { return nil }))
		require.NoError(t, cb.Call(func() error { return nil }))
	})

	t.Run("failed probe reopens immediately", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		cb := newCircuitBreaker(3, 30*time.Second, clock)
		for i := 0; i < 3; i++ {
			cb.Call(func() error { return outage })
		}
		clock.Advance(30 * time.Second)

		assert.ErrorIs(t, cb.Call(func() error { return outage }), outage)
		assert.ErrorIs(t, cb.Call(func() error { return nil }), ErrCircuitOpen)
	})

	t.Run("game decision codes never trip the breaker", func(t *testing.T) {
		clock := shared.NewMockClock(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
		cb := newCircuitBreaker(2, 30*time.Second, clock)

		decision := &StatusError{Code: CodeInventoryFull, Message: "inventory full"}
		for i := 0; i < 10; i++ {
			assert.ErrorIs(t, cb.Call(func() error { return decision }), decision)
		}

		require.NoError(t, cb.Call(func() error { return nil }))
	})
}
