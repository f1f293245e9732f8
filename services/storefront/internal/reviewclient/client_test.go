package reviewclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/pr-poehali-dev/fashion-store-creation/pkg/errors"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/httpclient"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/logger"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	base := httpclient.New(httpclient.Config{Timeout: 2 * time.Second, MaxConnsPerHost: 4})
	cb := httpclient.NewCircuitBreakerClient(base, httpclient.DefaultCircuitBreakerConfig(t.Name()), discardLogger())
	c, err := New(serverURL+"/reviews", cb, discardLogger())
	require.NoError(t, err)
	return c
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, raw := range []string{"", "localhost:8010", "ftp://host/reviews", "http://"} {
		_, err := New(raw, httpclient.New(httpclient.DefaultConfig()), discardLogger())
		assert.Error(t, err, raw)
	}
}

func TestFetchReviews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/reviews", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("product_id"))
		assert.Equal(t, "corr-42", r.Header.Get("X-Correlation-ID"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"reviews": [
				{"id": 8, "userName": "Мария", "rating": 5, "comment": "Отлично сидят", "date": "03.02.2026"},
				{"id": 5, "userName": "Игорь", "rating": 4, "comment": "Хорошо", "date": "15.01.2026"}
			],
			"average_rating": 4.5,
			"total_reviews": 2
		}`))
	}))
	defer srv.Close()

	ctx := logger.WithCorrelationID(context.Background(), "corr-42")
	page, err := newTestClient(t, srv.URL).FetchReviews(ctx, 2)

	require.NoError(t, err)
	assert.Equal(t, domain.ReviewAggregate{AverageRating: 4.5, TotalReviews: 2}, page.Aggregate)
	require.Len(t, page.Reviews, 2)
	assert.Equal(t, domain.Review{ID: 8, UserName: "Мария", Rating: 5, Comment: "Отлично сидят", Date: "03.02.2026"}, page.Reviews[0])
}

func TestFetchReviews_NullFieldsDefaultToEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"reviews": null, "average_rating": null, "total_reviews": 0}`))
	}))
	defer srv.Close()

	page, err := newTestClient(t, srv.URL).FetchReviews(context.Background(), 1)

	require.NoError(t, err)
	assert.NotNil(t, page.Reviews)
	assert.Empty(t, page.Reviews)
	assert.Zero(t, page.Aggregate.AverageRating)
}

func TestFetchReviews_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"bad request", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"product_id is required"}`))
		}},
		{"server error", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
		}},
		{"malformed body", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"reviews": [`))
		}},
		{"wrong shape", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"reviews": "none"}`))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			page, err := newTestClient(t, srv.URL).FetchReviews(context.Background(), 1)
			assert.Error(t, err)
			assert.Nil(t, page)
		})
	}
}

func TestFetchReviews_ClientErrorIsTyped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"product_id is required"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).FetchReviews(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.ErrorContains(t, err, "product_id is required")
}

func TestFetchReviews_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url).FetchReviews(context.Background(), 1)
	assert.Error(t, err)
}

func TestSubmitReview(t *testing.T) {
	var got createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true,"review_id":9,"date":"14.05.2026","message":"Review added successfully"}`))
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL).SubmitReview(context.Background(), 3, domain.ReviewForm{UserName: "Анна", Rating: 4, Comment: "Мягкая"})

	require.NoError(t, err)
	assert.Equal(t, createRequest{ProductID: 3, UserName: "Анна", Rating: 4, Comment: "Мягкая"}, got)
}

func TestSubmitReview_AnyNon2xxFails(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusMovedPermanently} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer srv.Close()

			err := newTestClient(t, srv.URL).SubmitReview(context.Background(), 1, domain.ReviewForm{UserName: "a", Rating: 5, Comment: "c"})
			assert.Error(t, err)
		})
	}
}

func TestSubmitReview_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL).SubmitReview(context.Background(), 1, domain.ReviewForm{UserName: "a", Rating: 5, Comment: "c"})

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchReviews_OpenBreakerShortCircuits(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	base := httpclient.New(httpclient.Config{Timeout: time.Second})
	cb := httpclient.NewCircuitBreakerClient(base, httpclient.CircuitBreakerConfig{
		Name: "reviews-open", MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureRatio: 0.5, MinRequests: 2,
	}, discardLogger())
	c, err := New(srv.URL, cb, discardLogger())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, _ = c.FetchReviews(context.Background(), 1)
	}
	_, err = c.FetchReviews(context.Background(), 1)

	assert.True(t, errors.Is(err, httpclient.ErrCircuitOpen))
	assert.Equal(t, int32(2), calls.Load())
}
