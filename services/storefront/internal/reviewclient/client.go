package reviewclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/pr-poehali-dev/fashion-store-creation/pkg/httpclient"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/logger"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/middleware"
	"github.com/pr-poehali-dev/fashion-store-creation/pkg/tracing"
	"github.com/pr-poehali-dev/fashion-store-creation/services/storefront/internal/domain"
)

const serviceName = "reviews-service"

// Client talks to the review endpoint. It performs no retries of its own.
type Client struct {
	endpoint *url.URL
	http     httpclient.Doer
	tracer   trace.Tracer
	logger   *slog.Logger
}

// New creates a client for the review endpoint at rawURL.
func New(rawURL string, doer httpclient.Doer, logger *slog.Logger) (*Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse review endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("review endpoint must be an absolute http(s) URL, got %q", rawURL)
	}
	return &Client{
		endpoint: u,
		http:     doer,
		tracer:   tracing.Tracer("storefront/reviewclient"),
		logger:   logger,
	}, nil
}

type reviewDTO struct {
	ID       int64  `json:"id"`
	UserName string `json:"userName"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Date     string `json:"date"`
}

type listResponse struct {
	Reviews       []reviewDTO `json:"reviews"`
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
}

type createRequest struct {
	ProductID int    `json:"product_id"`
	UserName  string `json:"user_name"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// FetchReviews returns the product's reviews and aggregate. Transport
// failures, non-2xx statuses and undecodable bodies are all errors.
func (c *Client) FetchReviews(ctx context.Context, productID int) (page *domain.ReviewPage, err error) {
	ctx, span := c.tracer.Start(ctx, "reviews.fetch", trace.WithAttributes(attribute.Int("product.id", productID)))
	defer func() { endSpan(span, err) }()

	u := *c.endpoint
	q := u.Query()
	q.Set("product_id", strconv.Itoa(productID))
	u.RawQuery = q.Encode()

	req, err := c.newRequest(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews for product %d: %w", productID, err)
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("fetch reviews for product %d: %w", productID, httpclient.ParseResponseError(resp, serviceName))
	}
	defer func() { _ = resp.Body.Close() }()

	var body listResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode reviews for product %d: %w", productID, err)
	}

	page = &domain.ReviewPage{
		Reviews: make([]domain.Review, 0, len(body.Reviews)),
		Aggregate: domain.ReviewAggregate{
			AverageRating: body.AverageRating,
			TotalReviews:  body.TotalReviews,
		},
	}
	for _, r := range body.Reviews {
		page.Reviews = append(page.Reviews, domain.Review{
			ID:       r.ID,
			UserName: r.UserName,
			Rating:   r.Rating,
			Comment:  r.Comment,
			Date:     r.Date,
		})
	}
	return page, nil
}

// SubmitReview posts a review. Any non-2xx status is an error. There is no
// idempotency key, so callers must not retry blindly.
func (c *Client) SubmitReview(ctx context.Context, productID int, form domain.ReviewForm) (err error) {
	ctx, span := c.tracer.Start(ctx, "reviews.submit", trace.WithAttributes(attribute.Int("product.id", productID)))
	defer func() { endSpan(span, err) }()

	payload, err := json.Marshal(createRequest{
		ProductID: productID,
		UserName:  form.UserName,
		Rating:    form.Rating,
		Comment:   form.Comment,
	})
	if err != nil {
		return fmt.Errorf("encode review: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint.String(), payload)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("submit review for product %d: %w", productID, err)
	}
	if !httpclient.IsSuccess(resp.StatusCode) {
		return fmt.Errorf("submit review for product %d: %w", productID, httpclient.ParseResponseError(resp, serviceName))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	var rdr io.Reader = http.NoBody
	if body != nil {
		rdr = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.CorrelationHeader, id)
	}
	tracing.InjectHTTP(ctx, req.Header)
	return req, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
