package domain

import (
	"math"
	"strings"
)

const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = MaxRating
)

// Review is a published review as reported by the review service.
type Review struct {
	ID       int64  `json:"id"`
	UserName string `json:"user_name"`
	Rating   int    `json:"rating"`
	Comment  string `json:"comment"`
	Date     string `json:"date"`
}

// ReviewAggregate is the review service's summary for one product.
type ReviewAggregate struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Stars is the number of filled stars for the average, rounded half-up.
func (a ReviewAggregate) Stars() int {
	return int(math.Floor(a.AverageRating + 0.5))
}

// ReviewPage is one fetch of a product's reviews, newest first.
type ReviewPage struct {
	Reviews   []Review        `json:"reviews"`
	Aggregate ReviewAggregate `json:"aggregate"`
}

// ReviewForm holds what a shopper typed into the review dialog.
type ReviewForm struct {
	UserName string `json:"user_name" validate:"notblank,max=100"`
	Rating   int    `json:"rating" validate:"min=1,max=5"`
	Comment  string `json:"comment" validate:"notblank,max=2000"`
}

// NewReviewForm returns an empty form with the default rating.
func NewReviewForm() ReviewForm {
	return ReviewForm{Rating: DefaultRating}
}

// Normalize trims the free-text fields.
func (f *ReviewForm) Normalize() {
	f.UserName = strings.TrimSpace(f.UserName)
	f.Comment = strings.TrimSpace(f.Comment)
}

// Reset restores the form to its defaults.
func (f *ReviewForm) Reset() {
	*f = NewReviewForm()
}
