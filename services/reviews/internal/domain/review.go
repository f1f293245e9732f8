package domain

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the display format for review dates (DD.MM.YYYY).
const DateLayout = "02.01.2006"

const (
	MinRating = 1
	MaxRating = 5
)

// Review is a stored product review.
type Review struct {
	ID        int64
	ProductID int
	UserName  string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// Date renders CreatedAt in loc using DateLayout.
func (r *Review) Date(loc *time.Location) string {
	return r.CreatedAt.In(loc).Format(DateLayout)
}

// NewReview trims the free-text fields and stamps the creation time.
func NewReview(productID int, userName string, rating int, comment string, now time.Time) *Review {
	return &Review{
		ProductID: productID,
		UserName:  strings.TrimSpace(userName),
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: now,
	}
}

// Summary is the aggregate shown next to a product's reviews.
type Summary struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// Summarize averages the ratings to one decimal. Rounding works on the
// float64 average and breaks exact ties to even, so 4.25 becomes 4.2 and
// 4.75 becomes 4.8. An empty list averages to 0.
func Summarize(reviews []Review) Summary {
	n := len(reviews)
	if n == 0 {
		return Summary{}
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := float64(sum) / float64(n)
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(avg, 'f', 1, 64), 64)
	return Summary{AverageRating: rounded, TotalReviews: n}
}

// ReviewList is everything the endpoint returns for one product: reviews
// newest first plus their summary.
type ReviewList struct {
	ProductID int      `json:"product_id"`
	Reviews   []Review `json:"reviews"`
	Summary   Summary  `json:"summary"`
}
