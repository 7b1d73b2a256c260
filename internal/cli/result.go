package cli

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"reco-catalog/internal/codec"
	"reco-catalog/internal/persist"
	"reco-catalog/internal/store"
)

// Envelope field values. Every command result carries a status so shell
// callers can branch without probing for specific keys.
const (
	statusSuccess = "success"
	statusError   = "error"
)

// ProductSummary is a product annotated with its aggregate review
// figures, as rendered in listings and recommendations.
type ProductSummary struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Price        codec.Fixed2 `json:"price"`
	AvgRating    codec.Fixed2 `json:"avg_rating"`
	ReviewsCount int          `json:"reviews_count"`
}

// ProductListResult is the product-list envelope.
type ProductListResult struct {
	Products []ProductSummary `json:"products"`
}

// UserListResult is the user-list envelope.
type UserListResult struct {
	Users []store.User `json:"users"`
}

// ReviewListResult is the review-list envelope for one product.
type ReviewListResult struct {
	ProductID int            `json:"product_id"`
	Reviews   []store.Review `json:"reviews"`
}

// UserAddedResult acknowledges a created user.
type UserAddedResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      int    `json:"id"`
	Name    string `json:"name"`
}

// ProductAddedResult acknowledges a created product.
type ProductAddedResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      int    `json:"id"`
}

// ReviewAddedResult acknowledges a created review and reports the
// product's recomputed average rating.
type ReviewAddedResult struct {
	Status       string       `json:"status"`
	Message      string       `json:"message"`
	ProductID    int          `json:"product_id"`
	NewAvgRating codec.Fixed2 `json:"new_avg_rating"`
}

// DeletedResult acknowledges a cascade deletion.
type DeletedResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      int    `json:"id"`
}

// AckResult acknowledges an operation with no payload beyond a message.
type AckResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RecommendationsResult is the recommend envelope. An empty candidate set
// is a success with an explanatory message, not an error.
type RecommendationsResult struct {
	Status          string           `json:"status"`
	UserID          int              `json:"user_id"`
	TargetCategory  string           `json:"target_category,omitempty"`
	Recommendations []ProductSummary `json:"recommendations"`
	Message         string           `json:"message,omitempty"`
}

// ErrorResult is the error envelope every failed operation renders to.
type ErrorResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// errorResult maps a typed operation error onto the envelope wording.
// Unrecognized errors get a generic message rather than crashing or
// leaking internals to stdout.
func errorResult(err error) ErrorResult {
	var nf *store.NotFoundError
	var ioErr *persist.IOError

	msg := "Processing failed: invalid argument format or internal error."
	switch {
	case errors.As(err, &nf):
		switch nf.Kind {
		case store.KindUser:
			msg = "User not found."
		case store.KindProduct:
			msg = "Product not found."
		}
	case errors.Is(err, store.ErrInvalidRating):
		msg = "Invalid rating (1-5)."
	case errors.Is(err, store.ErrDuplicateReview):
		msg = "User has already reviewed this product."
	case errors.Is(err, store.ErrNoHistory):
		msg = "User has no review history for recommendations."
	case errors.Is(err, errInvalidPayload):
		msg = "Invalid command or missing parameters."
	case errors.Is(err, store.ErrDataIntegrity):
		msg = "Internal data error: last reviewed product missing."
	case errors.As(err, &ioErr):
		msg = fmt.Sprintf("Storage failure: %s. Catalog files may be mutually inconsistent.", ioErr.Error())
	}
	return ErrorResult{Status: statusError, Message: msg}
}

// render writes one JSON envelope followed by a newline.
func render(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func (a *App) productSummary(p store.Product) ProductSummary {
	return ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		Category:     p.Category,
		Price:        codec.Fixed2(p.Price),
		AvgRating:    codec.Fixed2(a.store.AverageRating(p.ID)),
		ReviewsCount: a.store.ReviewCount(p.ID),
	}
}
