package store

import (
	"errors"
	"fmt"
)

// EntityKind names the entity a lookup failure refers to.
type EntityKind string

const (
	KindUser    EntityKind = "user"
	KindProduct EntityKind = "product"
)

// NotFoundError reports a lookup against an id that does not resolve.
type NotFoundError struct {
	Kind EntityKind
	ID   int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// NotFound reports whether err is a NotFoundError for the given kind.
func NotFound(err error, kind EntityKind) bool {
	var nf *NotFoundError
	return errors.As(err, &nf) && nf.Kind == kind
}

// Validation failures returned by store operations. These are domain
// results, not faults; callers render them as structured error envelopes.
var (
	// ErrInvalidRating rejects ratings outside the 1-5 range.
	ErrInvalidRating = errors.New("invalid rating (1-5)")

	// ErrDuplicateReview rejects a second review for the same
	// (user, product) pair, regardless of rating or comment.
	ErrDuplicateReview = errors.New("user has already reviewed this product")

	// ErrNoHistory rejects a recommendation request for a user with no
	// recorded reviews.
	ErrNoHistory = errors.New("user has no review history for recommendations")

	// ErrDataIntegrity flags a review whose referenced product vanished
	// from the catalog. Defensive; cascade deletion keeps this from
	// happening in normal operation.
	ErrDataIntegrity = errors.New("internal data error: last reviewed product missing")
)
