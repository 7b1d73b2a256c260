// Package recommend computes category-based product suggestions from the
// loaded catalog. The targeting is content-based: the category of the
// user's most recently reviewed product defines the candidate pool, and
// candidates rank by average rating.
package recommend

import (
	"sort"

	"github.com/rs/zerolog"

	"reco-catalog/internal/store"
)

// MaxRecommendations caps how many candidates a result carries.
const MaxRecommendations = 3

// Recommendation is one suggested product annotated with its aggregate
// review figures at the time of computation.
type Recommendation struct {
	Product     store.Product
	AvgRating   float64
	ReviewCount int
}

// Result is a successful recommendation pass. Recommendations may be
// empty: a user who has reviewed everything in the target category gets
// an empty list, not an error.
type Result struct {
	UserID          int
	TargetCategory  string
	Recommendations []Recommendation
}

// Engine computes recommendations over a loaded store. It holds no state
// between calls; aggregates are recomputed freshly each time.
type Engine struct {
	logger zerolog.Logger
}

// NewEngine returns an engine logging through the given logger.
func NewEngine(logger zerolog.Logger) *Engine {
	return &Engine{logger: logger.With().Str("component", "recommend").Logger()}
}

// Recommend produces up to MaxRecommendations products for the user.
//
// The target category is taken from the user's last recorded review. All
// products in that category the user has not reviewed are candidates,
// sorted by descending average rating; ties keep the candidates' catalog
// order (stable sort, no secondary key).
//
// Failure modes: the user must exist, must have review history, and the
// last-reviewed product must still resolve (it can only vanish if the
// catalog was mutated out from under the review, which cascade deletion
// normally prevents).
func (e *Engine) Recommend(s *store.Store, userID int) (*Result, error) {
	if _, ok := s.FindUser(userID); !ok {
		return nil, &store.NotFoundError{Kind: store.KindUser, ID: userID}
	}

	history := s.ReviewsForUser(userID)
	if len(history) == 0 {
		return nil, store.ErrNoHistory
	}

	lastReviewedID := history[len(history)-1].ProductID
	lastProduct, ok := s.FindProduct(lastReviewedID)
	if !ok {
		e.logger.Error().
			Int("user_id", userID).
			Int("product_id", lastReviewedID).
			Msg("last reviewed product missing from catalog")
		return nil, store.ErrDataIntegrity
	}
	target := lastProduct.Category

	var candidates []Recommendation
	for _, p := range s.Products() {
		if p.Category != target || s.HasReviewed(userID, p.ID) {
			continue
		}
		candidates = append(candidates, Recommendation{
			Product:     p,
			AvgRating:   s.AverageRating(p.ID),
			ReviewCount: s.ReviewCount(p.ID),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].AvgRating > candidates[j].AvgRating
	})

	if len(candidates) > MaxRecommendations {
		candidates = candidates[:MaxRecommendations]
	}

	e.logger.Debug().
		Int("user_id", userID).
		Str("target_category", target).
		Int("candidates", len(candidates)).
		Msg("computed recommendations")

	return &Result{
		UserID:          userID,
		TargetCategory:  target,
		Recommendations: candidates,
	}, nil
}
