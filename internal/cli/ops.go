package cli

import (
	"context"

	"reco-catalog/internal/codec"
	"reco-catalog/internal/persist"
	"reco-catalog/internal/store"
)

func fixed2(v float64) codec.Fixed2 { return codec.Fixed2(v) }

func notFoundUser(id int) error {
	return &store.NotFoundError{Kind: store.KindUser, ID: id}
}

func notFoundProduct(id int) error {
	return &store.NotFoundError{Kind: store.KindProduct, ID: id}
}

func seedStore(a *App) { persist.Seed(a.store) }

// The operations below are the core-facing surface: each one reloads the
// on-disk state, applies a single query or mutation against the store,
// saves on successful mutation, and returns a structured result for the
// dispatcher to render. Domain failures come back as typed errors; they
// are results, not faults.

// ListProducts returns every product annotated with its average rating
// and review count.
func (a *App) ListProducts(ctx context.Context) (*ProductListResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	products := a.store.Products()
	out := make([]ProductSummary, 0, len(products))
	for _, p := range products {
		out = append(out, a.productSummary(p))
	}
	return &ProductListResult{Products: out}, nil
}

// ListUsers returns every user.
func (a *App) ListUsers(ctx context.Context) (*UserListResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	users := a.store.Users()
	if users == nil {
		users = make([]store.User, 0)
	}
	return &UserListResult{Users: users}, nil
}

// ListReviews returns the reviews recorded for one product. An unknown
// product id yields an empty list, not an error; the listing is keyed by
// whatever id was asked for.
func (a *App) ListReviews(ctx context.Context, productID int) (*ReviewListResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	reviews := a.store.ReviewsForProduct(productID)
	if reviews == nil {
		reviews = make([]store.Review, 0)
	}
	return &ReviewListResult{ProductID: productID, Reviews: reviews}, nil
}

// AddUser creates a user and persists the catalog.
func (a *App) AddUser(ctx context.Context, name string) (*UserAddedResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	u := a.store.AddUser(name)
	if err := a.persistAll(); err != nil {
		return nil, err
	}
	a.logger.Info().Int("user_id", u.ID).Msg("user added")
	return &UserAddedResult{
		Status:  statusSuccess,
		Message: "User added successfully.",
		ID:      u.ID,
		Name:    u.Name,
	}, nil
}

// AddProduct creates a product and persists the catalog.
func (a *App) AddProduct(ctx context.Context, name, category string, price float64) (*ProductAddedResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	p := a.store.AddProduct(name, category, price)
	if err := a.persistAll(); err != nil {
		return nil, err
	}
	a.logger.Info().Int("product_id", p.ID).Str("category", p.Category).Msg("product added")
	return &ProductAddedResult{
		Status:  statusSuccess,
		Message: "Product added successfully.",
		ID:      p.ID,
	}, nil
}

// AddReview records a review and persists the catalog. The result carries
// the product's freshly recomputed average rating.
func (a *App) AddReview(ctx context.Context, userID, productID, rating int, comment string) (*ReviewAddedResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	avg, err := a.store.AddReview(userID, productID, rating, comment)
	if err != nil {
		return nil, err
	}
	if err := a.persistAll(); err != nil {
		return nil, err
	}
	a.logger.Info().
		Int("user_id", userID).
		Int("product_id", productID).
		Int("rating", rating).
		Msg("review added")
	return &ReviewAddedResult{
		Status:       statusSuccess,
		Message:      "Review added.",
		ProductID:    productID,
		NewAvgRating: fixed2(avg),
	}, nil
}

// Rate is AddReview with a fixed placeholder comment. A repeat rating for
// the same product is rejected as a duplicate review.
func (a *App) Rate(ctx context.Context, userID, productID, rating int) (*ReviewAddedResult, error) {
	return a.AddReview(ctx, userID, productID, rating, "No comment provided.")
}

// Purchase validates that both parties exist and acknowledges the
// purchase. There is no purchase history; nothing is persisted.
func (a *App) Purchase(ctx context.Context, userID, productID int) (*AckResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	if _, ok := a.store.FindUser(userID); !ok {
		return nil, notFoundUser(userID)
	}
	if _, ok := a.store.FindProduct(productID); !ok {
		return nil, notFoundProduct(productID)
	}
	a.logger.Info().Int("user_id", userID).Int("product_id", productID).Msg("purchase acknowledged")
	return &AckResult{
		Status:  statusSuccess,
		Message: "Purchase recorded (purchase history is not stored).",
	}, nil
}

// DeleteUser removes a user, cascades to their reviews, and persists.
func (a *App) DeleteUser(ctx context.Context, id int) (*DeletedResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	if err := a.store.DeleteUser(id); err != nil {
		return nil, err
	}
	if err := a.persistAll(); err != nil {
		return nil, err
	}
	a.logger.Info().Int("user_id", id).Msg("user deleted")
	return &DeletedResult{
		Status:  statusSuccess,
		Message: "User deleted successfully.",
		ID:      id,
	}, nil
}

// DeleteProduct removes a product, cascades to its reviews, and persists.
func (a *App) DeleteProduct(ctx context.Context, id int) (*DeletedResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	if err := a.store.DeleteProduct(id); err != nil {
		return nil, err
	}
	if err := a.persistAll(); err != nil {
		return nil, err
	}
	a.logger.Info().Int("product_id", id).Msg("product deleted")
	return &DeletedResult{
		Status:  statusSuccess,
		Message: "Product deleted successfully.",
		ID:      id,
	}, nil
}

// Recommend returns up to three products from the category of the user's
// most recently reviewed product, ranked by average rating.
func (a *App) Recommend(ctx context.Context, userID int) (*RecommendationsResult, error) {
	if err := a.reload(ctx); err != nil {
		return nil, err
	}
	res, err := a.engine.Recommend(a.store, userID)
	if err != nil {
		return nil, err
	}

	out := &RecommendationsResult{
		Status:          statusSuccess,
		UserID:          userID,
		Recommendations: make([]ProductSummary, 0, len(res.Recommendations)),
	}
	if len(res.Recommendations) == 0 {
		out.Message = "No new recommendations available in category " + res.TargetCategory + "."
		return out, nil
	}

	out.TargetCategory = res.TargetCategory
	for _, rec := range res.Recommendations {
		out.Recommendations = append(out.Recommendations, ProductSummary{
			ID:           rec.Product.ID,
			Name:         rec.Product.Name,
			Category:     rec.Product.Category,
			Price:        fixed2(rec.Product.Price),
			AvgRating:    fixed2(rec.AvgRating),
			ReviewsCount: rec.ReviewCount,
		})
	}
	return out, nil
}

// SeedCatalog forces the default dataset into an empty catalog. A catalog
// that already holds data is left untouched.
func (a *App) SeedCatalog(ctx context.Context) (*AckResult, error) {
	res, err := a.gateway.LoadAll(a.store)
	if err != nil {
		return nil, err
	}
	if res.Seeded {
		return &AckResult{Status: statusSuccess, Message: "Catalog seeded with default dataset."}, nil
	}
	if res.Products > 0 || res.Users > 0 || res.Reviews > 0 {
		return &AckResult{Status: statusSuccess, Message: "Catalog already contains data; seed skipped."}, nil
	}

	// Seeding was disabled in config; the explicit command overrides it.
	seedStore(a)
	if err := a.persistAll(); err != nil {
		return nil, err
	}
	return &AckResult{Status: statusSuccess, Message: "Catalog seeded with default dataset."}, nil
}
