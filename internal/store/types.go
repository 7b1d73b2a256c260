package store

import "reco-catalog/internal/codec"

// Allocation floors for new ids. Counters never drop below these, and
// deleted ids are never reused.
const (
	FirstProductID = 1000
	FirstUserID    = 100
)

// Product is one catalog entry. Category drives the recommendation
// grouping; Price carries two-decimal display precision.
type Product struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

// EncodeRecord renders the product in the persisted field order.
func (p Product) EncodeRecord() string {
	return codec.EncodeObject(
		codec.Int("id", p.ID),
		codec.Str("name", p.Name),
		codec.Str("category", p.Category),
		codec.Money("price", p.Price),
	)
}

// User is a catalog account. Nothing beyond the id and display name is
// stored.
type User struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// EncodeRecord renders the user in the persisted field order.
func (u User) EncodeRecord() string {
	return codec.EncodeObject(
		codec.Int("id", u.ID),
		codec.Str("name", u.Name),
	)
}

// Review links a user to a product with a 1-5 rating. Reviews have no id
// of their own; the (user_id, product_id) pair is unique.
type Review struct {
	UserID    int    `json:"user_id"`
	ProductID int    `json:"product_id"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// EncodeRecord renders the review in the persisted field order.
func (r Review) EncodeRecord() string {
	return codec.EncodeObject(
		codec.Int("user_id", r.UserID),
		codec.Int("product_id", r.ProductID),
		codec.Int("rating", r.Rating),
		codec.Str("comment", r.Comment),
	)
}
