// Package store holds the in-memory entity collections and the CRUD and
// validation rules over them. A Store owns its collections exclusively:
// the persistence gateway replaces them wholesale on load and reads them
// back on save, but never retains references across calls.
package store

// Store is the in-memory entity store. It is built fresh per command
// invocation and populated by the persistence gateway; there is no
// ambient global state and no locking, since each invocation is
// single-threaded.
type Store struct {
	products []Product
	users    []User
	reviews  []Review

	nextProductID int
	nextUserID    int
}

// New returns an empty store with id counters at their floors.
func New() *Store {
	return &Store{
		nextProductID: FirstProductID,
		nextUserID:    FirstUserID,
	}
}

// Replace swaps in freshly loaded collections and advances the id
// counters past the highest loaded ids. Counters never drop below their
// floors, so an empty collection still allocates from the floor.
func (s *Store) Replace(products []Product, users []User, reviews []Review) {
	s.products = products
	s.users = users
	s.reviews = reviews

	s.nextProductID = FirstProductID
	for _, p := range products {
		if p.ID >= s.nextProductID {
			s.nextProductID = p.ID + 1
		}
	}
	s.nextUserID = FirstUserID
	for _, u := range users {
		if u.ID >= s.nextUserID {
			s.nextUserID = u.ID + 1
		}
	}
}

// Products returns all products in collection order.
func (s *Store) Products() []Product { return s.products }

// Users returns all users in collection order.
func (s *Store) Users() []User { return s.users }

// Reviews returns all reviews in the order they were recorded.
func (s *Store) Reviews() []Review { return s.reviews }

// FindProduct looks a product up by id.
func (s *Store) FindProduct(id int) (Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// FindUser looks a user up by id.
func (s *Store) FindUser(id int) (User, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// AddProduct allocates the next product id and appends the product.
func (s *Store) AddProduct(name, category string, price float64) Product {
	p := Product{ID: s.nextProductID, Name: name, Category: category, Price: price}
	s.nextProductID++
	s.products = append(s.products, p)
	return p
}

// AddUser allocates the next user id and appends the user.
func (s *Store) AddUser(name string) User {
	u := User{ID: s.nextUserID, Name: name}
	s.nextUserID++
	s.users = append(s.users, u)
	return u
}

// AddReview validates and appends a review. Validation order: the user
// must exist, then the product, then the rating must be in [1,5], then
// the (user, product) pair must not already be reviewed. On success the
// product's freshly recomputed average rating is returned.
func (s *Store) AddReview(userID, productID, rating int, comment string) (float64, error) {
	if _, ok := s.FindUser(userID); !ok {
		return 0, &NotFoundError{Kind: KindUser, ID: userID}
	}
	if _, ok := s.FindProduct(productID); !ok {
		return 0, &NotFoundError{Kind: KindProduct, ID: productID}
	}
	if rating < 1 || rating > 5 {
		return 0, ErrInvalidRating
	}
	if s.HasReviewed(userID, productID) {
		return 0, ErrDuplicateReview
	}

	s.reviews = append(s.reviews, Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	})
	return s.AverageRating(productID), nil
}

// DeleteUser removes the user and cascade-removes every review they
// wrote. The lookup fails before any mutation, so a NotFound result
// leaves the store untouched.
func (s *Store) DeleteUser(id int) error {
	idx := -1
	for i, u := range s.users {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: KindUser, ID: id}
	}

	s.users = append(s.users[:idx], s.users[idx+1:]...)

	kept := s.reviews[:0]
	for _, r := range s.reviews {
		if r.UserID != id {
			kept = append(kept, r)
		}
	}
	s.reviews = kept
	return nil
}

// DeleteProduct removes the product and cascade-removes every review
// referencing it.
func (s *Store) DeleteProduct(id int) error {
	idx := -1
	for i, p := range s.products {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return &NotFoundError{Kind: KindProduct, ID: id}
	}

	s.products = append(s.products[:idx], s.products[idx+1:]...)

	kept := s.reviews[:0]
	for _, r := range s.reviews {
		if r.ProductID != id {
			kept = append(kept, r)
		}
	}
	s.reviews = kept
	return nil
}

// ReviewsForProduct returns the reviews for one product, in recorded
// order.
func (s *Store) ReviewsForProduct(productID int) []Review {
	var out []Review
	for _, r := range s.reviews {
		if r.ProductID == productID {
			out = append(out, r)
		}
	}
	return out
}

// ReviewsForUser returns the reviews written by one user, in recorded
// order. The last element is the user's most recent review.
func (s *Store) ReviewsForUser(userID int) []Review {
	var out []Review
	for _, r := range s.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

// HasReviewed reports whether the user already reviewed the product.
func (s *Store) HasReviewed(userID, productID int) bool {
	for _, r := range s.reviews {
		if r.UserID == userID && r.ProductID == productID {
			return true
		}
	}
	return false
}

// AverageRating returns the mean rating across the product's reviews, or
// 0.0 when it has none.
func (s *Store) AverageRating(productID int) float64 {
	sum, count := 0, 0
	for _, r := range s.reviews {
		if r.ProductID == productID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return float64(sum) / float64(count)
}

// ReviewCount returns how many reviews the product has.
func (s *Store) ReviewCount(productID int) int {
	count := 0
	for _, r := range s.reviews {
		if r.ProductID == productID {
			count++
		}
	}
	return count
}
