package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reco-catalog/internal/codec"
)

func TestIDAllocation(t *testing.T) {
	s := New()

	p1 := s.AddProduct("Keyboard", "Electronics", 99.99)
	p2 := s.AddProduct("Mouse", "Electronics", 45.50)
	assert.Equal(t, 1000, p1.ID)
	assert.Equal(t, 1001, p2.ID)

	u1 := s.AddUser("Alice")
	u2 := s.AddUser("Bob")
	assert.Equal(t, 100, u1.ID)
	assert.Equal(t, 101, u2.ID)

	// Deleted ids are never reused.
	require.NoError(t, s.DeleteProduct(1000))
	p3 := s.AddProduct("Monitor", "Electronics", 199.00)
	assert.Equal(t, 1002, p3.ID)
}

func TestReplaceAdvancesCounters(t *testing.T) {
	s := New()
	s.Replace(
		[]Product{{ID: 1500, Name: "X", Category: "C", Price: 1}},
		[]User{{ID: 250, Name: "Y"}},
		nil,
	)

	assert.Equal(t, 1501, s.AddProduct("A", "C", 1).ID)
	assert.Equal(t, 251, s.AddUser("B").ID)
}

func TestReplaceEmptyKeepsFloors(t *testing.T) {
	s := New()
	s.Replace(nil, nil, nil)

	assert.Equal(t, FirstProductID, s.AddProduct("A", "C", 1).ID)
	assert.Equal(t, FirstUserID, s.AddUser("B").ID)
}

func TestAddReviewValidationOrder(t *testing.T) {
	s := New()
	u := s.AddUser("Alice")
	p := s.AddProduct("Keyboard", "Electronics", 99.99)

	// Unknown user is reported before anything else, even with a bad
	// rating and a bad product.
	_, err := s.AddReview(9999, 9999, 0, "")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindUser, nf.Kind)

	_, err = s.AddReview(u.ID, 9999, 0, "")
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, KindProduct, nf.Kind)

	_, err = s.AddReview(u.ID, p.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = s.AddReview(u.ID, p.ID, 6, "")
	assert.ErrorIs(t, err, ErrInvalidRating)
}

func TestAddReviewRatingBounds(t *testing.T) {
	s := New()
	u := s.AddUser("Alice")
	p1 := s.AddProduct("Keyboard", "Electronics", 99.99)
	p2 := s.AddProduct("Mouse", "Electronics", 45.50)

	avg, err := s.AddReview(u.ID, p1.ID, 1, "low")
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)

	avg, err = s.AddReview(u.ID, p2.ID, 5, "high")
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)
}

func TestAddReviewDuplicatePair(t *testing.T) {
	s := New()
	u := s.AddUser("Alice")
	p := s.AddProduct("Keyboard", "Electronics", 99.99)

	_, err := s.AddReview(u.ID, p.ID, 4, "first")
	require.NoError(t, err)

	// Different rating and comment make no difference.
	_, err = s.AddReview(u.ID, p.ID, 2, "second")
	assert.ErrorIs(t, err, ErrDuplicateReview)
	assert.Len(t, s.Reviews(), 1)
}

func TestAddReviewReturnsRecomputedAverage(t *testing.T) {
	s := New()
	u1 := s.AddUser("Alice")
	u2 := s.AddUser("Bob")
	p := s.AddProduct("Keyboard", "Electronics", 99.99)

	avg, err := s.AddReview(u1.ID, p.ID, 5, "")
	require.NoError(t, err)
	assert.Equal(t, 5.0, avg)

	avg, err = s.AddReview(u2.ID, p.ID, 4, "")
	require.NoError(t, err)
	assert.Equal(t, 4.5, avg)
}

func TestCascadeDeleteUser(t *testing.T) {
	s := New()
	alice := s.AddUser("Alice")
	bob := s.AddUser("Bob")
	p1 := s.AddProduct("Keyboard", "Electronics", 99.99)
	p2 := s.AddProduct("Mouse", "Electronics", 45.50)

	_, err := s.AddReview(alice.ID, p1.ID, 5, "")
	require.NoError(t, err)
	_, err = s.AddReview(alice.ID, p2.ID, 4, "")
	require.NoError(t, err)
	_, err = s.AddReview(bob.ID, p1.ID, 3, "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteUser(alice.ID))

	_, found := s.FindUser(alice.ID)
	assert.False(t, found)
	require.Len(t, s.Reviews(), 1)
	assert.Equal(t, bob.ID, s.Reviews()[0].UserID)
}

func TestCascadeDeleteProduct(t *testing.T) {
	s := New()
	alice := s.AddUser("Alice")
	p1 := s.AddProduct("Keyboard", "Electronics", 99.99)
	p2 := s.AddProduct("Mouse", "Electronics", 45.50)

	_, err := s.AddReview(alice.ID, p1.ID, 5, "")
	require.NoError(t, err)
	_, err = s.AddReview(alice.ID, p2.ID, 4, "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteProduct(p1.ID))

	_, found := s.FindProduct(p1.ID)
	assert.False(t, found)
	require.Len(t, s.Reviews(), 1)
	assert.Equal(t, p2.ID, s.Reviews()[0].ProductID)
}

func TestDeleteNotFoundLeavesStoreUntouched(t *testing.T) {
	s := New()
	s.AddUser("Alice")
	s.AddProduct("Keyboard", "Electronics", 99.99)

	var nf *NotFoundError
	require.ErrorAs(t, s.DeleteUser(9999), &nf)
	require.ErrorAs(t, s.DeleteProduct(9999), &nf)

	assert.Len(t, s.Users(), 1)
	assert.Len(t, s.Products(), 1)
}

func TestAverageRatingNoReviews(t *testing.T) {
	s := New()
	p := s.AddProduct("Keyboard", "Electronics", 99.99)
	assert.Equal(t, 0.0, s.AverageRating(p.ID))
	assert.Equal(t, 0, s.ReviewCount(p.ID))
}

func TestEncodeRecordFieldOrder(t *testing.T) {
	p := Product{ID: 1000, Name: "Keyboard", Category: "Electronics", Price: 99.9}
	assert.Equal(t,
		`{"id":1000,"name":"Keyboard","category":"Electronics","price":99.90}`,
		p.EncodeRecord())

	u := User{ID: 100, Name: "Alice"}
	assert.Equal(t, `{"id":100,"name":"Alice"}`, u.EncodeRecord())

	r := Review{UserID: 100, ProductID: 1000, Rating: 5, Comment: "Great"}
	assert.Equal(t,
		`{"user_id":100,"product_id":1000,"rating":5,"comment":"Great"}`,
		r.EncodeRecord())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		comment string
	}{
		{"plain", "Great keyboard"},
		{"quotes", `she said "wow"`},
		{"backslash", `path\to\thing`},
		{"newline and tab", "line one\nline two\tend"},
		{"carriage return", "a\rb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Review{UserID: 100, ProductID: 1000, Rating: 4, Comment: tt.comment}
			var out Review
			require.NoError(t, codec.DecodeRecord(in.EncodeRecord(), &out))
			assert.Equal(t, in, out)
		})
	}
}

func TestProductRoundTrip(t *testing.T) {
	in := Product{ID: 1000, Name: `"Pro" Keyboard`, Category: "Electronics", Price: 99.99}
	var out Product
	require.NoError(t, codec.DecodeRecord(in.EncodeRecord(), &out))
	assert.Equal(t, in, out)
}
