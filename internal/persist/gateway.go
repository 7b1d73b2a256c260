// Package persist implements the file persistence gateway: a full reload
// of the three catalog files into the store, and a full rewrite of all
// three files from the store. Every mutating command reloads immediately
// before applying its change (reconciliation), which is the system's only
// cross-process safeguard. It is best effort, not transactional: if
// two invocations both load before either saves, the later save wins per
// file and the earlier write is lost. Known limitation, not a guarantee.
package persist

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"reco-catalog/internal/codec"
	"reco-catalog/internal/config"
	"reco-catalog/internal/store"
)

// IOError reports a file that could not be read or written. Save errors
// of this type are reported distinctly from domain errors because a save
// is not atomic across the three files: files written before the failure
// stay written.
type IOError struct {
	Path string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Skip records one persisted fragment that could not be decoded during a
// load. Skips never abort the load; they are aggregated here and logged,
// not surfaced per-record to the caller.
type Skip struct {
	File   string
	Reason string
}

// LoadResult summarizes one LoadAll pass.
type LoadResult struct {
	Products int
	Users    int
	Reviews  int
	Skipped  []Skip
	Seeded   bool
}

// Gateway moves catalog state between disk and a store.
type Gateway struct {
	data   config.DataConfig
	logger zerolog.Logger
}

// NewGateway returns a gateway over the configured file locations.
func NewGateway(data config.DataConfig, logger zerolog.Logger) *Gateway {
	return &Gateway{
		data:   data,
		logger: logger.With().Str("component", "persist").Logger(),
	}
}

// Fragment decode targets. Numeric fields are pointers so a missing value
// is distinguishable from zero and the fragment can be skipped; missing
// string fields simply read as empty, matching the historical loader.
type productRecord struct {
	ID       *int     `json:"id"`
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Price    *float64 `json:"price"`
}

type userRecord struct {
	ID   *int   `json:"id"`
	Name string `json:"name"`
}

type reviewRecord struct {
	UserID    *int   `json:"user_id"`
	ProductID *int   `json:"product_id"`
	Rating    *int   `json:"rating"`
	Comment   string `json:"comment"`
}

// LoadAll replaces the store's collections with whatever the three files
// currently hold. Missing or unreadable files count as empty arrays.
// Fragments that fail structured decode, or that lack a required numeric
// field, are skipped without aborting the rest of the load. After a load
// that leaves all three collections empty, the default dataset is seeded
// and immediately persisted when seeding is enabled.
func (g *Gateway) LoadAll(s *store.Store) (LoadResult, error) {
	var res LoadResult

	products := g.loadProducts(&res)
	users := g.loadUsers(&res)
	reviews := g.loadReviews(&res)

	s.Replace(products, users, reviews)
	res.Products = len(products)
	res.Users = len(users)
	res.Reviews = len(reviews)

	if len(res.Skipped) > 0 {
		g.logger.Warn().
			Int("skipped", len(res.Skipped)).
			Msg("dropped undecodable records during load")
	}

	if res.Products == 0 && res.Users == 0 && res.Reviews == 0 && g.data.SeedOnEmpty {
		Seed(s)
		res.Seeded = true
		g.logger.Info().Msg("no persisted data found, seeding default dataset")
		if err := g.SaveAll(s); err != nil {
			return res, err
		}
		res.Products = len(s.Products())
		res.Users = len(s.Users())
		res.Reviews = len(s.Reviews())
	}
	return res, nil
}

func (g *Gateway) loadProducts(res *LoadResult) []store.Product {
	path := g.data.ProductsPath()
	var out []store.Product
	for _, fragment := range codec.SplitTopLevelArray(g.readFile(path)) {
		var rec productRecord
		if err := codec.DecodeRecord(fragment, &rec); err != nil {
			g.skip(res, path, fmt.Sprintf("undecodable product: %v", err))
			continue
		}
		if rec.ID == nil || rec.Price == nil {
			g.skip(res, path, "product missing id or price")
			continue
		}
		out = append(out, store.Product{
			ID:       *rec.ID,
			Name:     rec.Name,
			Category: rec.Category,
			Price:    *rec.Price,
		})
	}
	return out
}

func (g *Gateway) loadUsers(res *LoadResult) []store.User {
	path := g.data.UsersPath()
	var out []store.User
	for _, fragment := range codec.SplitTopLevelArray(g.readFile(path)) {
		var rec userRecord
		if err := codec.DecodeRecord(fragment, &rec); err != nil {
			g.skip(res, path, fmt.Sprintf("undecodable user: %v", err))
			continue
		}
		if rec.ID == nil {
			g.skip(res, path, "user missing id")
			continue
		}
		out = append(out, store.User{ID: *rec.ID, Name: rec.Name})
	}
	return out
}

func (g *Gateway) loadReviews(res *LoadResult) []store.Review {
	path := g.data.ReviewsPath()
	var out []store.Review
	for _, fragment := range codec.SplitTopLevelArray(g.readFile(path)) {
		var rec reviewRecord
		if err := codec.DecodeRecord(fragment, &rec); err != nil {
			g.skip(res, path, fmt.Sprintf("undecodable review: %v", err))
			continue
		}
		if rec.UserID == nil || rec.ProductID == nil || rec.Rating == nil {
			g.skip(res, path, "review missing user_id, product_id, or rating")
			continue
		}
		out = append(out, store.Review{
			UserID:    *rec.UserID,
			ProductID: *rec.ProductID,
			Rating:    *rec.Rating,
			Comment:   rec.Comment,
		})
	}
	return out
}

// readFile returns the file's contents, or an empty array for a file
// that is missing or unreadable. The loader has always treated an
// unopenable file the same as an absent one.
func (g *Gateway) readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			g.logger.Warn().Err(err).Str("path", path).Msg("treating unreadable file as empty")
		}
		return "[]"
	}
	if len(data) == 0 {
		return "[]"
	}
	return string(data)
}

func (g *Gateway) skip(res *LoadResult, path, reason string) {
	res.Skipped = append(res.Skipped, Skip{File: path, Reason: reason})
	g.logger.Debug().Str("path", path).Str("reason", reason).Msg("skipping record")
}

// SaveAll rewrites the three files from the store, one JSON array per
// file, one record per line. All three writes are attempted even if an
// earlier one fails; files already written are not rolled back, so a
// partial failure leaves the files mutually inconsistent.
func (g *Gateway) SaveAll(s *store.Store) error {
	var errs []error

	products := s.Products()
	lines := make([]string, len(products))
	for i, p := range products {
		lines[i] = p.EncodeRecord()
	}
	if err := g.writeArray(g.data.ProductsPath(), lines); err != nil {
		errs = append(errs, err)
	}

	users := s.Users()
	lines = make([]string, len(users))
	for i, u := range users {
		lines[i] = u.EncodeRecord()
	}
	if err := g.writeArray(g.data.UsersPath(), lines); err != nil {
		errs = append(errs, err)
	}

	reviews := s.Reviews()
	lines = make([]string, len(reviews))
	for i, r := range reviews {
		lines[i] = r.EncodeRecord()
	}
	if err := g.writeArray(g.data.ReviewsPath(), lines); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func (g *Gateway) writeArray(path string, records []string) error {
	var b []byte
	b = append(b, '[', '\n')
	for i, rec := range records {
		b = append(b, rec...)
		if i < len(records)-1 {
			b = append(b, ',')
		}
		b = append(b, '\n')
	}
	b = append(b, ']')

	if err := os.WriteFile(path, b, 0o644); err != nil {
		g.logger.Error().Err(err).Str("path", path).Msg("failed to write catalog file")
		return &IOError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// Seed fills an empty store with the fixed default dataset.
func Seed(s *store.Store) {
	s.Replace(
		[]store.Product{
			{ID: 1000, Name: "Mechanical Keyboard", Category: "Electronics", Price: 99.99},
			{ID: 1001, Name: "Wireless Mouse", Category: "Electronics", Price: 45.50},
			{ID: 1002, Name: "The Silent Patient Book", Category: "Books", Price: 12.00},
			{ID: 1003, Name: "Blue Hoodie", Category: "Apparel", Price: 65.00},
		},
		[]store.User{
			{ID: 100, Name: "Alice Johnson"},
			{ID: 101, Name: "Bob Smith"},
		},
		[]store.Review{
			{UserID: 100, ProductID: 1000, Rating: 5, Comment: "Excellent keyboard for coding."},
			{UserID: 100, ProductID: 1001, Rating: 4, Comment: "Reliable mouse, good battery life."},
			{UserID: 101, ProductID: 1002, Rating: 3, Comment: "A decent thriller, a bit slow."},
			{UserID: 101, ProductID: 1003, Rating: 5, Comment: "Comfy and warm!"},
		},
	)
}
