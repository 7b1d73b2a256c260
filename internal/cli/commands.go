package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reco-catalog/internal/codec"
	"reco-catalog/internal/config"
	"reco-catalog/internal/logging"
)

// ErrCommandFailed signals that the error envelope has already been
// rendered to stdout; the caller only needs to exit nonzero.
var ErrCommandFailed = errors.New("command failed")

// NewRootCommand builds the full command tree. Each subcommand is a
// complete one-shot invocation: load, operate, save (for mutations),
// print one JSON envelope.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "reco-catalog",
		Short: "File-backed product catalog with review-driven recommendations",
		Long: `reco-catalog maintains a product/user/review catalog in three JSON
files and answers queries against it. Every command is a one-shot
invocation: it reads the current on-disk state, performs a single
operation, rewrites the files if it mutated anything, and prints one
JSON result on stdout. Logs go to stderr.

Concurrent invocations are reconciled best-effort: each mutation
reloads the files immediately before applying its change, but two
overlapping mutations can still lose the earlier write.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		productListCommand(),
		userListCommand(),
		reviewListCommand(),
		userAddCommand(),
		productAddCommand(),
		reviewAddCommand(),
		userDeleteCommand(),
		productDeleteCommand(),
		purchaseCommand(),
		rateCommand(),
		recommendCommand(),
		addCommand(),
		seedCommand(),
	)
	return root
}

// runOp resolves config, builds a fresh App, executes the operation, and
// renders exactly one envelope. Operation errors become error envelopes;
// nothing here panics the process.
func runOp(cmd *cobra.Command, op func(context.Context, *App) (any, error)) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load()
	if err != nil {
		logging.Error().Err(err).Msg("configuration could not be resolved")
		if renderErr := render(out, errorResult(err)); renderErr != nil {
			return renderErr
		}
		return ErrCommandFailed
	}
	logging.Init(cfg.Logging)

	app := NewApp(cfg)
	app.logger.Debug().Str("command", cmd.Name()).Msg("command started")

	result, err := op(cmd.Context(), app)
	if err != nil {
		app.logger.Error().Err(err).Str("command", cmd.Name()).Msg("command failed")
		if renderErr := render(out, errorResult(err)); renderErr != nil {
			return renderErr
		}
		return ErrCommandFailed
	}
	return render(out, result)
}

func productListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "product-list",
		Short: "List all products with average rating and review count",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.ListProducts(ctx)
			})
		},
	}
}

func userListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "user-list",
		Short: "List all users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.ListUsers(ctx)
			})
		},
	}
}

func reviewListCommand() *cobra.Command {
	var productID int

	cmd := &cobra.Command{
		Use:   "review-list",
		Short: "List the reviews recorded for a product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.ListReviews(ctx, productID)
			})
		},
	}
	cmd.Flags().IntVar(&productID, "product", 0, "Product id")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func userAddCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "user-add",
		Short: "Add a user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.AddUser(ctx, name)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func productAddCommand() *cobra.Command {
	var (
		name     string
		category string
		price    float64
	)

	cmd := &cobra.Command{
		Use:   "product-add",
		Short: "Add a product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.AddProduct(ctx, name, category, price)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Product name")
	cmd.Flags().StringVar(&category, "category", "", "Category used for recommendation grouping")
	cmd.Flags().Float64Var(&price, "price", 0, "Price (two-decimal precision)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("price")
	return cmd
}

func reviewAddCommand() *cobra.Command {
	var (
		userID    int
		productID int
		rating    int
		comment   string
	)

	cmd := &cobra.Command{
		Use:   "review-add",
		Short: "Add a review for a product",
		Long: `Add a review. The user and product must exist, the rating must be
between 1 and 5, and each user may review a product only once; a
re-rating is rejected as a duplicate.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.AddReview(ctx, userID, productID, rating, comment)
			})
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "Reviewer user id")
	cmd.Flags().IntVar(&productID, "product", 0, "Reviewed product id")
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating, 1-5")
	cmd.Flags().StringVar(&comment, "comment", "", "Free-text comment")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func userDeleteCommand() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "user-delete",
		Short: "Delete a user and all reviews they wrote",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.DeleteUser(ctx, id)
			})
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "User id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func productDeleteCommand() *cobra.Command {
	var id int

	cmd := &cobra.Command{
		Use:   "product-delete",
		Short: "Delete a product and all reviews referencing it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.DeleteProduct(ctx, id)
			})
		},
	}
	cmd.Flags().IntVar(&id, "id", 0, "Product id")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func purchaseCommand() *cobra.Command {
	var (
		userID    int
		productID int
	)

	cmd := &cobra.Command{
		Use:   "purchase",
		Short: "Acknowledge a purchase (no purchase history is stored)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.Purchase(ctx, userID, productID)
			})
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "Buyer user id")
	cmd.Flags().IntVar(&productID, "product", 0, "Purchased product id")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

func rateCommand() *cobra.Command {
	var (
		userID    int
		productID int
		rating    int
	)

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Rate a product without a comment",
		Long: `Rate a product. Ratings are stored as reviews with a placeholder
comment, so rating the same product twice is rejected as a duplicate
review.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.Rate(ctx, userID, productID, rating)
			})
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "Rater user id")
	cmd.Flags().IntVar(&productID, "product", 0, "Rated product id")
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating, 1-5")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("product")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func recommendCommand() *cobra.Command {
	var userID int

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend up to three products for a user",
		Long: `Recommend products from the category of the user's most recently
reviewed product, excluding anything they already reviewed, ranked by
average rating.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.Recommend(ctx, userID)
			})
		},
	}
	cmd.Flags().IntVar(&userID, "user", 0, "User id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// addCommand accepts a flat JSON payload instead of flags, e.g.
//
//	reco-catalog add user '{"name": "New User"}'
//	reco-catalog add product '{"name": "X", "category": "Y", "price": 9.99}'
//	reco-catalog add review '{"user_id": 100, "product_id": 1001, "rating": 5, "comment": "Great!"}'
//
// The payload is read with the codec's field extractor, so it tolerates
// the same minimal JSON the catalog files use.
func addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <user|product|review> <json>",
		Short: "Add an entity from an inline JSON payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return runInlineAdd(ctx, app, args[0], args[1])
			})
		},
	}
}

var errInvalidPayload = errors.New("invalid JSON payload or missing parameters")

func runInlineAdd(ctx context.Context, app *App, resource, payload string) (any, error) {
	switch resource {
	case "user":
		name := codec.ExtractField(payload, "name")
		if name == "" {
			return nil, errInvalidPayload
		}
		return app.AddUser(ctx, name)

	case "product":
		name := codec.ExtractField(payload, "name")
		category := codec.ExtractField(payload, "category")
		price, err := strconv.ParseFloat(codec.ExtractField(payload, "price"), 64)
		if name == "" || category == "" || err != nil {
			return nil, errInvalidPayload
		}
		return app.AddProduct(ctx, name, category, price)

	case "review":
		userID, uidErr := strconv.Atoi(codec.ExtractField(payload, "user_id"))
		productID, pidErr := strconv.Atoi(codec.ExtractField(payload, "product_id"))
		rating, ratingErr := strconv.Atoi(codec.ExtractField(payload, "rating"))
		if uidErr != nil || pidErr != nil || ratingErr != nil {
			return nil, errInvalidPayload
		}
		comment := codec.ExtractField(payload, "comment")
		return app.AddReview(ctx, userID, productID, rating, comment)

	default:
		return nil, fmt.Errorf("%w: unknown resource %q", errInvalidPayload, resource)
	}
}

func seedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed an empty catalog with the default dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOp(cmd, func(ctx context.Context, app *App) (any, error) {
				return app.SeedCatalog(ctx)
			})
		},
	}
}
