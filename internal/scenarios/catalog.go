package scenarios

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopcheck-io/shopcheck/internal/browser"
	"github.com/shopcheck-io/shopcheck/internal/fixtures"
	"github.com/shopcheck-io/shopcheck/internal/pages"
	"github.com/shopcheck-io/shopcheck/internal/scenario"
)

// Search looks a term up on /products. Success means at least one product
// is listed.
type Search struct{ base }

func NewSearch(env scenario.Env) *Search { return &Search{base{env: env}} }

func (s *Search) Name() string { return "search" }

func (s *Search) Columns() []string { return []string{"term"} }

func (s *Search) Reset(ctx context.Context, d browser.Driver) error {
	return s.site(d).Products().Open()
}

func (s *Search) Execute(ctx context.Context, d browser.Driver, row fixtures.Row) (scenario.Observation, error) {
	products := s.site(d).Products()
	if err := products.Search(row.Get("term")); err != nil {
		return scenario.Observation{}, err
	}
	if _, err := products.Heading(); err != nil {
		return scenario.Observation{}, fmt.Errorf("search results: %w", err)
	}
	names, err := products.Names()
	if err != nil {
		return scenario.Observation{}, err
	}
	if len(names) == 0 {
		return scenario.Observation{Detail: "no products listed"}, nil
	}
	shown := names
	if len(shown) > 5 {
		shown = shown[:5]
	}
	return scenario.Observation{
		Succeeded: true,
		Detail:    fmt.Sprintf("%d products: %s", len(names), strings.Join(shown, ", ")),
	}, nil
}

// Review writes a review on a product page. The product column holds the
// product id and defaults to 1.
type Review struct{ base }

func NewReview(env scenario.Env) *Review { return &Review{base{env: env}} }

func (r *Review) Name() string { return "review" }

func (r *Review) Columns() []string { return []string{"name", "email", "review"} }

func (r *Review) Reset(ctx context.Context, d browser.Driver) error {
	return r.site(d).Products().Open()
}

func (r *Review) Execute(ctx context.Context, d browser.Driver, row fixtures.Row) (scenario.Observation, error) {
	id := 1
	if v := row.Get("product"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return scenario.Observation{}, fmt.Errorf("product id %q: %w", v, err)
		}
		id = n
	}

	var review pages.Review
	if err := fixtures.Decode(row, &review); err != nil {
		return scenario.Observation{}, fmt.Errorf("review row: %w", err)
	}

	page := r.site(d).ProductDetail()
	if err := page.Open(id); err != nil {
		return scenario.Observation{}, err
	}
	if err := page.WriteReview(review); err != nil {
		return scenario.Observation{}, err
	}
	if page.ReviewSucceeded() {
		return scenario.Observation{Succeeded: true, Detail: pages.ReviewSuccessText}, nil
	}
	return scenario.Observation{Detail: "no confirmation shown"}, nil
}
