package domain

import (
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

const (
	// SlugMaxLen is the column width of products.slug.
	SlugMaxLen = 200

	fallbackSlug = "product"
)

type Product struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Slug        string
	Active      bool
}

// Slugify derives the base slug for the product name.
//
// Never returns an empty string.
func Slugify(name string) string {
	s := slug.Make(name)
	if len(s) > SlugMaxLen {
		s = s[:SlugMaxLen]
	}
	if s == "" {
		return fallbackSlug
	}
	return s
}

// SlugCandidate returns the n-th slug candidate for base,
// where n=1 is the base itself.
func SlugCandidate(base string, n int) string {
	if n <= 1 {
		return base
	}
	suffix := "-" + strconv.Itoa(n)
	if len(base)+len(suffix) > SlugMaxLen {
		base = base[:SlugMaxLen-len(suffix)]
	}
	return base + suffix
}
