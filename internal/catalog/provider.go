package catalog

import (
	"context"
	"errors"

	"bookwish/internal/domain"
)

var (
	// ErrInvalidRegion is returned before any network call when the region
	// is not one of the supported regional endpoints.
	ErrInvalidRegion = errors.New("invalid region")

	// ErrNotFound is returned when a lookup misses.
	ErrNotFound = errors.New("book not found")

	// ErrUnavailable wraps transport failures and non-2xx upstream responses.
	ErrUnavailable = errors.New("catalog unavailable")
)

// Provider issues search and single-item lookup calls against an external
// audiobook catalog. Neither call retries; that decision belongs to callers.
type Provider interface {
	Search(ctx context.Context, query string, page, numResults int, region string) ([]domain.Book, error)
	Lookup(ctx context.Context, asin string) (*domain.Book, error)
}

// Regions maps a supported region code to its Audible endpoint TLD.
var Regions = map[string]string{
	"us": ".com",
	"ca": ".ca",
	"uk": ".co.uk",
	"au": ".com.au",
	"fr": ".fr",
	"de": ".de",
	"jp": ".co.jp",
	"it": ".it",
	"in": ".in",
	"es": ".es",
}

// RegionList returns the supported region codes in a stable order.
func RegionList() []string {
	return []string{"us", "ca", "uk", "au", "fr", "de", "jp", "it", "in", "es"}
}

// ValidRegion reports whether region is a supported endpoint.
func ValidRegion(region string) bool {
	_, ok := Regions[region]
	return ok
}
