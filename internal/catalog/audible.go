package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"bookwish/internal/constants"
	"bookwish/internal/domain"
)

var audibleLogger = slog.Default().WithGroup("audible")

// AudibleProvider searches the Audible catalog API and resolves single books
// through the Audnexus metadata API.
type AudibleProvider struct {
	// SearchBaseURL overrides the per-region Audible endpoint when set.
	// Tests point it at a local server.
	SearchBaseURL string
	AudnexusURL   string
	Client        *http.Client
}

func NewAudibleProvider() *AudibleProvider {
	return &AudibleProvider{
		AudnexusURL: constants.DefaultAudnexusURL,
		Client:      &http.Client{Timeout: constants.CatalogHTTPTimeout},
	}
}

func (p *AudibleProvider) searchEndpoint(region string) string {
	if p.SearchBaseURL != "" {
		return p.SearchBaseURL
	}
	return fmt.Sprintf("https://api.audible%s", Regions[region])
}

func (p *AudibleProvider) Search(ctx context.Context, query string, page, numResults int, region string) ([]domain.Book, error) {
	if !ValidRegion(region) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRegion, region)
	}

	q := url.Values{}
	q.Set("keywords", query)
	q.Set("num_results", strconv.Itoa(numResults))
	q.Set("page", strconv.Itoa(page))
	q.Set("products_sort_by", "Relevance")
	q.Set("response_groups", "media,contributors,product_attrs,product_extended_attrs")
	u := fmt.Sprintf("%s/1.0/catalog/products?%s", p.searchEndpoint(region), q.Encode())

	var resp struct {
		Products []struct {
			ASIN     string `json:"asin"`
			Title    string `json:"title"`
			Subtitle string `json:"subtitle"`
			Authors  []struct {
				Name string `json:"name"`
			} `json:"authors"`
			Narrators []struct {
				Name string `json:"name"`
			} `json:"narrators"`
			ProductImages map[string]string `json:"product_images"`
			ReleaseDate   string            `json:"release_date"`
			RuntimeMin    int               `json:"runtime_length_min"`
		} `json:"products"`
	}
	if err := p.get(ctx, u, &resp); err != nil {
		return nil, err
	}

	var books []domain.Book
	for _, item := range resp.Products {
		if item.ASIN == "" {
			continue
		}
		book := domain.Book{
			ASIN:           item.ASIN,
			Title:          item.Title,
			Subtitle:       item.Subtitle,
			Authors:        domain.StringSlice{},
			Narrators:      domain.StringSlice{},
			CoverURL:       item.ProductImages["500"],
			ReleaseDate:    item.ReleaseDate,
			RuntimeMinutes: item.RuntimeMin,
		}
		for _, a := range item.Authors {
			book.Authors = append(book.Authors, a.Name)
		}
		for _, n := range item.Narrators {
			book.Narrators = append(book.Narrators, n.Name)
		}
		books = append(books, book)
	}
	return books, nil
}

func (p *AudibleProvider) Lookup(ctx context.Context, asin string) (*domain.Book, error) {
	u := fmt.Sprintf("%s/books/%s", p.AudnexusURL, url.PathEscape(asin))

	var resp struct {
		ASIN     string `json:"asin"`
		Title    string `json:"title"`
		Subtitle string `json:"subtitle"`
		Authors  []struct {
			Name string `json:"name"`
		} `json:"authors"`
		Narrators []struct {
			Name string `json:"name"`
		} `json:"narrators"`
		Image       string `json:"image"`
		ReleaseDate string `json:"releaseDate"`
		RuntimeMin  int    `json:"runtimeLengthMin"`
	}
	if err := p.get(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.ASIN == "" {
		return nil, ErrNotFound
	}

	book := &domain.Book{
		ASIN:           resp.ASIN,
		Title:          resp.Title,
		Subtitle:       resp.Subtitle,
		Authors:        domain.StringSlice{},
		Narrators:      domain.StringSlice{},
		CoverURL:       resp.Image,
		ReleaseDate:    resp.ReleaseDate,
		RuntimeMinutes: resp.RuntimeMin,
	}
	for _, a := range resp.Authors {
		book.Authors = append(book.Authors, a.Name)
	}
	for _, n := range resp.Narrators {
		book.Narrators = append(book.Narrators, n.Name)
	}
	return book, nil
}

func (p *AudibleProvider) get(ctx context.Context, url string, target interface{}) error {
	audibleLogger.Debug("API request", "url", url)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return err
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: upstream returned %s", ErrUnavailable, resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(target)
}
