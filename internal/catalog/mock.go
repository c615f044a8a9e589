package catalog

import (
	"context"
	"sync/atomic"

	"bookwish/internal/domain"
)

// MockProvider serves canned results and counts calls so tests can assert
// that no network attempt was made.
type MockProvider struct {
	Books map[string]domain.Book

	SearchErr error
	LookupErr error

	searchCalls atomic.Int64
	lookupCalls atomic.Int64
}

func NewMockProvider(books ...domain.Book) *MockProvider {
	m := &MockProvider{Books: make(map[string]domain.Book)}
	for _, b := range books {
		m.Books[b.ASIN] = b
	}
	return m
}

func (m *MockProvider) Search(ctx context.Context, query string, page, numResults int, region string) ([]domain.Book, error) {
	if !ValidRegion(region) {
		return nil, ErrInvalidRegion
	}
	m.searchCalls.Add(1)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	var books []domain.Book
	for _, b := range m.Books {
		books = append(books, b)
	}
	return books, nil
}

func (m *MockProvider) Lookup(ctx context.Context, asin string) (*domain.Book, error) {
	m.lookupCalls.Add(1)
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	b, ok := m.Books[asin]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MockProvider) SearchCalls() int64 { return m.searchCalls.Load() }
func (m *MockProvider) LookupCalls() int64 { return m.lookupCalls.Load() }
