package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"bookwish/internal/domain"
)

// CreateRequest inserts a request row, or leaves the existing one in place
// when the (asin, username) pair is already requested. The duplicate case is
// detected by rows-affected on an ON CONFLICT DO NOTHING insert, never by
// inspecting a constraint error, so unrelated integrity failures still
// surface as errors.
func (db *DB) CreateRequest(ctx context.Context, req *domain.BookRequest) (created bool, err error) {
	query := `INSERT INTO book_requests (id, asin, username, title, subtitle, authors, narrators, cover_url, downloaded, created_at)
		VALUES (:id, :asin, :username, :title, :subtitle, :authors, :narrators, :cover_url, :downloaded, :created_at)
		ON CONFLICT(asin, username) DO NOTHING`

	res, err := db.NamedExecContext(ctx, query, req)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (db *DB) GetRequest(ctx context.Context, asin, username string) (*domain.BookRequest, error) {
	query := `SELECT id, asin, username, title, subtitle, authors, narrators, cover_url, downloaded, created_at
		FROM book_requests WHERE asin = ? AND username = ?`

	req := &domain.BookRequest{}
	err := db.GetContext(ctx, req, query, asin, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListRequestedASINs returns which of the given ASINs the user has already
// requested. One round-trip regardless of input size; an empty input issues
// no query at all.
func (db *DB) ListRequestedASINs(ctx context.Context, username string, asins []string) (map[string]bool, error) {
	requested := make(map[string]bool)
	if len(asins) == 0 {
		return requested, nil
	}

	query, args, err := sqlx.In(`SELECT asin FROM book_requests WHERE asin IN (?) AND username = ?`, asins, username)
	if err != nil {
		return nil, err
	}

	var rows []string
	if err := db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	for _, asin := range rows {
		requested[asin] = true
	}
	return requested, nil
}

// DeleteRequestsByASIN removes every request row for the book, across all
// users. Dedup is per-user, so multiple rows per ASIN exist by design.
func (db *DB) DeleteRequestsByASIN(ctx context.Context, asin string) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM book_requests WHERE asin = ?`, asin)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ListRequests returns request rows filtered by download state, newest first.
func (db *DB) ListRequests(ctx context.Context, downloaded bool) ([]*domain.BookRequest, error) {
	query := `SELECT id, asin, username, title, subtitle, authors, narrators, cover_url, downloaded, created_at
		FROM book_requests WHERE downloaded = ? ORDER BY created_at DESC`

	var reqs []*domain.BookRequest
	err := db.SelectContext(ctx, &reqs, query, downloaded)
	return reqs, err
}

// MarkDownloaded flags every request row for the book as downloaded.
func (db *DB) MarkDownloaded(ctx context.Context, asin string) error {
	_, err := db.ExecContext(ctx, `UPDATE book_requests SET downloaded = 1 WHERE asin = ?`, asin)
	return err
}
