package store

import (
	"context"

	"bookwish/internal/domain"
)

// CreateManualRequest always inserts; manual requests have no catalog
// identity to dedup on.
func (db *DB) CreateManualRequest(ctx context.Context, req *domain.ManualBookRequest) error {
	query := `INSERT INTO manual_requests (id, username, title, subtitle, authors, narrators, publish_date, additional_info, downloaded, created_at)
		VALUES (:id, :username, :title, :subtitle, :authors, :narrators, :publish_date, :additional_info, :downloaded, :created_at)`

	_, err := db.NamedExecContext(ctx, query, req)
	return err
}

func (db *DB) ListManualRequests(ctx context.Context) ([]*domain.ManualBookRequest, error) {
	query := `SELECT id, username, title, subtitle, authors, narrators, publish_date, additional_info, downloaded, created_at
		FROM manual_requests ORDER BY created_at DESC`

	var reqs []*domain.ManualBookRequest
	err := db.SelectContext(ctx, &reqs, query)
	return reqs, err
}

func (db *DB) DeleteManualRequest(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM manual_requests WHERE id = ?`, id)
	return err
}
