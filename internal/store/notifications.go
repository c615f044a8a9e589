package store

import (
	"context"

	"bookwish/internal/domain"
)

func (db *DB) CreateNotification(ctx context.Context, n *domain.Notification) error {
	query := `INSERT INTO notifications (id, name, event, url, title_template, body_template, headers, created_at)
		VALUES (:id, :name, :event, :url, :title_template, :body_template, :headers, :created_at)`

	_, err := db.NamedExecContext(ctx, query, n)
	return err
}

// ListNotificationsByEvent returns the subscribers registered for an event.
// The request pipeline only ever reads these rows.
func (db *DB) ListNotificationsByEvent(ctx context.Context, event domain.EventKind) ([]*domain.Notification, error) {
	query := `SELECT id, name, event, url, title_template, body_template, headers, created_at
		FROM notifications WHERE event = ? ORDER BY created_at ASC`

	var ns []*domain.Notification
	err := db.SelectContext(ctx, &ns, query, event)
	return ns, err
}

func (db *DB) ListNotifications(ctx context.Context) ([]*domain.Notification, error) {
	query := `SELECT id, name, event, url, title_template, body_template, headers, created_at
		FROM notifications ORDER BY created_at ASC`

	var ns []*domain.Notification
	err := db.SelectContext(ctx, &ns, query)
	return ns, err
}

func (db *DB) DeleteNotification(ctx context.Context, id string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM notifications WHERE id = ?`, id)
	return err
}
