package notifications

import (
	"context"
	"errors"
	"fmt"

	"ride-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for notification storage.
type RepositoryInterface interface {
	Create(ctx context.Context, n *models.Notification) (*models.Notification, error)
	ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Notification, int, error)
	ListUnreadIDs(ctx context.Context, userID string) ([]string, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkReadBatch(ctx context.Context, ids []string) error
}

// Repository implements RepositoryInterface on Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new notification repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Create inserts a new notification row.
func (r *Repository) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, title, message, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, type, title, message, link, read, created_at`

	row := r.db.QueryRow(ctx, query, n.UserID, n.Type, n.Title, n.Message, n.Link)
	created, err := scanNotification(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateNotification: %w", err)
	}
	return created, nil
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link, &n.Read, &n.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan notification: %w", err)
	}
	return &n, nil
}

// ListByUser retrieves a user's notifications, unread first, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string, page, limit int) ([]*models.Notification, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT id, user_id, type, title, message, link, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY read ASC, created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser.Query: %w", err)
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByUser.Scan: %w", err)
		}
		out = append(out, n)
	}

	var total int
	err = r.db.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1", userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByUser.Count: %w", err)
	}

	return out, total, nil
}

// ListUnreadIDs returns the ids of a user's unread notifications.
func (r *Repository) ListUnreadIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id FROM notifications WHERE user_id = $1 AND read = FALSE ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListUnreadIDs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("repository.ListUnreadIDs.Scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// MarkRead flags a single notification as read, scoped to its owner.
func (r *Repository) MarkRead(ctx context.Context, notificationID, userID string) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("repository.MarkRead: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// MarkReadBatch flags one batch of notifications as read. Callers are
// responsible for respecting the store's batch size limit.
func (r *Repository) MarkReadBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = ANY($1)`, ids)
	if err != nil {
		return fmt.Errorf("repository.MarkReadBatch: %w", err)
	}
	return nil
}
