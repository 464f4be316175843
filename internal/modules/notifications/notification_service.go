package notifications

import (
	"context"
	"fmt"
	"log/slog"

	"ride-marketplace/internal/models"
)

// markReadBatchSize is the record store's limit on batched updates.
const markReadBatchSize = 10

// ServiceInterface defines the contract for the notification service.
type ServiceInterface interface {
	Notify(ctx context.Context, userID string, typ models.NotificationType, title, message, link string) (*models.Notification, error)
	ListMine(ctx context.Context, userID string, page, limit int) ([]*models.Notification, int, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// Service implements the notification logic.
type Service struct {
	repo   RepositoryInterface
	logger *slog.Logger
}

// NewService creates a new notification service.
func NewService(repo RepositoryInterface, logger *slog.Logger) ServiceInterface {
	return &Service{repo: repo, logger: logger}
}

// Notify creates a notification row for the given user. Callers in the
// lifecycle path treat a failure here as non-fatal.
func (s *Service) Notify(ctx context.Context, userID string, typ models.NotificationType, title, message, link string) (*models.Notification, error) {
	n := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		Link:    link,
	}
	created, err := s.repo.Create(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("service.Notify: %w", err)
	}
	return created, nil
}

// ListMine retrieves a user's notifications, unread first.
func (s *Service) ListMine(ctx context.Context, userID string, page, limit int) ([]*models.Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.ListByUser(ctx, userID, page, limit)
}

// MarkRead flags a single notification as read.
func (s *Service) MarkRead(ctx context.Context, notificationID, userID string) error {
	return s.repo.MarkRead(ctx, notificationID, userID)
}

// MarkAllRead flags every unread notification as read. The store caps
// batched updates at markReadBatchSize records per call, so the ids are
// chunked; a failed chunk is logged and the remaining chunks still run.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	ids, err := s.repo.ListUnreadIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("service.MarkAllRead: %w", err)
	}

	var firstErr error
	for start := 0; start < len(ids); start += markReadBatchSize {
		end := start + markReadBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := s.repo.MarkReadBatch(ctx, ids[start:end]); err != nil {
			s.logger.Error("mark-all-read batch failed", "user_id", userID, "batch_start", start, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
