package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"ride-marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	notifications map[string]*models.Notification
	order         []string
	batches       [][]string
	failBatch     map[int]bool // indexes of MarkReadBatch calls that fail
	batchCalls    int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{notifications: map[string]*models.Notification{}, failBatch: map[int]bool{}}
}

func (f *fakeRepo) Create(_ context.Context, n *models.Notification) (*models.Notification, error) {
	cp := *n
	cp.ID = uuid.NewString()
	f.notifications[cp.ID] = &cp
	f.order = append(f.order, cp.ID)
	out := cp
	return &out, nil
}

func (f *fakeRepo) ListByUser(_ context.Context, userID string, page, limit int) ([]*models.Notification, int, error) {
	var out []*models.Notification
	for _, id := range f.order {
		n := f.notifications[id]
		if n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) ListUnreadIDs(_ context.Context, userID string) ([]string, error) {
	var ids []string
	for _, id := range f.order {
		n := f.notifications[id]
		if n.UserID == userID && !n.Read {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (f *fakeRepo) MarkRead(_ context.Context, notificationID, userID string) error {
	n, ok := f.notifications[notificationID]
	if !ok || n.UserID != userID {
		return models.ErrNotFound
	}
	n.Read = true
	return nil
}

func (f *fakeRepo) MarkReadBatch(_ context.Context, ids []string) error {
	call := f.batchCalls
	f.batchCalls++
	f.batches = append(f.batches, ids)
	if f.failBatch[call] {
		return errors.New("store unavailable")
	}
	for _, id := range ids {
		if n, ok := f.notifications[id]; ok {
			n.Read = true
		}
	}
	return nil
}

func seedUnread(t *testing.T, repo *fakeRepo, userID string, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		_, err := repo.Create(context.Background(), &models.Notification{
			UserID:  userID,
			Type:    models.NotificationInfo,
			Title:   "Heads up",
			Message: fmt.Sprintf("message %d", i),
		})
		require.NoError(t, err)
	}
}

func TestMarkAllReadChunksBatches(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, slog.New(slog.DiscardHandler))
	seedUnread(t, repo, "alice", 23)

	require.NoError(t, svc.MarkAllRead(context.Background(), "alice"))

	// 23 ids at a batch limit of 10 means chunks of 10, 10 and 3.
	require.Len(t, repo.batches, 3)
	assert.Len(t, repo.batches[0], 10)
	assert.Len(t, repo.batches[1], 10)
	assert.Len(t, repo.batches[2], 3)

	ids, err := repo.ListUnreadIDs(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestMarkAllReadContinuesPastFailedChunk(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, slog.New(slog.DiscardHandler))
	seedUnread(t, repo, "alice", 25)
	repo.failBatch[1] = true // second chunk fails

	err := svc.MarkAllRead(context.Background(), "alice")
	assert.Error(t, err)

	// All three chunks were attempted; only the failed one's ids stay unread.
	assert.Equal(t, 3, repo.batchCalls)
	ids, listErr := repo.ListUnreadIDs(context.Background(), "alice")
	require.NoError(t, listErr)
	assert.Len(t, ids, 10)
}

func TestMarkAllReadWithNothingUnread(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, slog.New(slog.DiscardHandler))

	require.NoError(t, svc.MarkAllRead(context.Background(), "alice"))
	assert.Zero(t, repo.batchCalls)
}

func TestMarkReadIsOwnerScoped(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo, slog.New(slog.DiscardHandler))
	n, err := repo.Create(context.Background(), &models.Notification{
		UserID: "alice", Type: models.NotificationNewOffer, Title: "New offer received",
	})
	require.NoError(t, err)

	err = svc.MarkRead(context.Background(), n.ID, "mallory")
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, svc.MarkRead(context.Background(), n.ID, "alice"))
	assert.True(t, repo.notifications[n.ID].Read)
}
