package offers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"ride-marketplace/internal/models"
	"ride-marketplace/pkg/email"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- In-memory fakes ---

type fakeOfferRepo struct {
	mu         sync.Mutex
	offers     map[string]*models.Offer
	order      []string
	failUpdate map[string]bool // offer ids whose status writes fail
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: map[string]*models.Offer{}, failUpdate: map[string]bool{}}
}

func (f *fakeOfferRepo) Create(_ context.Context, offer *models.Offer) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o := *offer
	o.ID = uuid.NewString()
	o.Status = models.OfferStatusNew
	f.offers[o.ID] = &o
	f.order = append(f.order, o.ID)
	return &o, nil
}

func (f *fakeOfferRepo) FindByID(_ context.Context, offerID string) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[offerID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferRepo) ListByRequest(_ context.Context, requestID string) ([]*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Offer
	for i := len(f.order) - 1; i >= 0; i-- { // newest first
		o := f.offers[f.order[i]]
		if o.RequestID == requestID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) FindAcceptedByRequest(_ context.Context, requestID string) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		o := f.offers[id]
		if o.RequestID == requestID && o.Status == models.OfferStatusAccepted {
			cp := *o
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeOfferRepo) UpdateStatusIf(_ context.Context, offerID string, to models.OfferStatus, from ...models.OfferStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate[offerID] {
		return false, errors.New("store unavailable")
	}
	o, ok := f.offers[offerID]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if o.Status == s {
			o.Status = to
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOfferRepo) AcceptIfUnclaimed(_ context.Context, offerID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdate[offerID] {
		return false, errors.New("store unavailable")
	}
	o, ok := f.offers[offerID]
	if !ok {
		return false, nil
	}
	if o.Status != models.OfferStatusNew && o.Status != models.OfferStatusAccepted {
		return false, nil
	}
	for _, sib := range f.offers {
		if sib.RequestID == o.RequestID && sib.ID != o.ID &&
			(sib.Status == models.OfferStatusAccepted || sib.Status == models.OfferStatusPaid) {
			return false, nil
		}
	}
	o.Status = models.OfferStatusAccepted
	return true, nil
}

func (f *fakeOfferRepo) CountByRequestIDs(_ context.Context, requestIDs []string) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := map[string]int{}
	wanted := map[string]bool{}
	for _, id := range requestIDs {
		wanted[id] = true
	}
	for _, o := range f.offers {
		if wanted[o.RequestID] {
			counts[o.RequestID]++
		}
	}
	return counts, nil
}

type fakeRequestStore struct {
	mu       sync.Mutex
	requests map[string]*models.Request
}

func newFakeRequestStore() *fakeRequestStore {
	return &fakeRequestStore{requests: map[string]*models.Request{}}
}

func (f *fakeRequestStore) add(r *models.Request) *models.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	f.requests[r.ID] = r
	return r
}

func (f *fakeRequestStore) FindByID(_ context.Context, requestID string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestStore) UpdateStatusIf(_ context.Context, requestID string, to models.RequestStatus, from ...models.RequestStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[requestID]
	if !ok {
		return false, nil
	}
	for _, s := range from {
		if r.Status == s {
			r.Status = to
			return true, nil
		}
	}
	return false, nil
}

type fakeDrivers struct {
	users map[string]*models.User
}

func (f *fakeDrivers) FindByID(_ context.Context, userID string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return u, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []*models.Notification
	fail bool
}

func (f *fakeNotifier) Notify(_ context.Context, userID string, typ models.NotificationType, title, message, link string) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("notification store down")
	}
	n := &models.Notification{ID: uuid.NewString(), UserID: userID, Type: typ, Title: title, Message: message, Link: link}
	f.sent = append(f.sent, n)
	return n, nil
}

func (f *fakeNotifier) ListMine(context.Context, string, int, int) ([]*models.Notification, int, error) {
	return nil, 0, nil
}
func (f *fakeNotifier) MarkRead(context.Context, string, string) error { return nil }
func (f *fakeNotifier) MarkAllRead(context.Context, string) error      { return nil }

func (f *fakeNotifier) byType(typ models.NotificationType) []*models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.sent {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

type publishedEvent struct {
	Channel string
	Event   string
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	fail   bool
}

func (f *fakePublisher) Publish(_ context.Context, channel, event string, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broker down")
	}
	f.events = append(f.events, publishedEvent{Channel: channel, Event: event})
	return nil
}

type fakeEmailer struct {
	mu   sync.Mutex
	sent []string // recipient addresses
}

func (f *fakeEmailer) SendEmail(_ context.Context, to, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, to)
	return nil
}

// --- Test harness ---

type lifecycleFixture struct {
	svc       *Service
	offers    *fakeOfferRepo
	requests  *fakeRequestStore
	notifier  *fakeNotifier
	publisher *fakePublisher
	emailer   *fakeEmailer
}

func newFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	templates, err := email.NewTemplateManager()
	require.NoError(t, err)

	f := &lifecycleFixture{
		offers:    newFakeOfferRepo(),
		requests:  newFakeRequestStore(),
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
		emailer:   &fakeEmailer{},
	}
	drivers := &fakeDrivers{users: map[string]*models.User{
		"driver-1": {ID: "driver-1", Name: "Dana", Email: "dana@example.com", Role: models.RoleDriver},
		"driver-2": {ID: "driver-2", Name: "Miles", Email: "miles@example.com", Role: models.RoleDriver},
	}}
	f.svc = NewService(f.offers, f.requests, drivers, f.notifier, f.publisher, f.emailer, templates,
		"http://localhost:5173", slog.New(slog.DiscardHandler))
	return f
}

func (f *lifecycleFixture) publishedRequest(owner string) *models.Request {
	return f.requests.add(&models.Request{
		UserID:    owner,
		UserEmail: owner + "@example.com",
		Route: models.Route{
			Origin:      models.Place{Address: "Central Station"},
			Destination: models.Place{Address: "Airport"},
		},
		Party:  models.Party{Adults: 2},
		Status: models.RequestStatusPublished,
	})
}

func (f *lifecycleFixture) submit(t *testing.T, driverID, requestID string, price float64) *models.Offer {
	t.Helper()
	offer, err := f.svc.Submit(context.Background(), driverID, requestID,
		models.SubmitOfferRequest{Price: price})
	require.NoError(t, err)
	return offer
}

// --- Tests ---

func TestSubmitNotifiesPassenger(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")

	offer := f.submit(t, "driver-1", req.ID, 500)

	assert.Equal(t, models.OfferStatusNew, offer.Status)
	require.Len(t, f.notifier.byType(models.NotificationNewOffer), 1)
	assert.Equal(t, "alice", f.notifier.sent[0].UserID)
	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, "request-"+req.ID, f.publisher.events[0].Channel)
	assert.Equal(t, "new-offer", f.publisher.events[0].Event)
}

func TestSubmitRejectedWhenRequestNotOpen(t *testing.T) {
	f := newFixture(t)
	req := f.requests.add(&models.Request{UserID: "alice", Status: models.RequestStatusCancelled})

	_, err := f.svc.Submit(context.Background(), "driver-1", req.ID, models.SubmitOfferRequest{Price: 500})
	assert.ErrorIs(t, err, models.ErrRequestNotOpen)
}

func TestAcceptRejectsSiblingsAndKeepsOneWinner(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")
	o1 := f.submit(t, "driver-1", req.ID, 500)
	o2 := f.submit(t, "driver-2", req.ID, 450)

	err := f.svc.Accept(context.Background(), "alice", "", req.ID, o2.ID)
	require.NoError(t, err)

	got2, _ := f.offers.FindByID(context.Background(), o2.ID)
	got1, _ := f.offers.FindByID(context.Background(), o1.ID)
	gotReq, _ := f.requests.FindByID(context.Background(), req.ID)

	assert.Equal(t, models.OfferStatusAccepted, got2.Status)
	assert.Equal(t, models.OfferStatusRejected, got1.Status)
	assert.Equal(t, models.RequestStatusAccepted, gotReq.Status)

	// At most one offer may hold accepted or paid.
	all, _ := f.offers.ListByRequest(context.Background(), req.ID)
	winners := 0
	for _, o := range all {
		if o.Status == models.OfferStatusAccepted || o.Status == models.OfferStatusPaid {
			winners++
		}
	}
	assert.Equal(t, 1, winners)

	// The winning driver heard about it exactly once, on their own channel.
	accepted := f.notifier.byType(models.NotificationOfferAccepted)
	require.Len(t, accepted, 1)
	assert.Equal(t, "driver-2", accepted[0].UserID)
	assert.Contains(t, f.publisher.events, publishedEvent{Channel: "driver-driver-2", Event: "offer-accepted"})
	assert.Equal(t, []string{"miles@example.com"}, f.emailer.sent)
}

func TestAcceptIsIdempotent(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")
	o1 := f.submit(t, "driver-1", req.ID, 500)
	o2 := f.submit(t, "driver-2", req.ID, 450)

	require.NoError(t, f.svc.Accept(context.Background(), "alice", "", req.ID, o2.ID))
	require.NoError(t, f.svc.Accept(context.Background(), "alice", "", req.ID, o2.ID))

	got2, _ := f.offers.FindByID(context.Background(), o2.ID)
	got1, _ := f.offers.FindByID(context.Background(), o1.ID)
	gotReq, _ := f.requests.FindByID(context.Background(), req.ID)
	assert.Equal(t, models.OfferStatusAccepted, got2.Status)
	assert.Equal(t, models.OfferStatusRejected, got1.Status)
	assert.Equal(t, models.RequestStatusAccepted, gotReq.Status)

	// No duplicate side effects on the re-run.
	assert.Len(t, f.notifier.byType(models.NotificationOfferAccepted), 1)
	assert.Len(t, f.emailer.sent, 1)
}

func TestAcceptConvergesAfterPartialFailure(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")
	o1 := f.submit(t, "driver-1", req.ID, 500)
	o2 := f.submit(t, "driver-2", req.ID, 450)

	// First run: the sibling's rejection write fails and is swallowed.
	f.offers.failUpdate[o1.ID] = true
	require.NoError(t, f.svc.Accept(context.Background(), "alice", "", req.ID, o2.ID))
	got1, _ := f.offers.FindByID(context.Background(), o1.ID)
	assert.Equal(t, models.OfferStatusNew, got1.Status)

	// Re-run after the store recovers: the straggler gets swept.
	f.offers.failUpdate[o1.ID] = false
	require.NoError(t, f.svc.Accept(context.Background(), "alice", "", req.ID, o2.ID))
	got1, _ = f.offers.FindByID(context.Background(), o1.ID)
	assert.Equal(t, models.OfferStatusRejected, got1.Status)
}

func TestAcceptSecondOfferLoses(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")
	o1 := f.submit(t, "driver-1", req.ID, 500)
	o2 := f.submit(t, "driver-2", req.ID, 450)

	require.NoError(t, f.svc.Accept(context.Background(), "alice", "", req.ID, o2.ID))
	err := f.svc.Accept(context.Background(), "alice", "", req.ID, o1.ID)
	assert.ErrorIs(t, err, models.ErrOfferAlreadyDecided)

	got1, _ := f.offers.FindByID(context.Background(), o1.ID)
	assert.Equal(t, models.OfferStatusRejected, got1.Status)
}

func TestAcceptRefusesNonOwner(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")
	o1 := f.submit(t, "driver-1", req.ID, 500)

	err := f.svc.Accept(context.Background(), "mallory", "mallory@example.com", req.ID, o1.ID)
	assert.ErrorIs(t, err, models.ErrAccessDenied)

	got, _ := f.offers.FindByID(context.Background(), o1.ID)
	assert.Equal(t, models.OfferStatusNew, got.Status)
}

func TestAcceptAllowsOwnerByEmailOnly(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")
	o1 := f.submit(t, "driver-1", req.ID, 500)

	// Legacy accounts may only match on email.
	err := f.svc.Accept(context.Background(), "other-id", "alice@example.com", req.ID, o1.ID)
	assert.NoError(t, err)
}

func TestAcceptOfferFromDifferentRequest(t *testing.T) {
	f := newFixture(t)
	reqA := f.publishedRequest("alice")
	reqB := f.publishedRequest("alice")
	offerOnB := f.submit(t, "driver-1", reqB.ID, 300)

	err := f.svc.Accept(context.Background(), "alice", "", reqA.ID, offerOnB.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAcceptSurvivesNotifierAndBrokerFailures(t *testing.T) {
	f := newFixture(t)
	f.notifier.fail = true
	f.publisher.fail = true
	req := f.publishedRequest("alice")
	o1 := f.submit(t, "driver-1", req.ID, 500)

	err := f.svc.Accept(context.Background(), "alice", "", req.ID, o1.ID)
	assert.NoError(t, err)

	got, _ := f.offers.FindByID(context.Background(), o1.ID)
	assert.Equal(t, models.OfferStatusAccepted, got.Status)
}

func TestListForRequestNewestFirst(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")
	o1 := f.submit(t, "driver-1", req.ID, 500)
	o2 := f.submit(t, "driver-2", req.ID, 450)

	out, err := f.svc.ListForRequest(context.Background(), "alice", "", req.ID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, o2.ID, out[0].ID)
	assert.Equal(t, o1.ID, out[1].ID)

	_, err = f.svc.ListForRequest(context.Background(), "mallory", "", req.ID)
	assert.ErrorIs(t, err, models.ErrAccessDenied)
}

func TestCountByRequestIDsFillsZeroes(t *testing.T) {
	f := newFixture(t)
	r1 := f.publishedRequest("alice")
	r2 := f.publishedRequest("alice")
	for i := 0; i < 3; i++ {
		f.submit(t, "driver-1", r1.ID, float64(100+i))
	}

	counts, err := f.svc.CountByRequestIDs(context.Background(),
		[]string{r1.ID, r2.ID, "does-not-exist"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{
		r1.ID:            3,
		r2.ID:            0,
		"does-not-exist": 0,
	}, counts)
}

func TestSubmitValidatesPrice(t *testing.T) {
	f := newFixture(t)
	req := f.publishedRequest("alice")

	for _, price := range []float64{0, -10} {
		_, err := f.svc.Submit(context.Background(), "driver-1", req.ID,
			models.SubmitOfferRequest{Price: price})
		assert.ErrorIs(t, err, models.ErrValidation, fmt.Sprintf("price %v", price))
	}
}
