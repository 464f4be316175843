package requests

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ride-marketplace/internal/models"
	"ride-marketplace/internal/modules/notifications"
	"ride-marketplace/internal/observability"
	"ride-marketplace/pkg/email"
	"ride-marketplace/pkg/payments"
	"ride-marketplace/pkg/realtime"
)

// OfferStore is the slice of offer storage the request lifecycle needs.
// Implemented by the offers module's repository.
type OfferStore interface {
	FindAcceptedByRequest(ctx context.Context, requestID string) (*models.Offer, error)
	UpdateStatusIf(ctx context.Context, offerID string, to models.OfferStatus, from ...models.OfferStatus) (bool, error)
	CountByRequestIDs(ctx context.Context, requestIDs []string) (map[string]int, error)
}

// DriverDirectory resolves driver accounts for payment side effects.
type DriverDirectory interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// ServiceInterface defines the contract for the request service.
type ServiceInterface interface {
	Create(ctx context.Context, userID, userEmail string, req models.CreateRequestRequest) (*models.Request, error)
	Get(ctx context.Context, userID, userEmail, requestID string) (*models.Request, error)
	ListMine(ctx context.Context, userID, userEmail string, page, limit int) ([]*models.Request, int, error)
	UpdateStatus(ctx context.Context, userID, userEmail, requestID, rawStatus string) error
	Cancel(ctx context.Context, userID, userEmail, requestID string) error
	Pay(ctx context.Context, userID, userEmail, requestID string, req models.PaymentRequest) error
}

// Service implements the request side of the request/offer lifecycle.
type Service struct {
	repo         RepositoryInterface
	offers       OfferStore
	drivers      DriverDirectory
	notifier     notifications.ServiceInterface
	events       realtime.Publisher
	emailer      email.ServiceInterface
	templates    *email.TemplateManager
	payments     payments.Client
	clientOrigin string
	logger       *slog.Logger
}

// NewService creates a new request service.
func NewService(
	repo RepositoryInterface,
	offers OfferStore,
	drivers DriverDirectory,
	notifier notifications.ServiceInterface,
	events realtime.Publisher,
	emailer email.ServiceInterface,
	templates *email.TemplateManager,
	paymentClient payments.Client,
	clientOrigin string,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		offers:       offers,
		drivers:      drivers,
		notifier:     notifier,
		events:       events,
		emailer:      emailer,
		templates:    templates,
		payments:     paymentClient,
		clientOrigin: clientOrigin,
		logger:       logger,
	}
}

// Create validates and publishes a new transport request. Nothing is
// persisted when validation fails.
func (s *Service) Create(ctx context.Context, userID, userEmail string, req models.CreateRequestRequest) (*models.Request, error) {
	if req.Route.Origin.Address == "" || req.Route.Destination.Address == "" {
		return nil, fmt.Errorf("%w: origin and destination addresses are required", models.ErrValidation)
	}
	if req.Party.Adults < 1 {
		return nil, fmt.Errorf("%w: at least one adult is required", models.ErrValidation)
	}
	if req.Party.Children < 0 {
		return nil, fmt.Errorf("%w: child count cannot be negative", models.ErrValidation)
	}
	if req.Party.ChildSeats && len(req.Party.ChildrenAges) != req.Party.Children {
		return nil, fmt.Errorf("%w: one age per child is required when child seats are requested", models.ErrValidation)
	}

	request, err := s.repo.Create(ctx, &models.Request{
		UserID:    userID,
		UserEmail: userEmail,
		Route:     req.Route,
		Date:      req.Date,
		Time:      req.Time,
		Party:     req.Party,
		Options:   req.Options,
		Status:    models.RequestStatusPublished,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Create: %w", err)
	}

	observability.RequestsCreated.Inc()
	return request, nil
}

// Get retrieves a single request, refusing callers who do not own it.
func (s *Service) Get(ctx context.Context, userID, userEmail, requestID string) (*models.Request, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("service.Get: %w", err)
	}
	if !request.IsOwnedBy(userID, userEmail) {
		return nil, models.ErrAccessDenied
	}
	return request, nil
}

// ListMine retrieves the caller's requests with their offer counts for the
// list view.
func (s *Service) ListMine(ctx context.Context, userID, userEmail string, page, limit int) ([]*models.Request, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	out, total, err := s.repo.ListByOwner(ctx, userID, userEmail, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("service.ListMine: %w", err)
	}

	ids := make([]string, len(out))
	for i, r := range out {
		ids[i] = r.ID
	}
	counts, err := s.offers.CountByRequestIDs(ctx, ids)
	if err != nil {
		// The list is still useful without counts.
		s.logger.Warn("offer counts unavailable", "err", err)
	} else {
		for _, r := range out {
			r.OfferCount = counts[r.ID]
		}
	}

	return out, total, nil
}

// UpdateStatus applies a manual status change after checking it against the
// request state machine.
func (s *Service) UpdateStatus(ctx context.Context, userID, userEmail, requestID, rawStatus string) error {
	newStatus, err := models.ParseRequestStatus(rawStatus)
	if err != nil {
		return err
	}

	request, err := s.Get(ctx, userID, userEmail, requestID)
	if err != nil {
		return err
	}

	return s.transition(ctx, request, newStatus)
}

// Cancel cancels a request; legality is enforced by the state machine
// (terminal requests cannot be cancelled).
func (s *Service) Cancel(ctx context.Context, userID, userEmail, requestID string) error {
	return s.UpdateStatus(ctx, userID, userEmail, requestID, string(models.RequestStatusCancelled))
}

// Pay charges the passenger for the accepted offer and marks the request
// paid. The charge happens before the status write: a failed payment leaves
// the lifecycle untouched.
func (s *Service) Pay(ctx context.Context, userID, userEmail, requestID string, req models.PaymentRequest) error {
	request, err := s.Get(ctx, userID, userEmail, requestID)
	if err != nil {
		return err
	}
	if request.Status != models.RequestStatusAccepted {
		return models.ErrIllegalTransition
	}

	winner, err := s.offers.FindAcceptedByRequest(ctx, requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: request has no accepted offer", models.ErrIllegalTransition)
		}
		return fmt.Errorf("service.Pay: %w", err)
	}

	if _, err := s.payments.Charge(ctx, winner.Price, req.PaymentMethodID); err != nil {
		return fmt.Errorf("service.Pay: %w", err)
	}

	return s.transition(ctx, request, models.RequestStatusPaid)
}

// transition performs the legality-checked status write plus the side
// effects a `paid` transition carries.
func (s *Service) transition(ctx context.Context, request *models.Request, to models.RequestStatus) error {
	if request.Status == to {
		return nil
	}
	if !request.Status.CanTransitionTo(to) {
		return models.ErrIllegalTransition
	}

	written, err := s.repo.UpdateStatusIf(ctx, request.ID, to, request.Status)
	if err != nil {
		return fmt.Errorf("service.transition: %w", err)
	}
	if !written {
		// Lost a race with a concurrent status change.
		return models.ErrIllegalTransition
	}

	if to == models.RequestStatusPaid {
		s.settlePayment(ctx, request)
	}
	return nil
}

// settlePayment moves the winning offer to paid and tells the driver.
// Everything here is a side effect of the already-committed request write:
// failures are logged, never surfaced.
func (s *Service) settlePayment(ctx context.Context, request *models.Request) {
	winner, err := s.offers.FindAcceptedByRequest(ctx, request.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			s.logger.Info("request marked paid without an accepted offer; skipping payout side effects",
				"request_id", request.ID)
		} else {
			s.logger.Error("accepted offer lookup failed", "request_id", request.ID, "err", err)
		}
		return
	}

	if _, err := s.offers.UpdateStatusIf(ctx, winner.ID, models.OfferStatusPaid, models.OfferStatusAccepted); err != nil {
		s.logger.Error("winning offer payment write failed", "offer_id", winner.ID, "err", err)
		return
	}
	observability.PaymentsConfirmed.Inc()

	message := fmt.Sprintf("The passenger paid $%.2f. The trip is confirmed.", winner.Price)

	if _, err := s.notifier.Notify(ctx, winner.DriverID, models.NotificationPaymentConfirmed,
		"Payment received", message, "/requests/"+request.ID,
	); err != nil {
		s.sideEffectFailed("notification", err)
	}

	if err := s.events.Publish(ctx, realtime.DriverChannel(winner.DriverID), realtime.EventOfferPaid, map[string]any{
		"offer_id":   winner.ID,
		"request_id": request.ID,
		"message":    message,
	}); err != nil {
		s.sideEffectFailed("realtime", err)
	}

	driver, err := s.drivers.FindByID(ctx, winner.DriverID)
	if err != nil || driver.Email == "" {
		return
	}
	html, err := s.templates.GeneratePaymentConfirmedEmailHTML(email.TemplateData{
		Name:  driver.Name,
		Route: request.Route.Origin.Address + " - " + request.Route.Destination.Address,
		Price: winner.Price,
		Link:  s.clientOrigin + "/requests/" + request.ID,
	})
	if err != nil {
		s.sideEffectFailed("email", err)
		return
	}
	if err := s.emailer.SendEmail(ctx, driver.Email, "Payment received", message, html); err != nil {
		s.sideEffectFailed("email", err)
	}
}

func (s *Service) sideEffectFailed(kind string, err error) {
	observability.SideEffectFailures.WithLabelValues(kind).Inc()
	s.logger.Warn("side effect failed", "kind", kind, "err", err)
}
