package offers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ride-marketplace/internal/models"
	"ride-marketplace/internal/modules/notifications"
	"ride-marketplace/internal/observability"
	"ride-marketplace/pkg/email"
	"ride-marketplace/pkg/realtime"
)

// RequestStore is the slice of request storage the offer lifecycle needs.
// Implemented by the requests module's repository.
type RequestStore interface {
	FindByID(ctx context.Context, requestID string) (*models.Request, error)
	UpdateStatusIf(ctx context.Context, requestID string, to models.RequestStatus, from ...models.RequestStatus) (bool, error)
}

// DriverDirectory resolves driver accounts for notification side effects.
type DriverDirectory interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
}

// ServiceInterface defines the contract for the offer service.
type ServiceInterface interface {
	Submit(ctx context.Context, driverID, requestID string, req models.SubmitOfferRequest) (*models.Offer, error)
	ListForRequest(ctx context.Context, userID, userEmail, requestID string) ([]*models.Offer, error)
	Accept(ctx context.Context, userID, userEmail, requestID, offerID string) error
	CountByRequestIDs(ctx context.Context, requestIDs []string) (map[string]int, error)
}

// Service implements the offer side of the request/offer lifecycle.
type Service struct {
	repo         RepositoryInterface
	requests     RequestStore
	drivers      DriverDirectory
	notifier     notifications.ServiceInterface
	events       realtime.Publisher
	emailer      email.ServiceInterface
	templates    *email.TemplateManager
	clientOrigin string
	logger       *slog.Logger
}

// NewService creates a new offer service.
func NewService(
	repo RepositoryInterface,
	requests RequestStore,
	drivers DriverDirectory,
	notifier notifications.ServiceInterface,
	events realtime.Publisher,
	emailer email.ServiceInterface,
	templates *email.TemplateManager,
	clientOrigin string,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:         repo,
		requests:     requests,
		drivers:      drivers,
		notifier:     notifier,
		events:       events,
		emailer:      emailer,
		templates:    templates,
		clientOrigin: clientOrigin,
		logger:       logger,
	}
}

// Submit records a driver's priced offer against a published request and
// notifies the passenger.
func (s *Service) Submit(ctx context.Context, driverID, requestID string, req models.SubmitOfferRequest) (*models.Offer, error) {
	if req.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", models.ErrValidation)
	}

	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("service.Submit: %w", err)
	}
	if request.Status != models.RequestStatusPublished {
		return nil, models.ErrRequestNotOpen
	}

	offer, err := s.repo.Create(ctx, &models.Offer{
		RequestID: requestID,
		DriverID:  driverID,
		VehicleID: req.VehicleID,
		Price:     req.Price,
		Message:   req.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("service.Submit: %w", err)
	}
	observability.OffersSubmitted.Inc()

	// Side effects are best-effort from here on.
	driverName := ""
	if driver, err := s.drivers.FindByID(ctx, driverID); err == nil {
		driverName = driver.Name
	}

	if _, err := s.notifier.Notify(ctx, request.UserID, models.NotificationNewOffer,
		"New offer received",
		fmt.Sprintf("A driver offered $%.2f for your trip.", offer.Price),
		"/requests/"+requestID,
	); err != nil {
		s.sideEffectFailed("notification", err)
	}

	if err := s.events.Publish(ctx, realtime.RequestChannel(requestID), realtime.EventNewOffer, map[string]any{
		"offer_id":    offer.ID,
		"request_id":  requestID,
		"driver_id":   driverID,
		"driver_name": driverName,
		"price":       offer.Price,
		"message":     offer.Message,
	}); err != nil {
		s.sideEffectFailed("realtime", err)
	}

	return offer, nil
}

// ListForRequest returns a request's offers, newest first, with driver and
// vehicle display fields resolved best-effort. Only the request owner may
// list its offers.
func (s *Service) ListForRequest(ctx context.Context, userID, userEmail, requestID string) ([]*models.Offer, error) {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("service.ListForRequest: %w", err)
	}
	if !request.IsOwnedBy(userID, userEmail) {
		return nil, models.ErrAccessDenied
	}

	offers, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("service.ListForRequest: %w", err)
	}
	return offers, nil
}

// Accept marks one offer as the request's winner and rejects its siblings.
//
// The write order matters: the target offer is accepted before the request,
// and both before the sibling sweep, so an interruption can never leave the
// request accepted while the winning offer is still `new`. Each step uses a
// conditional write, which makes the whole sequence safe to re-run after a
// partial failure and closes the window where two racing accepts could both
// win.
func (s *Service) Accept(ctx context.Context, userID, userEmail, requestID, offerID string) error {
	request, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return fmt.Errorf("service.Accept: %w", err)
	}
	if !request.IsOwnedBy(userID, userEmail) {
		return models.ErrAccessDenied
	}

	offer, err := s.repo.FindByID(ctx, offerID)
	if err != nil {
		return fmt.Errorf("service.Accept: %w", err)
	}
	if offer.RequestID != requestID {
		return models.ErrNotFound
	}

	switch offer.Status {
	case models.OfferStatusRejected:
		return models.ErrOfferAlreadyDecided
	case models.OfferStatusPaid:
		// Already settled; nothing to redo.
		return nil
	}

	// If the request already has a winner it must be this offer, otherwise
	// accepting would break the one-winner-per-request invariant.
	if winner, err := s.repo.FindAcceptedByRequest(ctx, requestID); err == nil {
		if winner.ID != offerID {
			return models.ErrOfferAlreadyDecided
		}
	} else if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("service.Accept: %w", err)
	}

	switch request.Status {
	case models.RequestStatusPublished, models.RequestStatusAccepted:
		// Open, or re-running after a partial failure.
	default:
		return models.ErrRequestNotOpen
	}

	// Re-notification is skipped when the offer had already been accepted
	// in an earlier (possibly interrupted) run.
	firstAcceptance := offer.Status == models.OfferStatusNew

	// Step 1: the target offer wins, unless a sibling beat it to it.
	written, err := s.repo.AcceptIfUnclaimed(ctx, offerID)
	if err != nil {
		return fmt.Errorf("service.Accept: offer update: %w", err)
	}
	if !written {
		return models.ErrOfferAlreadyDecided
	}

	// Step 2: the request follows.
	written, err = s.requests.UpdateStatusIf(ctx, requestID, models.RequestStatusAccepted,
		models.RequestStatusPublished, models.RequestStatusAccepted)
	if err != nil {
		return fmt.Errorf("service.Accept: request update: %w", err)
	}
	if !written {
		return models.ErrRequestNotOpen
	}

	// Step 3: sweep the siblings. Best effort per offer; one failed update
	// must not strand the rest, and a re-run will catch stragglers.
	siblings, err := s.repo.ListByRequest(ctx, requestID)
	if err != nil {
		s.logger.Error("sibling sweep listing failed", "request_id", requestID, "err", err)
	} else {
		for _, sib := range siblings {
			if sib.ID == offerID || sib.Status != models.OfferStatusNew {
				continue
			}
			if _, err := s.repo.UpdateStatusIf(ctx, sib.ID, models.OfferStatusRejected, models.OfferStatusNew); err != nil {
				s.logger.Error("sibling rejection failed", "offer_id", sib.ID, "err", err)
			}
		}
	}

	observability.OffersAccepted.Inc()

	// Step 4: tell the driver. Never fatal.
	if firstAcceptance {
		s.notifyAccepted(ctx, request, offer)
	}

	return nil
}

// notifyAccepted delivers the acceptance side effects to the winning driver:
// an in-app notification, a realtime event, and an email.
func (s *Service) notifyAccepted(ctx context.Context, request *models.Request, offer *models.Offer) {
	message := fmt.Sprintf("Your offer of $%.2f was accepted.", offer.Price)

	if _, err := s.notifier.Notify(ctx, offer.DriverID, models.NotificationOfferAccepted,
		"Offer accepted", message, "/requests/"+request.ID,
	); err != nil {
		s.sideEffectFailed("notification", err)
	}

	if err := s.events.Publish(ctx, realtime.DriverChannel(offer.DriverID), realtime.EventOfferAccepted, map[string]any{
		"offer_id":   offer.ID,
		"request_id": request.ID,
		"message":    message,
	}); err != nil {
		s.sideEffectFailed("realtime", err)
	}

	driver, err := s.drivers.FindByID(ctx, offer.DriverID)
	if err != nil || driver.Email == "" {
		return
	}
	html, err := s.templates.GenerateOfferAcceptedEmailHTML(email.TemplateData{
		Name:  driver.Name,
		Route: request.Route.Origin.Address + " - " + request.Route.Destination.Address,
		Price: offer.Price,
		Link:  s.clientOrigin + "/requests/" + request.ID,
	})
	if err != nil {
		s.sideEffectFailed("email", err)
		return
	}
	if err := s.emailer.SendEmail(ctx, driver.Email, "Your offer was accepted", message, html); err != nil {
		s.sideEffectFailed("email", err)
	}
}

// CountByRequestIDs returns the number of offers per request id, with a
// zero for every requested id that has none (including unknown ids).
func (s *Service) CountByRequestIDs(ctx context.Context, requestIDs []string) (map[string]int, error) {
	counts, err := s.repo.CountByRequestIDs(ctx, requestIDs)
	if err != nil {
		return nil, fmt.Errorf("service.CountByRequestIDs: %w", err)
	}
	for _, id := range requestIDs {
		if _, ok := counts[id]; !ok {
			counts[id] = 0
		}
	}
	return counts, nil
}

func (s *Service) sideEffectFailed(kind string, err error) {
	observability.SideEffectFailures.WithLabelValues(kind).Inc()
	s.logger.Warn("side effect failed", "kind", kind, "err", err)
}
