package offers

import (
	"context"
	"errors"
	"fmt"

	"ride-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for offer storage.
type RepositoryInterface interface {
	Create(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	FindByID(ctx context.Context, offerID string) (*models.Offer, error)
	ListByRequest(ctx context.Context, requestID string) ([]*models.Offer, error)
	FindAcceptedByRequest(ctx context.Context, requestID string) (*models.Offer, error)
	UpdateStatusIf(ctx context.Context, offerID string, to models.OfferStatus, from ...models.OfferStatus) (bool, error)
	AcceptIfUnclaimed(ctx context.Context, offerID string) (bool, error)
	CountByRequestIDs(ctx context.Context, requestIDs []string) (map[string]int, error)
}

// Repository implements RepositoryInterface on Postgres.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new offer repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Create inserts a new offer in status `new`.
func (r *Repository) Create(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	query := `
		INSERT INTO offers (request_id, driver_id, vehicle_id, price, message, status)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, 'new')
		RETURNING id, request_id, driver_id, COALESCE(vehicle_id::text, ''), price, message, status, created_at, updated_at`

	row := r.db.QueryRow(ctx, query, offer.RequestID, offer.DriverID, offer.VehicleID, offer.Price, offer.Message)
	created, err := scanOffer(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOffer: %w", err)
	}
	return created, nil
}

func scanOffer(row pgx.Row) (*models.Offer, error) {
	var o models.Offer
	err := row.Scan(
		&o.ID,
		&o.RequestID,
		&o.DriverID,
		&o.VehicleID,
		&o.Price,
		&o.Message,
		&o.Status,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan offer: %w", err)
	}
	return &o, nil
}

// FindByID retrieves a single offer by its ID.
func (r *Repository) FindByID(ctx context.Context, offerID string) (*models.Offer, error) {
	query := `
		SELECT id, request_id, driver_id, COALESCE(vehicle_id::text, ''), price, message, status, created_at, updated_at
		FROM offers
		WHERE id = $1`

	offer, err := scanOffer(r.db.QueryRow(ctx, query, offerID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return offer, nil
}

// ListByRequest retrieves all offers for a request, newest first. Driver and
// vehicle display fields are resolved with left joins so a missing secondary
// record empties the fields instead of dropping the offer.
func (r *Repository) ListByRequest(ctx context.Context, requestID string) ([]*models.Offer, error) {
	query := `
		SELECT o.id, o.request_id, o.driver_id, COALESCE(o.vehicle_id::text, ''),
		       o.price, o.message, o.status, o.created_at, o.updated_at,
		       COALESCE(u.name, ''), COALESCE(u.email, ''), COALESCE(u.phone, ''),
		       COALESCE(v.make || ' ' || v.model, '')
		FROM offers o
		LEFT JOIN users u ON u.id = o.driver_id
		LEFT JOIN vehicles v ON v.id = o.vehicle_id
		WHERE o.request_id = $1
		ORDER BY o.created_at DESC, o.id DESC`

	rows, err := r.db.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListByRequest.Query: %w", err)
	}
	defer rows.Close()

	var out []*models.Offer
	for rows.Next() {
		var o models.Offer
		err := rows.Scan(
			&o.ID, &o.RequestID, &o.DriverID, &o.VehicleID,
			&o.Price, &o.Message, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&o.DriverName, &o.DriverEmail, &o.DriverPhone,
			&o.Vehicle,
		)
		if err != nil {
			return nil, fmt.Errorf("repository.ListByRequest.Scan: %w", err)
		}
		out = append(out, &o)
	}
	return out, nil
}

// FindAcceptedByRequest returns the request's currently-accepted offer,
// or ErrNotFound when no offer has won yet.
func (r *Repository) FindAcceptedByRequest(ctx context.Context, requestID string) (*models.Offer, error) {
	query := `
		SELECT id, request_id, driver_id, COALESCE(vehicle_id::text, ''), price, message, status, created_at, updated_at
		FROM offers
		WHERE request_id = $1 AND status = 'accepted'
		ORDER BY updated_at
		LIMIT 1`

	offer, err := scanOffer(r.db.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindAcceptedByRequest: %w", err)
	}
	return offer, nil
}

// UpdateStatusIf moves an offer to the given status only when its current
// status is one of `from`. It reports whether a row was written, which lets
// the service layer detect lost races without a separate read.
func (r *Repository) UpdateStatusIf(ctx context.Context, offerID string, to models.OfferStatus, from ...models.OfferStatus) (bool, error) {
	fromValues := make([]string, len(from))
	for i, s := range from {
		fromValues[i] = string(s)
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE offers SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`,
		to, offerID, fromValues)
	if err != nil {
		return false, fmt.Errorf("repository.UpdateStatusIf: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// AcceptIfUnclaimed promotes an offer to accepted only while no sibling on
// the same request already holds accepted or paid. The single guarded
// statement is what keeps two racing accepts from both winning.
func (r *Repository) AcceptIfUnclaimed(ctx context.Context, offerID string) (bool, error) {
	cmdTag, err := r.db.Exec(ctx, `
		UPDATE offers o SET status = 'accepted', updated_at = NOW()
		WHERE o.id = $1
		  AND o.status IN ('new', 'accepted')
		  AND NOT EXISTS (
			SELECT 1 FROM offers s
			WHERE s.request_id = o.request_id AND s.id <> o.id AND s.status IN ('accepted', 'paid')
		  )`, offerID)
	if err != nil {
		return false, fmt.Errorf("repository.AcceptIfUnclaimed: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}

// CountByRequestIDs buckets offers by request reference in a single scan.
// Requests with no offers are absent from the result; the service fills
// in the zeroes.
func (r *Repository) CountByRequestIDs(ctx context.Context, requestIDs []string) (map[string]int, error) {
	counts := make(map[string]int)
	if len(requestIDs) == 0 {
		return counts, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT request_id, COUNT(*) FROM offers WHERE request_id = ANY($1) GROUP BY request_id`,
		requestIDs)
	if err != nil {
		return nil, fmt.Errorf("repository.CountByRequestIDs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("repository.CountByRequestIDs.Scan: %w", err)
		}
		counts[id] = n
	}
	return counts, nil
}
