package requests

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ride-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines the contract for request storage.
type RepositoryInterface interface {
	Create(ctx context.Context, request *models.Request) (*models.Request, error)
	FindByID(ctx context.Context, requestID string) (*models.Request, error)
	ListByOwner(ctx context.Context, userID, userEmail string, page, limit int) ([]*models.Request, int, error)
	UpdateStatusIf(ctx context.Context, requestID string, to models.RequestStatus, from ...models.RequestStatus) (bool, error)
}

// Repository implements RepositoryInterface on Postgres.
//
// Route, party and options live in JSONB columns; marshalling in and out of
// those columns happens only here, so the rest of the code sees typed models.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new request repository.
func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

// Create inserts a new request. The status is whatever the service set,
// normally `published`.
func (r *Repository) Create(ctx context.Context, request *models.Request) (*models.Request, error) {
	routeJSON, err := json.Marshal(request.Route)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateRequest: marshal route: %w", err)
	}
	partyJSON, err := json.Marshal(request.Party)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateRequest: marshal party: %w", err)
	}
	optionsJSON, err := json.Marshal(request.Options)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateRequest: marshal options: %w", err)
	}

	query := `
		INSERT INTO requests (user_id, user_email, route, date, time, party, options, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, user_email, route, date, time, party, options, status, created_at, updated_at`

	row := r.db.QueryRow(ctx, query,
		request.UserID, request.UserEmail, routeJSON, request.Date, request.Time,
		partyJSON, optionsJSON, request.Status)

	created, err := scanRequest(row)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateRequest: %w", err)
	}
	return created, nil
}

// scanRequest is the single translation boundary between the store's raw
// row shape and the typed Request model.
func scanRequest(row pgx.Row) (*models.Request, error) {
	var (
		req         models.Request
		routeJSON   []byte
		partyJSON   []byte
		optionsJSON []byte
	)
	err := row.Scan(
		&req.ID,
		&req.UserID,
		&req.UserEmail,
		&routeJSON,
		&req.Date,
		&req.Time,
		&partyJSON,
		&optionsJSON,
		&req.Status,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}

	if err := json.Unmarshal(routeJSON, &req.Route); err != nil {
		return nil, fmt.Errorf("failed to decode route: %w", err)
	}
	if err := json.Unmarshal(partyJSON, &req.Party); err != nil {
		return nil, fmt.Errorf("failed to decode party: %w", err)
	}
	if err := json.Unmarshal(optionsJSON, &req.Options); err != nil {
		return nil, fmt.Errorf("failed to decode options: %w", err)
	}
	return &req, nil
}

// FindByID retrieves a single request by its ID.
func (r *Repository) FindByID(ctx context.Context, requestID string) (*models.Request, error) {
	query := `
		SELECT id, user_id, user_email, route, date, time, party, options, status, created_at, updated_at
		FROM requests
		WHERE id = $1`

	request, err := scanRequest(r.db.QueryRow(ctx, query, requestID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return request, nil
}

// ListByOwner retrieves a user's requests with pagination. The email is a
// secondary lookup key kept for accounts that predate stable user ids.
func (r *Repository) ListByOwner(ctx context.Context, userID, userEmail string, page, limit int) ([]*models.Request, int, error) {
	offset := (page - 1) * limit
	query := `
		SELECT id, user_id, user_email, route, date, time, party, options, status, created_at, updated_at
		FROM requests
		WHERE user_id = $1 OR user_email = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	rows, err := r.db.Query(ctx, query, userID, userEmail, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByOwner.Query: %w", err)
	}
	defer rows.Close()

	var out []*models.Request
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repository.ListByOwner.Scan: %w", err)
		}
		out = append(out, request)
	}

	var total int
	err = r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM requests WHERE user_id = $1 OR user_email = $2", userID, userEmail).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("repository.ListByOwner.Count: %w", err)
	}

	return out, total, nil
}

// UpdateStatusIf moves a request to the given status only when its current
// status is one of `from`, reporting whether a row was written.
func (r *Repository) UpdateStatusIf(ctx context.Context, requestID string, to models.RequestStatus, from ...models.RequestStatus) (bool, error) {
	fromValues := make([]string, len(from))
	for i, s := range from {
		fromValues[i] = string(s)
	}

	cmdTag, err := r.db.Exec(ctx,
		`UPDATE requests SET status = $1, updated_at = NOW() WHERE id = $2 AND status = ANY($3)`,
		to, requestID, fromValues)
	if err != nil {
		return false, fmt.Errorf("repository.UpdateStatusIf: %w", err)
	}
	return cmdTag.RowsAffected() > 0, nil
}
