package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ride-marketplace/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryInterface defines methods for interacting with user storage.
type RepositoryInterface interface {
	FindByID(ctx context.Context, userID string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error)
	CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)

	CreateVehicle(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error)
	ListVehiclesByDriver(ctx context.Context, driverID string) ([]*models.Vehicle, error)
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const userColumns = `id, name, email, COALESCE(password_hash, ''), COALESCE(phone, ''), role, COALESCE(avatar_url, ''), auth_provider, COALESCE(auth_provider_id, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Role,
		&u.AvatarURL, &u.AuthProvider, &u.AuthProviderID, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

func (r *Repository) FindByID(ctx context.Context, userID string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByID: %w", err)
	}
	return user, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.FindByEmail: %w", err)
	}
	return user, nil
}

func (r *Repository) Create(ctx context.Context, user *models.User, passwordHash string) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, phone, role, auth_provider)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, 'local')
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query, user.Name, user.Email, passwordHash, user.Phone, user.Role))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateUser: %w", err)
	}
	return created, nil
}

func (r *Repository) CreateOAuthUser(ctx context.Context, user *models.User) (*models.User, error) {
	query := `
		INSERT INTO users (name, email, role, avatar_url, auth_provider, auth_provider_id)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)
		RETURNING ` + userColumns

	created, err := scanUser(r.db.QueryRow(ctx, query,
		user.Name, user.Email, user.Role, user.AvatarURL, user.AuthProvider, user.AuthProviderID))
	if err != nil {
		return nil, fmt.Errorf("repository.CreateOAuthUser: %w", err)
	}
	return created, nil
}

func (r *Repository) Update(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	var setClauses []string
	var args []interface{}
	argIdx := 1

	if data.Name != nil {
		setClauses = append(setClauses, fmt.Sprintf("name = $%d", argIdx))
		args = append(args, *data.Name)
		argIdx++
	}
	if data.Phone != nil {
		setClauses = append(setClauses, fmt.Sprintf("phone = $%d", argIdx))
		args = append(args, *data.Phone)
		argIdx++
	}
	if data.AvatarURL != nil {
		setClauses = append(setClauses, fmt.Sprintf("avatar_url = $%d", argIdx))
		args = append(args, *data.AvatarURL)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.FindByID(ctx, userID)
	}

	setClauses = append(setClauses, fmt.Sprintf("updated_at = $%d", argIdx))
	args = append(args, time.Now())
	argIdx++

	args = append(args, userID)

	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(setClauses, ", "), argIdx)

	updated, err := scanUser(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("repository.Update: %w", err)
	}
	return updated, nil
}

func (r *Repository) CreateVehicle(ctx context.Context, v *models.Vehicle) (*models.Vehicle, error) {
	query := `
		INSERT INTO vehicles (driver_id, make, model, seats, plate_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, driver_id, make, model, seats, plate_number, created_at, updated_at`

	var created models.Vehicle
	err := r.db.QueryRow(ctx, query, v.DriverID, v.Make, v.Model, v.Seats, v.PlateNumber).Scan(
		&created.ID, &created.DriverID, &created.Make, &created.Model,
		&created.Seats, &created.PlateNumber, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("repository.CreateVehicle: %w", err)
	}
	return &created, nil
}

func (r *Repository) ListVehiclesByDriver(ctx context.Context, driverID string) ([]*models.Vehicle, error) {
	query := `
		SELECT id, driver_id, make, model, seats, plate_number, created_at, updated_at
		FROM vehicles
		WHERE driver_id = $1
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, driverID)
	if err != nil {
		return nil, fmt.Errorf("repository.ListVehiclesByDriver: %w", err)
	}
	defer rows.Close()

	var out []*models.Vehicle
	for rows.Next() {
		var v models.Vehicle
		err := rows.Scan(&v.ID, &v.DriverID, &v.Make, &v.Model, &v.Seats, &v.PlateNumber, &v.CreatedAt, &v.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository.ListVehiclesByDriver.Scan: %w", err)
		}
		out = append(out, &v)
	}
	return out, nil
}
