package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ride-marketplace/internal/models"
	"ride-marketplace/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
)

// ServiceInterface defines methods for user business logic.
type ServiceInterface interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	HandleGoogleLogin() (authURL, state string, err error)
	HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error)

	GetUserProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error)

	AddVehicle(ctx context.Context, driverID string, req models.AddVehicleRequest) (*models.Vehicle, error)
	ListMyVehicles(ctx context.Context, driverID string) ([]*models.Vehicle, error)
}

type Service struct {
	userRepo          RepositoryInterface
	jwtSecret         string
	googleOAuthConfig *oauth2.Config
}

// NewService creates a new user service.
func NewService(userRepo RepositoryInterface, jwtSecret string, googleOAuthConfig *oauth2.Config) ServiceInterface {
	return &Service{
		userRepo:          userRepo,
		jwtSecret:         jwtSecret,
		googleOAuthConfig: googleOAuthConfig,
	}
}

// googleUserInfo is the shape of Google's userinfo response.
type googleUserInfo struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.AuthResponse, error) {
	// 1. Check if a user with that email already exists.
	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("service.Signup.FindByEmail: %w", err)
	}
	if err == nil {
		return nil, models.ErrConflict
	}

	// 2. Hash the password.
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("service.Signup.HashPassword: %w", err)
	}

	// 3. Create the user.
	created, err := s.userRepo.Create(ctx, &models.User{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		Role:  req.Role,
	}, string(hashedPassword))
	if err != nil {
		return nil, fmt.Errorf("service.Signup.CreateUser: %w", err)
	}

	return s.generateAuthResponse(created)
}

func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("service.Login.FindByEmail: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return s.generateAuthResponse(user)
}

// HandleGoogleLogin builds the Google consent URL plus a random state
// parameter the handler stores in a cookie.
func (s *Service) HandleGoogleLogin() (string, string, error) {
	state, err := utils.GenerateSecureToken(24)
	if err != nil {
		return "", "", fmt.Errorf("service.HandleGoogleLogin: %w", err)
	}
	return s.googleOAuthConfig.AuthCodeURL(state), state, nil
}

// HandleGoogleCallback exchanges the auth code, fetches the Google profile,
// and creates a passenger account on first login.
func (s *Service) HandleGoogleCallback(ctx context.Context, code string) (*models.AuthResponse, error) {
	token, err := s.googleOAuthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Exchange: %w", err)
	}

	resp, err := s.googleOAuthConfig.Client(ctx, token).Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.UserInfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("service.HandleGoogleCallback: userinfo returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.ReadBody: %w", err)
	}
	var info googleUserInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.Unmarshal: %w", err)
	}

	user, err := s.userRepo.FindByEmail(ctx, info.Email)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.userRepo.CreateOAuthUser(ctx, &models.User{
			Name:           info.Name,
			Email:          info.Email,
			Role:           models.RolePassenger,
			AvatarURL:      info.Picture,
			AuthProvider:   "google",
			AuthProviderID: info.ID,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("service.HandleGoogleCallback.User: %w", err)
	}

	return s.generateAuthResponse(user)
}

func (s *Service) GetUserProfile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.GetUserProfile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) UpdateUserProfile(ctx context.Context, userID string, data models.UserUpdateData) (*models.User, error) {
	user, err := s.userRepo.Update(ctx, userID, data)
	if err != nil {
		return nil, fmt.Errorf("service.UpdateUserProfile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *Service) AddVehicle(ctx context.Context, driverID string, req models.AddVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.userRepo.CreateVehicle(ctx, &models.Vehicle{
		DriverID:    driverID,
		Make:        req.Make,
		Model:       req.Model,
		Seats:       req.Seats,
		PlateNumber: req.PlateNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("service.AddVehicle: %w", err)
	}
	return vehicle, nil
}

func (s *Service) ListMyVehicles(ctx context.Context, driverID string) ([]*models.Vehicle, error) {
	vehicles, err := s.userRepo.ListVehiclesByDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("service.ListMyVehicles: %w", err)
	}
	return vehicles, nil
}

// generateAuthResponse signs a JWT for the user and strips sensitive fields.
func (s *Service) generateAuthResponse(user *models.User) (*models.AuthResponse, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 24 * 30)),
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenSignedString, err := accessToken.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	user.PasswordHash = "" // Do NOT send sensitive info back

	return &models.AuthResponse{
		AccessToken: tokenSignedString,
		User:        user,
	}, nil
}
