package users

import (
	"context"
	"errors"
	"time"

	"salesdesk_backend/platform/apperr"
	"salesdesk_backend/platform/config"
	"salesdesk_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Service implements user registration and authentication.
type Service struct {
	repo *Repository
	cfg  config.AuthServiceConfig
	log  *logger.Logger
}

// NewService creates the user service.
func NewService(repo *Repository, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{repo: repo, cfg: cfg, log: log}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user, err := s.repo.Create(ctx, req.Email, req.Name, string(hash))
	if errors.Is(err, ErrDuplicateEmail) {
		return User{}, apperr.Conflict("email already registered")
	}
	return user, err
}

// Login verifies credentials and issues a signed access token.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	user, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, ErrNotFound) {
		s.log.AuthEvent("login", req.Email, false, "unknown email")
		return LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return LoginResponse{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		s.log.AuthEvent("login", req.Email, false, "bad password")
		return LoginResponse{}, apperr.Unauthorized("invalid credentials")
	}

	token, expiresAt, err := s.issueAccessToken(user.ID)
	if err != nil {
		return LoginResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	s.log.AuthEvent("login", req.Email, true, "")
	return LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		User:        user,
	}, nil
}

// GetByID returns one user.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	user, err := s.repo.FindByID(ctx, nil, id)
	if errors.Is(err, ErrNotFound) {
		return User{}, apperr.NotFound("user not found")
	}
	return user, err
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func (s *Service) issueAccessToken(userID uuid.UUID) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.GetAccessTokenTTL())

	claims := jwt.MapClaims{
		"sub":  userID.String(),
		"type": "access",
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	return token, expiresAt, err
}
