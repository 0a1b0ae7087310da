package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *model.User) (string, error)
}

// userService implements UserService.
type userService struct {
	userRepo repository.UserRepository
	tokens   TokenIssuer
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, tokens TokenIssuer, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	return s.register(ctx, req, model.RoleUser)
}

func (s *userService) RegisterAdmin(ctx context.Context, caller model.Identity, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if !caller.IsAdmin() {
		return nil, model.ErrForbidden
	}
	return s.register(ctx, req, model.RoleAdmin)
}

func (s *userService) register(ctx context.Context, req *model.RegisterRequest, role model.Role) (*model.AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        normaliseEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("user_id", user.ID.String()).
		Str("role", string(role)).
		Msg("user registered")

	return s.authResponse(user)
}

func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, normaliseEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}

	ok, err := auth.ComparePassword(user.PasswordHash, req.Password)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to compare password")
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if !ok {
		s.logger.Debug().Str("user_id", user.ID.String()).Msg("invalid password")
		return nil, model.ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *userService) Me(ctx context.Context, caller model.Identity) (*model.User, error) {
	return s.getUser(ctx, caller.UserID)
}

func (s *userService) GetUser(ctx context.Context, caller model.Identity, id uuid.UUID) (*model.User, error) {
	if caller.UserID != id && !caller.IsAdmin() {
		return nil, model.ErrForbidden
	}
	return s.getUser(ctx, id)
}

func (s *userService) ListUsers(ctx context.Context, caller model.Identity, page, limit int) (*model.UserPage, error) {
	if !caller.IsAdmin() {
		return nil, model.ErrForbidden
	}

	page, limit = normalisePage(page, limit)
	users, total, err := s.userRepo.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return &model.UserPage{
		Data:       users,
		Pagination: model.NewPagination(page, limit, total),
	}, nil
}

func (s *userService) getUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, model.ErrUserNotFound
	}
	return user, nil
}

func (s *userService) authResponse(user *model.User) (*model.AuthResponse, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID.String()).Msg("failed to issue token")
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &model.AuthResponse{Token: token, User: user}, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalisePage applies defaults and caps to paging parameters.
func normalisePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
