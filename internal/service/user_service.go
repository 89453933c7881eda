package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/taskflow-api/internal/cache"
	"github.com/phrazzld/taskflow-api/internal/domain"
	"github.com/phrazzld/taskflow-api/internal/platform/logger"
	"github.com/phrazzld/taskflow-api/internal/service/auth"
	"github.com/phrazzld/taskflow-api/internal/store"
)

// UserService provides account operations.
type UserService interface {
	// Register creates a user with a hashed password.
	// Returns errors wrapping ErrInvalidInput or ErrEmailExists.
	Register(ctx context.Context, email, password, fullName string) (*domain.User, error)

	// Authenticate checks credentials and returns the matching user.
	// Returns an error wrapping ErrInvalidCredentials on any mismatch.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID.
	// Returns an error wrapping ErrUserNotFound if the user does not exist.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// ListUsers returns a page of the user directory, oldest account first,
	// served from the listing cache when possible.
	ListUsers(ctx context.Context, page, pageSize int) (*Page[*domain.User], error)
}

type userServiceImpl struct {
	users      store.UserStore
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	cache      cache.Gateway
	listingTTL time.Duration
	logger     *slog.Logger
}

var _ UserService = (*userServiceImpl)(nil)

// NewUserService creates a new UserService. Directory pages are cached in
// listings for listingTTL, or three minutes when listingTTL is not positive.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	listings cache.Gateway,
	listingTTL time.Duration,
	log *slog.Logger,
) UserService {
	if log == nil {
		log = slog.Default()
	}
	if listingTTL <= 0 {
		listingTTL = defaultListingTTL
	}
	return &userServiceImpl{
		users:      users,
		hasher:     hasher,
		verifier:   verifier,
		cache:      listings,
		listingTTL: listingTTL,
		logger:     log.With("component", "user_service"),
	}
}

// Register implements UserService.
func (s *userServiceImpl) Register(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, fullName, password)
	if err != nil {
		return nil, NewUserServiceError("register", "invalid user",
			fmt.Errorf("%w: %w", ErrInvalidInput, err))
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, NewUserServiceError("register", "failed to hash password", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("attempted to register existing email")
			return nil, NewUserServiceError("register", "email taken",
				fmt.Errorf("%w: %w", ErrEmailExists, err))
		}
		log.Error("failed to save user", slog.String("error", err.Error()))
		return nil, NewUserServiceError("register", "failed to save user",
			fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}

	// The new account belongs on some directory page; drop them all.
	if _, err := s.cache.RemovePrefix(ctx, cache.UserListingPrefix); err != nil {
		log.Warn("failed to invalidate user listings",
			slog.String("error", fmt.Errorf("%w: %w", ErrCacheInvalidation, err).Error()))
	}

	log.Info("user registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, NewUserServiceError("authenticate", "unknown email", ErrInvalidCredentials)
		}
		log.Error("failed to look up user by email", slog.String("error", err.Error()))
		return nil, NewUserServiceError("authenticate", "failed to load user",
			fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("password mismatch", slog.String("user_id", user.ID.String()))
		return nil, NewUserServiceError("authenticate", "password mismatch", ErrInvalidCredentials)
	}

	return user, nil
}

// GetUser implements UserService.
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, NewUserServiceError("get_user", "user not found",
				fmt.Errorf("%w: %w", ErrUserNotFound, err))
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to retrieve user",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewUserServiceError("get_user", "failed to load user",
			fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}
	return user, nil
}

// ListUsers implements UserService.
func (s *userServiceImpl) ListUsers(ctx context.Context, page, pageSize int) (*Page[*domain.User], error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	page, pageSize, err := NormalizePage(page, pageSize)
	if err != nil {
		return nil, NewUserServiceError("list_users", "invalid page", err)
	}
	key := cache.UserListingKey(page, pageSize)

	if cached, ok := cachedPage[*domain.User](ctx, s.cache, log, key); ok {
		return cached, nil
	}

	users, err := s.users.List(ctx, pageSize, offset(page, pageSize))
	if err != nil {
		log.Error("failed to list users", slog.String("error", err.Error()))
		return nil, NewUserServiceError("list_users", "failed to load users",
			fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		log.Error("failed to count users", slog.String("error", err.Error()))
		return nil, NewUserServiceError("list_users", "failed to count users",
			fmt.Errorf("%w: %w", ErrPersistenceFailure, err))
	}

	result := newPage(users, page, pageSize, total)
	storePage(ctx, s.cache, log, key, result, s.listingTTL)
	return result, nil
}
