package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"looplane/internal/apperrors"
	"looplane/internal/auth"
	"looplane/internal/models"
	"looplane/internal/repositories"
)

const invalidCredentials = "invalid email or password"

// AuthService is the credential store: it registers identities, checks
// passwords and manages a caller's own account.
type AuthService struct {
	users     repositories.UserRepository
	tokens    *auth.TokenService
	hasher    PasswordHasher
	validator *Validator
	logger    *slog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users repositories.UserRepository, tokens *auth.TokenService, hasher PasswordHasher, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		hasher:    hasher,
		validator: NewValidator(),
		logger:    logger,
	}
}

// RegisterIdentity is the only way to create a user. The raw password is
// hashed before anything is persisted.
func (s *AuthService) RegisterIdentity(ctx context.Context, in models.RegisterInput) (*models.AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	if err := s.ensureAvailable(ctx, "", in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	user := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, "username or email already registered", err)
		}
		return nil, apperrors.Internal(err)
	}

	s.logger.Info("user registered", slog.String("user_id", user.ID))
	return s.authResult(user)
}

// Login checks an email and password pair. Unknown email and wrong password
// fail identically.
func (s *AuthService) Login(ctx context.Context, in models.LoginInput) (*models.AuthResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Unauthenticated(invalidCredentials)
		}
		return nil, apperrors.Internal(err)
	}
	if err := s.hasher.Compare(user.PasswordHash, in.Password); err != nil {
		return nil, apperrors.Unauthenticated(invalidCredentials)
	}

	return s.authResult(user)
}

// GetAccount returns the caller's own account.
func (s *AuthService) GetAccount(ctx context.Context, rc auth.RequestContext, id string) (*models.User, error) {
	return s.ownedAccount(ctx, rc, id)
}

// UpdateAccount changes the set fields of the caller's own account. A new
// password is hashed before it is stored.
func (s *AuthService) UpdateAccount(ctx context.Context, rc auth.RequestContext, id string, in models.UpdateAccountInput) (*models.User, error) {
	user, err := s.ownedAccount(ctx, rc, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		trimmed := strings.TrimSpace(*in.Username)
		in.Username = &trimmed
	}
	if in.Email != nil {
		normalized := normalizeEmail(*in.Email)
		in.Email = &normalized
	}
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	username, email := user.Username, user.Email
	if in.Username != nil {
		username = *in.Username
	}
	if in.Email != nil {
		email = *in.Email
	}
	if err := s.ensureAvailable(ctx, user.ID, username, email); err != nil {
		return nil, err
	}
	user.Username, user.Email = username, email

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperrors.Internal(err)
		}
		user.PasswordHash = hash
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, "username or email already registered", err)
		}
		return nil, accountStorageError(err)
	}
	return user, nil
}

// DeleteAccount removes the caller's own account and returns its last state.
// Listings owned by the account are left in place.
func (s *AuthService) DeleteAccount(ctx context.Context, rc auth.RequestContext, id string) (*models.User, error) {
	user, err := s.ownedAccount(ctx, rc, id)
	if err != nil {
		return nil, err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return nil, accountStorageError(err)
	}

	s.logger.Info("user deleted", slog.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) ownedAccount(ctx context.Context, rc auth.RequestContext, id string) (*models.User, error) {
	if _, err := auth.RequireAuthenticated(rc); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, accountStorageError(err)
	}
	if err := auth.RequireOwner(user, rc); err != nil {
		return nil, err
	}
	return user, nil
}

// ensureAvailable fails with CONFLICT when another account, other than
// selfID, already uses the username or email.
func (s *AuthService) ensureAvailable(ctx context.Context, selfID, username, email string) error {
	existing, err := s.users.GetByUsername(ctx, username)
	switch {
	case err == nil && existing.ID != selfID:
		return apperrors.Conflict(fmt.Sprintf("username '%s' already taken", username))
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return apperrors.Internal(err)
	}

	existing, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.ID != selfID:
		return apperrors.Conflict(fmt.Sprintf("email '%s' already registered", email))
	case err != nil && !errors.Is(err, repositories.ErrNotFound):
		return apperrors.Internal(err)
	}
	return nil
}

func (s *AuthService) authResult(user *models.User) (*models.AuthResult, error) {
	token, err := s.tokens.Issue(auth.Claims{
		SubjectID: user.ID,
		Username:  user.Username,
		Email:     user.Email,
	})
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &models.AuthResult{User: *user, Token: token}, nil
}

func accountStorageError(err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeNotFound, "user not found", err)
	}
	return apperrors.Internal(err)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
