package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"looplane/internal/apperrors"
	"looplane/internal/auth"
	"looplane/internal/config"
	"looplane/internal/logging"
	"looplane/internal/models"
	"looplane/internal/repositories"
	"looplane/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testJWTSecret = "test_jwt_secret"

func newTokens() *auth.TokenService {
	return auth.NewTokenService(&config.Config{JWTSecret: testJWTSecret})
}

func newAuthService(repo repositories.UserRepository) *services.AuthService {
	return services.NewAuthService(repo, newTokens(), services.NewBcryptHasher(bcrypt.MinCost), logging.Discard())
}

func register(t *testing.T, svc *services.AuthService, username, email string) *models.AuthResult {
	t.Helper()
	res, err := svc.RegisterIdentity(context.Background(), models.RegisterInput{
		Username: username,
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	return res
}

func TestAuthService_RegisterIdentityHashesPassword(t *testing.T) {
	repo := repositories.NewMemoryUserRepository()
	svc := newAuthService(repo)

	res := register(t, svc, "alice", "Alice@Example.com")

	assert.NotEmpty(t, res.User.ID)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.NotEmpty(t, res.Token)

	stored, err := repo.GetByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")))

	claims, err := newTokens().Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Claims{SubjectID: res.User.ID, Username: "alice", Email: "alice@example.com"}, claims)
}

func TestAuthService_RegisterIdentityConflicts(t *testing.T) {
	svc := newAuthService(repositories.NewMemoryUserRepository())
	register(t, svc, "alice", "alice@example.com")

	_, err := svc.RegisterIdentity(context.Background(), models.RegisterInput{Username: "alice", Email: "other@example.com", Password: "password123"})
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "username 'alice' already taken")

	_, err = svc.RegisterIdentity(context.Background(), models.RegisterInput{Username: "bob", Email: "ALICE@example.com", Password: "password123"})
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "already registered")
}

func TestAuthService_RegisterIdentityValidatesBeforeStorage(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newAuthService(mockRepo)

	_, err := svc.RegisterIdentity(context.Background(), models.RegisterInput{Username: "al", Email: "nope", Password: "x"})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthService_RegisterIdentityStorageFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newAuthService(mockRepo)

	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(errors.New("connection reset")).Once()

	_, err := svc.RegisterIdentity(context.Background(), models.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	mockRepo.AssertExpectations(t)

	// A unique violation that slipped past the lookups is still a conflict.
	mockRepo.On("GetByUsername", mock.Anything, "alice").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicate).Once()

	_, err = svc.RegisterIdentity(context.Background(), models.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	svc := newAuthService(repositories.NewMemoryUserRepository())
	registered := register(t, svc, "alice", "alice@example.com")

	res, err := svc.Login(context.Background(), models.LoginInput{Email: " ALICE@example.com ", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, res.User.ID)
	assert.Equal(t, registered.Token, res.Token, "tokens are deterministic for the same claims")

	_, err = svc.Login(context.Background(), models.LoginInput{Email: "alice@example.com", Password: "wrongpassword"})
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "invalid email or password")

	_, err = svc.Login(context.Background(), models.LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestAuthService_LoginStorageFailure(t *testing.T) {
	mockRepo := new(MockUserRepository)
	svc := newAuthService(mockRepo)

	mockRepo.On("GetByEmail", mock.Anything, "alice@example.com").Return(nil, errors.New("db down")).Once()

	_, err := svc.Login(context.Background(), models.LoginInput{Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, apperrors.CodeInternal, apperrors.CodeOf(err))
	mockRepo.AssertExpectations(t)
}

func TestAuthService_AccountIsSelfOnly(t *testing.T) {
	svc := newAuthService(repositories.NewMemoryUserRepository())
	alice := register(t, svc, "alice", "alice@example.com")
	bob := register(t, svc, "bob", "bob@example.com")

	aliceCtx := auth.Authenticated(auth.Claims{SubjectID: alice.User.ID})
	bobCtx := auth.Authenticated(auth.Claims{SubjectID: bob.User.ID})
	ctx := context.Background()

	got, err := svc.GetAccount(ctx, aliceCtx, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.GetAccount(ctx, bobCtx, alice.User.ID)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	_, err = svc.GetAccount(ctx, auth.Anonymous(), alice.User.ID)
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))

	_, err = svc.GetAccount(ctx, aliceCtx, "missing")
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = svc.DeleteAccount(ctx, bobCtx, alice.User.ID)
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))

	name := "mallory"
	_, err = svc.UpdateAccount(ctx, bobCtx, alice.User.ID, models.UpdateAccountInput{Username: &name})
	assert.Equal(t, apperrors.CodeForbidden, apperrors.CodeOf(err))
}

func TestAuthService_UpdateAccount(t *testing.T) {
	svc := newAuthService(repositories.NewMemoryUserRepository())
	alice := register(t, svc, "alice", "alice@example.com")
	register(t, svc, "bob", "bob@example.com")
	aliceCtx := auth.Authenticated(auth.Claims{SubjectID: alice.User.ID})
	ctx := context.Background()

	email := "Alice@New.example.com"
	password := "newpassword123"
	updated, err := svc.UpdateAccount(ctx, aliceCtx, alice.User.ID, models.UpdateAccountInput{Email: &email, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", updated.Email)
	assert.Equal(t, "alice", updated.Username)

	_, err = svc.Login(ctx, models.LoginInput{Email: "alice@new.example.com", Password: "newpassword123"})
	assert.NoError(t, err)
	_, err = svc.Login(ctx, models.LoginInput{Email: "alice@new.example.com", Password: "password123"})
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))

	taken := "bob"
	_, err = svc.UpdateAccount(ctx, aliceCtx, alice.User.ID, models.UpdateAccountInput{Username: &taken})
	assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))

	short := "x"
	_, err = svc.UpdateAccount(ctx, aliceCtx, alice.User.ID, models.UpdateAccountInput{Password: &short})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))
}

func TestAuthService_DeleteAccount(t *testing.T) {
	svc := newAuthService(repositories.NewMemoryUserRepository())
	alice := register(t, svc, "alice", "alice@example.com")
	aliceCtx := auth.Authenticated(auth.Claims{SubjectID: alice.User.ID})
	ctx := context.Background()

	deleted, err := svc.DeleteAccount(ctx, aliceCtx, alice.User.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.User.ID, deleted.ID)

	_, err = svc.GetAccount(ctx, aliceCtx, alice.User.ID)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))

	_, err = svc.Login(ctx, models.LoginInput{Email: "alice@example.com", Password: "password123"})
	assert.Equal(t, apperrors.CodeUnauthenticated, apperrors.CodeOf(err))
}

func TestAuthService_RejectsPasswordsBcryptCannotHash(t *testing.T) {
	svc := newAuthService(repositories.NewMemoryUserRepository())
	ctx := context.Background()
	long := strings.Repeat("a", 100)

	_, err := svc.RegisterIdentity(ctx, models.RegisterInput{Username: "alice", Email: "alice@example.com", Password: long})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	alice := register(t, svc, "alice", "alice@example.com")
	aliceCtx := auth.Authenticated(auth.Claims{SubjectID: alice.User.ID})
	_, err = svc.UpdateAccount(ctx, aliceCtx, alice.User.ID, models.UpdateAccountInput{Password: &long})
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(err))

	_, err = svc.Login(ctx, models.LoginInput{Email: "alice@example.com", Password: "password123"})
	assert.NoError(t, err)
}
