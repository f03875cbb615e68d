package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/app/repository"
	"github.com/shopit-dev/shopit-backend/internal/db"
	"github.com/shopit-dev/shopit-backend/pkg/util"
)

func setupAuthTest(t *testing.T) (*gorm.DB, AuthService, repository.UserRepository) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	authService := NewAuthService(userRepo, "test-secret", 7*24*time.Hour)

	return testDB, authService, userRepo
}

func TestAuthService_Register(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	user, token, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "Test User", user.Name)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, model.RoleUser, user.Role)
	assert.NotEmpty(t, user.AvatarURL)
	assert.NotEmpty(t, token)

	// The password is stored hashed, never as plaintext.
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, util.VerifyPassword(user.PasswordHash, "password123"))

	// The issued token is a valid session for the new user.
	claims, err := util.ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	_, _, err := authService.Register("First", "test@example.com", "password123")
	require.NoError(t, err)

	user, token, err := authService.Register("Second", "test@example.com", "password456")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	assert.Nil(t, user)
	assert.Empty(t, token)
}

func TestAuthService_Login(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	user, token, err := authService.Login("test@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, token)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	user, token, err := authService.Login("missing@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, user)
	assert.Empty(t, token)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	_, _, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	user, token, err := authService.Login("test@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.Nil(t, user)
	assert.Empty(t, token)
}

func TestAuthService_GetUserByID(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	user, err := authService.GetUserByID(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, "test@example.com", user.Email)

	_, err = authService.GetUserByID(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := authService.Register("Old Name", "old@example.com", "password123")
	require.NoError(t, err)

	user, err := authService.UpdateProfile(registered.ID, "New Name", "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "new@example.com", user.Email)

	// Empty fields leave the current values untouched.
	user, err = authService.UpdateProfile(registered.ID, "", "")
	require.NoError(t, err)
	assert.Equal(t, "New Name", user.Name)
	assert.Equal(t, "new@example.com", user.Email)
}

func TestAuthService_UpdateProfile_DuplicateEmail(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	first, _, err := authService.Register("First User", "first@example.com", "password123")
	require.NoError(t, err)
	_, _, err = authService.Register("Second User", "second@example.com", "password123")
	require.NoError(t, err)

	_, err = authService.UpdateProfile(first.ID, "", "second@example.com")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	// Re-submitting the user's own email is not a conflict.
	user, err := authService.UpdateProfile(first.ID, "Renamed", "first@example.com")
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", user.Email)
	assert.Equal(t, "Renamed", user.Name)
}

func TestAuthService_UpdatePassword(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := authService.Register("Test User", "test@example.com", "old-password")
	require.NoError(t, err)

	token, err := authService.UpdatePassword(registered.ID, "old-password", "new-password")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Old password stops working, new one logs in.
	_, _, err = authService.Login("test@example.com", "old-password")
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, _, err = authService.Login("test@example.com", "new-password")
	assert.NoError(t, err)
}

func TestAuthService_UpdatePassword_WrongOldPassword(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)

	token, err := authService.UpdatePassword(registered.ID, "not-the-password", "new-password")
	assert.ErrorIs(t, err, ErrWrongOldPassword)
	assert.Empty(t, token)

	// The password is unchanged.
	_, _, err = authService.Login("test@example.com", "password123")
	assert.NoError(t, err)
}

func TestAuthService_ListUsers(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	_, _, err := authService.Register("User One", "one@example.com", "password123")
	require.NoError(t, err)
	_, _, err = authService.Register("User Two", "two@example.com", "password123")
	require.NoError(t, err)

	users, err := authService.ListUsers()
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestAuthService_UpdateUser_Role(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	registered, _, err := authService.Register("Test User", "test@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, registered.Role)

	user, err := authService.UpdateUser(registered.ID, "", "", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, user.Role)

	// The role change is persisted, not just reflected in the return value.
	fetched, err := authService.GetUserByID(registered.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, fetched.Role)
}

func TestAuthService_UpdateUser_DuplicateEmail(t *testing.T) {
	testDB, authService, _ := setupAuthTest(t)
	defer db.CleanupTestDB(testDB)

	target, _, err := authService.Register("Target User", "target@example.com", "password123")
	require.NoError(t, err)
	_, _, err = authService.Register("Other User", "other@example.com", "password123")
	require.NoError(t, err)

	_, err = authService.UpdateUser(target.ID, "", "other@example.com", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)

	// The target keeps its original email.
	fetched, err := authService.GetUserByID(target.ID)
	require.NoError(t, err)
	assert.Equal(t, "target@example.com", fetched.Email)
}
