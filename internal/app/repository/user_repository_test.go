package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/db"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	repo := NewUserRepository(testDB)

	user := &model.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: "hash",
		Role:         model.RoleUser,
	}
	require.NoError(t, repo.Create(user))

	return testDB, repo, user
}

func TestUserRepository_Create(t *testing.T) {
	testDB, repo, _ := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	user := &model.User{
		Name:         "Another User",
		Email:        "another@example.com",
		PasswordHash: "hash",
	}

	err := repo.Create(user)
	assert.NoError(t, err)
	assert.NotZero(t, user.ID)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	dup := &model.User{
		Name:         "Duplicate",
		Email:        user.Email,
		PasswordHash: "hash",
	}

	err := repo.Create(dup)
	assert.Error(t, err)
}

func TestUserRepository_FindByEmail(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	found, err := repo.FindByEmail("test@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)

	_, err = repo.FindByEmail("missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_SetAndFindResetToken(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	hash := "token-hash"
	err := repo.SetResetToken(user.ID, hash, time.Now().Add(30*time.Minute))
	require.NoError(t, err)

	found, err := repo.FindByResetTokenHash(hash)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserRepository_FindByResetTokenHash_Expired(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	hash := "expired-hash"
	err := repo.SetResetToken(user.ID, hash, time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = repo.FindByResetTokenHash(hash)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound, "an expired token must look absent")
}

func TestUserRepository_SetResetToken_SupersedesPrevious(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.SetResetToken(user.ID, "first-hash", time.Now().Add(30*time.Minute)))
	require.NoError(t, repo.SetResetToken(user.ID, "second-hash", time.Now().Add(30*time.Minute)))

	_, err := repo.FindByResetTokenHash("first-hash")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindByResetTokenHash("second-hash")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserRepository_ClearResetToken(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.SetResetToken(user.ID, "token-hash", time.Now().Add(30*time.Minute)))
	require.NoError(t, repo.ClearResetToken(user.ID))

	_, err := repo.FindByResetTokenHash("token-hash")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_ConsumeResetToken(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.SetResetToken(user.ID, "token-hash", time.Now().Add(30*time.Minute)))

	consumed, err := repo.ConsumeResetToken(user.ID, "token-hash", "new-password-hash")
	require.NoError(t, err)
	assert.True(t, consumed)

	updated, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-password-hash", updated.PasswordHash)
	assert.Nil(t, updated.ResetPasswordToken)
	assert.Nil(t, updated.ResetPasswordExpiresAt)

	// Second consume must fail: the guard no longer matches.
	consumed, err = repo.ConsumeResetToken(user.ID, "token-hash", "other-hash")
	require.NoError(t, err)
	assert.False(t, consumed)

	unchanged, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new-password-hash", unchanged.PasswordHash)
}

func TestUserRepository_ConsumeResetToken_WrongHash(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, repo.SetResetToken(user.ID, "token-hash", time.Now().Add(30*time.Minute)))

	consumed, err := repo.ConsumeResetToken(user.ID, "wrong-hash", "new-password-hash")
	require.NoError(t, err)
	assert.False(t, consumed)

	unchanged, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash", unchanged.PasswordHash)
}

func TestUserRepository_ClearExpiredResetTokens(t *testing.T) {
	testDB, repo, user := setupUserTest(t)
	defer db.CleanupTestDB(testDB)

	other := &model.User{
		Name:         "Other",
		Email:        "other@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, repo.Create(other))

	require.NoError(t, repo.SetResetToken(user.ID, "expired-hash", time.Now().Add(-time.Minute)))
	require.NoError(t, repo.SetResetToken(other.ID, "live-hash", time.Now().Add(30*time.Minute)))

	cleared, err := repo.ClearExpiredResetTokens()
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	stale, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, stale.ResetPasswordToken)

	live, err := repo.FindByResetTokenHash("live-hash")
	require.NoError(t, err)
	assert.Equal(t, other.ID, live.ID)
}
