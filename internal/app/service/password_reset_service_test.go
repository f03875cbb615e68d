package service

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopit-dev/shopit-backend/internal/app/model"
	"github.com/shopit-dev/shopit-backend/internal/app/repository"
	"github.com/shopit-dev/shopit-backend/internal/db"
	"github.com/shopit-dev/shopit-backend/pkg/mailer"
	"github.com/shopit-dev/shopit-backend/pkg/util"
)

// fakeNotifier records sent messages and optionally fails.
type fakeNotifier struct {
	sent    []mailer.Message
	sendErr error
}

func (f *fakeNotifier) Send(msg mailer.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, msg)
	return nil
}

var resetURLPattern = regexp.MustCompile(`https?://[^/]+/api/v1/password/reset/([0-9a-f]+)`)

func setupResetTest(t *testing.T) (*gorm.DB, PasswordResetService, repository.UserRepository, *fakeNotifier, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(testDB)
	notifier := &fakeNotifier{}
	resetService := NewPasswordResetService(userRepo, notifier, "test-secret", 7*24*time.Hour)

	hash, err := util.HashPassword("password123")
	require.NoError(t, err)
	user := &model.User{
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: hash,
		Role:         model.RoleUser,
	}
	require.NoError(t, userRepo.Create(user))

	return testDB, resetService, userRepo, notifier, user
}

// tokenFromEmail pulls the raw reset token out of the last sent message.
func tokenFromEmail(t *testing.T, notifier *fakeNotifier) string {
	require.NotEmpty(t, notifier.sent)
	body := notifier.sent[len(notifier.sent)-1].Body
	m := resetURLPattern.FindStringSubmatch(body)
	require.NotNil(t, m, "reset email must contain the reset URL")
	return m[1]
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	testDB, resetService, userRepo, notifier, user := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	err := resetService.RequestReset("test@example.com", "https", "shopit.example.com")
	require.NoError(t, err)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "test@example.com", notifier.sent[0].To)
	assert.Contains(t, notifier.sent[0].Body, "https://shopit.example.com/api/v1/password/reset/")

	// Only the hash is persisted; the raw token never touches the store.
	rawToken := tokenFromEmail(t, notifier)
	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ResetPasswordToken)
	assert.NotEqual(t, rawToken, *stored.ResetPasswordToken)
	assert.Equal(t, util.HashResetToken(rawToken), *stored.ResetPasswordToken)

	require.NotNil(t, stored.ResetPasswordExpiresAt)
	assert.WithinDuration(t, time.Now().Add(ResetTokenExpiry), *stored.ResetPasswordExpiresAt, 5*time.Second)
}

func TestPasswordResetService_RequestReset_UnknownEmail(t *testing.T) {
	testDB, resetService, _, notifier, _ := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	err := resetService.RequestReset("missing@example.com", "https", "shopit.example.com")
	assert.ErrorIs(t, err, ErrEmailNotRegistered)
	assert.Empty(t, notifier.sent)
}

func TestPasswordResetService_RequestReset_NotifierFailureRollsBack(t *testing.T) {
	testDB, resetService, userRepo, notifier, user := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	notifier.sendErr = errors.New("smtp connection refused")

	err := resetService.RequestReset("test@example.com", "https", "shopit.example.com")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmailNotRegistered)

	// No dangling active token after a failed delivery.
	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpiresAt)
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	testDB, resetService, userRepo, notifier, user := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, resetService.RequestReset("test@example.com", "https", "shopit.example.com"))
	rawToken := tokenFromEmail(t, notifier)

	resetUser, token, err := resetService.ResetPassword(rawToken, "new-password", "new-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, resetUser.ID)

	// Auto-login: the returned session token is valid for this user.
	claims, err := util.ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	// The new password is live and the reset state is gone.
	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, util.VerifyPassword(stored.PasswordHash, "new-password"))
	assert.False(t, util.VerifyPassword(stored.PasswordHash, "password123"))
	assert.Nil(t, stored.ResetPasswordToken)
	assert.Nil(t, stored.ResetPasswordExpiresAt)
}

func TestPasswordResetService_ResetPassword_SingleUse(t *testing.T) {
	testDB, resetService, _, notifier, _ := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, resetService.RequestReset("test@example.com", "https", "shopit.example.com"))
	rawToken := tokenFromEmail(t, notifier)

	_, _, err := resetService.ResetPassword(rawToken, "new-password", "new-password")
	require.NoError(t, err)

	// A spent token is rejected like an unknown one.
	_, _, err = resetService.ResetPassword(rawToken, "another-password", "another-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetService_ResetPassword_UnknownToken(t *testing.T) {
	testDB, resetService, _, _, _ := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	_, _, err := resetService.ResetPassword("deadbeef", "new-password", "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetService_ResetPassword_Expired(t *testing.T) {
	testDB, resetService, userRepo, notifier, user := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, resetService.RequestReset("test@example.com", "https", "shopit.example.com"))
	rawToken := tokenFromEmail(t, notifier)

	// Force the window shut.
	require.NoError(t, userRepo.SetResetToken(user.ID, util.HashResetToken(rawToken), time.Now().Add(-time.Minute)))

	_, _, err := resetService.ResetPassword(rawToken, "new-password", "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)
}

func TestPasswordResetService_ResetPassword_ConfirmationMismatch(t *testing.T) {
	testDB, resetService, userRepo, notifier, user := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, resetService.RequestReset("test@example.com", "https", "shopit.example.com"))
	rawToken := tokenFromEmail(t, notifier)

	_, _, err := resetService.ResetPassword(rawToken, "new-password", "different-password")
	assert.ErrorIs(t, err, ErrPasswordMismatch)

	// A mismatch does not spend the token; a corrected retry succeeds.
	_, _, err = resetService.ResetPassword(rawToken, "new-password", "new-password")
	assert.NoError(t, err)

	stored, err := userRepo.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, util.VerifyPassword(stored.PasswordHash, "new-password"))
}

func TestPasswordResetService_RequestReset_SupersedesPrevious(t *testing.T) {
	testDB, resetService, _, notifier, _ := setupResetTest(t)
	defer db.CleanupTestDB(testDB)

	require.NoError(t, resetService.RequestReset("test@example.com", "https", "shopit.example.com"))
	firstToken := tokenFromEmail(t, notifier)

	require.NoError(t, resetService.RequestReset("test@example.com", "https", "shopit.example.com"))
	secondToken := tokenFromEmail(t, notifier)
	require.NotEqual(t, firstToken, secondToken)

	// The earlier link is dead once a new one is issued.
	_, _, err := resetService.ResetPassword(firstToken, "new-password", "new-password")
	assert.ErrorIs(t, err, ErrInvalidResetToken)

	_, _, err = resetService.ResetPassword(secondToken, "new-password", "new-password")
	assert.NoError(t, err)
}
