package service

import (
	"context"
	"testing"

	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/lib/tokens"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.RegisterUser(ctx, RegisterParams{
		Email:       "alice@example.com",
		Password:    "correct horse battery",
		CompanyName: "Acme SARL",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	userID, err := tokens.ParseAccessToken(svc.Config.JWTSecret, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestRegisterUserDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "alice@example.com")

	_, _, err := svc.RegisterUser(ctx, RegisterParams{Email: "alice@example.com", Password: "correct horse battery"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterUserWeakPassword(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.RegisterUser(context.Background(), RegisterParams{Email: "alice@example.com", Password: "short"})
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestLoginUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "alice@example.com")

	found, token, err := svc.LoginUser(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.LoginUser(ctx, "alice@example.com", "wrong password")
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, _, err = svc.LoginUser(ctx, "nobody@example.com", "correct horse battery")
	assert.ErrorIs(t, err, ErrBadCredentials)
}

func TestUpdateUser(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "alice@example.com")
	registerTestUser(t, svc, "bob@example.com")

	company := "Nouvelle Société"
	updated, err := svc.UpdateUser(ctx, user.ID, UpdateUserParams{CompanyName: &company})
	require.NoError(t, err)
	assert.Equal(t, company, updated.CompanyName)
	assert.Equal(t, "alice@example.com", updated.Email)

	taken := "bob@example.com"
	_, err = svc.UpdateUser(ctx, user.ID, UpdateUserParams{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "alice@example.com")

	err := svc.ChangePassword(ctx, user.ID, "wrong", "another long password")
	assert.ErrorIs(t, err, ErrWrongPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ID, "correct horse battery", "another long password"))
	_, _, err = svc.LoginUser(ctx, "alice@example.com", "another long password")
	require.NoError(t, err)
}

func TestPasswordReset(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	registerTestUser(t, svc, "alice@example.com")

	queued, err := svc.StartPasswordReset(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, queued)
	queued, err = svc.StartPasswordReset(ctx, "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, queued)

	require.NoError(t, svc.FinishPasswordReset(ctx, "alice@example.com", "a brand new password"))
	_, _, err = svc.LoginUser(ctx, "alice@example.com", "a brand new password")
	require.NoError(t, err)
}

func TestDeleteUserCascades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "alice@example.com")
	invoice := createTestInvoice(t, svc, user.ID)
	_, cert, err := svc.CertifyInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)
	_, err = svc.VerifyByHash(ctx, cert.PDFHash, common.VerificationMethodHash, "127.0.0.1")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(ctx, user.ID))

	_, err = svc.FindUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	outcome, err := svc.VerifyByHash(ctx, cert.PDFHash, common.VerificationMethodHash, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, common.VerificationResultNotFound, outcome.Status)
}
