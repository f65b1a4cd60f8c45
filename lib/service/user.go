package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/facturechain/facturechain/db/models"
	"github.com/facturechain/facturechain/lib/security"
	"github.com/facturechain/facturechain/lib/tokens"
	"github.com/google/uuid"
	passwordvalidator "github.com/wagslane/go-password-validator"
)

type RegisterParams struct {
	Email       string
	Password    string
	CompanyName string
	Siret       string
	Address     string
}

type UpdateUserParams struct {
	Email       *string
	CompanyName *string
	Siret       *string
	Address     *string
}

func (svc *FacturechainService) RegisterUser(ctx context.Context, params RegisterParams) (*models.User, string, error) {
	if err := svc.checkPasswordStrength(params.Password); err != nil {
		return nil, "", err
	}
	if _, err := svc.Stores.Users.FindByEmail(ctx, params.Email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, "", err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, "", err
	}
	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(params.Email),
		PasswordHash: passwordHash,
		CompanyName:  params.CompanyName,
		Siret:        params.Siret,
		Address:      params.Address,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := svc.Stores.Users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := tokens.GenerateAccessToken(svc.Config.JWTSecret, svc.Config.JWTAccessTokenExpiry, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (svc *FacturechainService) LoginUser(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := svc.Stores.Users.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", ErrBadCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		return nil, "", ErrBadCredentials
	}

	token, err := tokens.GenerateAccessToken(svc.Config.JWTSecret, svc.Config.JWTAccessTokenExpiry, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// StartPasswordReset reports whether a reset would be queued. The response
// never reveals whether the account exists.
func (svc *FacturechainService) StartPasswordReset(ctx context.Context, email string) (bool, error) {
	_, err := svc.Stores.Users.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (svc *FacturechainService) FinishPasswordReset(ctx context.Context, email, newPassword string) error {
	if err := svc.checkPasswordStrength(newPassword); err != nil {
		return err
	}
	user, err := svc.Stores.Users.FindByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return svc.Stores.Users.Update(ctx, user)
}

func (svc *FacturechainService) FindUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := svc.Stores.Users.FindByID(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (svc *FacturechainService) UpdateUser(ctx context.Context, userID string, params UpdateUserParams) (*models.User, error) {
	user, err := svc.FindUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if params.Email != nil && !strings.EqualFold(*params.Email, user.Email) {
		other, err := svc.Stores.Users.FindByEmail(ctx, *params.Email)
		if err == nil && other.ID != userID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		user.Email = strings.TrimSpace(*params.Email)
	}
	if params.CompanyName != nil {
		user.CompanyName = *params.CompanyName
	}
	if params.Siret != nil {
		user.Siret = *params.Siret
	}
	if params.Address != nil {
		user.Address = *params.Address
	}
	user.UpdatedAt = time.Now()

	if err := svc.Stores.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (svc *FacturechainService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := svc.FindUser(ctx, userID)
	if err != nil {
		return err
	}
	if !security.VerifyPassword(currentPassword, user.PasswordHash) {
		return ErrWrongPassword
	}
	if err := svc.checkPasswordStrength(newPassword); err != nil {
		return err
	}
	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = passwordHash
	user.UpdatedAt = time.Now()
	return svc.Stores.Users.Update(ctx, user)
}

// DeleteUser removes the account with all owned invoices and their
// certifications. Verification logs stay behind as tombstoned history.
func (svc *FacturechainService) DeleteUser(ctx context.Context, userID string) error {
	err := svc.Stores.Users.DeleteCascade(ctx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func (svc *FacturechainService) checkPasswordStrength(password string) error {
	if len(password) < svc.Config.MinPasswordLength {
		return ErrWeakPassword
	}
	if svc.Config.MinPasswordEntropy > 0 {
		if passwordvalidator.GetEntropy(password) < float64(svc.Config.MinPasswordEntropy) {
			return ErrWeakPassword
		}
	}
	return nil
}
