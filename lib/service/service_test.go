package service

import (
	"context"
	"io"
	"testing"

	"github.com/facturechain/facturechain/anchor"
	"github.com/facturechain/facturechain/db/models"
	"github.com/facturechain/facturechain/db/stores"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *FacturechainService {
	t.Helper()
	return &FacturechainService{
		Config: &Config{
			JWTSecret:            []byte("test-secret"),
			JWTAccessTokenExpiry: 3600,
			MinPasswordLength:    8,
		},
		Stores:   stores.NewMemoryStores(),
		Anchorer: anchor.NewMockAnchorer("polygon-amoy-mock"),
		Logger:   zerolog.New(io.Discard),
	}
}

func registerTestUser(t *testing.T, svc *FacturechainService, email string) *models.User {
	t.Helper()
	user, _, err := svc.RegisterUser(context.Background(), RegisterParams{
		Email:       email,
		Password:    "correct horse battery",
		CompanyName: "Acme SARL",
	})
	require.NoError(t, err)
	return user
}

func createTestInvoice(t *testing.T, svc *FacturechainService, userID string) *models.Invoice {
	t.Helper()
	items := []models.LineItem{
		{Description: "Conseil", Quantity: 2, UnitPrice: 500, VATRate: 20},
		{Description: "Audit", Quantity: 1, UnitPrice: 1000, VATRate: 10},
	}
	client := "Novaris SAS"
	invoice, err := svc.CreateInvoice(context.Background(), userID, InvoiceParams{
		ClientCompanyName: &client,
		LineItems:         &items,
	})
	require.NoError(t, err)
	return invoice
}
