package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/db/models"
	"github.com/facturechain/facturechain/lib/fingerprint"
	"github.com/facturechain/facturechain/lib/security"
	"github.com/google/uuid"
)

// SeedDemoData inserts a demo account with one certified invoice so a fresh
// deployment has something to verify against. No-op when the demo user
// already exists.
func (svc *FacturechainService) SeedDemoData(ctx context.Context) error {
	const demoEmail = "demo@facturechain.com"
	if _, err := svc.Stores.Users.FindByEmail(ctx, demoEmail); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	passwordHash, err := security.HashPassword("demo1234")
	if err != nil {
		return err
	}
	now := time.Now()
	user := &models.User{
		ID:           uuid.NewString(),
		Email:        demoEmail,
		PasswordHash: passwordHash,
		CompanyName:  "Demo SARL",
		Siret:        "12345678900011",
		Address:      "1 rue de la Paix, 75002 Paris",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := svc.Stores.Users.Create(ctx, user); err != nil {
		return err
	}

	invoice := &models.Invoice{
		ID:                uuid.NewString(),
		UserID:            user.ID,
		InvoiceNumber:     "INV-2024-001",
		IssueDate:         "2024-01-15",
		DueDate:           "2024-02-15",
		ClientCompanyName: "Novaris SAS",
		ClientSiret:       "98765432100022",
		ClientAddress:     "42 avenue des Champs, 75008 Paris",
		ClientEmail:       "compta@novaris.fr",
		LineItems: []models.LineItem{
			{Description: "Prestation de conseil", Quantity: 10, UnitPrice: 1000, VATRate: 20},
		},
		Notes:     "Paiement sous 30 jours",
		Status:    common.InvoiceStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	invoice.ComputeTotals()
	if err := svc.Stores.Invoices.Create(ctx, invoice); err != nil {
		return err
	}

	pdfHash, err := fingerprint.HashInvoice(invoice)
	if err != nil {
		return err
	}
	receipt, err := svc.Anchorer.Anchor(ctx, pdfHash)
	if err != nil {
		svc.Logger.Warn().Err(err).Msg("demo invoice left uncertified, anchoring unavailable")
		return nil
	}
	cert := &models.Certification{
		ID:                uuid.NewString(),
		InvoiceID:         invoice.ID,
		PDFHash:           pdfHash,
		BlockchainTxID:    receipt.TxID,
		BlockchainNetwork: receipt.Network,
		BlockNumber:       receipt.BlockNumber,
		CertifiedAt:       now,
		CreatedAt:         now,
	}
	if err := svc.Stores.Certifications.Certify(ctx, invoice, cert); err != nil {
		return err
	}

	svc.Logger.Info().Str("email", demoEmail).Str("pdf_hash", pdfHash).Msg("seeded demo data")
	return nil
}
