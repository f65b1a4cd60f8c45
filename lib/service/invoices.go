package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/facturechain/facturechain/anchor"
	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/db/models"
	"github.com/facturechain/facturechain/db/stores"
	"github.com/facturechain/facturechain/lib/fingerprint"
	"github.com/google/uuid"
	"github.com/labstack/gommon/random"
)

const isoDate = "2006-01-02"

// InvoiceParams is a partial payload: nil fields keep their previous value
// on update and fall back to defaults on create.
type InvoiceParams struct {
	InvoiceNumber     *string
	IssueDate         *string
	DueDate           *string
	ClientCompanyName *string
	ClientSiret       *string
	ClientAddress     *string
	ClientEmail       *string
	LineItems         *[]models.LineItem
	Notes             *string
}

type ListInvoicesParams struct {
	Page   int
	Limit  int
	Search string
	Status string
}

func (svc *FacturechainService) ListInvoices(ctx context.Context, userID string, params ListInvoicesParams) ([]models.Invoice, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	return svc.Stores.Invoices.List(ctx, userID, stores.ListInvoicesOptions{
		Page:   params.Page,
		Limit:  params.Limit,
		Search: params.Search,
		Status: params.Status,
	})
}

func (svc *FacturechainService) GetInvoice(ctx context.Context, userID, invoiceID string) (*models.Invoice, error) {
	invoice, err := svc.Stores.Invoices.FindOwned(ctx, userID, invoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvoiceNotFound
	}
	return invoice, err
}

func (svc *FacturechainService) CreateInvoice(ctx context.Context, userID string, params InvoiceParams) (*models.Invoice, error) {
	now := time.Now()
	invoice := &models.Invoice{
		ID:        uuid.NewString(),
		UserID:    userID,
		IssueDate: now.UTC().Format(isoDate),
		Status:    common.InvoiceStatusDraft,
		LineItems: []models.LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if params.IssueDate != nil && *params.IssueDate != "" {
		invoice.IssueDate = *params.IssueDate
	}
	invoice.DueDate = invoice.IssueDate
	if params.DueDate != nil && *params.DueDate != "" {
		invoice.DueDate = *params.DueDate
	}
	invoice.InvoiceNumber = generateInvoiceNumber(now)
	if params.InvoiceNumber != nil && *params.InvoiceNumber != "" {
		invoice.InvoiceNumber = *params.InvoiceNumber
	}
	if params.ClientCompanyName != nil {
		invoice.ClientCompanyName = *params.ClientCompanyName
	}
	if params.ClientSiret != nil {
		invoice.ClientSiret = *params.ClientSiret
	}
	if params.ClientAddress != nil {
		invoice.ClientAddress = *params.ClientAddress
	}
	if params.ClientEmail != nil {
		invoice.ClientEmail = *params.ClientEmail
	}
	if params.Notes != nil {
		invoice.Notes = *params.Notes
	}
	if params.LineItems != nil {
		invoice.LineItems = *params.LineItems
	}
	invoice.ComputeTotals()

	if err := svc.Stores.Invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

// UpdateInvoice applies a field-level partial update. Certified invoices are
// financially immutable and reject updates.
func (svc *FacturechainService) UpdateInvoice(ctx context.Context, userID, invoiceID string, params InvoiceParams) (*models.Invoice, error) {
	invoice, err := svc.GetInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.IsCertified() {
		return nil, ErrInvoiceCertified
	}

	if params.InvoiceNumber != nil && *params.InvoiceNumber != "" {
		invoice.InvoiceNumber = *params.InvoiceNumber
	}
	if params.IssueDate != nil && *params.IssueDate != "" {
		invoice.IssueDate = *params.IssueDate
	}
	if params.DueDate != nil && *params.DueDate != "" {
		invoice.DueDate = *params.DueDate
	}
	if params.ClientCompanyName != nil {
		invoice.ClientCompanyName = *params.ClientCompanyName
	}
	if params.ClientSiret != nil {
		invoice.ClientSiret = *params.ClientSiret
	}
	if params.ClientAddress != nil {
		invoice.ClientAddress = *params.ClientAddress
	}
	if params.ClientEmail != nil {
		invoice.ClientEmail = *params.ClientEmail
	}
	if params.Notes != nil {
		invoice.Notes = *params.Notes
	}
	if params.LineItems != nil {
		invoice.LineItems = *params.LineItems
	}
	invoice.ComputeTotals()
	invoice.UpdatedAt = time.Now()

	if err := svc.Stores.Invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (svc *FacturechainService) DeleteInvoice(ctx context.Context, userID, invoiceID string) error {
	err := svc.Stores.Invoices.DeleteCascade(ctx, userID, invoiceID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInvoiceNotFound
	}
	return err
}

// DuplicateInvoice creates a fresh draft copy with a new generated number.
// The copy never inherits certification state.
func (svc *FacturechainService) DuplicateInvoice(ctx context.Context, userID, invoiceID string) (*models.Invoice, error) {
	source, err := svc.GetInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	items := append([]models.LineItem(nil), source.LineItems...)
	return svc.CreateInvoice(ctx, userID, InvoiceParams{
		IssueDate:         &source.IssueDate,
		DueDate:           &source.DueDate,
		ClientCompanyName: &source.ClientCompanyName,
		ClientSiret:       &source.ClientSiret,
		ClientAddress:     &source.ClientAddress,
		ClientEmail:       &source.ClientEmail,
		LineItems:         &items,
		Notes:             &source.Notes,
	})
}

// CertifyInvoice anchors the invoice's canonical hash and flips it to
// certified, atomically with the certification insert. Repeat calls return
// the existing certification unchanged.
func (svc *FacturechainService) CertifyInvoice(ctx context.Context, userID, invoiceID string) (*models.Invoice, *models.Certification, error) {
	invoice, err := svc.GetInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, nil, err
	}

	// idempotency pre-check; the unique constraint below is the actual
	// guarantee under concurrency
	cert, err := svc.Stores.Certifications.FindByInvoiceID(ctx, invoiceID)
	if err == nil {
		return invoice, cert, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, err
	}

	pdfHash, err := fingerprint.HashInvoice(invoice)
	if err != nil {
		return nil, nil, err
	}

	receipt, err := svc.Anchorer.Anchor(ctx, pdfHash)
	if errors.Is(err, anchor.ErrAlreadyAnchored) {
		// lost the race against a concurrent certify; the committed
		// certification is the result
		return svc.resolveExistingCertification(ctx, invoice)
	}
	if err != nil {
		svc.Logger.Error().Err(err).Str("invoice_id", invoiceID).Msg("anchoring failed, invoice stays draft")
		return nil, nil, err
	}

	now := time.Now()
	cert = &models.Certification{
		ID:                uuid.NewString(),
		InvoiceID:         invoice.ID,
		PDFHash:           pdfHash,
		BlockchainTxID:    receipt.TxID,
		BlockchainNetwork: receipt.Network,
		BlockNumber:       receipt.BlockNumber,
		CertifiedAt:       now,
		CreatedAt:         now,
	}
	err = svc.Stores.Certifications.Certify(ctx, invoice, cert)
	if errors.Is(err, stores.ErrDuplicateCertification) {
		return svc.resolveExistingCertification(ctx, invoice)
	}
	if err != nil {
		return nil, nil, err
	}

	svc.Logger.Info().
		Str("invoice_id", invoice.ID).
		Str("tx_id", receipt.TxID).
		Int64("block", receipt.BlockNumber).
		Msg("invoice certified")
	return invoice, cert, nil
}

// CertificationsForInvoices maps invoice ids to their certifications for
// list enrichment.
func (svc *FacturechainService) CertificationsForInvoices(ctx context.Context, invoices []models.Invoice) (map[string]*models.Certification, error) {
	ids := make([]string, len(invoices))
	for i, invoice := range invoices {
		ids[i] = invoice.ID
	}
	certs, err := svc.Stores.Certifications.ListByInvoiceIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byInvoice := make(map[string]*models.Certification, len(certs))
	for i := range certs {
		byInvoice[certs[i].InvoiceID] = &certs[i]
	}
	return byInvoice, nil
}

func (svc *FacturechainService) resolveExistingCertification(ctx context.Context, invoice *models.Invoice) (*models.Invoice, *models.Certification, error) {
	cert, err := svc.Stores.Certifications.FindByInvoiceID(ctx, invoice.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("certification exists on chain but not in storage for invoice %s: %w", invoice.ID, err)
	}
	invoice.Status = common.InvoiceStatusCertified
	return invoice, cert, nil
}

func generateInvoiceNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%s", now.UTC().Format("20060102"), random.New().String(4, random.Numeric))
}
