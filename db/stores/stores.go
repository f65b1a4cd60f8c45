// Package stores defines the persistence boundary for the service layer.
// Two interchangeable backends exist: a bun/Postgres implementation for
// production and a process-local one for tests and storage-less deployments.
// Absent rows are reported as sql.ErrNoRows by both.
package stores

import (
	"context"
	"errors"

	"github.com/facturechain/facturechain/db/models"
)

// ErrDuplicateCertification is returned when the per-invoice uniqueness
// constraint rejects a second certification. The caller resolves it to the
// already-committed row.
var ErrDuplicateCertification = errors.New("invoice is already certified")

// ListInvoicesOptions narrows an invoice listing. Page and Limit are assumed
// pre-clamped by the caller.
type ListInvoicesOptions struct {
	Page   int
	Limit  int
	Search string
	Status string
}

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	// FindByEmail matches case-insensitively; emails are unique by
	// lowercase form.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	// DeleteCascade removes the user together with all owned invoices and
	// their certifications as one atomic unit.
	DeleteCascade(ctx context.Context, id string) error
}

type InvoiceStore interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	// FindOwned fails with sql.ErrNoRows whether the invoice is absent or
	// owned by another user.
	FindOwned(ctx context.Context, userID, id string) (*models.Invoice, error)
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	// DeleteCascade removes the invoice and its certification (if any)
	// atomically.
	DeleteCascade(ctx context.Context, userID, id string) error
	// List returns a page of the user's invoices ordered most recent first
	// plus the total match count.
	List(ctx context.Context, userID string, opts ListInvoicesOptions) ([]models.Invoice, int, error)
}

type CertificationStore interface {
	FindByInvoiceID(ctx context.Context, invoiceID string) (*models.Certification, error)
	FindByHash(ctx context.Context, pdfHash string) (*models.Certification, error)
	ListByInvoiceIDs(ctx context.Context, invoiceIDs []string) ([]models.Certification, error)
	// Certify inserts the certification and flips the invoice to certified
	// in a single atomic unit. A lost uniqueness race surfaces as
	// ErrDuplicateCertification with nothing written.
	Certify(ctx context.Context, invoice *models.Invoice, cert *models.Certification) error
}

type VerificationLogStore interface {
	// RecordHit increments the certification's verification count and
	// appends the log entry atomically.
	RecordHit(ctx context.Context, cert *models.Certification, log *models.VerificationLog) error
	RecordMiss(ctx context.Context, log *models.VerificationLog) error
}

// Stores bundles one backend's implementations for injection into the
// service at process start.
type Stores struct {
	Users          UserStore
	Invoices       InvoiceStore
	Certifications CertificationStore
	Verifications  VerificationLogStore
}
