package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/db/models"
	"github.com/facturechain/facturechain/lib/fingerprint"
	"github.com/google/uuid"
)

// VerifyOutcome is what a public verification attempt produced. Invoice and
// Certification are only set on a hit.
type VerifyOutcome struct {
	Status        string
	Hash          string
	Certification *models.Certification
	Invoice       *models.Invoice
}

// VerifyByHash looks a hash up against the certification registry. Every
// attempt is logged, hit or miss.
func (svc *FacturechainService) VerifyByHash(ctx context.Context, hash, method, ipAddress string) (*VerifyOutcome, error) {
	normalized := fingerprint.Normalize(hash)
	now := time.Now()

	cert, err := svc.Stores.Certifications.FindByHash(ctx, normalized)
	if errors.Is(err, sql.ErrNoRows) {
		miss := &models.VerificationLog{
			ID:         uuid.NewString(),
			VerifiedAt: now,
			Method:     method,
			IPAddress:  ipAddress,
			Result:     common.VerificationResultNotFound,
		}
		if err := svc.Stores.Verifications.RecordMiss(ctx, miss); err != nil {
			return nil, err
		}
		return &VerifyOutcome{Status: common.VerificationResultNotFound, Hash: normalized}, nil
	}
	if err != nil {
		return nil, err
	}

	hit := &models.VerificationLog{
		ID:              uuid.NewString(),
		CertificationID: &cert.ID,
		VerifiedAt:      now,
		Method:          method,
		IPAddress:       ipAddress,
		Result:          common.VerificationResultVerified,
	}
	if err := svc.Stores.Verifications.RecordHit(ctx, cert, hit); err != nil {
		return nil, err
	}

	invoice, err := svc.Stores.Invoices.FindByID(ctx, cert.InvoiceID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	return &VerifyOutcome{
		Status:        common.VerificationResultVerified,
		Hash:          normalized,
		Certification: cert,
		Invoice:       invoice,
	}, nil
}

// VerifyUploadedBuffer hashes an uploaded document and delegates to the hash
// lookup, so both public verification paths share one code path.
func (svc *FacturechainService) VerifyUploadedBuffer(ctx context.Context, buf []byte, ipAddress string) (*VerifyOutcome, error) {
	return svc.VerifyByHash(ctx, fingerprint.HashBuffer(buf), common.VerificationMethodPDFUpload, ipAddress)
}
