package stores

import (
	"context"
	"database/sql"
	"errors"

	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/db/models"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/driver/pgdriver"
)

// NewBunStores wires all stores to one shared connection pool.
func NewBunStores(db *bun.DB) *Stores {
	return &Stores{
		Users:          &bunUserStore{db: db},
		Invoices:       &bunInvoiceStore{db: db},
		Certifications: &bunCertificationStore{db: db},
		Verifications:  &bunVerificationLogStore{db: db},
	}
}

func isIntegrityViolation(err error) bool {
	var pgErr pgdriver.Error
	return errors.As(err, &pgErr) && pgErr.IntegrityViolation()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

type bunUserStore struct {
	db *bun.DB
}

func (s *bunUserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.db.NewInsert().Model(user).Exec(ctx)
	return err
}

func (s *bunUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.NewSelect().Model(&user).Where("u.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *bunUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.NewSelect().Model(&user).Where("lower(u.email) = lower(?)", email).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *bunUserStore) Update(ctx context.Context, user *models.User) error {
	res, err := s.db.NewUpdate().Model(user).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *bunUserStore) DeleteCascade(ctx context.Context, id string) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// the verification_logs FK is ON DELETE SET NULL, so audit
		// history survives the certification rows going away
		if _, err := tx.NewDelete().Model((*models.Certification)(nil)).
			Where("invoice_id IN (SELECT id FROM invoices WHERE user_id = ?)", id).
			Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewDelete().Model((*models.Invoice)(nil)).
			Where("user_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

type bunInvoiceStore struct {
	db *bun.DB
}

func (s *bunInvoiceStore) Create(ctx context.Context, invoice *models.Invoice) error {
	_, err := s.db.NewInsert().Model(invoice).Exec(ctx)
	return err
}

func (s *bunInvoiceStore) FindOwned(ctx context.Context, userID, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.NewSelect().Model(&invoice).
		Where("i.id = ? AND i.user_id = ?", id, userID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *bunInvoiceStore) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.NewSelect().Model(&invoice).Where("i.id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (s *bunInvoiceStore) Update(ctx context.Context, invoice *models.Invoice) error {
	res, err := s.db.NewUpdate().Model(invoice).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (s *bunInvoiceStore) DeleteCascade(ctx context.Context, userID, id string) error {
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*models.Certification)(nil)).
			Where("invoice_id = ?", id).Exec(ctx); err != nil {
			return err
		}
		res, err := tx.NewDelete().Model((*models.Invoice)(nil)).
			Where("id = ? AND user_id = ?", id, userID).Exec(ctx)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}

func (s *bunInvoiceStore) List(ctx context.Context, userID string, opts ListInvoicesOptions) ([]models.Invoice, int, error) {
	invoices := make([]models.Invoice, 0)
	q := s.db.NewSelect().Model(&invoices).Where("i.user_id = ?", userID)
	if opts.Status != "" {
		q = q.Where("i.status = ?", opts.Status)
	}
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		q = q.Where("(i.invoice_number ILIKE ? OR i.client_company_name ILIKE ?)", pattern, pattern)
	}
	total, err := q.Order("i.created_at DESC").
		Limit(opts.Limit).
		Offset((opts.Page - 1) * opts.Limit).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	return invoices, total, nil
}

type bunCertificationStore struct {
	db *bun.DB
}

func (s *bunCertificationStore) FindByInvoiceID(ctx context.Context, invoiceID string) (*models.Certification, error) {
	var cert models.Certification
	err := s.db.NewSelect().Model(&cert).Where("c.invoice_id = ?", invoiceID).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (s *bunCertificationStore) FindByHash(ctx context.Context, pdfHash string) (*models.Certification, error) {
	var cert models.Certification
	err := s.db.NewSelect().Model(&cert).Where("c.pdf_hash = ?", pdfHash).Limit(1).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (s *bunCertificationStore) ListByInvoiceIDs(ctx context.Context, invoiceIDs []string) ([]models.Certification, error) {
	certs := make([]models.Certification, 0)
	if len(invoiceIDs) == 0 {
		return certs, nil
	}
	err := s.db.NewSelect().Model(&certs).Where("c.invoice_id IN (?)", bun.In(invoiceIDs)).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return certs, nil
}

func (s *bunCertificationStore) Certify(ctx context.Context, invoice *models.Invoice, cert *models.Certification) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(cert).Exec(ctx); err != nil {
			return err
		}
		invoice.Status = common.InvoiceStatusCertified
		_, err := tx.NewUpdate().Model(invoice).
			Column("status", "updated_at").WherePK().Exec(ctx)
		return err
	})
	if isIntegrityViolation(err) {
		return ErrDuplicateCertification
	}
	return err
}

type bunVerificationLogStore struct {
	db *bun.DB
}

func (s *bunVerificationLogStore) RecordHit(ctx context.Context, cert *models.Certification, log *models.VerificationLog) error {
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewUpdate().Model((*models.Certification)(nil)).
			Set("verification_count = verification_count + 1").
			Where("id = ?", cert.ID).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(log).Exec(ctx)
		return err
	})
	if err != nil {
		return err
	}
	cert.VerificationCount++
	return nil
}

func (s *bunVerificationLogStore) RecordMiss(ctx context.Context, log *models.VerificationLog) error {
	_, err := s.db.NewInsert().Model(log).Exec(ctx)
	return err
}
