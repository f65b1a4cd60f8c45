package stores

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"

	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/db/models"
)

// memoryState is the process-local backend. A single mutex guards all
// entity maps so the cross-entity operations stay atomic, mirroring the
// transactional guarantees of the relational backend.
type memoryState struct {
	mu       sync.Mutex
	users    map[string]*models.User
	invoices map[string]*models.Invoice
	certs    map[string]*models.Certification
	logs     []*models.VerificationLog
	seq      int
	order    map[string]int
}

// NewMemoryStores builds a fresh in-memory backend.
func NewMemoryStores() *Stores {
	st := &memoryState{
		users:    make(map[string]*models.User),
		invoices: make(map[string]*models.Invoice),
		certs:    make(map[string]*models.Certification),
		order:    make(map[string]int),
	}
	return &Stores{
		Users:          &memUserStore{st},
		Invoices:       &memInvoiceStore{st},
		Certifications: &memCertificationStore{st},
		Verifications:  &memVerificationLogStore{st},
	}
}

func copyUser(u *models.User) *models.User {
	c := *u
	return &c
}

func copyInvoice(i *models.Invoice) *models.Invoice {
	c := *i
	c.LineItems = append([]models.LineItem(nil), i.LineItems...)
	return &c
}

func copyCert(cert *models.Certification) *models.Certification {
	c := *cert
	return &c
}

type memUserStore struct {
	st *memoryState
}

func (s *memUserStore) Create(ctx context.Context, user *models.User) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.users[user.ID] = copyUser(user)
	return nil
}

func (s *memUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	user, ok := s.st.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyUser(user), nil
}

func (s *memUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, user := range s.st.users {
		if strings.EqualFold(user.Email, email) {
			return copyUser(user), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memUserStore) Update(ctx context.Context, user *models.User) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.users[user.ID]; !ok {
		return sql.ErrNoRows
	}
	s.st.users[user.ID] = copyUser(user)
	return nil
}

func (s *memUserStore) DeleteCascade(ctx context.Context, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.users[id]; !ok {
		return sql.ErrNoRows
	}
	for invID, inv := range s.st.invoices {
		if inv.UserID != id {
			continue
		}
		s.st.deleteCertForInvoiceLocked(invID)
		delete(s.st.invoices, invID)
	}
	delete(s.st.users, id)
	return nil
}

// deleteCertForInvoiceLocked removes the invoice's certification and nulls
// the reference in any verification logs, keeping them as history.
func (st *memoryState) deleteCertForInvoiceLocked(invoiceID string) {
	for certID, cert := range st.certs {
		if cert.InvoiceID != invoiceID {
			continue
		}
		for _, log := range st.logs {
			if log.CertificationID != nil && *log.CertificationID == certID {
				log.CertificationID = nil
			}
		}
		delete(st.certs, certID)
	}
}

type memInvoiceStore struct {
	st *memoryState
}

func (s *memInvoiceStore) Create(ctx context.Context, invoice *models.Invoice) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	s.st.invoices[invoice.ID] = copyInvoice(invoice)
	s.st.seq++
	s.st.order[invoice.ID] = s.st.seq
	return nil
}

func (s *memInvoiceStore) FindOwned(ctx context.Context, userID, id string) (*models.Invoice, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	invoice, ok := s.st.invoices[id]
	if !ok || invoice.UserID != userID {
		return nil, sql.ErrNoRows
	}
	return copyInvoice(invoice), nil
}

func (s *memInvoiceStore) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	invoice, ok := s.st.invoices[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyInvoice(invoice), nil
}

func (s *memInvoiceStore) Update(ctx context.Context, invoice *models.Invoice) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	if _, ok := s.st.invoices[invoice.ID]; !ok {
		return sql.ErrNoRows
	}
	s.st.invoices[invoice.ID] = copyInvoice(invoice)
	return nil
}

func (s *memInvoiceStore) DeleteCascade(ctx context.Context, userID, id string) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	invoice, ok := s.st.invoices[id]
	if !ok || invoice.UserID != userID {
		return sql.ErrNoRows
	}
	s.st.deleteCertForInvoiceLocked(id)
	delete(s.st.invoices, id)
	return nil
}

func (s *memInvoiceStore) List(ctx context.Context, userID string, opts ListInvoicesOptions) ([]models.Invoice, int, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()

	matched := make([]*models.Invoice, 0)
	search := strings.ToLower(opts.Search)
	for _, invoice := range s.st.invoices {
		if invoice.UserID != userID {
			continue
		}
		if opts.Status != "" && invoice.Status != opts.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(invoice.InvoiceNumber), search) &&
			!strings.Contains(strings.ToLower(invoice.ClientCompanyName), search) {
			continue
		}
		matched = append(matched, invoice)
	}
	sort.Slice(matched, func(a, b int) bool {
		if !matched[a].CreatedAt.Equal(matched[b].CreatedAt) {
			return matched[a].CreatedAt.After(matched[b].CreatedAt)
		}
		return s.st.order[matched[a].ID] > s.st.order[matched[b].ID]
	})

	total := len(matched)
	start := (opts.Page - 1) * opts.Limit
	if start > total {
		start = total
	}
	end := start + opts.Limit
	if end > total {
		end = total
	}
	page := make([]models.Invoice, 0, end-start)
	for _, invoice := range matched[start:end] {
		page = append(page, *copyInvoice(invoice))
	}
	return page, total, nil
}

type memCertificationStore struct {
	st *memoryState
}

func (s *memCertificationStore) FindByInvoiceID(ctx context.Context, invoiceID string) (*models.Certification, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, cert := range s.st.certs {
		if cert.InvoiceID == invoiceID {
			return copyCert(cert), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memCertificationStore) FindByHash(ctx context.Context, pdfHash string) (*models.Certification, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, cert := range s.st.certs {
		if cert.PDFHash == pdfHash {
			return copyCert(cert), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *memCertificationStore) ListByInvoiceIDs(ctx context.Context, invoiceIDs []string) ([]models.Certification, error) {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	wanted := make(map[string]bool, len(invoiceIDs))
	for _, id := range invoiceIDs {
		wanted[id] = true
	}
	certs := make([]models.Certification, 0)
	for _, cert := range s.st.certs {
		if wanted[cert.InvoiceID] {
			certs = append(certs, *copyCert(cert))
		}
	}
	return certs, nil
}

func (s *memCertificationStore) Certify(ctx context.Context, invoice *models.Invoice, cert *models.Certification) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	for _, existing := range s.st.certs {
		if existing.InvoiceID == invoice.ID {
			return ErrDuplicateCertification
		}
	}
	stored, ok := s.st.invoices[invoice.ID]
	if !ok {
		return sql.ErrNoRows
	}
	s.st.certs[cert.ID] = copyCert(cert)
	stored.Status = common.InvoiceStatusCertified
	stored.UpdatedAt = cert.CertifiedAt
	invoice.Status = stored.Status
	invoice.UpdatedAt = stored.UpdatedAt
	return nil
}

type memVerificationLogStore struct {
	st *memoryState
}

func (s *memVerificationLogStore) RecordHit(ctx context.Context, cert *models.Certification, log *models.VerificationLog) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	stored, ok := s.st.certs[cert.ID]
	if !ok {
		return sql.ErrNoRows
	}
	stored.VerificationCount++
	cert.VerificationCount = stored.VerificationCount
	entry := *log
	s.st.logs = append(s.st.logs, &entry)
	return nil
}

func (s *memVerificationLogStore) RecordMiss(ctx context.Context, log *models.VerificationLog) error {
	s.st.mu.Lock()
	defer s.st.mu.Unlock()
	entry := *log
	s.st.logs = append(s.st.logs, &entry)
	return nil
}

// LogCount reports the number of recorded verification attempts. Exposed for
// tests.
func LogCount(s *Stores) int {
	mem, ok := s.Verifications.(*memVerificationLogStore)
	if !ok {
		return -1
	}
	mem.st.mu.Lock()
	defer mem.st.mu.Unlock()
	return len(mem.st.logs)
}

// LastLogMethod reports the method of the most recent verification attempt.
// Exposed for tests.
func LastLogMethod(s *Stores) (string, bool) {
	mem, ok := s.Verifications.(*memVerificationLogStore)
	if !ok {
		return "", false
	}
	mem.st.mu.Lock()
	defer mem.st.mu.Unlock()
	if len(mem.st.logs) == 0 {
		return "", false
	}
	return mem.st.logs[len(mem.st.logs)-1].Method, true
}
