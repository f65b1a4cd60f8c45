package service

import (
	"context"
	"testing"

	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/db/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoiceDefaults(t *testing.T) {
	svc := newTestService(t)
	user := registerTestUser(t, svc, "owner@example.com")

	invoice, err := svc.CreateInvoice(context.Background(), user.ID, InvoiceParams{})
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatusDraft, invoice.Status)
	assert.Regexp(t, `^INV-\d{8}-\d{4}$`, invoice.InvoiceNumber)
	assert.Equal(t, invoice.IssueDate, invoice.DueDate)
	assert.Zero(t, invoice.TotalTTC)
	assert.NotNil(t, invoice.LineItems)
}

func TestCreateInvoiceComputesTotals(t *testing.T) {
	svc := newTestService(t)
	user := registerTestUser(t, svc, "owner@example.com")

	invoice := createTestInvoice(t, svc, user.ID)
	assert.InDelta(t, 2000.0, invoice.TotalHT, 0.001)
	assert.InDelta(t, 300.0, invoice.TotalTVA, 0.001)
	assert.InDelta(t, 2300.0, invoice.TotalTTC, 0.001)
}

func TestUpdateInvoiceRecomputesTotals(t *testing.T) {
	svc := newTestService(t)
	user := registerTestUser(t, svc, "owner@example.com")
	invoice := createTestInvoice(t, svc, user.ID)

	items := []models.LineItem{{Description: "Forfait", Quantity: 1, UnitPrice: 100, VATRate: 20}}
	updated, err := svc.UpdateInvoice(context.Background(), user.ID, invoice.ID, InvoiceParams{LineItems: &items})
	require.NoError(t, err)
	assert.InDelta(t, 100.0, updated.TotalHT, 0.001)
	assert.InDelta(t, 120.0, updated.TotalTTC, 0.001)
}

func TestUpdateInvoicePartialKeepsFields(t *testing.T) {
	svc := newTestService(t)
	user := registerTestUser(t, svc, "owner@example.com")
	invoice := createTestInvoice(t, svc, user.ID)

	notes := "net 30"
	updated, err := svc.UpdateInvoice(context.Background(), user.ID, invoice.ID, InvoiceParams{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "net 30", updated.Notes)
	assert.Equal(t, "Novaris SAS", updated.ClientCompanyName)
	assert.Len(t, updated.LineItems, 2)
}

func TestGetInvoiceOwnerMismatchIsNotFound(t *testing.T) {
	svc := newTestService(t)
	owner := registerTestUser(t, svc, "owner@example.com")
	other := registerTestUser(t, svc, "other@example.com")
	invoice := createTestInvoice(t, svc, owner.ID)

	_, err := svc.GetInvoice(context.Background(), other.ID, invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	_, err = svc.UpdateInvoice(context.Background(), other.ID, invoice.ID, InvoiceParams{})
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	err = svc.DeleteInvoice(context.Background(), other.ID, invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestListInvoicesFilters(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")

	first := createTestInvoice(t, svc, user.ID)
	client := "Globex GmbH"
	_, err := svc.CreateInvoice(ctx, user.ID, InvoiceParams{ClientCompanyName: &client})
	require.NoError(t, err)
	_, _, err = svc.CertifyInvoice(ctx, user.ID, first.ID)
	require.NoError(t, err)

	all, total, err := svc.ListInvoices(ctx, user.ID, ListInvoicesParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, all, 2)

	certified, total, err := svc.ListInvoices(ctx, user.ID, ListInvoicesParams{Status: common.InvoiceStatusCertified})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, certified, 1)
	assert.Equal(t, first.ID, certified[0].ID)

	byClient, total, err := svc.ListInvoices(ctx, user.ID, ListInvoicesParams{Search: "novaris"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byClient, 1)
	assert.Equal(t, first.ID, byClient[0].ID)
}

func TestListInvoicesClampsPagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")
	createTestInvoice(t, svc, user.ID)

	invoices, total, err := svc.ListInvoices(ctx, user.ID, ListInvoicesParams{Page: -3, Limit: 100000})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, invoices, 1)
}

func TestDuplicateInvoiceIsFreshDraft(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")
	invoice := createTestInvoice(t, svc, user.ID)
	_, _, err := svc.CertifyInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)

	copy, err := svc.DuplicateInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)
	assert.NotEqual(t, invoice.ID, copy.ID)
	assert.NotEqual(t, invoice.InvoiceNumber, copy.InvoiceNumber)
	assert.Equal(t, common.InvoiceStatusDraft, copy.Status)
	assert.Equal(t, invoice.TotalTTC, copy.TotalTTC)
	assert.Equal(t, invoice.ClientCompanyName, copy.ClientCompanyName)
}

func TestCertifyInvoice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")
	invoice := createTestInvoice(t, svc, user.ID)

	certified, cert, err := svc.CertifyInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatusCertified, certified.Status)
	assert.Equal(t, invoice.ID, cert.InvoiceID)
	assert.Regexp(t, `^0x[0-9a-f]{64}$`, cert.PDFHash)
	assert.NotEmpty(t, cert.BlockchainTxID)

	stored, err := svc.GetInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, common.InvoiceStatusCertified, stored.Status)
}

func TestCertifyInvoiceIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")
	invoice := createTestInvoice(t, svc, user.ID)

	_, first, err := svc.CertifyInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)
	_, second, err := svc.CertifyInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.BlockchainTxID, second.BlockchainTxID)
}

func TestCertifyInvoiceConcurrent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")
	invoice := createTestInvoice(t, svc, user.ID)

	const attempts = 8
	results := make(chan string, attempts)
	errs := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			_, cert, err := svc.CertifyInvoice(ctx, user.ID, invoice.ID)
			if err != nil {
				errs <- err
				return
			}
			results <- cert.ID
		}()
	}
	ids := map[string]bool{}
	for i := 0; i < attempts; i++ {
		select {
		case id := <-results:
			ids[id] = true
		case err := <-errs:
			t.Fatalf("concurrent certify failed: %v", err)
		}
	}
	assert.Len(t, ids, 1)
}

func TestCertifiedInvoiceRejectsUpdate(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")
	invoice := createTestInvoice(t, svc, user.ID)
	_, _, err := svc.CertifyInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)

	notes := "late edit"
	_, err = svc.UpdateInvoice(ctx, user.ID, invoice.ID, InvoiceParams{Notes: &notes})
	assert.ErrorIs(t, err, ErrInvoiceCertified)
}

func TestDeleteInvoiceCascades(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")
	invoice := createTestInvoice(t, svc, user.ID)
	_, cert, err := svc.CertifyInvoice(ctx, user.ID, invoice.ID)
	require.NoError(t, err)

	outcome, err := svc.VerifyByHash(ctx, cert.PDFHash, common.VerificationMethodHash, "127.0.0.1")
	require.NoError(t, err)
	require.Equal(t, common.VerificationResultVerified, outcome.Status)

	require.NoError(t, svc.DeleteInvoice(ctx, user.ID, invoice.ID))

	_, err = svc.GetInvoice(ctx, user.ID, invoice.ID)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)

	// the hash no longer verifies, but the earlier log survives
	after, err := svc.VerifyByHash(ctx, cert.PDFHash, common.VerificationMethodHash, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, common.VerificationResultNotFound, after.Status)
}

func TestCertificationsForInvoices(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	user := registerTestUser(t, svc, "owner@example.com")
	first := createTestInvoice(t, svc, user.ID)
	second := createTestInvoice(t, svc, user.ID)
	_, cert, err := svc.CertifyInvoice(ctx, user.ID, first.ID)
	require.NoError(t, err)

	invoices, _, err := svc.ListInvoices(ctx, user.ID, ListInvoicesParams{})
	require.NoError(t, err)
	byInvoice, err := svc.CertificationsForInvoices(ctx, invoices)
	require.NoError(t, err)
	require.Contains(t, byInvoice, first.ID)
	assert.Equal(t, cert.ID, byInvoice[first.ID].ID)
	assert.NotContains(t, byInvoice, second.ID)
}
