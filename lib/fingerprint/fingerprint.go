// Package fingerprint computes the canonical content hashes used for invoice
// certification and public verification. The object form serializes with
// lexicographically sorted keys so that attribute order never affects the
// digest; previously certified records depend on this canonicalization.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/facturechain/facturechain/db/models"
)

// HashBuffer returns the 0x-prefixed lowercase SHA-256 hex digest of raw bytes.
func HashBuffer(buf []byte) string {
	sum := sha256.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}

// HashObject serializes a field map and hashes it. encoding/json writes map
// keys in sorted order, which is the canonical form.
func HashObject(fields map[string]interface{}) (string, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return HashBuffer(raw), nil
}

// CanonicalInvoiceJSON serializes the invoice fields covered by the
// fingerprint. Mutable bookkeeping fields (status, updatedAt) are excluded so
// the digest stays stable once the invoice is certified.
func CanonicalInvoiceJSON(invoice *models.Invoice) ([]byte, error) {
	items := make([]map[string]interface{}, len(invoice.LineItems))
	for idx, item := range invoice.LineItems {
		items[idx] = map[string]interface{}{
			"description": item.Description,
			"quantity":    item.Quantity,
			"unitPrice":   item.UnitPrice,
			"vatRate":     item.VATRate,
		}
	}
	return json.Marshal(map[string]interface{}{
		"id":                invoice.ID,
		"userId":            invoice.UserID,
		"invoiceNumber":     invoice.InvoiceNumber,
		"issueDate":         invoice.IssueDate,
		"dueDate":           invoice.DueDate,
		"clientCompanyName": invoice.ClientCompanyName,
		"clientSiret":       invoice.ClientSiret,
		"clientAddress":     invoice.ClientAddress,
		"clientEmail":       invoice.ClientEmail,
		"lineItems":         items,
		"total_ht":          invoice.TotalHT,
		"total_tva":         invoice.TotalTVA,
		"total_ttc":         invoice.TotalTTC,
		"notes":             invoice.Notes,
		"createdAt":         invoice.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// HashInvoice computes the content fingerprint anchored at certification time.
func HashInvoice(invoice *models.Invoice) (string, error) {
	raw, err := CanonicalInvoiceJSON(invoice)
	if err != nil {
		return "", err
	}
	return HashBuffer(raw), nil
}

// Normalize maps any hex digest spelling to the canonical 0x-prefixed
// lowercase form used for certification lookups.
func Normalize(hash string) string {
	h := strings.ToLower(strings.TrimSpace(hash))
	if !strings.HasPrefix(h, "0x") {
		h = "0x" + h
	}
	return h
}
