package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Certification : proof that an invoice's content hash was anchored.
// Immutable after creation except for verification_count.
type Certification struct {
	bun.BaseModel `bun:"table:certifications,alias:c"`

	ID                string    `json:"id" bun:",pk"`
	InvoiceID         string    `json:"invoiceId" bun:",notnull,unique"`
	Invoice           *Invoice  `json:"-" bun:"rel:belongs-to,join:invoice_id=id"`
	PDFHash           string    `json:"pdfHash" bun:"pdf_hash,notnull"`
	BlockchainTxID    string    `json:"blockchainTxId" bun:"blockchain_tx_id,notnull"`
	BlockchainNetwork string    `json:"blockchainNetwork" bun:",notnull"`
	BlockNumber       int64     `json:"blockNumber" bun:",notnull"`
	CertifiedAt       time.Time `json:"certifiedAt" bun:",notnull"`
	PDFUrl            string    `json:"pdfUrl" bun:"pdf_url,nullzero"`
	VerificationCount int64     `json:"verificationCount" bun:",notnull,default:0"`
	CreatedAt         time.Time `json:"createdAt" bun:",nullzero,notnull,default:current_timestamp"`
}
