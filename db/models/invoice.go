package models

import (
	"context"
	"time"

	"github.com/facturechain/facturechain/common"
	"github.com/uptrace/bun"
)

// LineItem is a value embedded in an invoice's line_items column. Order is
// display order only.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" validate:"gt=0"`
	UnitPrice   float64 `json:"unitPrice" validate:"gte=0"`
	VATRate     float64 `json:"vatRate" validate:"gte=0"`
}

// Invoice : Invoice Model. The client_* columns are a snapshot taken at
// invoice time, not a reference to a client record.
type Invoice struct {
	bun.BaseModel `bun:"table:invoices,alias:i"`

	ID                string     `json:"id" bun:",pk"`
	UserID            string     `json:"userId" bun:",notnull"`
	User              *User      `json:"-" bun:"rel:belongs-to,join:user_id=id"`
	InvoiceNumber     string     `json:"invoiceNumber" bun:",notnull"`
	IssueDate         string     `json:"issueDate" bun:",notnull"`
	DueDate           string     `json:"dueDate" bun:",notnull"`
	ClientCompanyName string     `json:"clientCompanyName" bun:",nullzero"`
	ClientSiret       string     `json:"clientSiret" bun:",nullzero"`
	ClientAddress     string     `json:"clientAddress" bun:",nullzero"`
	ClientEmail       string     `json:"clientEmail" bun:",nullzero"`
	LineItems         []LineItem `json:"lineItems" bun:"line_items,type:jsonb"`
	TotalHT           float64    `json:"total_ht" bun:"total_ht"`
	TotalTVA          float64    `json:"total_tva" bun:"total_tva"`
	TotalTTC          float64    `json:"total_ttc" bun:"total_ttc"`
	Notes             string     `json:"notes" bun:",nullzero"`
	Status            string     `json:"status" bun:",notnull,default:'draft'"`
	CreatedAt         time.Time  `json:"createdAt" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt         time.Time  `json:"updatedAt" bun:",nullzero,notnull,default:current_timestamp"`
}

func (i *Invoice) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		i.UpdatedAt = time.Now()
	}
	return nil
}

// ComputeTotals recomputes the three derived totals from the current line
// items. Totals are never stored independently of the items.
func (i *Invoice) ComputeTotals() {
	var ht, tva float64
	for _, item := range i.LineItems {
		ht += item.Quantity * item.UnitPrice
		tva += item.Quantity * item.UnitPrice * (item.VATRate / 100)
	}
	i.TotalHT = ht
	i.TotalTVA = tva
	i.TotalTTC = ht + tva
}

func (i *Invoice) IsCertified() bool {
	return i.Status == common.InvoiceStatusCertified
}

var _ bun.BeforeAppendModelHook = (*Invoice)(nil)
