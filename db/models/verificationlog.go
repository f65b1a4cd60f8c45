package models

import (
	"time"

	"github.com/uptrace/bun"
)

// VerificationLog : append-only audit record of a public verification
// attempt. Written on hits and misses alike. The certification reference is
// nullable and outlives the certification itself.
type VerificationLog struct {
	bun.BaseModel `bun:"table:verification_logs,alias:vl"`

	ID              string    `json:"id" bun:",pk"`
	CertificationID *string   `json:"certificationId" bun:",nullzero"`
	VerifiedAt      time.Time `json:"verifiedAt" bun:",notnull"`
	Method          string    `json:"verificationMethod" bun:"verification_method,notnull"`
	IPAddress       string    `json:"ipAddress" bun:"ip_address,nullzero"`
	Result          string    `json:"result" bun:",notnull"`
}
