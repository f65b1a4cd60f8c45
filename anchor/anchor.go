// Package anchor submits invoice content hashes to an external ledger for
// timestamping. The backend is chosen once at startup by configuration; the
// business logic only sees the Anchorer interface.
package anchor

import (
	"context"
	"errors"
)

// Receipt is the proof returned by a successful anchoring call.
type Receipt struct {
	TxID        string
	BlockNumber int64
	Network     string
}

// ErrAlreadyAnchored reports that the ledger already holds this hash. The
// idempotency pre-check in the service is a racy read; this error is the
// correctness backstop and must resolve to the committed certification, not
// to a failure.
var ErrAlreadyAnchored = errors.New("hash is already anchored")

// ErrMisconfigured reports missing required configuration, such as the
// signing key or contract address. Distinct from transient network failures.
var ErrMisconfigured = errors.New("anchoring backend is not configured")

type Anchorer interface {
	Anchor(ctx context.Context, hash string) (*Receipt, error)
}
