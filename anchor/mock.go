package anchor

import (
	"context"
	"crypto/rand"
	"encoding/hex"
)

// MockBlockNumber is the fixed block number reported by the mock backend.
const MockBlockNumber = 12345678

// MockAnchorer synthesizes receipts without any network call. Used for local
// development and tests.
type MockAnchorer struct {
	network string
}

func NewMockAnchorer(network string) *MockAnchorer {
	return &MockAnchorer{network: network}
}

func (m *MockAnchorer) Anchor(ctx context.Context, hash string) (*Receipt, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return &Receipt{
		TxID:        "0x" + hex.EncodeToString(buf),
		BlockNumber: MockBlockNumber,
		Network:     m.network,
	}, nil
}

var _ Anchorer = (*MockAnchorer)(nil)
