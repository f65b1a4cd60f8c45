package anchor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMockAnchorerReceipt(t *testing.T) {
	anchorer := NewMockAnchorer("polygon-amoy-mock")

	receipt, err := anchorer.Anchor(context.Background(), "0xdeadbeef")
	assert.NoError(t, err)
	assert.Equal(t, "polygon-amoy-mock", receipt.Network)
	assert.Equal(t, int64(MockBlockNumber), receipt.BlockNumber)
	assert.Len(t, receipt.TxID, 2+64)
	assert.Equal(t, "0x", receipt.TxID[:2])
}

func TestMockAnchorerTxIDsDiffer(t *testing.T) {
	anchorer := NewMockAnchorer("polygon-amoy-mock")

	first, err := anchorer.Anchor(context.Background(), "0x01")
	assert.NoError(t, err)
	second, err := anchorer.Anchor(context.Background(), "0x01")
	assert.NoError(t, err)
	assert.NotEqual(t, first.TxID, second.TxID)
}

func TestEVMAnchorerRequiresConfig(t *testing.T) {
	_, err := NewEVMAnchorer(&Config{Enabled: true}, testLogger())
	assert.ErrorIs(t, err, ErrMisconfigured)
}
