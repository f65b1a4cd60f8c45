package anchor

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"
)

// InvoiceRegistry exposes certify(bytes32); the contract reverts with
// "already certified" on duplicate submissions.
const registryABI = `[{"inputs":[{"internalType":"bytes32","name":"invoiceHash","type":"bytes32"}],"name":"certify","outputs":[],"stateMutability":"nonpayable","type":"function"}]`

// EVMAnchorer submits certify transactions to the configured chain and waits
// for one confirmation.
type EVMAnchorer struct {
	client   *ethclient.Client
	contract *bind.BoundContract
	opts     *bind.TransactOpts
	network  string
	timeout  time.Duration
	logger   zerolog.Logger
}

func NewEVMAnchorer(c *Config, logger zerolog.Logger) (*EVMAnchorer, error) {
	if c.PrivateKey == "" || c.ContractAddress == "" {
		return nil, fmt.Errorf("%w: private key and contract address are required", ErrMisconfigured)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid private key: %v", ErrMisconfigured, err)
	}
	opts, err := bind.NewKeyedTransactorWithChainID(key, big.NewInt(c.ChainID))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMisconfigured, err)
	}
	client, err := ethclient.Dial(c.RPCUrl)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", c.RPCUrl, err)
	}
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	if err != nil {
		return nil, err
	}
	contract := bind.NewBoundContract(ethcommon.HexToAddress(c.ContractAddress), parsed, client, client, client)
	return &EVMAnchorer{
		client:   client,
		contract: contract,
		opts:     opts,
		network:  c.Network,
		timeout:  time.Duration(c.ConfirmationTimeout) * time.Second,
		logger:   logger,
	}, nil
}

func (a *EVMAnchorer) Anchor(ctx context.Context, hash string) (*Receipt, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(hash, "0x"))
	if err != nil || len(raw) != 32 {
		return nil, fmt.Errorf("hash %q is not a 32-byte hex digest", hash)
	}
	var digest [32]byte
	copy(digest[:], raw)

	opts := *a.opts
	opts.Context = ctx
	tx, err := a.contract.Transact(&opts, "certify", digest)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already certified") {
			return nil, ErrAlreadyAnchored
		}
		return nil, fmt.Errorf("submitting certify transaction: %w", err)
	}
	a.logger.Info().Str("tx", tx.Hash().Hex()).Msg("certify transaction sent, waiting for confirmation")

	// One bounded wait for a single confirmation. On timeout we fail
	// closed: the caller reports an error and the invoice stays draft.
	waitCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, a.client, tx)
	if err != nil {
		return nil, fmt.Errorf("waiting for confirmation of %s: %w", tx.Hash().Hex(), err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("certify transaction %s reverted", tx.Hash().Hex())
	}

	return &Receipt{
		TxID:        tx.Hash().Hex(),
		BlockNumber: receipt.BlockNumber.Int64(),
		Network:     a.network,
	}, nil
}

var _ Anchorer = (*EVMAnchorer)(nil)
