package probe

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lendborrow/lendborrow-api/internal/client/blockchain"
	"github.com/lendborrow/lendborrow-api/internal/constants"
	"github.com/lendborrow/lendborrow-api/internal/interfaces"
	"go.uber.org/zap"
)

var (
	ErrAccountIndexOutOfRange = errors.New("account index out of range")
	ErrTransactionReverted    = errors.New("transaction reverted")
	ErrMissingLogs            = errors.New("receipt has fewer logs than expected")
)

// Defaults for the lender creation call
const (
	DefaultAccountIndex = 1
	DefaultDuration     = 1
	DefaultValue        = 10000
	DefaultLogCount     = 2
)

// DeploymentRegistry resolves a contract name to its deployed instance
type DeploymentRegistry interface {
	Deployed(ctx context.Context, chain interfaces.ChainClient, name string) (*blockchain.Deployment, error)
}

type Config struct {
	ContractName   string
	AccountIndex   int
	Duration       *big.Int
	Value          *big.Int // wei
	Gas            uint64   // zero lets the node estimate
	ReceiptTimeout time.Duration
	LogCount       int
}

func DefaultConfig() Config {
	return Config{
		ContractName: constants.LendBorrowContractName,
		AccountIndex: DefaultAccountIndex,
		Duration:     big.NewInt(DefaultDuration),
		Value:        big.NewInt(DefaultValue),
		LogCount:     DefaultLogCount,
	}
}

// Result is what a lender creation produced. Logs is only complete when Run
// returned no error.
type Result struct {
	Contract common.Address
	Sender   common.Address
	TxHash   common.Hash
	Receipt  *types.Receipt
	Logs     []*blockchain.DecodedLog
}

// LenderProbe submits one createLender transaction against a deployed
// contract for manual verification
type LenderProbe struct {
	chain    interfaces.ChainClient
	registry DeploymentRegistry
	cfg      Config
	logger   *zap.Logger
}

// NewLenderProbe creates a probe. An empty contract name, nil amounts and a
// non positive log count take their DefaultConfig values; AccountIndex is used as given.
func NewLenderProbe(chain interfaces.ChainClient, registry DeploymentRegistry, cfg Config, logger *zap.Logger) *LenderProbe {
	defaults := DefaultConfig()
	if cfg.ContractName == "" {
		cfg.ContractName = defaults.ContractName
	}
	if cfg.Duration == nil {
		cfg.Duration = defaults.Duration
	}
	if cfg.Value == nil {
		cfg.Value = defaults.Value
	}
	if cfg.LogCount <= 0 {
		cfg.LogCount = defaults.LogCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LenderProbe{
		chain:    chain,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run looks up the deployed contract and the sender account, submits
// createLender and decodes the leading receipt logs. It does not retry. Once
// the transaction is mined the returned Result carries the receipt, even
// alongside an error.
func (p *LenderProbe) Run(ctx context.Context) (*Result, error) {
	deployment, err := p.registry.Deployed(ctx, p.chain, p.cfg.ContractName)
	if err != nil {
		return nil, fmt.Errorf("failed to get deployed %s: %w", p.cfg.ContractName, err)
	}

	accounts, err := p.chain.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if p.cfg.AccountIndex < 0 || p.cfg.AccountIndex >= len(accounts) {
		return nil, fmt.Errorf("%w: index %d, %d accounts", ErrAccountIndexOutOfRange, p.cfg.AccountIndex, len(accounts))
	}
	sender := accounts[p.cfg.AccountIndex]

	p.logger.Debug("Submitting createLender",
		zap.String("contract", deployment.Address.Hex()),
		zap.String("sender", sender.Hex()),
		zap.String("duration", p.cfg.Duration.String()),
		zap.String("value", p.cfg.Value.String()),
	)

	txHash, err := deployment.Transact(ctx, p.chain, blockchain.TransactOpts{
		From:  sender,
		Value: p.cfg.Value,
		Gas:   p.cfg.Gas,
	}, constants.CreateLenderMethod, p.cfg.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to submit %s: %w", constants.CreateLenderMethod, err)
	}

	receipt, err := blockchain.WaitForReceipt(ctx, p.chain, txHash, p.cfg.ReceiptTimeout)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Contract: deployment.Address,
		Sender:   sender,
		TxHash:   txHash,
		Receipt:  receipt,
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return result, fmt.Errorf("%w: %s", ErrTransactionReverted, txHash.Hex())
	}

	if len(receipt.Logs) < p.cfg.LogCount {
		return result, fmt.Errorf("%w: want %d, got %d", ErrMissingLogs, p.cfg.LogCount, len(receipt.Logs))
	}
	for _, l := range receipt.Logs[:p.cfg.LogCount] {
		decoded, err := deployment.DecodeLog(l)
		if err != nil {
			return result, fmt.Errorf("failed to decode log %d: %w", l.Index, err)
		}
		result.Logs = append(result.Logs, decoded)
	}

	return result, nil
}

// Report writes the outcome of Run to the operator log. A mined receipt and
// whatever logs were decoded are logged even when Run failed afterwards.
func Report(logger *zap.Logger, result *Result, err error) {
	if result != nil && result.Receipt != nil {
		logger.Info("Transaction receipt",
			zap.String("tx_hash", result.TxHash.Hex()),
			zap.String("contract", result.Contract.Hex()),
			zap.String("sender", result.Sender.Hex()),
			zap.Uint64("status", result.Receipt.Status),
			zap.Uint64("gas_used", result.Receipt.GasUsed),
			zap.Any("receipt", spew.Sdump(result.Receipt)),
		)
		for i, l := range result.Logs {
			logger.Info("Log arguments",
				zap.Int("index", i),
				zap.String("event", l.Event),
				zap.Any("args", formatArgs(l.Args)),
			)
		}
	}

	if err != nil {
		logger.Error("Lender creation failed", zap.Error(err))
	}
}

func formatArgs(args map[string]interface{}) map[string]string {
	out := make(map[string]string, len(args))
	for name, v := range args {
		switch v := v.(type) {
		case common.Address:
			out[name] = v.Hex()
		case common.Hash:
			out[name] = v.Hex()
		default:
			out[name] = fmt.Sprint(v)
		}
	}
	return out
}
