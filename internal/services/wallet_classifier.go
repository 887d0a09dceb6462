package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/lendborrow/lendborrow-api/internal/client/blockchain"
	"github.com/lendborrow/lendborrow-api/internal/constants"
	"github.com/lendborrow/lendborrow-api/internal/interfaces"
	"github.com/lendborrow/lendborrow-api/internal/walletgate"
	"go.uber.org/zap"
)

var ErrInvalidWalletAddress = errors.New("invalid wallet address")

// ContractWalletClassifier reads a wallet's type from the lending contract
// (getWalletType(address) returns (string))
type ContractWalletClassifier struct {
	chain        interfaces.ChainClient
	registry     *blockchain.Registry
	contractName string
	logger       *zap.Logger

	mu         sync.Mutex
	deployment *blockchain.Deployment
}

var _ interfaces.WalletClassifier = (*ContractWalletClassifier)(nil)

// NewContractWalletClassifier creates a classifier backed by the named contract
func NewContractWalletClassifier(chain interfaces.ChainClient, registry *blockchain.Registry, contractName string, logger *zap.Logger) *ContractWalletClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractWalletClassifier{
		chain:        chain,
		registry:     registry,
		contractName: contractName,
		logger:       logger,
	}
}

// Classify returns the on-chain wallet type of address. An empty result from
// the contract is returned as the unset type.
func (c *ContractWalletClassifier) Classify(ctx context.Context, address walletgate.ConnectionAddress) (walletgate.WalletType, error) {
	if !common.IsHexAddress(string(address)) {
		return walletgate.WalletTypeUnset, fmt.Errorf("%w: %q", ErrInvalidWalletAddress, address)
	}

	deployment, err := c.resolve(ctx)
	if err != nil {
		return walletgate.WalletTypeUnset, err
	}

	values, err := deployment.Call(ctx, c.chain, constants.GetWalletTypeMethod, common.HexToAddress(string(address)))
	if err != nil {
		return walletgate.WalletTypeUnset, err
	}
	if len(values) != 1 {
		return walletgate.WalletTypeUnset, fmt.Errorf("unexpected %s result: %d values", constants.GetWalletTypeMethod, len(values))
	}
	walletType, ok := values[0].(string)
	if !ok {
		return walletgate.WalletTypeUnset, fmt.Errorf("unexpected %s result type %T", constants.GetWalletTypeMethod, values[0])
	}

	c.logger.Debug("Classified wallet",
		zap.String("address", string(address)),
		zap.String("wallet_type", walletType),
	)
	return walletgate.WalletType(walletType), nil
}

// resolve looks the contract up once and caches the handle; failures are retried on the next call
func (c *ContractWalletClassifier) resolve(ctx context.Context) (*blockchain.Deployment, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.deployment != nil {
		return c.deployment, nil
	}

	deployment, err := c.registry.Deployed(ctx, c.chain, c.contractName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", c.contractName, err)
	}
	c.deployment = deployment
	return deployment, nil
}
