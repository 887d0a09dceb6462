package blockchain

import (
	"context"
	"math/big"
	"time"

	"github.com/cenkalti/backoff/v4"
	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	httpclient "github.com/lendborrow/lendborrow-api/internal/client/http"
	"github.com/lendborrow/lendborrow-api/internal/interfaces"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Client talks to an EVM node over JSON-RPC. Node managed accounts are used for
// signing, the way a local development chain exposes them.
type Client struct {
	rpc    *rpc.Client
	eth    *ethclient.Client
	logger *zap.Logger
}

var _ interfaces.ChainClient = (*Client)(nil)

// Dial connects to the node at rpcURL
func Dial(ctx context.Context, rpcURL string, logger *zap.Logger) (*Client, error) {
	httpClient := httpclient.NewHTTPClient(
		httpclient.WithMiddleware(httpclient.LoggingMiddleware(logger)),
	)
	rc, err := rpc.DialOptions(ctx, rpcURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to %s", rpcURL)
	}
	return NewClient(rc, logger), nil
}

// NewClient wraps an established RPC connection
func NewClient(rc *rpc.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		rpc:    rc,
		eth:    ethclient.NewClient(rc),
		logger: logger,
	}
}

// NetworkID returns the node's network id (net_version)
func (c *Client) NetworkID(ctx context.Context) (*big.Int, error) {
	id, err := c.eth.NetworkID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get network id")
	}
	return id, nil
}

// CodeAt returns the code deployed at account in the latest block
func (c *Client) CodeAt(ctx context.Context, account common.Address) ([]byte, error) {
	code, err := c.eth.CodeAt(ctx, account, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get code at %s", account.Hex())
	}
	return code, nil
}

// Accounts lists the accounts managed by the node (eth_accounts)
func (c *Client) Accounts(ctx context.Context) ([]common.Address, error) {
	var accounts []common.Address
	if err := c.rpc.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}
	return accounts, nil
}

type sendTxArgs struct {
	From  common.Address  `json:"from"`
	To    *common.Address `json:"to,omitempty"`
	Value *hexutil.Big    `json:"value,omitempty"`
	Data  hexutil.Bytes   `json:"data,omitempty"`
	Gas   *hexutil.Uint64 `json:"gas,omitempty"`
}

// SendTransaction submits a transaction signed by the node (eth_sendTransaction)
func (c *Client) SendTransaction(ctx context.Context, params interfaces.SendTransactionParams) (common.Hash, error) {
	args := sendTxArgs{
		From: params.From,
		To:   params.To,
		Data: params.Data,
	}
	if params.Value != nil {
		args.Value = (*hexutil.Big)(params.Value)
	}
	if params.Gas > 0 {
		gas := hexutil.Uint64(params.Gas)
		args.Gas = &gas
	}

	var hash common.Hash
	if err := c.rpc.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return common.Hash{}, errors.Wrap(err, "failed to send transaction")
	}

	c.logger.Debug("Transaction submitted",
		zap.String("tx_hash", hash.Hex()),
		zap.String("from", params.From.Hex()),
	)
	return hash, nil
}

// TransactionReceipt returns the receipt of a mined transaction. It returns
// ethereum.NotFound while the transaction is pending.
func (c *Client) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return c.eth.TransactionReceipt(ctx, txHash)
}

// CallContract executes a read only call against the latest block
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, err := c.eth.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, errors.Wrap(err, "contract call failed")
	}
	return out, nil
}

// Close closes the RPC connection
func (c *Client) Close() {
	c.rpc.Close()
}

// Receipt polling
const (
	receiptInitialInterval = 200 * time.Millisecond
	receiptMaxInterval     = 5 * time.Second
)

// WaitForReceipt polls until txHash is mined. Zero timeout waits until ctx is done.
func WaitForReceipt(ctx context.Context, chain interfaces.ChainClient, txHash common.Hash, timeout time.Duration) (*types.Receipt, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = receiptInitialInterval
	b.MaxInterval = receiptMaxInterval
	b.MaxElapsedTime = timeout

	receipt, err := backoff.RetryWithData(func() (*types.Receipt, error) {
		receipt, err := chain.TransactionReceipt(ctx, txHash)
		if errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		return receipt, nil
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, errors.Wrapf(err, "failed waiting for receipt of %s", txHash.Hex())
	}
	return receipt, nil
}
