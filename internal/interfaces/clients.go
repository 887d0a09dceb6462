package interfaces

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ChainClient is the subset of the EVM JSON-RPC surface used by the gate and the probe
type ChainClient interface {
	NetworkID(ctx context.Context) (*big.Int, error)
	CodeAt(ctx context.Context, account common.Address) ([]byte, error)
	Accounts(ctx context.Context) ([]common.Address, error)
	SendTransaction(ctx context.Context, params SendTransactionParams) (common.Hash, error)
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)
	Close()
}

// SendTransactionParams contains parameters for a node signed transaction
type SendTransactionParams struct {
	From  common.Address
	To    *common.Address
	Value *big.Int
	Data  []byte
	Gas   uint64 // zero lets the node estimate
}
