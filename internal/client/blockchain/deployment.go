package blockchain

import (
	"context"
	"fmt"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lendborrow/lendborrow-api/internal/interfaces"
)

// Deployment is a handle to a contract instance on one network
type Deployment struct {
	Name      string
	Address   common.Address
	NetworkID *big.Int
	ABI       abi.ABI
}

// DecodedLog is a receipt log resolved against the contract ABI
type DecodedLog struct {
	Event   string                 `json:"event"`
	Address common.Address         `json:"address"`
	Args    map[string]interface{} `json:"args"`
}

// Pack encodes a call to method
func (d *Deployment) Pack(method string, args ...interface{}) ([]byte, error) {
	data, err := d.ABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s.%s: %w", d.Name, method, err)
	}
	return data, nil
}

// Call executes a read only method and returns its decoded outputs
func (d *Deployment) Call(ctx context.Context, chain interfaces.ChainClient, method string, args ...interface{}) ([]interface{}, error) {
	data, err := d.Pack(method, args...)
	if err != nil {
		return nil, err
	}

	to := d.Address
	out, err := chain.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data})
	if err != nil {
		return nil, fmt.Errorf("failed to call %s.%s: %w", d.Name, method, err)
	}

	values, err := d.ABI.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s.%s: %w", d.Name, method, err)
	}
	return values, nil
}

// TransactOpts is the sender side of a node signed transaction
type TransactOpts struct {
	From  common.Address
	Value *big.Int
	Gas   uint64 // zero lets the node estimate
}

// Transact submits method as a node signed transaction
func (d *Deployment) Transact(ctx context.Context, chain interfaces.ChainClient, opts TransactOpts, method string, args ...interface{}) (common.Hash, error) {
	data, err := d.Pack(method, args...)
	if err != nil {
		return common.Hash{}, err
	}

	to := d.Address
	return chain.SendTransaction(ctx, interfaces.SendTransactionParams{
		From:  opts.From,
		To:    &to,
		Value: opts.Value,
		Data:  data,
		Gas:   opts.Gas,
	})
}

// DecodeLog resolves log against the ABI events, indexed and non indexed
// arguments alike
func (d *Deployment) DecodeLog(log *types.Log) (*DecodedLog, error) {
	if log == nil || len(log.Topics) == 0 {
		return nil, fmt.Errorf("%s: cannot decode anonymous log", d.Name)
	}

	event, err := d.ABI.EventByID(log.Topics[0])
	if err != nil {
		return nil, fmt.Errorf("%s: unknown event %s: %w", d.Name, log.Topics[0].Hex(), err)
	}

	args := make(map[string]interface{})
	if err := event.Inputs.UnpackIntoMap(args, log.Data); err != nil {
		return nil, fmt.Errorf("failed to unpack %s data: %w", event.Name, err)
	}

	var indexed abi.Arguments
	for _, input := range event.Inputs {
		if input.Indexed {
			indexed = append(indexed, input)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, log.Topics[1:]); err != nil {
		return nil, fmt.Errorf("failed to parse %s topics: %w", event.Name, err)
	}

	return &DecodedLog{
		Event:   event.Name,
		Address: log.Address,
		Args:    args,
	}, nil
}
