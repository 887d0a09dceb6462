package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/lendborrow/lendborrow-api/internal/interfaces"
	"go.uber.org/zap"
)

var (
	ErrArtifactNotFound    = errors.New("contract artifact not found")
	ErrContractNotDeployed = errors.New("contract has not been deployed to detected network")
	ErrNoContractCode      = errors.New("no contract code at deployed address")
)

// Artifact is the subset of a Truffle build artifact needed to reach a deployed contract
type Artifact struct {
	ContractName string                     `json:"contractName"`
	ABI          json.RawMessage            `json:"abi"`
	Networks     map[string]ArtifactNetwork `json:"networks"`
}

// ArtifactNetwork records where a contract was deployed on one network
type ArtifactNetwork struct {
	Address         string `json:"address"`
	TransactionHash string `json:"transactionHash,omitempty"`
}

// Registry resolves contract names to deployed instances using the build
// artifacts in a directory (<dir>/<ContractName>.json)
type Registry struct {
	dir    string
	logger *zap.Logger
}

// NewRegistry creates a registry over the artifacts in dir
func NewRegistry(dir string, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{dir: dir, logger: logger}
}

// Artifact loads and parses the artifact for name
func (r *Registry) Artifact(name string) (*Artifact, error) {
	path := filepath.Join(r.dir, name+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, path)
		}
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var artifact Artifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}
	if len(artifact.ABI) == 0 {
		return nil, fmt.Errorf("artifact %s has no abi", path)
	}
	return &artifact, nil
}

// Deployed returns a handle to the instance of name deployed on the chain's
// network. The address must hold contract code.
func (r *Registry) Deployed(ctx context.Context, chain interfaces.ChainClient, name string) (*Deployment, error) {
	artifact, err := r.Artifact(name)
	if err != nil {
		return nil, err
	}

	contractABI, err := abi.JSON(bytes.NewReader(artifact.ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse abi of %s: %w", name, err)
	}

	networkID, err := chain.NetworkID(ctx)
	if err != nil {
		return nil, err
	}

	network, ok := artifact.Networks[networkID.String()]
	if !ok || network.Address == "" {
		return nil, fmt.Errorf("%s: %w (network id %s)", name, ErrContractNotDeployed, networkID)
	}
	if !common.IsHexAddress(network.Address) {
		return nil, fmt.Errorf("%s: invalid deployed address %q", name, network.Address)
	}
	address := common.HexToAddress(network.Address)

	code, err := chain.CodeAt(ctx, address)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, fmt.Errorf("%s: %w %s", name, ErrNoContractCode, address.Hex())
	}

	r.logger.Debug("Resolved deployed contract",
		zap.String("contract", name),
		zap.String("address", address.Hex()),
		zap.String("network_id", networkID.String()),
	)

	return &Deployment{
		Name:      name,
		Address:   address,
		NetworkID: new(big.Int).Set(networkID),
		ABI:       contractABI,
	}, nil
}
