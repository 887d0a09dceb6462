package blockchain_test

import (
	"context"
	"math/big"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/lendborrow/lendborrow-api/internal/client/blockchain"
	"github.com/lendborrow/lendborrow-api/internal/interfaces"
	"github.com/lendborrow/lendborrow-api/internal/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestDeployment_DecodeLog(t *testing.T) {
	deployment := deployedContract(t)
	lender := common.HexToAddress("0x742d35Cc6634C0532925a3B8d12C67d8b12b9873")

	event := deployment.ABI.Events["LenderCreated"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(10000), big.NewInt(1))
	require.NoError(t, err)

	decoded, err := deployment.DecodeLog(&types.Log{
		Address: deployment.Address,
		Topics:  []common.Hash{event.ID, common.BytesToHash(lender.Bytes())},
		Data:    data,
	})
	require.NoError(t, err)

	assert.Equal(t, "LenderCreated", decoded.Event)
	assert.Equal(t, deployment.Address, decoded.Address)
	assert.Equal(t, lender, decoded.Args["lender"])
	assert.Equal(t, 0, big.NewInt(10000).Cmp(decoded.Args["amount"].(*big.Int)))
	assert.Equal(t, 0, big.NewInt(1).Cmp(decoded.Args["duration"].(*big.Int)))
}

func TestDeployment_DecodeLog_Errors(t *testing.T) {
	deployment := deployedContract(t)

	_, err := deployment.DecodeLog(&types.Log{})
	assert.ErrorContains(t, err, "anonymous log")

	_, err = deployment.DecodeLog(&types.Log{Topics: []common.Hash{common.HexToHash("0x01")}})
	assert.ErrorContains(t, err, "unknown event")
}

func TestDeployment_Call(t *testing.T) {
	deployment := deployedContract(t)
	wallet := common.HexToAddress("0x28C6c06298d514Db089934071355E5743bf21d60")

	out, err := deployment.ABI.Methods["getWalletType"].Outputs.Pack("Lender")
	require.NoError(t, err)

	ctrl := gomock.NewController(t)
	chain := mocks.NewMockChainClient(ctrl)
	chain.EXPECT().CallContract(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
			assert.Equal(t, deployment.Address, *msg.To)
			assert.Equal(t, deployment.ABI.Methods["getWalletType"].ID, msg.Data[:4])
			return out, nil
		})

	values, err := deployment.Call(context.Background(), chain, "getWalletType", wallet)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "Lender", values[0])
}

func TestDeployment_Transact(t *testing.T) {
	deployment := deployedContract(t)
	sender := common.HexToAddress("0x742d35Cc6634C0532925a3B8d12C67d8b12b9873")
	txHash := common.HexToHash("0xabc123")

	ctrl := gomock.NewController(t)
	chain := mocks.NewMockChainClient(ctrl)
	chain.EXPECT().SendTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, params interfaces.SendTransactionParams) (common.Hash, error) {
			assert.Equal(t, sender, params.From)
			assert.Equal(t, deployment.Address, *params.To)
			assert.Equal(t, int64(10000), params.Value.Int64())
			assert.Equal(t, deployment.ABI.Methods["createLender"].ID, params.Data[:4])
			assert.Equal(t, uint64(300000), params.Gas)
			return txHash, nil
		})

	got, err := deployment.Transact(context.Background(), chain, blockchain.TransactOpts{
		From:  sender,
		Value: big.NewInt(10000),
		Gas:   300000,
	}, "createLender", big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, txHash, got)
}

func TestDeployment_PackUnknownMethod(t *testing.T) {
	deployment := deployedContract(t)

	_, err := deployment.Pack("withdrawAll")
	assert.ErrorContains(t, err, "failed to pack LendBorrowContract.withdrawAll")
}
