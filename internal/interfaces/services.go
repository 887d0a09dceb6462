package interfaces

import (
	"context"

	"github.com/lendborrow/lendborrow-api/internal/walletgate"
)

// WalletClassifier derives the wallet type of a connected account
type WalletClassifier interface {
	Classify(ctx context.Context, address walletgate.ConnectionAddress) (walletgate.WalletType, error)
}
