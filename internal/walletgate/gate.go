package walletgate

import (
	"github.com/lendborrow/lendborrow-api/internal/constants"
	"go.uber.org/zap"
)

// Gate wires the shared wallet type and the navigator to the observed
// connection address and classification. Each registered listener
// implements exactly one rule:
//
//   - address change: write the current classification, if connected
//   - classification change: write it, if connected
//   - classification change: navigate to signup or root, if defined
//
// The gate never writes the store while no wallet is connected.
type Gate struct {
	address    *Observable[ConnectionAddress]
	walletType *Observable[WalletType]
	store      WalletTypeSetter
	navigator  Navigator
	logger     *zap.Logger
}

// NewGate creates a gate. Start must be called to begin reacting.
func NewGate(
	address *Observable[ConnectionAddress],
	walletType *Observable[WalletType],
	store WalletTypeSetter,
	navigator Navigator,
	logger *zap.Logger,
) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{
		address:    address,
		walletType: walletType,
		store:      store,
		navigator:  navigator,
		logger:     logger,
	}
}

// Start registers the listeners and evaluates the address and navigation
// rules once against the current values. The returned function unregisters
// the listeners.
func (g *Gate) Start() (stop func()) {
	unsubs := []func(){
		g.address.Subscribe(func(_, next ConnectionAddress) { g.syncOnAddress(next) }),
		g.walletType.Subscribe(func(_, next WalletType) { g.syncOnClassification(next) }),
		g.walletType.Subscribe(func(_, next WalletType) { g.navigate(next) }),
	}

	g.syncOnAddress(g.address.Get())
	g.navigate(g.walletType.Get())

	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

func (g *Gate) syncOnAddress(address ConnectionAddress) {
	if !address.Present() {
		return
	}
	walletType := g.walletType.Get()
	g.store.SetWalletType(walletType)
	g.logger.Debug("Synced wallet type on address change",
		zap.String("address", string(address)),
		zap.String("wallet_type", string(walletType)),
	)
}

func (g *Gate) syncOnClassification(walletType WalletType) {
	address := g.address.Get()
	if !address.Present() {
		return
	}
	g.store.SetWalletType(walletType)
	g.logger.Debug("Synced wallet type on classification change",
		zap.String("address", string(address)),
		zap.String("wallet_type", string(walletType)),
	)
}

func (g *Gate) navigate(walletType WalletType) {
	path, ok := Destination(walletType)
	if !ok {
		return
	}

	g.logger.Info("Navigating wallet session",
		zap.String("wallet_type", string(walletType)),
		zap.String("path", path),
	)
	g.navigator.Navigate(path)
}

// Destination returns the path the gate routes walletType to, or false when
// the classification is unset
func Destination(walletType WalletType) (string, bool) {
	switch {
	case !walletType.Defined():
		return "", false
	case walletType == WalletTypeInActive:
		return constants.SignupPath, true
	default:
		return constants.RootPath, true
	}
}
