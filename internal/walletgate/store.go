package walletgate

import (
	"sync"
	"time"
)

// WalletTypeSetter is the write side of the shared wallet type. The gate is its
// only caller.
type WalletTypeSetter interface {
	SetWalletType(walletType WalletType)
}

// WalletSnapshot is an immutable view of the shared wallet type
type WalletSnapshot struct {
	WalletType WalletType `json:"wallet_type"`
	Defined    bool       `json:"defined"`
	Version    uint64     `json:"version"`
	UpdatedAt  time.Time  `json:"updated_at,omitempty"`
}

// WalletStore holds the session scoped shared wallet type. It starts
// undefined and keeps the last written value until overwritten.
type WalletStore struct {
	mu   sync.RWMutex
	snap WalletSnapshot
	now  func() time.Time
}

// NewWalletStore creates an undefined store
func NewWalletStore() *WalletStore {
	return &WalletStore{now: time.Now}
}

// SetWalletType records walletType. An unset value is still a write.
func (s *WalletStore) SetWalletType(walletType WalletType) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snap = WalletSnapshot{
		WalletType: walletType,
		Defined:    true,
		Version:    s.snap.Version + 1,
		UpdatedAt:  s.now(),
	}
}

// Snapshot returns a copy of the current state
func (s *WalletStore) Snapshot() WalletSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}
