// Package walletgate keeps a session's shared wallet type in sync with the
// classification of the connected wallet and routes the session accordingly.
package walletgate

// ConnectionAddress identifies the connected wallet account. The zero value
// means no wallet is connected.
type ConnectionAddress string

// Present reports whether a wallet is connected
func (a ConnectionAddress) Present() bool {
	return a != ""
}

// WalletType is the classification of a connected account. The zero value is
// the unset state: classification has not resolved yet.
type WalletType string

const (
	WalletTypeUnset    WalletType = ""
	WalletTypeInActive WalletType = "InActive"
	WalletTypeLender   WalletType = "Lender"
	WalletTypeBorrower WalletType = "Borrower"
)

// Defined reports whether the classification has resolved to a value
func (t WalletType) Defined() bool {
	return t != WalletTypeUnset
}
