package model

// Wallet represents a locally stored wallet: its address, the encrypted
// private key, and the remote fields cached by the last sync.
type Wallet struct {
	ID      string `json:"id"`
	Address string `json:"address"`

	Label    string `json:"label,omitempty"`
	Category string `json:"category,omitempty"`
	Username string `json:"username,omitempty"`

	// EncSecret and Nonce hold the AES-GCM ciphertext of the private key,
	// base64-encoded. Decryptable only with the master password's derived key.
	EncSecret string `json:"encSecret"`
	Nonce     string `json:"nonce"`

	// Format is the key derivation scheme that produced the private key.
	Format Format `json:"format"`

	// Cached remote fields. Balance, Names and FirstSeen are either all set
	// (last sync found the address) or all nil (address unknown upstream).
	Balance   *int64  `json:"balance,omitempty"`
	Names     *int    `json:"names,omitempty"`
	FirstSeen *string `json:"firstSeen,omitempty"`
	Stake     *int64  `json:"stake,omitempty"`

	// LastSynced is the time of the last reconciliation attempt (RFC 3339),
	// stamped on both successful and failed lookups.
	LastSynced string `json:"lastSynced,omitempty"`

	// DontSave excludes the wallet from backup exports.
	DontSave bool `json:"dontSave,omitempty"`
}

// WalletMap is the persisted wallet collection, keyed by wallet ID.
type WalletMap map[string]*Wallet

// Clone returns a deep copy of the wallet, so the store can hand copies to
// subscribers without sharing pointers into its own state.
func (w *Wallet) Clone() *Wallet {
	c := *w
	c.Balance = cloneInt64(w.Balance)
	c.Names = cloneInt(w.Names)
	c.FirstSeen = cloneString(w.FirstSeen)
	c.Stake = cloneInt64(w.Stake)
	return &c
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
