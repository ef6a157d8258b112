package model

// Request/response types for the local HTTP API.

// AddWalletRequest represents request for POST /wallets
type AddWalletRequest struct {
	Label    string `json:"label,omitempty"`
	Category string `json:"category,omitempty"`
	Format   string `json:"format,omitempty"`
	Password string `json:"password"`
	Username string `json:"username,omitempty"`
	DontSave bool   `json:"dontSave,omitempty"`
}

// EditWalletRequest represents request for PUT /wallets/{id}. Only metadata
// fields may be edited; key material is immutable after creation.
type EditWalletRequest struct {
	Label    *string `json:"label,omitempty"`
	Category *string `json:"category,omitempty"`
	DontSave *bool   `json:"dontSave,omitempty"`
}

// WalletListResponse represents response for GET /wallets
type WalletListResponse struct {
	Count   int       `json:"count"`
	Wallets []*Wallet `json:"wallets"`
}

// ContactRequest represents request for POST /contacts and PUT /contacts/{id}
type ContactRequest struct {
	Address string `json:"address"`
	Label   string `json:"label,omitempty"`
	IsName  bool   `json:"isName,omitempty"`
}

// ContactListResponse represents response for GET /contacts
type ContactListResponse struct {
	Count    int        `json:"count"`
	Contacts []*Contact `json:"contacts"`
}

// MasterPasswordRequest represents request for the master password endpoints
type MasterPasswordRequest struct {
	Password string `json:"password"`
}

// AuthStatusResponse represents response for GET /master-password
type AuthStatusResponse struct {
	IsAuthed          bool `json:"isAuthed"`
	HasMasterPassword bool `json:"hasMasterPassword"`
}

// SendRequest represents request for POST /transactions
type SendRequest struct {
	WalletID       string `json:"walletId"`
	MasterPassword string `json:"masterPassword"`
	To             string `json:"to"`
	Amount         int64  `json:"amount"`
	Metadata       string `json:"metadata,omitempty"`
}

// SendResponse represents response for POST /transactions
type SendResponse struct {
	Transaction *Transaction `json:"transaction"`
}

// StakeRequest represents request for POST /staking and /staking/withdraw
type StakeRequest struct {
	WalletID       string `json:"walletId"`
	MasterPassword string `json:"masterPassword"`
	Amount         int64  `json:"amount"`
}

// StakeResponse represents response for the staking endpoints
type StakeResponse struct {
	Stake *Stake `json:"stake"`
}

// BackupExportResponse represents response for GET /backup
type BackupExportResponse struct {
	Code string `json:"code"`
}

// BackupImportRequest represents request for POST /backup
type BackupImportRequest struct {
	Code           string `json:"code"`
	MasterPassword string `json:"masterPassword"`
}

// BackupImportResponse represents response for POST /backup
type BackupImportResponse struct {
	Wallets  int `json:"wallets"`
	Contacts int `json:"contacts"`
	Skipped  int `json:"skipped"`
}
