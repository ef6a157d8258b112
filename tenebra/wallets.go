// Package tenebra holds the wallet-level operations that tie the crypto,
// store and client layers together.
package tenebra

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/tmpim/tenebra-wallet/internal/crypto"
	"github.com/tmpim/tenebra-wallet/internal/model"
	"github.com/tmpim/tenebra-wallet/internal/store"
)

// CreateWallet derives a private key from the request's password (per the
// chosen wallet format), computes its address, encrypts the key under the
// current session key and inserts the wallet into the store. Requires an
// unlocked session.
func CreateWallet(session *crypto.Session, wallets *store.WalletStore, req *model.AddWalletRequest) (*model.Wallet, error) {
	format, err := model.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}
	if req.Password == "" {
		return nil, fmt.Errorf("password is required")
	}

	key, err := session.Key()
	if err != nil {
		return nil, err
	}
	defer clear(key)

	privatekey, err := crypto.Derive(format, req.Password, req.Username)
	if err != nil {
		return nil, err
	}
	address := crypto.MakeV2Address(privatekey)

	encSecret, nonce, err := crypto.EncryptSecret(key, privatekey)
	if err != nil {
		return nil, err
	}

	w := &model.Wallet{
		Address:   address,
		Label:     req.Label,
		Category:  req.Category,
		Username:  req.Username,
		EncSecret: encSecret,
		Nonce:     nonce,
		Format:    format,
		DontSave:  req.DontSave,
	}
	if err := wallets.Add(w); err != nil {
		return nil, err
	}
	return w, nil
}

// DecryptWallet verifies the master password and returns the wallet's
// private key.
func DecryptWallet(session *crypto.Session, w *model.Wallet, masterPassword string) (string, error) {
	key, err := session.VerifyPassword(masterPassword)
	if err != nil {
		return "", err
	}
	defer clear(key)

	return crypto.DecryptSecret(key, w.EncSecret, w.Nonce)
}

// AddressQR renders an address as a QR code PNG, for easy scanning when
// receiving funds.
func AddressQR(address string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := qrcode.Encode(address, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR code: %w", err)
	}
	return png, nil
}
