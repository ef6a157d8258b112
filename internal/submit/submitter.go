// Package submit builds and posts transactions and staking actions on behalf
// of a stored wallet.
package submit

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tmpim/tenebra-wallet/internal/crypto"
	"github.com/tmpim/tenebra-wallet/internal/model"
	"github.com/tmpim/tenebra-wallet/internal/store"
)

// WalletDecryptError means a wallet's ciphertext could not be read under a
// key that verified correctly against the vault. That never happens in
// normal operation; it signals local data corruption and is not retried.
type WalletDecryptError struct {
	WalletID string
}

func (e *WalletDecryptError) Error() string {
	return fmt.Sprintf("wallet %s secret is unreadable (data corruption?)", e.WalletID)
}

// Poster is the slice of the node client the submitter needs.
type Poster interface {
	MakeTransaction(ctx context.Context, privatekey, to string, amount int64, metadata string) (*model.Transaction, error)
	Deposit(ctx context.Context, privatekey string, amount int64) (*model.Stake, error)
	Withdraw(ctx context.Context, privatekey string, amount int64) (*model.Stake, error)
}

// Submitter decrypts a wallet's secret under the master password and submits
// signed requests to the node. It never touches the wallet store: after a
// successful submit the caller triggers a targeted sync for the affected
// wallets, keeping the store the single source of truth.
type Submitter struct {
	session *crypto.Session
	wallets *store.WalletStore
	poster  Poster
	log     *logrus.Entry
}

// New creates a submitter.
func New(session *crypto.Session, wallets *store.WalletStore, poster Poster) *Submitter {
	return &Submitter{
		session: session,
		wallets: wallets,
		poster:  poster,
		log:     logrus.WithField("component", "submit"),
	}
}

// privatekey verifies the master password, decrypts the wallet's secret and
// returns the private key. The password is verified on every call; holding
// an unlocked session is not enough to move funds.
func (s *Submitter) privatekey(walletID, masterPassword string) (string, error) {
	key, err := s.session.VerifyPassword(masterPassword)
	if err != nil {
		return "", err
	}
	defer clear(key)

	w, err := s.wallets.Get(walletID)
	if err != nil {
		return "", err
	}

	pk, err := crypto.DecryptSecret(key, w.EncSecret, w.Nonce)
	if err != nil {
		if errors.Is(err, crypto.ErrDecryptFailed) {
			s.log.WithField("id", walletID).Error("wallet ciphertext unreadable under verified key")
			return "", &WalletDecryptError{WalletID: walletID}
		}
		return "", err
	}
	return pk, nil
}

// Send submits a transaction of amount from the wallet to an address or
// name. Node rejections (insufficient funds, invalid recipient) come back as
// client.APIError values.
func (s *Submitter) Send(ctx context.Context, walletID, masterPassword, to string, amount int64, metadata string) (*model.Transaction, error) {
	pk, err := s.privatekey(walletID, masterPassword)
	if err != nil {
		return nil, err
	}

	tx, err := s.poster.MakeTransaction(ctx, pk, to, amount, metadata)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// Deposit stakes amount from the wallet.
func (s *Submitter) Deposit(ctx context.Context, walletID, masterPassword string, amount int64) (*model.Stake, error) {
	pk, err := s.privatekey(walletID, masterPassword)
	if err != nil {
		return nil, err
	}
	return s.poster.Deposit(ctx, pk, amount)
}

// Withdraw unstakes amount back to the wallet.
func (s *Submitter) Withdraw(ctx context.Context, walletID, masterPassword string, amount int64) (*model.Stake, error) {
	pk, err := s.privatekey(walletID, masterPassword)
	if err != nil {
		return nil, err
	}
	return s.poster.Withdraw(ctx, pk, amount)
}
