// Package backup implements the portable wallet backup format: a
// base64-encoded JSON blob carrying the vault's salt+tester and the full
// wallet and contact collections. Secrets inside stay encrypted; the blob is
// only useful to someone who knows the master password.
package backup

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/tmpim/tenebra-wallet/internal/crypto"
	"github.com/tmpim/tenebra-wallet/internal/model"
	"github.com/tmpim/tenebra-wallet/internal/store"
)

// Version is the current backup format version.
const Version = 2

// Backup is the decoded backup blob.
type Backup struct {
	Version int    `json:"version"`
	Salt    string `json:"salt"`
	Tester  string `json:"tester"`

	Wallets  model.WalletMap  `json:"wallets"`
	Contacts model.ContactMap `json:"contacts"`
}

// ErrUnsupportedVersion means the blob's version field is unknown.
var ErrUnsupportedVersion = errors.New("unsupported backup version")

// Export serializes the current state into a backup code. Wallets marked
// dontSave are excluded. Requires an initialized vault (the salt and tester
// are what lets an importer verify the master password), but not an unlocked
// session: the exported secrets stay as they are on disk.
func Export(session *crypto.Session, wallets *store.WalletStore, contacts *store.ContactStore) (string, error) {
	record := session.Record()
	if record == nil {
		return "", crypto.ErrNoVault
	}

	saved := model.WalletMap{}
	for id, w := range wallets.Map() {
		if w.DontSave {
			continue
		}
		saved[id] = w
	}

	b := Backup{
		Version:  Version,
		Salt:     record.Salt,
		Tester:   record.Tester,
		Wallets:  saved,
		Contacts: contacts.Map(),
	}

	data, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// ImportResult summarises an import.
type ImportResult struct {
	Wallets  int
	Contacts int
	Skipped  int
}

// Import merges a backup code into the local stores. The blob's master
// password is verified against the salt+tester it carries (ErrAuthFailed if
// wrong); each wallet secret is decrypted with the backup's key and
// re-encrypted under the current session key, so the import works even when
// the backup used a different master password. Wallets whose address already
// exists, and wallets whose ciphertext will not decrypt, are skipped.
func Import(code, masterPassword string, session *crypto.Session, wallets *store.WalletStore, contacts *store.ContactStore) (*ImportResult, error) {
	data, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		return nil, fmt.Errorf("backup code is not valid base64: %w", err)
	}

	var b Backup
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("failed to decode backup: %w", err)
	}
	if b.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, b.Version)
	}

	backupKey, err := session.VerifyRecord(masterPassword, &crypto.VaultRecord{
		Salt:   b.Salt,
		Tester: b.Tester,
	})
	if err != nil {
		return nil, err
	}
	defer clear(backupKey)

	currentKey, err := session.Key()
	if err != nil {
		return nil, err
	}
	defer clear(currentKey)

	log := logrus.WithField("component", "backup")
	result := &ImportResult{}

	for id, w := range b.Wallets {
		if w == nil {
			log.WithField("id", id).Warn("skipping null wallet entry")
			result.Skipped++
			continue
		}
		pk, err := crypto.DecryptSecret(backupKey, w.EncSecret, w.Nonce)
		if err != nil {
			log.WithField("id", id).Warn("skipping wallet with unreadable secret")
			result.Skipped++
			continue
		}

		encSecret, nonce, err := crypto.EncryptSecret(currentKey, pk)
		if err != nil {
			return result, err
		}

		imported := w.Clone()
		imported.ID = "" // assigned fresh by the store
		imported.EncSecret = encSecret
		imported.Nonce = nonce

		if err := wallets.Add(imported); err != nil {
			if store.IsDuplicateAddress(err) {
				result.Skipped++
				continue
			}
			return result, err
		}
		result.Wallets++
	}

	existing := map[string]bool{}
	for _, c := range contacts.List() {
		existing[c.Address] = true
	}
	for _, c := range b.Contacts {
		if c == nil || existing[c.Address] {
			result.Skipped++
			continue
		}
		imported := *c
		imported.ID = ""
		if err := contacts.Add(&imported); err != nil {
			return result, err
		}
		result.Contacts++
	}

	return result, nil
}
