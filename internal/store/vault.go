package store

import (
	"os"
	"path/filepath"

	"github.com/tmpim/tenebra-wallet/internal/crypto"
)

const vaultFile = "vault.json"

// LoadVaultRecord reads the persisted master password record. Returns nil
// (and no error) when no vault has been initialized yet.
func LoadVaultRecord(dataDir string) (*crypto.VaultRecord, error) {
	path := filepath.Join(dataDir, vaultFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	var record crypto.VaultRecord
	if err := readJSONFile(path, &record); err != nil {
		return nil, err
	}
	if record.Salt == "" && record.Tester == "" {
		return nil, nil
	}
	return &record, nil
}

// SaveVaultRecord persists the master password record.
func SaveVaultRecord(dataDir string, record *crypto.VaultRecord) error {
	return writeJSONFile(filepath.Join(dataDir, vaultFile), record)
}
