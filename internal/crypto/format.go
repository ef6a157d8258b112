package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/tmpim/tenebra-wallet/internal/model"
)

// Fixed derivation salts inherited from the original KristWallet lineage.
// These exact strings are load-bearing: changing them changes every derived
// key, locking users out of existing wallets.
const (
	walletSalt    = "KRISTWALLET"
	extensionSalt = "KRISTWALLETEXTENSION"

	// jwalelset hashes the password through this many sequential rounds.
	jwalelsetRounds = 18
)

func sha256Hex(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Derive turns a password (and, for the schemes that use one, a username)
// into the wallet's private key string. Pure and deterministic: identical
// inputs always produce identical output. A missing username for a scheme
// that wants one hashes the empty string, matching the behaviour existing
// wallets were created with.
func Derive(format model.Format, password, username string) (string, error) {
	switch format {
	case model.FormatTenebraWallet:
		return sha256Hex(walletSalt+password) + "-000", nil

	case model.FormatUsernameAppendHashes:
		inner := sha256Hex(sha256Hex(username) + "^" + sha256Hex(password))
		return sha256Hex(extensionSalt+inner) + "-000", nil

	case model.FormatUsername:
		return sha256Hex(sha256Hex(username) + "^" + sha256Hex(password)), nil

	case model.FormatJwalelset:
		key := password
		for i := 0; i < jwalelsetRounds; i++ {
			key = sha256Hex(key)
		}
		return key, nil

	case model.FormatAPI:
		return password, nil

	default:
		return "", fmt.Errorf("unknown wallet format %q", format)
	}
}
