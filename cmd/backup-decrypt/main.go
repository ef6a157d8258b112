// One-off: decode a wallet backup code offline and print the private keys it
// contains. Useful for recovering funds without running the daemon.
// Usage: go run ./cmd/backup-decrypt <backup-file>
package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/tmpim/tenebra-wallet/internal/backup"
	"github.com/tmpim/tenebra-wallet/internal/crypto"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: backup-decrypt <backup-file>")
		os.Exit(1)
	}

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	code := strings.TrimSpace(string(raw))

	data, err := base64.StdEncoding.DecodeString(code)
	if err != nil {
		fmt.Fprintln(os.Stderr, "backup code is not valid base64:", err)
		os.Exit(1)
	}

	var b backup.Backup
	if err := json.Unmarshal(data, &b); err != nil {
		fmt.Fprintln(os.Stderr, "failed to decode backup:", err)
		os.Exit(1)
	}
	if b.Version != backup.Version {
		fmt.Fprintf(os.Stderr, "unsupported backup version %d\n", b.Version)
		os.Exit(1)
	}

	fmt.Fprint(os.Stderr, "Enter master password: ")
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	key, err := crypto.Verify(crypto.DefaultParams, string(pw), &crypto.VaultRecord{
		Salt:   b.Salt,
		Tester: b.Tester,
	})
	clear(pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "master password verification failed:", err)
		os.Exit(1)
	}
	defer clear(key)

	for _, w := range b.Wallets {
		pk, err := crypto.DecryptSecret(key, w.EncSecret, w.Nonce)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: secret unreadable, skipping\n", w.Address)
			continue
		}
		fmt.Printf("%s\t%s\n", w.Address, pk)
	}
}
