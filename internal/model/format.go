package model

import "fmt"

// Format identifies a wallet key derivation scheme. The names are carried
// over verbatim from earlier wallet clients so existing wallets keep deriving
// the same keys.
type Format string

const (
	// FormatTenebraWallet is the default scheme used by new wallets.
	FormatTenebraWallet Format = "tenebrawallet"

	// FormatUsernameAppendHashes is the legacy TenebraWallet extension
	// scheme combining username and password hashes under a fixed salt.
	FormatUsernameAppendHashes Format = "tenebrawallet_username_appendhashes"

	// FormatUsername combines username and password hashes with no salt.
	FormatUsername Format = "tenebrawallet_username"

	// FormatJwalelset chains the password through 18 rounds of sha256.
	FormatJwalelset Format = "jwalelset"

	// FormatAPI treats the password as the raw private key.
	FormatAPI Format = "api"
)

// Formats lists every supported scheme, default first.
var Formats = []Format{
	FormatTenebraWallet,
	FormatUsernameAppendHashes,
	FormatUsername,
	FormatJwalelset,
	FormatAPI,
}

// Valid reports whether f names a supported scheme.
func (f Format) Valid() bool {
	switch f {
	case FormatTenebraWallet, FormatUsernameAppendHashes, FormatUsername,
		FormatJwalelset, FormatAPI:
		return true
	}
	return false
}

// NeedsUsername reports whether the scheme consumes a username argument.
func (f Format) NeedsUsername() bool {
	return f == FormatUsernameAppendHashes || f == FormatUsername
}

// ParseFormat validates a format name from user input. An empty name selects
// the default scheme.
func ParseFormat(name string) (Format, error) {
	if name == "" {
		return FormatTenebraWallet, nil
	}
	f := Format(name)
	if !f.Valid() {
		return "", fmt.Errorf("unknown wallet format %q", name)
	}
	return f, nil
}
