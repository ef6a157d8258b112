package crypto

import (
	"fmt"
	"strconv"
)

// AddressPrefix is the single-character prefix of every Tenebra address.
const AddressPrefix = "t"

// hexToBase36 maps a byte value onto the address alphabet (0-9a-z, with the
// characters past 'z' folded onto 'e').
func hexToBase36(input int) byte {
	b := 48 + input/7
	switch {
	case b+39 > 122:
		return 101
	case b > 57:
		return byte(b + 39)
	default:
		return byte(b)
	}
}

// MakeV2Address computes the "v2" address for a private key: the prefix
// followed by nine characters picked from a chain of double-sha256 digests.
// This is the same scheme every Tenebra (and Krist, with a different prefix)
// client uses, so addresses derived here match the node's.
func MakeV2Address(privatekey string) string {
	var chars [9]string
	hash := sha256Hex(sha256Hex(privatekey))

	for i := 0; i < 9; i++ {
		chars[i] = hash[:2]
		hash = sha256Hex(sha256Hex(hash))
	}

	address := []byte(AddressPrefix)
	for i := 0; i < 9; {
		idx64, err := strconv.ParseInt(hash[2*i:2*i+2], 16, 32)
		if err != nil {
			// hash is always lowercase hex, so this cannot happen
			panic(fmt.Sprintf("invalid hash chunk: %v", err))
		}
		idx := int(idx64) % 9

		if chars[idx] == "" {
			hash = sha256Hex(hash)
		} else {
			val, _ := strconv.ParseInt(chars[idx], 16, 32)
			address = append(address, hexToBase36(int(val)))
			chars[idx] = ""
			i++
		}
	}

	return string(address)
}
