package common

import "regexp"

var (
	addressRe = regexp.MustCompile(`^t[a-z0-9]{9}$`)
	nameRe    = regexp.MustCompile(`^(?:[a-z0-9-_]{1,32}@)?[a-z0-9]{1,64}\.tst$`)
)

// IsValidAddress reports whether s looks like a Tenebra address.
func IsValidAddress(s string) bool {
	return addressRe.MatchString(s)
}

// IsValidName reports whether s looks like a registered name, optionally
// with a metaname prefix ("meta@name.tst").
func IsValidName(s string) bool {
	return nameRe.MatchString(s)
}

// IsValidRecipient reports whether s can be the "to" of a transaction:
// either a plain address or a name.
func IsValidRecipient(s string) bool {
	return IsValidAddress(s) || IsValidName(s)
}
