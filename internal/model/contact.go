package model

// Contact is an address book entry. Contacts carry no secret material and are
// never synced with the node.
type Contact struct {
	ID      string `json:"id"`
	Address string `json:"address"`
	Label   string `json:"label,omitempty"`

	// IsName marks contacts whose address is a Tenebra name rather than a
	// plain address.
	IsName bool `json:"isName,omitempty"`
}

// ContactMap is the persisted contact collection, keyed by contact ID.
type ContactMap map[string]*Contact
