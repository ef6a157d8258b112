package model

// Types returned by the Tenebra node's REST API.

// Address is an address record from the lookup API. Names is only present
// when the lookup was made with fetchNames.
type Address struct {
	Address   string `json:"address"`
	Balance   int64  `json:"balance"`
	TotalIn   int64  `json:"totalin,omitempty"`
	TotalOut  int64  `json:"totalout,omitempty"`
	FirstSeen string `json:"firstseen"`
	Names     *int   `json:"names,omitempty"`
}

// Stake is a staking record from the stake lookup API.
type Stake struct {
	Owner  string `json:"owner"`
	Stake  int64  `json:"stake"`
	Active bool   `json:"active,omitempty"`
}

// TransactionType mirrors the node's transaction type strings.
type TransactionType string

const (
	TransactionTypeTransfer     TransactionType = "transfer"
	TransactionTypeMined        TransactionType = "mined"
	TransactionTypeNamePurchase TransactionType = "name_purchase"
	TransactionTypeNameARecord  TransactionType = "name_a_record"
	TransactionTypeNameTransfer TransactionType = "name_transfer"
	TransactionTypeStaking      TransactionType = "staking"
	TransactionTypeUnknown      TransactionType = "unknown"
)

// Transaction is a transaction record from the node.
type Transaction struct {
	ID           int             `json:"id"`
	From         string          `json:"from,omitempty"`
	To           string          `json:"to"`
	Value        int64           `json:"value"`
	Time         string          `json:"time"`
	Name         string          `json:"name,omitempty"`
	Metadata     string          `json:"metadata,omitempty"`
	SentName     string          `json:"sent_name,omitempty"`
	SentMetaname string          `json:"sent_metaname,omitempty"`
	Type         TransactionType `json:"type"`
}

// Block is a block record from the node.
type Block struct {
	Height     int64   `json:"height"`
	Address    string  `json:"address"`
	Hash       string  `json:"hash,omitempty"`
	ShortHash  string  `json:"short_hash,omitempty"`
	Value      int64   `json:"value"`
	Difficulty float64 `json:"difficulty"`
	Time       string  `json:"time"`
}

// Name is a registered name record from the node.
type Name struct {
	Name          string `json:"name"`
	Owner         string `json:"owner"`
	OriginalOwner string `json:"original_owner,omitempty"`
	Registered    string `json:"registered"`
	Updated       string `json:"updated,omitempty"`
	ARecord       string `json:"a,omitempty"`
	Unpaid        int64  `json:"unpaid"`
}

// MOTD is the node's message of the day, including the sync node metadata the
// client cares about.
type MOTD struct {
	MOTD       string `json:"motd"`
	Set        string `json:"motd_set,omitempty"`
	PublicURL  string `json:"public_url,omitempty"`
	Debug      bool   `json:"debug_mode,omitempty"`
	LastBlock  *Block `json:"last_block,omitempty"`
	WorkValue  int64  `json:"work,omitempty"`
	Membership string `json:"membership,omitempty"`
}

// WorkDetailed is the response of GET work/detailed.
type WorkDetailed struct {
	Work            int64 `json:"work"`
	Unpaid          int64 `json:"unpaid"`
	UnpaidPenalties int64 `json:"unpaidPenalties"`
	BaseValue       int64 `json:"base_value"`
	BlockValue      int64 `json:"block_value"`
}
