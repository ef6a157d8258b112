package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	"github.com/tmpim/tenebra-wallet/internal/event"
	"github.com/tmpim/tenebra-wallet/internal/model"
)

const walletsFile = "wallets.json"

// ErrNotFound means the requested record does not exist in the store.
var ErrNotFound = errors.New("not found in store")

// DuplicateAddressError means a wallet with the same address already exists.
type DuplicateAddressError struct {
	Address string
}

func (e *DuplicateAddressError) Error() string {
	return fmt.Sprintf("wallet with address %s already exists", e.Address)
}

// IsDuplicateAddress checks if error is a DuplicateAddressError.
func IsDuplicateAddress(err error) bool {
	var dup *DuplicateAddressError
	return errors.As(err, &dup)
}

// SyncResult is one wallet's share of a sync batch: a complete snapshot of
// the remote fields, not a delta. Found=false means the address is unknown to
// the node, which clears the cached fields rather than deleting the wallet.
type SyncResult struct {
	Found     bool
	Balance   int64
	Names     int
	FirstSeen string
	// Stake is nil when the stake lookup had no record for the address, in
	// which case the previous cached stake is kept.
	Stake *int64
	Time  time.Time
}

// WalletStore is the set of locally known wallets, persisted to a JSON file
// in the data directory. Every mutation is written durably first and only
// then announced on the bus, so subscribers never observe unpersisted state.
type WalletStore struct {
	mu      sync.Mutex
	path    string
	bus     EventBus.Bus
	wallets model.WalletMap
}

// OpenWalletStore loads (or creates) the wallet collection under dataDir.
func OpenWalletStore(dataDir string, bus EventBus.Bus) (*WalletStore, error) {
	s := &WalletStore{
		path:    filepath.Join(dataDir, walletsFile),
		bus:     bus,
		wallets: model.WalletMap{},
	}
	if err := readJSONFile(s.path, &s.wallets); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts a new wallet. Address uniqueness is enforced here: a wallet
// whose address is already present fails with DuplicateAddressError and the
// store is left unchanged. Assigns an ID when the wallet has none.
func (s *WalletStore) Add(w *model.Wallet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.wallets {
		if existing.Address == w.Address {
			return &DuplicateAddressError{Address: w.Address}
		}
	}

	if w.ID == "" {
		w.ID = uuid.NewString()
	}

	stored := w.Clone()
	s.wallets[stored.ID] = stored
	if err := s.persist(); err != nil {
		delete(s.wallets, stored.ID)
		return err
	}

	s.bus.Publish(event.TopicWalletAdded, stored.Clone())
	return nil
}

// Edit applies mutate to the wallet under the store lock, persists and
// notifies. The callback must only touch metadata fields; sync fields are
// owned by ApplySync so the two never conflict.
func (s *WalletStore) Edit(id string, mutate func(w *model.Wallet)) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok {
		return nil, ErrNotFound
	}

	prev := w.Clone()
	mutate(w)
	if err := s.persist(); err != nil {
		s.wallets[id] = prev
		return nil, err
	}

	out := w.Clone()
	s.bus.Publish(event.TopicWalletUpdated, w.Clone())
	return out, nil
}

// ApplySync merges a sync snapshot into a wallet. Balance, names and
// firstSeen move together: all set when the address was found, all cleared
// when it was not, so a partial cache state is never persisted. Returns
// ErrNotFound when the wallet was deleted while the lookup was in flight;
// the stale result is simply discarded.
func (s *WalletStore) ApplySync(id string, res SyncResult) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok {
		return nil, ErrNotFound
	}

	prev := w.Clone()
	if res.Found {
		balance, names, firstSeen := res.Balance, res.Names, res.FirstSeen
		w.Balance = &balance
		w.Names = &names
		w.FirstSeen = &firstSeen
		if res.Stake != nil {
			stake := *res.Stake
			w.Stake = &stake
		}
	} else {
		w.Balance = nil
		w.Names = nil
		w.FirstSeen = nil
	}
	w.LastSynced = res.Time.UTC().Format(time.RFC3339)

	if err := s.persist(); err != nil {
		s.wallets[id] = prev
		return nil, err
	}

	out := w.Clone()
	s.bus.Publish(event.TopicWalletUpdated, w.Clone())
	return out, nil
}

// Remove deletes a wallet by ID.
func (s *WalletStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok {
		return ErrNotFound
	}

	delete(s.wallets, id)
	if err := s.persist(); err != nil {
		s.wallets[id] = w
		return err
	}

	s.bus.Publish(event.TopicWalletRemoved, id)
	return nil
}

// Get returns a copy of the wallet with the given ID.
func (s *WalletStore) Get(id string) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.wallets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return w.Clone(), nil
}

// GetByAddress returns a copy of the wallet with the given address.
func (s *WalletStore) GetByAddress(address string) (*model.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, w := range s.wallets {
		if w.Address == address {
			return w.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// List returns copies of all wallets, ordered by label then address for a
// stable presentation.
func (s *WalletStore) List() []*model.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Wallet, 0, len(s.wallets))
	for _, w := range s.wallets {
		out = append(out, w.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// Map returns a copy of the whole collection keyed by ID (used by backup
// export).
func (s *WalletStore) Map() model.WalletMap {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(model.WalletMap, len(s.wallets))
	for id, w := range s.wallets {
		out[id] = w.Clone()
	}
	return out
}

// persist must be called with the lock held.
func (s *WalletStore) persist() error {
	return writeJSONFile(s.path, s.wallets)
}
