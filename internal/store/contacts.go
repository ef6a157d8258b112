package store

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	"github.com/tmpim/tenebra-wallet/internal/event"
	"github.com/tmpim/tenebra-wallet/internal/model"
)

const contactsFile = "contacts.json"

// ContactStore is the address book. Contacts hold no secret material and are
// only ever changed by direct user action, never by sync.
type ContactStore struct {
	mu       sync.Mutex
	path     string
	bus      EventBus.Bus
	contacts model.ContactMap
}

// OpenContactStore loads (or creates) the contact collection under dataDir.
func OpenContactStore(dataDir string, bus EventBus.Bus) (*ContactStore, error) {
	s := &ContactStore{
		path:     filepath.Join(dataDir, contactsFile),
		bus:      bus,
		contacts: model.ContactMap{},
	}
	if err := readJSONFile(s.path, &s.contacts); err != nil {
		return nil, err
	}
	return s, nil
}

// Add inserts a new contact, assigning an ID when it has none.
func (s *ContactStore) Add(c *model.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	stored := *c
	s.contacts[stored.ID] = &stored
	if err := s.persist(); err != nil {
		delete(s.contacts, stored.ID)
		return err
	}

	copied := stored
	s.bus.Publish(event.TopicContactAdded, &copied)
	return nil
}

// Edit replaces a contact's address, label and isName flag.
func (s *ContactStore) Edit(id, address, label string, isName bool) (*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}

	prev := *c
	c.Address = address
	c.Label = label
	c.IsName = isName
	if err := s.persist(); err != nil {
		s.contacts[id] = &prev
		return nil, err
	}

	out := *c
	notify := *c
	s.bus.Publish(event.TopicContactUpdated, &notify)
	return &out, nil
}

// Remove deletes a contact by ID.
func (s *ContactStore) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return ErrNotFound
	}

	delete(s.contacts, id)
	if err := s.persist(); err != nil {
		s.contacts[id] = c
		return err
	}

	s.bus.Publish(event.TopicContactRemoved, id)
	return nil
}

// Get returns a copy of the contact with the given ID.
func (s *ContactStore) Get(id string) (*model.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *c
	return &out, nil
}

// List returns copies of all contacts ordered by label then address.
func (s *ContactStore) List() []*model.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*model.Contact, 0, len(s.contacts))
	for _, c := range s.contacts {
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// Map returns a copy of the whole collection keyed by ID.
func (s *ContactStore) Map() model.ContactMap {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(model.ContactMap, len(s.contacts))
	for id, c := range s.contacts {
		copied := *c
		out[id] = &copied
	}
	return out
}

// persist must be called with the lock held.
func (s *ContactStore) persist() error {
	return writeJSONFile(s.path, s.contacts)
}
