package order

import (
	"maps"
	"slices"
)

// Snapshot is a copy of everything the store holds, safe to read while the
// store keeps changing.
type Snapshot struct {
	Order        Order
	HasOrder     bool
	Interactions []Interaction
	Addresses    map[AddressType]Address
	Schedule     Schedule
	HasSchedule  bool
	Protected    bool
	Version      uint64
}

// Snapshot returns a deep copy of the store state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Interactions: s.journal.list(),
		Addresses:    maps.Clone(s.addresses),
		Protected:    s.guard.isActive(s.now()),
		Version:      s.version,
	}
	if s.order != nil {
		snap.Order = s.order.clone()
		snap.HasOrder = true
	}
	if s.schedule != nil {
		snap.Schedule = *s.schedule
		snap.HasSchedule = true
	}
	return snap
}

// Order returns a copy of the current order; the zero Order when none exists.
func (s *Store) Order() Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.order == nil {
		return Order{}
	}
	return s.order.clone()
}

// Item returns a copy of the item with the given id.
func (s *Store) Item(itemID string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		return Item{}, false
	}
	return s.order.Items[idx].clone(), true
}

// Quantity returns the ordered quantity of an item, zero when absent.
func (s *Store) Quantity(itemID string) int {
	it, ok := s.Item(itemID)
	if !ok {
		return 0
	}
	return it.Quantity
}

// ItemsFor returns the items belonging to the given cleaner.
func (s *Store) ItemsFor(cleanerID string) []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.order == nil {
		return nil
	}
	var out []Item
	for _, it := range s.order.Items {
		if it.Cleaner.ID == cleanerID {
			out = append(out, it.clone())
		}
	}
	return out
}

// Interactions returns the interaction log in append order.
func (s *Store) Interactions() []Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.journal.list()
}

// InteractionCount returns the number of journaled interactions.
func (s *Store) InteractionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.journal.len()
}

// Protected reports whether the update protection window is open.
func (s *Store) Protected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.guard.isActive(s.now())
}

// Address returns the address saved under t.
func (s *Store) Address(t AddressType) (Address, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.addresses[t]
	return a, ok
}

// AddressTypes returns the saved address keys in a stable order.
func (s *Store) AddressTypes() []AddressType {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := slices.Collect(maps.Keys(s.addresses))
	slices.Sort(keys)
	return keys
}

// Scheduling returns the saved schedule.
func (s *Store) Scheduling() (Schedule, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == nil {
		return Schedule{}, false
	}
	return *s.schedule, true
}

// Version increases on every state change. The UI uses it to skip redraws.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.version
}
