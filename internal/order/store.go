package order

import (
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// StaleSignature describes a bulk payload known to be a replayed echo of an
// earlier order. A matching SaveOrderData is refused while an order exists.
type StaleSignature struct {
	Enabled     bool
	TotalAmount decimal.Decimal
	TotalItems  int
}

// DefaultStaleSignature is the 280 / 4 echo observed in the field.
func DefaultStaleSignature() StaleSignature {
	return StaleSignature{
		Enabled:     true,
		TotalAmount: decimal.NewFromInt(280),
		TotalItems:  4,
	}
}

// Matches reports whether t carries the signature.
func (s StaleSignature) Matches(t Totals) bool {
	return s.Enabled && t.Items == s.TotalItems && t.Amount.Equal(s.TotalAmount)
}

// Options configure a Store. The zero value uses the defaults.
type Options struct {
	// ProtectionWindow defaults to DefaultProtectionWindow.
	ProtectionWindow time.Duration
	// StaleSignature defaults to DefaultStaleSignature. Set Enabled=false
	// to turn the check off.
	StaleSignature *StaleSignature
	Now            func() time.Time
	Logger         *zerolog.Logger
}

// Store is the order composition store: the in-progress order, the update
// protection guard, the interaction log and the address/scheduling records.
//
// Every operation is synchronous and serialized by a mutex, so calls from the
// UI loop and from background commands are applied one at a time in arrival
// order.
type Store struct {
	mu sync.Mutex

	now   func() time.Time
	log   zerolog.Logger
	stale StaleSignature

	order     *Order
	guard     guard
	journal   journal
	addresses map[AddressType]Address
	schedule  *Schedule
	version   uint64
}

// NewStore returns an empty Store.
func NewStore(opts Options) *Store {
	s := &Store{
		now:       opts.Now,
		stale:     DefaultStaleSignature(),
		addresses: make(map[AddressType]Address),
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.StaleSignature != nil {
		s.stale = *opts.StaleSignature
	}
	s.guard.window = opts.ProtectionWindow
	if s.guard.window <= 0 {
		s.guard.window = DefaultProtectionWindow
	}
	if opts.Logger != nil {
		s.log = opts.Logger.With().Str("component", "order").Logger()
	} else {
		s.log = zerolog.Nop()
	}
	return s
}

// SetSelectedCleaner attaches the cleaner to the order, creating the order
// if needed.
func (s *Store) SetSelectedCleaner(c Cleaner) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	o := s.ensureOrder()
	o.Cleaner = &c
	o.LastUpdated = now
	s.version++
	return applied()
}

// AddOrUpdateItem replaces the item with the same ID or appends it. An item
// with quantity <= 0 is dropped instead of stored. A negative price is
// rejected and leaves the store untouched.
func (s *Store) AddOrUpdateItem(it Item) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it.Price.IsNegative() {
		s.log.Debug().Str("item_id", it.ID).Str("price", it.Price.String()).
			Msg("item with negative price rejected")
		return rejected(ReasonNegativePrice)
	}

	now := s.now()
	it = it.clone()
	o := s.ensureOrder()

	idx := s.indexOf(it.ID)
	switch {
	case it.Quantity <= 0 && idx >= 0:
		o.Items = slices.Delete(o.Items, idx, idx+1)
	case it.Quantity <= 0:
	case idx >= 0:
		o.Items[idx] = it
	default:
		o.Items = append(o.Items, it)
	}
	s.touch(now)
	s.guard.activate(now)

	qty := max(it.Quantity, 0)
	starch := it.StarchLevel
	s.journal.append(Interaction{
		Kind:        KindItemAdded,
		ItemID:      it.ID,
		ItemName:    it.Name,
		Quantity:    &qty,
		Options:     maps.Clone(it.Options),
		WashOnly:    ptr(it.WashOnly),
		StarchLevel: &starch,
		Category:    it.Category,
		At:          now,
	})
	return applied()
}

// UpdateItemQuantity sets the quantity of an existing item, clamped at zero.
// Zero removes the item. An unknown id is a logged no-op.
func (s *Store) UpdateItemQuantity(itemID string, quantity int, nameHint string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		s.log.Debug().Str("item_id", itemID).Str("item_name", nameHint).Int("quantity", quantity).
			Msg("quantity update for unknown item ignored")
		return noop(ReasonItemNotFound)
	}

	now := s.now()
	quantity = max(quantity, 0)
	o := s.order
	name := firstNonEmpty(o.Items[idx].Name, nameHint)
	if quantity == 0 {
		o.Items = slices.Delete(o.Items, idx, idx+1)
	} else {
		o.Items[idx].Quantity = quantity
	}
	s.touch(now)
	s.guard.activate(now)

	s.journal.append(Interaction{
		Kind:     KindQuantityUpdate,
		ItemID:   itemID,
		ItemName: name,
		Quantity: &quantity,
		At:       now,
	})
	return applied()
}

// RemoveItem drops the item if present. The guard is activated and the
// removal is journaled either way.
func (s *Store) RemoveItem(itemID string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.guard.activate(now)

	var name string
	res := noop(ReasonItemNotFound)
	if idx := s.indexOf(itemID); idx >= 0 {
		name = s.order.Items[idx].Name
		s.order.Items = slices.Delete(s.order.Items, idx, idx+1)
		s.touch(now)
		res = applied()
	} else {
		s.log.Debug().Str("item_id", itemID).Msg("remove for unknown item ignored")
	}

	s.journal.append(Interaction{
		Kind:     KindItemRemoved,
		ItemID:   itemID,
		ItemName: name,
		At:       now,
	})
	return res
}

// UpdateItemOptions merges the supplied fields into the item. Option edits
// do not touch totals, so the protection guard is left alone.
func (s *Store) UpdateItemOptions(itemID string, patch OptionsPatch, nameHint string) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(itemID)
	if idx < 0 {
		s.log.Debug().Str("item_id", itemID).Str("item_name", nameHint).
			Msg("options update for unknown item ignored")
		return noop(ReasonItemNotFound)
	}

	now := s.now()
	it := &s.order.Items[idx]
	if len(patch.Options) > 0 {
		if it.Options == nil {
			it.Options = make(map[string]bool, len(patch.Options))
		}
		maps.Copy(it.Options, patch.Options)
	}
	entry := Interaction{
		Kind:     KindOptionsUpdate,
		ItemID:   itemID,
		ItemName: firstNonEmpty(it.Name, nameHint),
		Options:  maps.Clone(patch.Options),
		At:       now,
	}
	if patch.WashOnly != nil {
		it.WashOnly = *patch.WashOnly
		entry.WashOnly = ptr(*patch.WashOnly)
	}
	if patch.StarchLevel != nil {
		it.StarchLevel = *patch.StarchLevel
		entry.StarchLevel = ptr(*patch.StarchLevel)
	}
	s.order.LastUpdated = now
	s.version++

	s.journal.append(entry)
	return applied()
}

// SaveOrderData replaces the whole order with candidate, unless a recent
// fine-grained edit is protected or the candidate looks stale. Rejections
// are logged and reported in the Result; the store is left unchanged.
func (s *Store) SaveOrderData(candidate Order) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.guard.isActive(now) {
		s.log.Debug().Int("items", len(candidate.Items)).Msg("bulk save rejected during protection window")
		return rejected(ReasonProtected)
	}

	declared := candidate.Totals()
	fresh := ComputeTotals(candidate.Items)
	if !declared.Equal(fresh) {
		s.logRejected(ReasonTotalsMismatch, declared, fresh)
		return rejected(ReasonTotalsMismatch)
	}
	if s.order != nil && !s.order.Empty() && s.stale.Matches(declared) {
		s.logRejected(ReasonStaleSignature, declared, fresh)
		return rejected(ReasonStaleSignature)
	}

	next := candidate.clone()
	next.Items = slices.DeleteFunc(next.Items, func(it Item) bool { return it.Quantity <= 0 })
	next.LastUpdated = now
	s.order = &next
	s.version++
	return applied()
}

// ClearOrder discards the order, the guard and the interaction log.
// Addresses and scheduling are kept.
func (s *Store) ClearOrder() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = nil
	s.guard.deactivate()
	s.journal.clear()
	s.version++
}

// ResetInteractions clears the interaction log without touching the order.
func (s *Store) ResetInteractions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal.clear()
	s.version++
}

// LogCategorySelection journals that the user switched service category.
func (s *Store) LogCategorySelection(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal.append(Interaction{Kind: KindCategorySelection, Category: category, At: s.now()})
	s.version++
}

// SaveAddress upserts the address stored under t. Full is derived from the
// parts when left blank. Only home and office are stored.
func (s *Store) SaveAddress(t AddressType, addr Address) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !t.Valid() {
		s.log.Debug().Str("address_type", string(t)).Msg("address for unknown type ignored")
		return noop(ReasonAddressType)
	}
	if strings.TrimSpace(addr.Full) == "" {
		addr.Full = FormatAddress(addr)
	}
	s.addresses[t] = addr
	s.version++
	return applied()
}

// SaveScheduling replaces the scheduling record wholesale.
func (s *Store) SaveScheduling(sched Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sched.SavedAt.IsZero() {
		sched.SavedAt = s.now()
	}
	s.schedule = &sched
	s.version++
}

func (s *Store) ensureOrder() *Order {
	if s.order == nil {
		s.order = &Order{TotalAmount: decimal.Zero}
	}
	return s.order
}

func (s *Store) indexOf(itemID string) int {
	if s.order == nil {
		return -1
	}
	return slices.IndexFunc(s.order.Items, func(it Item) bool { return it.ID == itemID })
}

// touch recomputes totals from the items and stamps the order.
func (s *Store) touch(now time.Time) {
	t := ComputeTotals(s.order.Items)
	s.order.TotalItems = t.Items
	s.order.TotalAmount = t.Amount
	s.order.LastUpdated = now
	s.version++
}

func (s *Store) logRejected(reason string, declared, fresh Totals) {
	ev := s.log.Warn().
		Str("reason", reason).
		Int("declared_items", declared.Items).
		Str("declared_amount", declared.Amount.String()).
		Int("computed_items", fresh.Items).
		Str("computed_amount", fresh.Amount.String())
	if s.order != nil {
		current := ComputeTotals(s.order.Items)
		ev = ev.Int("current_items", current.Items).Str("current_amount", current.Amount.String())
	}
	ev.Msg("bulk save rejected")
}

// FormatAddress joins the address parts as "street, city, state zip".
func FormatAddress(a Address) string {
	var parts []string
	for _, p := range []string{a.Street, a.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	tail := strings.TrimSpace(strings.TrimSpace(a.State) + " " + strings.TrimSpace(a.Zip))
	if tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
