package order

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// InteractionKind tags a journal entry.
type InteractionKind string

const (
	KindQuantityUpdate    InteractionKind = "quantity_update"
	KindOptionsUpdate     InteractionKind = "options_update"
	KindCategorySelection InteractionKind = "category_selection"
	KindItemAdded         InteractionKind = "item_added"
	KindItemRemoved       InteractionKind = "item_removed"
)

// Interaction is an immutable record of a user-initiated order mutation.
type Interaction struct {
	ID          string          `json:"id"`
	Kind        InteractionKind `json:"type"`
	ItemID      string          `json:"itemId,omitempty"`
	ItemName    string          `json:"itemName,omitempty"`
	Quantity    *int            `json:"quantity,omitempty"`
	Options     map[string]bool `json:"options,omitempty"`
	WashOnly    *bool           `json:"washOnly,omitempty"`
	StarchLevel *StarchLevel    `json:"starchLevel,omitempty"`
	Category    string          `json:"category,omitempty"`
	At          time.Time       `json:"timestamp"`
}

// journal is the append-only interaction log. Entries are never reordered,
// rewritten or deduplicated; only clear drops them.
type journal struct {
	entries []Interaction
}

func (j *journal) append(in Interaction) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	j.entries = append(j.entries, in)
}

func (j *journal) list() []Interaction {
	if len(j.entries) == 0 {
		return nil
	}
	out := make([]Interaction, len(j.entries))
	for i, in := range j.entries {
		out[i] = in
		if in.Options != nil {
			out[i].Options = maps.Clone(in.Options)
		}
		if in.Quantity != nil {
			out[i].Quantity = ptr(*in.Quantity)
		}
		if in.WashOnly != nil {
			out[i].WashOnly = ptr(*in.WashOnly)
		}
		if in.StarchLevel != nil {
			out[i].StarchLevel = ptr(*in.StarchLevel)
		}
	}
	return out
}

func (j *journal) len() int {
	return len(j.entries)
}

func (j *journal) clear() {
	j.entries = nil
}

func ptr[T any](v T) *T { return &v }
