package order

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

// StarchLevel is the starch preference for a garment, 1 (none) through 4 (heavy).
type StarchLevel int

const (
	StarchNone StarchLevel = iota + 1
	StarchLight
	StarchMedium
	StarchHeavy
)

// Valid reports whether the level is within 1..4.
func (s StarchLevel) Valid() bool {
	return s >= StarchNone && s <= StarchHeavy
}

// Next cycles to the following level, wrapping heavy back to none.
func (s StarchLevel) Next() StarchLevel {
	if !s.Valid() || s == StarchHeavy {
		return StarchNone
	}
	return s + 1
}

func (s StarchLevel) String() string {
	switch s {
	case StarchNone:
		return "none"
	case StarchLight:
		return "light"
	case StarchMedium:
		return "medium"
	case StarchHeavy:
		return "heavy"
	default:
		return "unset"
	}
}

// CleanerRef identifies the dry cleaner that offers an item.
type CleanerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is one line of the in-progress order.
type Item struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Price             decimal.Decimal `json:"price"`
	Quantity          int             `json:"quantity"`
	StarchLevel       StarchLevel     `json:"starchLevel"`
	WashOnly          bool            `json:"washOnly"`
	AdditionalService string          `json:"additionalService,omitempty"`
	Cleaner           CleanerRef      `json:"cleaner"`

	// Options holds per-service toggles such as "washAndFold", "button" or
	// "zipper". The key set is open and differs between services.
	Options map[string]bool `json:"options,omitempty"`
}

// LineTotal is price × quantity.
func (it Item) LineTotal() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

func (it Item) clone() Item {
	dup := it
	if it.Options != nil {
		dup.Options = maps.Clone(it.Options)
	}
	return dup
}

// Cleaner is the selected dry cleaner attached to an order.
type Cleaner struct {
	ID       string  `json:"id"`
	ShopName string  `json:"shopName"`
	Address  string  `json:"address"`
	Rating   float64 `json:"rating"`
	Phone    string  `json:"phone"`
}

// Order is the in-progress order aggregate.
type Order struct {
	Items       []Item          `json:"items"`
	Cleaner     *Cleaner        `json:"cleaner,omitempty"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Empty reports whether the order carries no items.
func (o Order) Empty() bool {
	return len(o.Items) == 0
}

// Totals returns the declared totals of the order.
func (o Order) Totals() Totals {
	return Totals{Items: o.TotalItems, Amount: o.TotalAmount}
}

func (o Order) clone() Order {
	dup := o
	dup.Items = cloneItems(o.Items)
	if o.Cleaner != nil {
		c := *o.Cleaner
		dup.Cleaner = &c
	}
	return dup
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]Item, len(items))
	for i, it := range items {
		dup[i] = it.clone()
	}
	return dup
}

// Totals is the (item count, amount) pair derived from a list of items.
type Totals struct {
	Items  int
	Amount decimal.Decimal
}

// Equal compares item counts exactly and amounts by value.
func (t Totals) Equal(other Totals) bool {
	return t.Items == other.Items && t.Amount.Equal(other.Amount)
}

// ComputeTotals sums quantity and price × quantity over items with a
// positive quantity.
func ComputeTotals(items []Item) Totals {
	total := Totals{Amount: decimal.Zero}
	for _, it := range items {
		if it.Quantity <= 0 {
			continue
		}
		total.Items += it.Quantity
		total.Amount = total.Amount.Add(it.LineTotal())
	}
	return total
}

// OptionsPatch is a partial update of an item's options. Nil fields are left
// untouched; Options keys are merged into the existing map.
type OptionsPatch struct {
	Options     map[string]bool
	WashOnly    *bool
	StarchLevel *StarchLevel
}

// AddressType keys the saved addresses.
type AddressType string

const (
	AddressHome   AddressType = "home"
	AddressOffice AddressType = "office"
)

// Valid reports whether t is one of the known address types.
func (t AddressType) Valid() bool {
	return t == AddressHome || t == AddressOffice
}

// Address is a saved pickup/delivery address.
type Address struct {
	Street string `json:"street" validate:"required"`
	City   string `json:"city" validate:"required"`
	State  string `json:"state" validate:"required"`
	Zip    string `json:"zip" validate:"required,numeric,min=5,max=10"`
	Full   string `json:"fullAddress"`
}

// Schedule holds the pickup and delivery window strings chosen by the user.
type Schedule struct {
	PickupDate    string    `json:"pickupDate"`
	PickupTime    string    `json:"pickupTime"`
	PickupMonth   string    `json:"pickupMonth"`
	DeliveryDate  string    `json:"deliveryDate"`
	DeliveryTime  string    `json:"deliveryTime"`
	DeliveryMonth string    `json:"deliveryMonth"`
	SavedAt       time.Time `json:"timestamp"`
}
