// Package pricing derives the checkout price breakdown from an order and the
// backend's pricing configuration.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/five82/presser/internal/order"
)

// Config mirrors the backend pricing configuration. Percentages are whole
// numbers (8.25 means 8.25%).
type Config struct {
	ServiceFeePercent decimal.Decimal `json:"serviceFeePercent"`
	DeliveryFee       decimal.Decimal `json:"deliveryFee"`
	TaxPercent        decimal.Decimal `json:"taxPercent"`
	MinimumOrder      decimal.Decimal `json:"minimumOrder"`
	Currency          string          `json:"currency"`
}

// Default is used until the backend configuration has been fetched.
func Default() Config {
	return Config{
		ServiceFeePercent: decimal.NewFromInt(5),
		DeliveryFee:       decimal.RequireFromString("4.99"),
		TaxPercent:        decimal.RequireFromString("8.25"),
		MinimumOrder:      decimal.NewFromInt(15),
		Currency:          "usd",
	}
}

// Breakdown is the priced order shown on the payment screen.
type Breakdown struct {
	Subtotal     decimal.Decimal
	ServiceFee   decimal.Decimal
	DeliveryFee  decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Items        int
	BelowMinimum bool
}

var hundred = decimal.NewFromInt(100)

// Quote prices the order. The subtotal is recomputed from the items; fees and
// tax are rounded to cents independently, tax applies to subtotal plus fees.
func Quote(o order.Order, cfg Config) Breakdown {
	totals := order.ComputeTotals(o.Items)
	b := Breakdown{
		Subtotal: totals.Amount.Round(2),
		Items:    totals.Items,
	}
	if totals.Items == 0 {
		b.ServiceFee = decimal.Zero
		b.DeliveryFee = decimal.Zero
		b.Tax = decimal.Zero
		b.Total = decimal.Zero
		return b
	}
	b.ServiceFee = percent(b.Subtotal, cfg.ServiceFeePercent)
	b.DeliveryFee = cfg.DeliveryFee.Round(2)
	b.Tax = percent(b.Subtotal.Add(b.ServiceFee).Add(b.DeliveryFee), cfg.TaxPercent)
	b.Total = b.Subtotal.Add(b.ServiceFee).Add(b.DeliveryFee).Add(b.Tax)
	b.BelowMinimum = b.Subtotal.LessThan(cfg.MinimumOrder)
	return b
}

// Cents converts an amount to the integer minor units used by payment APIs.
func Cents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func percent(amount, pct decimal.Decimal) decimal.Decimal {
	return amount.Mul(pct).Div(hundred).Round(2)
}
