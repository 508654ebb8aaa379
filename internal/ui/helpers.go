package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/five82/presser/internal/order"
)

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return "now"
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if limit <= 0 || len(runes) <= limit {
		return value
	}
	if limit == 1 {
		return "…"
	}
	return string(runes[:limit-1]) + "…"
}

// maskSecret keeps the last four characters of a credential.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("•", len(s))
	}
	return strings.Repeat("•", 8) + s[len(s)-4:]
}

// itemNotes summarises the non-default options of an order line.
func itemNotes(it order.Item) string {
	var notes []string
	if it.WashOnly {
		notes = append(notes, "wash only")
	}
	if it.StarchLevel.Valid() && it.StarchLevel != order.StarchNone {
		notes = append(notes, "starch "+it.StarchLevel.String())
	}
	var enabled []string
	for name, on := range it.Options {
		if on {
			enabled = append(enabled, name)
		}
	}
	sort.Strings(enabled)
	notes = append(notes, enabled...)
	return strings.Join(notes, ", ")
}

// capitalize builds a Caser per call; Casers are stateful.
func capitalize(s string) string {
	return cases.Title(language.English).String(s)
}
