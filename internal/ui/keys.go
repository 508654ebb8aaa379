package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewCleaners key.Binding
	ViewServices key.Binding
	ViewSchedule key.Binding
	ViewAddress  key.Binding
	ViewCheckout key.Binding
	ViewActivity key.Binding

	// Navigation
	Up           key.Binding
	Down         key.Binding
	Top          key.Binding
	Bottom       key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding
	Confirm      key.Binding

	// Services
	Increment    key.Binding
	Decrement    key.Binding
	Remove       key.Binding
	WashOnly     key.Binding
	Starch       key.Binding
	ToggleOption key.Binding
	NextCategory key.Binding
	PrevCategory key.Binding
	ClearOrder   key.Binding

	// Checkout and receipt
	Pay      key.Binding
	Accept   key.Binding
	Decline  key.Binding
	SaveQR   key.Binding
	Activity key.Binding

	// Forms
	NextField     key.Binding
	PrevField     key.Binding
	Submit        key.Binding
	ToggleAddress key.Binding

	// Activity
	ResetInteractions key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Next view"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Previous view"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to cleaners"),
		),

		ViewCleaners: key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "Cleaners")),
		ViewServices: key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "Services")),
		ViewSchedule: key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "Pickup schedule")),
		ViewAddress:  key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "Address")),
		ViewCheckout: key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "Checkout")),
		ViewActivity: key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "Activity log")),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Select"),
		),

		Increment: key.NewBinding(
			key.WithKeys("+", "=", "right"),
			key.WithHelp("+", "Add one"),
		),
		Decrement: key.NewBinding(
			key.WithKeys("-", "_", "left"),
			key.WithHelp("-", "Remove one"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "Remove item"),
		),
		WashOnly: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Toggle wash only"),
		),
		Starch: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle starch"),
		),
		ToggleOption: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
			key.WithHelp("1-9", "Toggle option"),
		),
		NextCategory: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Next category"),
		),
		PrevCategory: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Previous category"),
		),
		ClearOrder: key.NewBinding(
			key.WithKeys("X"),
			key.WithHelp("X", "Clear order"),
		),

		Pay: key.NewBinding(
			key.WithKeys("p", "enter"),
			key.WithHelp("p", "Pay"),
		),
		Accept: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Pay now"),
		),
		Decline: key.NewBinding(
			key.WithKeys("n", "esc"),
			key.WithHelp("n", "Cancel payment"),
		),
		SaveQR: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Save QR as PNG"),
		),

		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Next field"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Previous field"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Save"),
		),
		ToggleAddress: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "Home/office"),
		),

		ResetInteractions: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reset interaction log"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewCleaners, k.ViewServices, k.ViewSchedule, k.ViewAddress, k.ViewCheckout, k.ViewActivity},
		{k.Up, k.Down, k.Top, k.Bottom, k.Confirm},
		{k.Increment, k.Decrement, k.Remove, k.WashOnly, k.Starch, k.ToggleOption, k.PrevCategory, k.NextCategory, k.ClearOrder},
		{k.Pay, k.Accept, k.Decline, k.SaveQR},
		{k.NextField, k.Submit, k.ToggleAddress},
		{k.ResetInteractions, k.HalfPageDown, k.HalfPageUp},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
