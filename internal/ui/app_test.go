package ui

import (
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/catalog"
	"github.com/five82/presser/internal/checkout"
	"github.com/five82/presser/internal/order"
	"github.com/five82/presser/internal/prefs"
)

type testClock struct{ now time.Time }

func (c *testClock) Now() time.Time          { return c.now }
func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestModel(t *testing.T) (Model, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}

	cat := &catalog.Store{}
	cat.Update([]api.Cleaner{{ID: "c1", ShopName: "Fresh Press"}}, nil, nil)
	cat.SetServices("c1", []api.Service{
		{ID: "shirt", Name: "Shirt", Category: "Tops", Price: decimal.NewFromInt(5), Options: []string{"button"}},
		{ID: "pants", Name: "Pants", Category: "Bottoms", Price: decimal.NewFromInt(7)},
	})

	m := New(Options{
		Catalog:   cat,
		Orders:    order.NewStore(order.Options{Now: clock.Now}),
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
		Logger:    zerolog.Nop(),
	})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return m, clock
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return model, cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m, _ = update(t, m, keyMsg(k))
	}
	return m
}

func selectFirstCleaner(t *testing.T, m Model) Model {
	t.Helper()
	m = press(t, m, "enter")
	if m.currentView != ViewServices {
		t.Fatalf("currentView = %v, want Services", m.currentView)
	}
	return m
}

func TestSelectCleanerAttachesToOrder(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectFirstCleaner(t, m)

	o := m.orders.Order()
	if o.Cleaner == nil || o.Cleaner.ID != "c1" {
		t.Fatalf("order cleaner = %#v, want c1", o.Cleaner)
	}
	if m.services.cleanerID != "c1" {
		t.Fatalf("services.cleanerID = %q, want c1", m.services.cleanerID)
	}
}

func TestServicesTapsUpdateStoreAndDebounceBulkSave(t *testing.T) {
	m, clock := newTestModel(t)
	m = selectFirstCleaner(t, m)

	m = press(t, m, "+", "+")
	if got := m.orders.Quantity("shirt"); got != 2 {
		t.Fatalf("Quantity(shirt) = %d, want 2", got)
	}
	if got := m.services.selection["shirt"].Quantity; got != 2 {
		t.Fatalf("selection quantity = %d, want 2", got)
	}
	seq := m.services.saveSeq

	// A save from an older tap is dropped.
	m.orders.UpdateItemQuantity("shirt", 5, "Shirt")
	clock.Advance(3 * time.Second)
	m, _ = update(t, m, saveOrderMsg{seq: seq - 1})
	if got := m.orders.Quantity("shirt"); got != 5 {
		t.Fatalf("stale seq save changed quantity to %d", got)
	}

	// Inside the protection window the latest save is refused.
	m.orders.UpdateItemQuantity("shirt", 2, "Shirt")
	m, _ = update(t, m, saveOrderMsg{seq: seq})
	if got := m.orders.Quantity("shirt"); got != 2 {
		t.Fatalf("Quantity(shirt) = %d, want 2", got)
	}
	if m.status != "" {
		t.Fatalf("protected save should stay quiet, status = %q", m.status)
	}

	clock.Advance(3 * time.Second)
	m = press(t, m, "j", "+")
	clock.Advance(3 * time.Second)
	m, _ = update(t, m, saveOrderMsg{seq: m.services.saveSeq})

	o := m.orders.Order()
	if o.TotalItems != 3 || !o.TotalAmount.Equal(decimal.NewFromInt(17)) {
		t.Fatalf("order totals = %d/%s, want 3/17", o.TotalItems, o.TotalAmount)
	}
	if len(o.Items) != 2 || o.Items[0].ID != "shirt" || o.Items[1].ID != "pants" {
		t.Fatalf("order items = %#v, want shirt then pants", o.Items)
	}
}

func TestServicesOptionKeys(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectFirstCleaner(t, m)

	m = press(t, m, "1")
	if m.status == "" {
		t.Fatalf("toggling an option on an absent item should report a no-op")
	}

	m = press(t, m, "+", "1", "w", "s", "s")
	it, ok := m.orders.Item("shirt")
	if !ok {
		t.Fatalf("shirt not in order")
	}
	if !it.Options["button"] || !it.WashOnly || it.StarchLevel != order.StarchMedium {
		t.Fatalf("item = %#v, want button, wash only, medium starch", it)
	}
	if !m.orders.Protected() {
		t.Fatalf("quantity tap should have activated protection")
	}
}

func TestServicesRemoveAndDecrement(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectFirstCleaner(t, m)

	m = press(t, m, "+", "-")
	if _, ok := m.orders.Item("shirt"); ok {
		t.Fatalf("decrement to zero should remove the item")
	}
	m = press(t, m, "+", "+", "x")
	if _, ok := m.orders.Item("shirt"); ok {
		t.Fatalf("x should remove the item")
	}
	if _, ok := m.services.selection["shirt"]; ok {
		t.Fatalf("selection should drop removed item")
	}
}

func TestCategorySwitchIsJournaled(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectFirstCleaner(t, m)

	m = press(t, m, "]")
	if m.services.category != "Tops" {
		t.Fatalf("category = %q, want Tops", m.services.category)
	}
	if got := len(m.visibleServices()); got != 1 {
		t.Fatalf("visible services = %d, want 1", got)
	}
	m = press(t, m, "[")
	if m.services.category != "" {
		t.Fatalf("category = %q, want all", m.services.category)
	}

	var cats []string
	for _, in := range m.orders.Interactions() {
		if in.Kind == order.KindCategorySelection {
			cats = append(cats, in.Category)
		}
	}
	if len(cats) != 2 || cats[0] != "Tops" || cats[1] != "All" {
		t.Fatalf("category interactions = %v, want [Tops All]", cats)
	}
}

func TestCompletedPaymentDropsPendingSave(t *testing.T) {
	m, clock := newTestModel(t)
	m = selectFirstCleaner(t, m)
	m = press(t, m, "+")
	pending := m.services.saveSeq

	m.orders.ClearOrder()
	rec := checkout.Receipt{Receipt: api.Receipt{BookingID: "b1", ConfirmationCode: "PRS-1"}}
	m, _ = update(t, m, completedMsg{receipt: rec})
	if m.currentView != ViewReceipt {
		t.Fatalf("currentView = %v, want Receipt", m.currentView)
	}
	if m.receiptQR == "" {
		t.Fatalf("receipt QR not rendered")
	}

	clock.Advance(5 * time.Second)
	m, _ = update(t, m, saveOrderMsg{seq: pending})
	if !m.orders.Order().Empty() {
		t.Fatalf("pending save resurrected the order: %#v", m.orders.Order())
	}
}

func TestDeclinedPaymentKeepsOrder(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = update(t, m, completedMsg{err: checkout.ErrPaymentDeclined})
	if m.statusErr || m.status == "" {
		t.Fatalf("status = %q (err=%v), want informational message", m.status, m.statusErr)
	}
}

func TestAddressFormValidatesAndSaves(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.setView(ViewAddress)

	m.addressForm.setValues("1 Main St", "Springfield", "IL", "abc")
	m = press(t, m, "enter")
	if _, ok := m.orders.Address(order.AddressHome); ok {
		t.Fatalf("invalid zip should not be saved")
	}
	if !m.statusErr {
		t.Fatalf("status = %q, want validation error", m.status)
	}

	m.addressForm.setValues("1 Main St", "Springfield", "IL", "62701")
	m = press(t, m, "enter")
	addr, ok := m.orders.Address(order.AddressHome)
	if !ok {
		t.Fatalf("address not saved")
	}
	if addr.Full != "1 Main St, Springfield, IL 62701" {
		t.Fatalf("Full = %q", addr.Full)
	}

	// Typing into the form must not trigger global keys.
	m = press(t, m, "e", "T")
	if m.currentView != ViewAddress || m.theme.Name != themeOrder[0] {
		t.Fatalf("form keys leaked: view=%v theme=%s", m.currentView, m.theme.Name)
	}
}

func TestAddressTypeTogglePersists(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.setView(ViewAddress)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	if m.addressType != order.AddressOffice {
		t.Fatalf("addressType = %q, want office", m.addressType)
	}
	m.addressForm.setValues("9 Work Rd", "Metro", "NY", "10001")
	m = press(t, m, "enter")

	p, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("prefs.Load: %v", err)
	}
	if p.AddressType != order.AddressOffice {
		t.Fatalf("persisted address type = %q, want office", p.AddressType)
	}
}

func TestScheduleFormRequiresPickup(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = m.setView(ViewSchedule)

	m.scheduleForm.setValues("14", "", "March")
	m = press(t, m, "enter")
	if _, ok := m.orders.Scheduling(); ok {
		t.Fatalf("schedule saved without pickup time")
	}
	if m.scheduleForm.focus != 1 {
		t.Fatalf("focus = %d, want the missing field", m.scheduleForm.focus)
	}

	m.scheduleForm.setValues("14", "9:00 AM", "March", "16", "5:00 PM", "March")
	m = press(t, m, "enter")
	s, ok := m.orders.Scheduling()
	if !ok || s.PickupTime != "9:00 AM" || s.DeliveryDate != "16" {
		t.Fatalf("schedule = %#v, ok=%v", s, ok)
	}
}

func TestThemeCyclePersists(t *testing.T) {
	m, _ := newTestModel(t)
	m = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	p, _ := prefs.Load(m.prefsPath)
	if p.Theme != "Kanagawa" {
		t.Fatalf("persisted theme = %q, want Kanagawa", p.Theme)
	}
}

func TestTabCyclesViews(t *testing.T) {
	m, _ := newTestModel(t)
	want := []View{ViewServices, ViewSchedule}
	for _, v := range want {
		m = press(t, m, "tab")
		if m.currentView != v {
			t.Fatalf("currentView = %v, want %v", m.currentView, v)
		}
	}
	m = press(t, m, "esc")
	if m.currentView != ViewCleaners {
		t.Fatalf("esc from form: currentView = %v, want Cleaners", m.currentView)
	}
}

func TestPaymentModalDecisions(t *testing.T) {
	sess := checkout.Session{Booking: api.Booking{ID: "b1"}}
	keys := DefaultKeyMap()

	for _, tc := range []struct {
		key  string
		paid bool
	}{{"y", true}, {"n", false}} {
		modal := newPaymentModal(sess)
		_, cmd, closed := modal.Update(keyMsg(tc.key), keys)
		if !closed || cmd == nil {
			t.Fatalf("%s: closed=%v cmd=%v", tc.key, closed, cmd)
		}
		msg, ok := cmd().(paymentDecisionMsg)
		if !ok || msg.paid != tc.paid || msg.session.Booking.ID != "b1" {
			t.Fatalf("%s: msg = %#v", tc.key, msg)
		}
	}

	_, cmd, closed := newPaymentModal(sess).Update(keyMsg("q"), keys)
	if closed || cmd != nil {
		t.Fatalf("unrelated key closed the modal")
	}
}

func TestViewRendersEveryScreen(t *testing.T) {
	m, _ := newTestModel(t)
	m = selectFirstCleaner(t, m)
	m = press(t, m, "+")
	for _, v := range append(viewCycle, ViewReceipt) {
		m.currentView = v
		if out := m.View(); out == "" {
			t.Fatalf("View() for %v is empty", v)
		}
	}
}
