package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/presser/internal/checkout"
	"github.com/five82/presser/internal/order"
	"github.com/five82/presser/internal/pricing"
)

type preparedMsg struct {
	session checkout.Session
	err     error
}

type completedMsg struct {
	receipt checkout.Receipt
	err     error
}

type qrSavedMsg struct {
	path string
	err  error
}

func (m Model) handleCheckoutKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !key.Matches(msg, m.keys.Pay) || m.busy {
		return m, nil
	}
	if m.flow == nil {
		m.setStatus("checkout unavailable", true)
		return m, nil
	}
	m.busy = true
	m.setStatus("Creating booking...", false)
	return m, prepareCmd(m.ctx, m.flow, m.addressType, m.catalogSnap.PricingOrDefault())
}

func prepareCmd(ctx context.Context, flow *checkout.Flow, addrType order.AddressType, cfg pricing.Config) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, CheckoutTimeout)
		defer cancel()
		sess, err := flow.Prepare(ctx, addrType, cfg)
		return preparedMsg{session: sess, err: err}
	}
}

func completeCmd(ctx context.Context, flow *checkout.Flow, sess checkout.Session, paid bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, CheckoutTimeout)
		defer cancel()
		rec, err := flow.Complete(ctx, sess, paid)
		return completedMsg{receipt: rec, err: err}
	}
}

func (m Model) handlePrepared(msg preparedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		m.setStatus(msg.err.Error(), true)
		return m, nil
	}
	m.status = ""
	m.modal = newPaymentModal(msg.session)
	return m, nil
}

func (m Model) handlePaymentDecision(msg paymentDecisionMsg) (tea.Model, tea.Cmd) {
	if m.flow == nil {
		return m, nil
	}
	m.busy = true
	if msg.paid {
		m.setStatus("Confirming payment...", false)
	}
	return m, completeCmd(m.ctx, m.flow, msg.session, msg.paid)
}

func (m Model) handleCompleted(msg completedMsg) (tea.Model, tea.Cmd) {
	m.busy = false
	if msg.err != nil {
		if errors.Is(msg.err, checkout.ErrPaymentDeclined) {
			m.setStatus("Payment cancelled, order kept", false)
		} else {
			m.setStatus(msg.err.Error(), true)
		}
		return m, nil
	}

	// The order is gone; drop any pending bulk save so it cannot bring it back.
	m.services.saveSeq++
	m.services.selection = make(map[string]order.Item)
	m.orderSnap = m.orders.Snapshot()

	rec := msg.receipt
	m.receipt = &rec
	qr, err := rec.QR()
	if err != nil {
		m.log.Warn().Err(err).Msg("render receipt qr")
	}
	m.receiptQR = qr
	m.currentView = ViewReceipt
	m.setStatus("Order placed", false)
	return m, nil
}

func (m Model) handleReceiptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.receipt == nil || !key.Matches(msg, m.keys.SaveQR) {
		return m, nil
	}
	rec := *m.receipt
	path := filepath.Join(m.receiptDir(), "receipt-"+rec.BookingID+".png")
	return m, func() tea.Msg {
		return qrSavedMsg{path: path, err: rec.WriteQR(path, 256)}
	}
}

func (m Model) receiptDir() string {
	if m.config != nil {
		return filepath.Dir(m.config.LogPath())
	}
	return os.TempDir()
}

func (m Model) renderCheckout() string {
	styles := m.theme.Styles()
	width := max(m.width-2, 10)
	o := m.orderSnap.Order
	label := styles.MutedText.Width(14)

	var rows []string
	cleaner := "none selected (C)"
	if o.Cleaner != nil {
		cleaner = o.Cleaner.ShopName
	}
	rows = append(rows, label.Render("Cleaner")+styles.Text.Render(cleaner))

	addr, ok := m.orderSnap.Addresses[m.addressType]
	addrText := styles.WarningText.Render("missing (A)")
	if ok {
		addrText = styles.Text.Render(addr.Full)
	}
	rows = append(rows, label.Render(capitalize(string(m.addressType)))+addrText)

	schedText := styles.WarningText.Render("missing (P)")
	if m.orderSnap.HasSchedule {
		s := m.orderSnap.Schedule
		schedText = styles.Text.Render(fmt.Sprintf("%s %s, %s", s.PickupMonth, s.PickupDate, s.PickupTime))
	}
	rows = append(rows, label.Render("Pickup")+schedText, "")

	if o.Empty() {
		rows = append(rows, styles.MutedText.Render("Your order is empty (S to add services)"))
		return styles.Panel.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	for _, it := range o.Items {
		line := fmt.Sprintf("%2d × %-28s %9s", it.Quantity, truncate(it.Name, 28), money(it.LineTotal()))
		if notes := itemNotes(it); notes != "" {
			line += "  " + styles.FaintText.Render(notes)
		}
		rows = append(rows, styles.Text.Render(line))
	}

	cfg := m.catalogSnap.PricingOrDefault()
	q := pricing.Quote(o, cfg)
	amount := lipgloss.NewStyle().Width(12).Align(lipgloss.Right)
	rows = append(rows, "",
		label.Render("Subtotal")+amount.Render(money(q.Subtotal)),
		label.Render("Service fee")+amount.Render(money(q.ServiceFee)),
		label.Render("Delivery")+amount.Render(money(q.DeliveryFee)),
		label.Render("Tax")+amount.Render(money(q.Tax)),
		styles.Text.Bold(true).Width(14).Render("Total")+styles.SuccessText.Width(12).Align(lipgloss.Right).Render(money(q.Total)),
	)
	if q.BelowMinimum {
		rows = append(rows, "", styles.WarningText.Render("Minimum order is "+money(cfg.MinimumOrder)))
	}

	action := "p pay"
	if m.busy {
		action = "working..."
	}
	rows = append(rows, "", styles.FaintText.Render(action))
	return styles.Panel.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderReceipt() string {
	styles := m.theme.Styles()
	width := max(m.width-2, 10)
	if m.receipt == nil {
		return styles.Panel.Width(width).Render(styles.MutedText.Render("No receipt yet"))
	}
	r := m.receipt
	label := styles.MutedText.Width(16)
	rows := []string{
		styles.SuccessText.Render("Booking confirmed"),
		"",
		label.Render("Confirmation") + styles.Text.Bold(true).Render(r.ConfirmationCode),
		label.Render("Booking") + styles.Text.Render(r.BookingID),
		label.Render("Cleaner") + styles.Text.Render(r.CleanerName),
		label.Render("Items") + styles.Text.Render(fmt.Sprintf("%d", r.TotalItems)),
		label.Render("Total") + styles.Text.Render(money(r.Total)),
		label.Render("Pickup") + styles.Text.Render(strings.TrimSpace(r.PickupDate+" "+r.PickupTime)),
	}
	if m.receiptQR != "" {
		rows = append(rows, "", m.receiptQR)
	}
	rows = append(rows, styles.FaintText.Render("w save QR  C new order"))
	return styles.Panel.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
