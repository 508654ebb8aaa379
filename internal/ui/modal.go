package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/presser/internal/checkout"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// paymentDecisionMsg carries the payment sheet result back to the model.
type paymentDecisionMsg struct {
	session checkout.Session
	paid    bool
}

// paymentModal is the payment sheet: it is opened with the session
// credentials and resolves to paid or not paid.
type paymentModal struct {
	session checkout.Session
}

func newPaymentModal(sess checkout.Session) paymentModal {
	return paymentModal{session: sess}
}

func (p paymentModal) decide(paid bool) tea.Cmd {
	sess := p.session
	return func() tea.Msg { return paymentDecisionMsg{session: sess, paid: paid} }
}

func (p paymentModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil, false
	}
	switch {
	case key.Matches(km, keys.Accept):
		return p, p.decide(true), true
	case key.Matches(km, keys.Decline):
		return p, p.decide(false), true
	}
	return p, nil, false
}

func (p paymentModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	q := p.session.Quote

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render("Confirm payment"))
	b.WriteString("\n\n")
	rows := [][2]string{
		{"Booking", p.session.Booking.ID},
		{"Items", fmt.Sprintf("%d", q.Items)},
		{"Subtotal", money(q.Subtotal)},
		{"Service fee", money(q.ServiceFee)},
		{"Delivery", money(q.DeliveryFee)},
		{"Tax", money(q.Tax)},
	}
	label := styles.MutedText.Width(14)
	for _, r := range rows {
		b.WriteString(label.Render(r[0]) + styles.Text.Render(r[1]) + "\n")
	}
	b.WriteString(label.Render("Total") + styles.SuccessText.Render(money(q.Total)) + "\n\n")
	b.WriteString(styles.FaintText.Render("intent " + maskSecret(p.session.Intent.ClientSecret)))
	b.WriteString("\n\n")
	b.WriteString(styles.WarningText.Render("y") + styles.Text.Render(" pay   ") +
		styles.WarningText.Render("n") + styles.Text.Render(" cancel"))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		styles.Modal.Width(46).Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}
