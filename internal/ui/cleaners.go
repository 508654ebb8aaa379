package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/presser/internal/api"
)

type servicesMsg struct {
	cleanerID string
	services  []api.Service
	err       error
}

func (m Model) handleCleanersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	count := len(m.catalogSnap.Cleaners)
	if count == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Down):
		if m.cleanerRow < count-1 {
			m.cleanerRow++
		}
	case key.Matches(msg, m.keys.Up):
		if m.cleanerRow > 0 {
			m.cleanerRow--
		}
	case key.Matches(msg, m.keys.Top):
		m.cleanerRow = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cleanerRow = count - 1
	case key.Matches(msg, m.keys.Confirm):
		return m.selectCleaner(m.catalogSnap.Cleaners[m.cleanerRow])
	}
	return m, nil
}

// selectCleaner attaches the cleaner to the order and opens its services,
// refreshing the cached listing in the background.
func (m Model) selectCleaner(c api.Cleaner) (tea.Model, tea.Cmd) {
	m.reportResult("select cleaner", m.orders.SetSelectedCleaner(c.OrderCleaner()))
	if m.services.cleanerID != c.ID {
		m.services = servicesState{cleanerID: c.ID, saveSeq: m.services.saveSeq}
	}
	m.services.loading = true
	next, _ := m.setView(ViewServices)
	return next, loadServicesCmd(m.ctx, m.directory, c.ID)
}

func (m Model) handleServices(msg servicesMsg) (tea.Model, tea.Cmd) {
	if msg.cleanerID == m.services.cleanerID {
		m.services.loading = false
	}
	if msg.err != nil {
		m.log.Warn().Err(msg.err).Str("cleaner_id", msg.cleanerID).Msg("load services failed")
		m.setStatus("services: "+msg.err.Error(), true)
		return m, nil
	}
	m.catalog.SetServices(msg.cleanerID, msg.services)
	m.catalogSnap = m.catalog.Snapshot()
	m.clampRows()
	return m, nil
}

func loadServicesCmd(ctx context.Context, dir api.Directory, cleanerID string) tea.Cmd {
	if dir == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, CheckoutTimeout)
		defer cancel()
		services, err := dir.ListServices(ctx, cleanerID)
		return servicesMsg{cleanerID: cleanerID, services: services, err: err}
	}
}

func (m *Model) clampRows() {
	if n := len(m.catalogSnap.Cleaners); m.cleanerRow >= n {
		m.cleanerRow = max(n-1, 0)
	}
	if n := len(m.visibleServices()); m.services.row >= n {
		m.services.row = max(n-1, 0)
	}
}

func (m Model) renderCleaners() string {
	styles := m.theme.Styles()
	snap := m.catalogSnap

	if len(snap.Cleaners) == 0 {
		msg := "Loading dry cleaners..."
		if snap.LastError != nil {
			msg = "No cleaners available: " + snap.LastError.Error()
		}
		return styles.Panel.Width(max(m.width-2, 10)).Render(styles.MutedText.Render(msg))
	}

	selectedID := ""
	if m.orderSnap.Order.Cleaner != nil {
		selectedID = m.orderSnap.Order.Cleaner.ID
	}

	compact := m.width < LayoutCompactWidth
	var lines []string
	lines = append(lines, styles.FaintText.Render(fmt.Sprintf("%-3s %-28s %-6s %s", "", "Shop", "Rating", "Address")))
	for i, c := range snap.Cleaners {
		marker := "  "
		if c.ID == selectedID {
			marker = "● "
		}
		addr := c.Address
		if compact {
			addr = truncate(addr, 24)
		}
		row := fmt.Sprintf("%s %-28s %-6s %s", marker, truncate(c.ShopName, 28), fmt.Sprintf("%.1f", c.Rating), addr)
		if i == m.cleanerRow {
			row = styles.Selected.Width(max(m.width-4, 10)).Render(row)
		} else {
			row = styles.Text.Render(row)
		}
		lines = append(lines, row)
	}

	if c := snap.Cleaners[m.cleanerRow]; !compact && (c.Phone != "" || c.Hours != "") {
		lines = append(lines, "", styles.MutedText.Render(strings.TrimSpace(c.Phone+"  "+c.Hours)))
	}
	return styles.Panel.Width(max(m.width-2, 10)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
