package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/catalog"
	"github.com/five82/presser/internal/order"
)

// servicesState is the item selection screen. selection mirrors the store's
// items for the cleaner after every tap and is bulk-saved once edits go
// quiet for the debounce period.
type servicesState struct {
	cleanerID string
	category  string
	row       int
	loading   bool
	selection map[string]order.Item
	saveSeq   int
}

// saveOrderMsg fires after the debounce; only the latest seq saves.
type saveOrderMsg struct {
	seq int
}

func scheduleSaveCmd(seq int, d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return saveOrderMsg{seq: seq}
	})
}

func (m Model) cleanerServices() []api.Service {
	return m.catalogSnap.Services[m.services.cleanerID]
}

func (m Model) visibleServices() []api.Service {
	return catalog.ByCategory(m.cleanerServices(), m.services.category)
}

func (m Model) currentCleaner() api.Cleaner {
	if c, ok := m.catalogSnap.Cleaner(m.services.cleanerID); ok {
		return c
	}
	c := api.Cleaner{ID: m.services.cleanerID}
	if oc := m.orderSnap.Order.Cleaner; oc != nil && oc.ID == c.ID {
		c.ShopName = oc.ShopName
		c.Address = oc.Address
		c.Rating = oc.Rating
		c.Phone = oc.Phone
	}
	return c
}

// syncSelection reloads the local selection from the store.
func (m *Model) syncSelection() {
	if m.services.cleanerID == "" {
		if oc := m.orderSnap.Order.Cleaner; oc != nil {
			m.services.cleanerID = oc.ID
		}
	}
	m.services.selection = make(map[string]order.Item)
	for _, it := range m.orders.ItemsFor(m.services.cleanerID) {
		m.services.selection[it.ID] = it
	}
}

func (m Model) handleServicesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	visible := m.visibleServices()

	switch {
	case key.Matches(msg, m.keys.NextCategory):
		return m.stepCategory(1)
	case key.Matches(msg, m.keys.PrevCategory):
		return m.stepCategory(-1)
	case key.Matches(msg, m.keys.ClearOrder):
		m.orders.ClearOrder()
		m.services.selection = make(map[string]order.Item)
		m.services.saveSeq++
		m.orderSnap = m.orders.Snapshot()
		m.setStatus("Order cleared", false)
		return m, nil
	}

	if len(visible) == 0 {
		return m, nil
	}
	svc := visible[m.services.row]

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.services.row < len(visible)-1 {
			m.services.row++
		}
		return m, nil
	case key.Matches(msg, m.keys.Up):
		if m.services.row > 0 {
			m.services.row--
		}
		return m, nil
	case key.Matches(msg, m.keys.Top):
		m.services.row = 0
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.services.row = len(visible) - 1
		return m, nil
	case key.Matches(msg, m.keys.Increment):
		qty := m.orders.Quantity(svc.ID)
		if qty > 0 {
			m.reportResult("quantity", m.orders.UpdateItemQuantity(svc.ID, qty+1, svc.Name))
		} else {
			m.reportResult("add", m.orders.AddOrUpdateItem(svc.Item(m.currentCleaner(), 1)))
		}
	case key.Matches(msg, m.keys.Decrement):
		qty := m.orders.Quantity(svc.ID)
		m.reportResult("quantity", m.orders.UpdateItemQuantity(svc.ID, qty-1, svc.Name))
	case key.Matches(msg, m.keys.Remove):
		m.reportResult("remove", m.orders.RemoveItem(svc.ID))
	case key.Matches(msg, m.keys.WashOnly):
		it, _ := m.orders.Item(svc.ID)
		washOnly := !it.WashOnly
		m.reportResult("wash only", m.orders.UpdateItemOptions(svc.ID, order.OptionsPatch{WashOnly: &washOnly}, svc.Name))
	case key.Matches(msg, m.keys.Starch):
		it, _ := m.orders.Item(svc.ID)
		level := it.StarchLevel.Next()
		m.reportResult("starch", m.orders.UpdateItemOptions(svc.ID, order.OptionsPatch{StarchLevel: &level}, svc.Name))
	case key.Matches(msg, m.keys.ToggleOption):
		idx := int(msg.String()[0]-'1')
		if idx >= len(svc.Options) {
			return m, nil
		}
		name := svc.Options[idx]
		it, _ := m.orders.Item(svc.ID)
		patch := order.OptionsPatch{Options: map[string]bool{name: !it.Options[name]}}
		m.reportResult(name, m.orders.UpdateItemOptions(svc.ID, patch, svc.Name))
	default:
		return m, nil
	}

	return m, m.afterEdit(svc.ID)
}

// afterEdit copies the store's view of the item into the selection and
// restarts the bulk-save debounce.
func (m *Model) afterEdit(itemID string) tea.Cmd {
	if m.services.selection == nil {
		m.services.selection = make(map[string]order.Item)
	}
	if it, ok := m.orders.Item(itemID); ok {
		m.services.selection[itemID] = it
	} else {
		delete(m.services.selection, itemID)
	}
	m.orderSnap = m.orders.Snapshot()
	m.services.saveSeq++
	return scheduleSaveCmd(m.services.saveSeq, m.debounce)
}

func (m Model) stepCategory(delta int) (tea.Model, tea.Cmd) {
	cats := append([]string{""}, catalog.Categories(m.cleanerServices())...)
	idx := max(slices.Index(cats, m.services.category), 0)
	n := len(cats)
	m.services.category = cats[((idx+delta)%n+n)%n]
	m.services.row = 0
	m.orders.LogCategorySelection(categoryLabel(m.services.category))
	m.orderSnap = m.orders.Snapshot()
	return m, nil
}

func categoryLabel(c string) string {
	if c == "" {
		return "All"
	}
	return c
}

// handleSaveOrder bulk-saves the selection once edits have gone quiet.
// The store decides whether the save lands; a protected or stale result
// leaves the fine-grained state in place.
func (m Model) handleSaveOrder(msg saveOrderMsg) (tea.Model, tea.Cmd) {
	if msg.seq != m.services.saveSeq || m.services.cleanerID == "" {
		return m, nil
	}
	res := m.orders.SaveOrderData(m.candidateOrder())
	if !res.OK() {
		m.log.Debug().Stringer("outcome", res.Outcome).Str("reason", res.Reason).Msg("bulk save not applied")
		if res.Reason != order.ReasonProtected {
			m.setStatus("save: "+res.Reason, true)
		}
	}
	m.orderSnap = m.orders.Snapshot()
	return m, nil
}

// candidateOrder builds the full order from the selection, keeping lines
// that belong to other cleaners.
func (m Model) candidateOrder() order.Order {
	current := m.orders.Order()
	var items []order.Item
	for _, it := range current.Items {
		if it.Cleaner.ID != m.services.cleanerID {
			items = append(items, it)
		}
	}

	seen := make(map[string]bool)
	for _, svc := range m.cleanerServices() {
		if it, ok := m.services.selection[svc.ID]; ok && it.Quantity > 0 {
			items = append(items, it)
			seen[svc.ID] = true
		}
	}
	var rest []string
	for id := range m.services.selection {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	for _, id := range rest {
		if it := m.services.selection[id]; it.Quantity > 0 {
			items = append(items, it)
		}
	}

	totals := order.ComputeTotals(items)
	return order.Order{
		Items:       items,
		Cleaner:     current.Cleaner,
		TotalItems:  totals.Items,
		TotalAmount: totals.Amount,
	}
}

func (m Model) renderServices() string {
	styles := m.theme.Styles()
	width := max(m.width-2, 10)

	if m.services.cleanerID == "" {
		return styles.Panel.Width(width).Render(styles.MutedText.Render("Select a dry cleaner first (C)"))
	}

	cleaner := m.currentCleaner()
	header := styles.AccentText.Bold(true).Render(firstNonEmptyStr(cleaner.ShopName, cleaner.ID)) +
		"  " + m.renderCategoryTabs(styles)

	visible := m.visibleServices()
	var rows []string
	rows = append(rows, header, "")
	if len(visible) == 0 {
		msg := "No services"
		if m.services.loading {
			msg = "Loading services..."
		}
		rows = append(rows, styles.MutedText.Render(msg))
	}
	for i, svc := range visible {
		it, inOrder := m.orders.Item(svc.ID)
		qty := 0
		if inOrder {
			qty = it.Quantity
		}
		line := fmt.Sprintf("%-30s %8s  x%-3d", truncate(svc.Name, 30), money(svc.Price), qty)
		if inOrder {
			if notes := itemNotes(it); notes != "" {
				line += "  " + notes
			}
		}
		if i == m.services.row {
			line = styles.Selected.Width(width - 4).Render(line)
		} else if qty > 0 {
			line = styles.Text.Render(line)
		} else {
			line = styles.MutedText.Render(line)
		}
		rows = append(rows, line)
	}

	if len(visible) > 0 {
		svc := visible[m.services.row]
		if len(svc.Options) > 0 {
			it, _ := m.orders.Item(svc.ID)
			var opts []string
			for i, name := range svc.Options {
				mark := "○"
				if it.Options[name] {
					mark = "●"
				}
				opts = append(opts, fmt.Sprintf("%d %s %s", i+1, mark, name))
			}
			rows = append(rows, "", styles.FaintText.Render(strings.Join(opts, "   ")))
		}
		if svc.Description != "" {
			rows = append(rows, styles.FaintText.Render(truncate(svc.Description, width-4)))
		}
	}

	list := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if m.width < LayoutWideWidth {
		return styles.Panel.Width(width).Render(list)
	}
	left := styles.Panel.Width(width * 3 / 5).Render(list)
	right := styles.Panel.Width(width - width*3/5 - 2).Render(m.renderOrderSummary(styles))
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right)
}

func (m Model) renderCategoryTabs(styles Styles) string {
	cats := append([]string{""}, catalog.Categories(m.cleanerServices())...)
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		label := categoryLabel(c)
		if c == m.services.category {
			parts = append(parts, styles.Selected.Render(" "+label+" "))
		} else {
			parts = append(parts, styles.MutedText.Render(" "+label+" "))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderOrderSummary(styles Styles) string {
	o := m.orderSnap.Order
	lines := []string{styles.Text.Bold(true).Render("Order")}
	if o.Empty() {
		lines = append(lines, styles.MutedText.Render("empty"))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	for _, it := range o.Items {
		lines = append(lines, styles.Text.Render(fmt.Sprintf("%2d × %-22s %9s", it.Quantity, truncate(it.Name, 22), money(it.LineTotal()))))
	}
	lines = append(lines, "", styles.SuccessText.Render(fmt.Sprintf("%d items  %s", o.TotalItems, money(o.TotalAmount))))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func firstNonEmptyStr(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
