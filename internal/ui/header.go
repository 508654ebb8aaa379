package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the status bar: connection, order totals, the
// protection indicator and the transient status message.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("presser", styles.Logo)}

	snap := m.catalogSnap
	switch {
	case snap.IsOffline():
		parts = append(parts, bg.Render("● OFFLINE", styles.DangerText))
	case snap.LastUpdated.IsZero():
		parts = append(parts, bg.Render("● connecting", styles.WarningText))
	default:
		parts = append(parts, bg.Render("● online", styles.SuccessText))
	}

	o := m.orderSnap.Order
	if o.Cleaner != nil && !compact {
		parts = append(parts, bg.Render(truncate(o.Cleaner.ShopName, 24), styles.AccentText))
	}
	parts = append(parts,
		bg.Render("Items:", styles.MutedText)+bg.Space()+bg.Render(fmt.Sprintf("%d", o.TotalItems), styles.Text),
		bg.Render("Total:", styles.MutedText)+bg.Space()+bg.Render(money(o.TotalAmount), styles.Text),
	)
	if m.orderSnap.Protected {
		parts = append(parts, bg.Render("● editing", styles.WarningText))
	}

	if !m.lastUpdated.IsZero() && !compact {
		parts = append(parts, bg.Render(humanizeDuration(time.Since(m.lastUpdated))+" ago", styles.FaintText))
	}

	if snap.LastError != nil && !snap.IsOffline() {
		parts = append(parts, bg.Render("ERROR", styles.DangerText)+bg.Space()+
			bg.Render(truncate(snap.LastError.Error(), 40), styles.DangerText))
	}

	if m.status != "" {
		style := styles.InfoText
		if m.statusErr {
			style = styles.WarningText
		}
		parts = append(parts, bg.Render(truncate(m.status, 60), style))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// renderCommandBar lists the views with the active one highlighted, plus the
// main keys of the active view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	keys := map[View]string{
		ViewCleaners: "C",
		ViewServices: "S",
		ViewSchedule: "P",
		ViewAddress:  "A",
		ViewCheckout: "K",
		ViewActivity: "L",
	}

	var tabs []string
	for _, v := range viewCycle {
		label := fmt.Sprintf(" %s %s ", keys[v], v)
		if v == m.currentView {
			tabs = append(tabs, styles.Selected.Render(label))
		} else {
			tabs = append(tabs, styles.MutedText.Render(label))
		}
	}
	if m.currentView == ViewReceipt {
		tabs = append(tabs, styles.Selected.Render(" Receipt "))
	}

	hints := styles.FaintText.Render(m.viewHints())
	bar := strings.Join(tabs, "") + "  " + hints
	return lipgloss.NewStyle().Width(m.width).MaxHeight(1).Render(bar)
}

func (m Model) viewHints() string {
	switch m.currentView {
	case ViewCleaners:
		return "enter select  ? help"
	case ViewServices:
		return "+/- qty  x remove  w wash  s starch  1-9 options  [ ] category"
	case ViewCheckout:
		return "p pay"
	case ViewActivity:
		return "r reset  g/G top/bottom"
	case ViewReceipt:
		return "w save QR"
	default:
		return "enter save  esc back"
	}
}
