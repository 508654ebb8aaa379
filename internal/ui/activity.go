package ui

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/presser/internal/logtail"
	"github.com/five82/presser/internal/order"
)

type logEntry = logtail.Entry

type logTailMsg struct {
	entries []logEntry
	err     error
}

func (m Model) refreshLogsCmd() tea.Cmd {
	if m.config == nil {
		return nil
	}
	path := m.config.LogPath()
	return func() tea.Msg {
		lines, err := logtail.Read(path, LogTailLines)
		if err != nil {
			return logTailMsg{err: err}
		}
		return logTailMsg{entries: logtail.ParseAll(lines)}
	}
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.ResetInteractions) {
		m.orders.ResetInteractions()
		m.orderSnap = m.orders.Snapshot()
		m.updateActivityViewport()
		m.setStatus("Interaction log cleared", false)
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Top):
		m.activity.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.activity.GotoBottom()
		return m, nil
	}
	var cmd tea.Cmd
	m.activity, cmd = m.activity.Update(msg)
	return m, cmd
}

// updateActivityViewport renders the interaction log followed by the log
// tail, keeping the view pinned to the bottom when it already was.
func (m *Model) updateActivityViewport() {
	if !m.ready {
		return
	}
	atBottom := m.activity.AtBottom()
	m.activity.SetContent(m.renderActivity())
	if atBottom {
		m.activity.GotoBottom()
	}
}

func (m Model) renderActivity() string {
	styles := m.theme.Styles()
	var b strings.Builder

	protected := styles.MutedText.Render("idle")
	if m.orderSnap.Protected {
		protected = styles.WarningText.Render("protected")
	}
	b.WriteString(styles.Text.Bold(true).Render(fmt.Sprintf("Interactions (%d)", len(m.orderSnap.Interactions))))
	b.WriteString("  " + protected + "\n")

	if len(m.orderSnap.Interactions) == 0 {
		b.WriteString(styles.FaintText.Render("  none") + "\n")
	}
	for _, in := range m.orderSnap.Interactions {
		b.WriteString(styles.FaintText.Render(in.At.Local().Format("15:04:05.000")) + " ")
		b.WriteString(styles.KindStyle(in.Kind).Render(fmt.Sprintf("%-18s", in.Kind)) + " ")
		b.WriteString(styles.Text.Render(describeInteraction(in)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Text.Bold(true).Render("Log"))
	b.WriteString("\n")
	if len(m.logEntries) == 0 {
		b.WriteString(styles.FaintText.Render("  no log lines") + "\n")
	}
	for _, e := range m.logEntries {
		b.WriteString(m.renderLogEntry(styles, e))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderLogEntry(styles Styles, e logEntry) string {
	if e.Raw != "" {
		return styles.MutedText.Render(e.Raw)
	}
	var parts []string
	if !e.Time.IsZero() {
		parts = append(parts, styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
	}
	parts = append(parts, styles.LevelStyle(e.Level).Render(fmt.Sprintf("%-5s", strings.ToUpper(e.Level))))
	if e.Component != "" {
		parts = append(parts, styles.AccentText.Render("["+e.Component+"]"))
	}
	parts = append(parts, styles.Text.Render(e.Message))
	if e.Error != "" {
		parts = append(parts, styles.DangerText.Render("error="+e.Error))
	}
	if len(e.Fields) > 0 {
		parts = append(parts, styles.MutedText.Render(strings.Join(e.Fields, " ")))
	}
	return strings.Join(parts, " ")
}

func describeInteraction(in order.Interaction) string {
	var parts []string
	if in.ItemName != "" {
		parts = append(parts, in.ItemName)
	} else if in.ItemID != "" {
		parts = append(parts, in.ItemID)
	}
	if in.Category != "" {
		parts = append(parts, "category="+in.Category)
	}
	if in.Quantity != nil {
		parts = append(parts, fmt.Sprintf("qty=%d", *in.Quantity))
	}
	if in.WashOnly != nil {
		parts = append(parts, fmt.Sprintf("wash_only=%t", *in.WashOnly))
	}
	if in.StarchLevel != nil {
		parts = append(parts, "starch="+in.StarchLevel.String())
	}
	names := slices.Sorted(maps.Keys(in.Options))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%t", name, in.Options[name]))
	}
	return strings.Join(parts, " ")
}
