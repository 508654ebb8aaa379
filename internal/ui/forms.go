package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/presser/internal/checkout"
	"github.com/five82/presser/internal/order"
)

// form is a vertical stack of labelled text inputs with one focused field.
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newForm(labels, placeholders []string) form {
	f := form{labels: labels, inputs: make([]textinput.Model, len(labels))}
	for i := range labels {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 64
		in.Width = 32
		if i < len(placeholders) {
			in.Placeholder = placeholders[i]
		}
		f.inputs[i] = in
	}
	f.setFocus(0)
	return f
}

func newAddressForm() form {
	return newForm(
		[]string{"Street", "City", "State", "Zip"},
		[]string{"123 Main St", "Springfield", "IL", "62701"},
	)
}

func newScheduleForm() form {
	return newForm(
		[]string{"Pickup date", "Pickup time", "Pickup month", "Delivery date", "Delivery time", "Delivery month"},
		[]string{"14", "9:00 AM - 11:00 AM", "March", "16", "5:00 PM - 7:00 PM", "March"},
	)
}

func (f *form) setFocus(i int) {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f form) focusCmd() tea.Cmd {
	return textinput.Blink
}

func (f *form) setValues(vals ...string) {
	for i := range f.inputs {
		v := ""
		if i < len(vals) {
			v = vals[i]
		}
		f.inputs[i].SetValue(v)
	}
}

func (f form) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = strings.TrimSpace(in.Value())
	}
	return out
}

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) view(styles Styles) string {
	label := styles.MutedText.Width(16)
	rows := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		l := label.Render(f.labels[i])
		if i == f.focus {
			l = styles.AccentText.Width(16).Render(f.labels[i])
		}
		rows[i] = l + in.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m Model) inForm() bool {
	return m.currentView == ViewAddress || m.currentView == ViewSchedule
}

func (m *Model) activeForm() *form {
	if m.currentView == ViewAddress {
		return &m.addressForm
	}
	return &m.scheduleForm
}

func (m Model) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.activeForm()
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m.setView(ViewCleaners)
	case key.Matches(msg, m.keys.NextField):
		f.setFocus(f.focus + 1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		f.setFocus(f.focus - 1)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.currentView == ViewAddress {
			return m.submitAddress()
		}
		return m.submitSchedule()
	case m.currentView == ViewAddress && key.Matches(msg, m.keys.ToggleAddress):
		if m.addressType == order.AddressHome {
			m.addressType = order.AddressOffice
		} else {
			m.addressType = order.AddressHome
		}
		m.loadAddressForm()
		return m, nil
	}
	return m.updateForm(msg)
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	f := m.activeForm()
	var cmd tea.Cmd
	*f, cmd = f.update(msg)
	return m, cmd
}

func (m *Model) loadAddressForm() {
	addr, _ := m.orders.Address(m.addressType)
	m.addressForm.setValues(addr.Street, addr.City, addr.State, addr.Zip)
	m.addressForm.setFocus(0)
}

func (m *Model) loadScheduleForm() {
	s, _ := m.orders.Scheduling()
	m.scheduleForm.setValues(s.PickupDate, s.PickupTime, s.PickupMonth, s.DeliveryDate, s.DeliveryTime, s.DeliveryMonth)
	m.scheduleForm.setFocus(0)
}

func (m Model) submitAddress() (tea.Model, tea.Cmd) {
	v := m.addressForm.values()
	addr := order.Address{Street: v[0], City: v[1], State: v[2], Zip: v[3]}
	if err := checkout.ValidateAddress(m.validate, addr); err != nil {
		m.setStatus(err.Error(), true)
		return m, nil
	}
	if res := m.orders.SaveAddress(m.addressType, addr); !res.OK() {
		m.setStatus("Address not saved: "+res.Reason, true)
		return m, nil
	}
	m.savePrefs()
	m.orderSnap = m.orders.Snapshot()
	m.setStatus("Saved "+string(m.addressType)+" address", false)
	return m, nil
}

func (m Model) submitSchedule() (tea.Model, tea.Cmd) {
	v := m.scheduleForm.values()
	for i := 0; i < 3; i++ {
		if v[i] == "" {
			m.scheduleForm.setFocus(i)
			m.setStatus(strings.ToLower(m.scheduleForm.labels[i])+" is required", true)
			return m, nil
		}
	}
	m.orders.SaveScheduling(order.Schedule{
		PickupDate:    v[0],
		PickupTime:    v[1],
		PickupMonth:   v[2],
		DeliveryDate:  v[3],
		DeliveryTime:  v[4],
		DeliveryMonth: v[5],
	})
	m.orderSnap = m.orders.Snapshot()
	m.setStatus("Pickup scheduled", false)
	return m, nil
}

func (m Model) renderAddressForm() string {
	styles := m.theme.Styles()
	title := styles.Text.Bold(true).Render("Pickup address") + "  " +
		m.renderAddressTypeTabs(styles)
	hint := styles.FaintText.Render("tab next field  enter save  ctrl+t home/office  esc back")
	body := lipgloss.JoinVertical(lipgloss.Left, title, "", m.addressForm.view(styles), "", hint)
	return styles.Panel.Width(max(m.width-2, 10)).Render(body)
}

func (m Model) renderAddressTypeTabs(styles Styles) string {
	var parts []string
	for _, t := range []order.AddressType{order.AddressHome, order.AddressOffice} {
		label := " " + string(t) + " "
		if _, saved := m.orderSnap.Addresses[t]; saved {
			label = " " + string(t) + " ✓ "
		}
		if t == m.addressType {
			parts = append(parts, styles.Selected.Render(label))
		} else {
			parts = append(parts, styles.MutedText.Render(label))
		}
	}
	return strings.Join(parts, "")
}

func (m Model) renderScheduleForm() string {
	styles := m.theme.Styles()
	title := styles.Text.Bold(true).Render("Pickup and delivery")
	hint := styles.FaintText.Render("tab next field  enter save  esc back")
	body := lipgloss.JoinVertical(lipgloss.Left, title, "", m.scheduleForm.view(styles), "", hint)
	return styles.Panel.Width(max(m.width-2, 10)).Render(body)
}
