package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/five82/presser/internal/api"
	"github.com/five82/presser/internal/catalog"
	"github.com/five82/presser/internal/checkout"
	"github.com/five82/presser/internal/config"
	"github.com/five82/presser/internal/order"
	"github.com/five82/presser/internal/prefs"
)

// View represents the current active view.
type View int

const (
	ViewCleaners View = iota
	ViewServices
	ViewSchedule
	ViewAddress
	ViewCheckout
	ViewActivity
	ViewReceipt
)

// viewCycle is the tab order. The receipt is only reached after payment.
var viewCycle = []View{ViewCleaners, ViewServices, ViewSchedule, ViewAddress, ViewCheckout, ViewActivity}

func (v View) String() string {
	switch v {
	case ViewCleaners:
		return "Cleaners"
	case ViewServices:
		return "Services"
	case ViewSchedule:
		return "Schedule"
	case ViewAddress:
		return "Address"
	case ViewCheckout:
		return "Checkout"
	case ViewActivity:
		return "Activity"
	case ViewReceipt:
		return "Receipt"
	default:
		return ""
	}
}

// Options configures the UI.
type Options struct {
	Context     context.Context
	Directory   api.Directory
	Catalog     *catalog.Store
	Orders      *order.Store
	Checkout    *checkout.Flow
	Config      *config.Config
	ThemeName   string
	AddressType order.AddressType
	PrefsPath   string
	Logger      zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	directory api.Directory
	catalog   *catalog.Store
	orders    *order.Store
	flow      *checkout.Flow
	validate  *validatorv10.Validate
	config    *config.Config
	prefsPath string
	pollTick  time.Duration
	debounce  time.Duration
	log       zerolog.Logger

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal

	// Data state
	catalogSnap catalog.Snapshot
	orderSnap   order.Snapshot
	lastUpdated time.Time

	// Transient status line
	status    string
	statusErr bool
	statusAt  time.Time

	cleanerRow int
	services   servicesState

	addressType  order.AddressType
	addressForm  form
	scheduleForm form

	busy      bool
	receipt   *checkout.Receipt
	receiptQR string

	activity   viewport.Model
	logEntries []logEntry
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	addrType := opts.AddressType
	if !addrType.Valid() {
		addrType = order.AddressHome
	}

	validate := checkout.NewValidator()
	if opts.Checkout != nil {
		validate = opts.Checkout.Validator()
	}

	debounce := 300 * time.Millisecond
	if opts.Config != nil && opts.Config.SaveDebounce > 0 {
		debounce = opts.Config.SaveDebounce
	}

	orders := opts.Orders
	if orders == nil {
		orders = order.NewStore(order.Options{})
	}
	directory := opts.Catalog
	if directory == nil {
		directory = &catalog.Store{}
	}

	m := Model{
		ctx:          ctx,
		directory:    opts.Directory,
		catalog:      directory,
		orders:       orders,
		flow:         opts.Checkout,
		validate:     validate,
		config:       opts.Config,
		prefsPath:    prefsPath,
		pollTick:     DefaultUIInterval,
		debounce:     debounce,
		log:          opts.Logger.With().Str("component", "ui").Logger(),
		keys:         DefaultKeyMap(),
		theme:        GetTheme(themeName),
		currentView:  ViewCleaners,
		addressType:  addrType,
		addressForm:  newAddressForm(),
		scheduleForm: newScheduleForm(),
	}
	m.catalogSnap = directory.Snapshot()
	m.orderSnap = orders.Snapshot()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.catalog, m.orders),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.activity = viewport.New(msg.Width, m.contentHeight())
		}
		m.ready = true
		m.activity.Width = msg.Width
		m.activity.Height = m.contentHeight()
		m.updateActivityViewport()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.catalogSnap = msg.catalog
		m.orderSnap = msg.order
		m.lastUpdated = time.Now()
		m.clampRows()
		if m.currentView == ViewActivity {
			m.updateActivityViewport()
		}
		return m, nil

	case servicesMsg:
		return m.handleServices(msg)

	case saveOrderMsg:
		return m.handleSaveOrder(msg)

	case preparedMsg:
		return m.handlePrepared(msg)

	case paymentDecisionMsg:
		return m.handlePaymentDecision(msg)

	case completedMsg:
		return m.handleCompleted(msg)

	case logTailMsg:
		if msg.err != nil {
			m.log.Debug().Err(msg.err).Msg("log tail failed")
			return m, nil
		}
		m.logEntries = msg.entries
		m.updateActivityViewport()
		return m, nil

	case qrSavedMsg:
		if msg.err != nil {
			m.setStatus(msg.err.Error(), true)
		} else {
			m.setStatus("QR saved to "+msg.path, false)
		}
		return m, nil
	}

	if m.inForm() {
		return m.updateForm(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.modal != nil {
		modal, cmd, closed := m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}
	if m.inForm() {
		return m.handleFormKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m.setView(m.stepView(1))
	case key.Matches(msg, m.keys.ShiftTab):
		return m.setView(m.stepView(-1))
	case key.Matches(msg, m.keys.Escape):
		return m.setView(ViewCleaners)
	case key.Matches(msg, m.keys.ViewCleaners):
		return m.setView(ViewCleaners)
	case key.Matches(msg, m.keys.ViewServices):
		return m.setView(ViewServices)
	case key.Matches(msg, m.keys.ViewSchedule):
		return m.setView(ViewSchedule)
	case key.Matches(msg, m.keys.ViewAddress):
		return m.setView(ViewAddress)
	case key.Matches(msg, m.keys.ViewCheckout):
		return m.setView(ViewCheckout)
	case key.Matches(msg, m.keys.ViewActivity):
		return m.setView(ViewActivity)
	}

	switch m.currentView {
	case ViewCleaners:
		return m.handleCleanersKey(msg)
	case ViewServices:
		return m.handleServicesKey(msg)
	case ViewCheckout:
		return m.handleCheckoutKey(msg)
	case ViewReceipt:
		return m.handleReceiptKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

func (m Model) stepView(delta int) View {
	idx := 0
	for i, v := range viewCycle {
		if v == m.currentView {
			idx = i
			break
		}
	}
	n := len(viewCycle)
	return viewCycle[((idx+delta)%n+n)%n]
}

// setView switches views and runs whatever the target view needs on entry.
func (m Model) setView(v View) (Model, tea.Cmd) {
	m.currentView = v
	m.orderSnap = m.orders.Snapshot()
	switch v {
	case ViewServices:
		m.syncSelection()
	case ViewAddress:
		m.loadAddressForm()
		return m, m.addressForm.focusCmd()
	case ViewSchedule:
		m.loadScheduleForm()
		return m, m.scheduleForm.focusCmd()
	case ViewActivity:
		m.updateActivityViewport()
		return m, m.refreshLogsCmd()
	}
	return m, nil
}

// handleTick processes the refresh tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchSnapshotCmd(m.catalog, m.orders)}
	if m.currentView == ViewActivity {
		cmds = append(cmds, m.refreshLogsCmd())
	}
	if m.status != "" && time.Since(m.statusAt) > StatusTTL {
		m.status = ""
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
	m.statusAt = time.Now()
}

// reportResult surfaces NoOp and Rejected store results in the status line.
func (m *Model) reportResult(op string, res order.Result) {
	if res.OK() {
		return
	}
	m.log.Debug().Str("op", op).Stringer("outcome", res.Outcome).Str("reason", res.Reason).Msg("store operation not applied")
	m.setStatus(op+": "+res.Reason, res.Outcome == order.Rejected)
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, AddressType: m.addressType}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.log.Warn().Err(err).Msg("save prefs")
	}
}

func (m Model) contentHeight() int {
	return max(m.height-3, 1)
}

// renderMain renders the header, command bar and the active view.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCleaners:
		return m.renderCleaners()
	case ViewServices:
		return m.renderServices()
	case ViewSchedule:
		return m.renderScheduleForm()
	case ViewAddress:
		return m.renderAddressForm()
	case ViewCheckout:
		return m.renderCheckout()
	case ViewReceipt:
		return m.renderReceipt()
	case ViewActivity:
		return m.activity.View()
	default:
		return ""
	}
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	catalog catalog.Snapshot
	order   order.Snapshot
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(directory *catalog.Store, orders *order.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg{catalog: directory.Snapshot(), order: orders.Snapshot()}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
