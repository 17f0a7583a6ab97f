package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/clock"
	"github.com/five82/comanda/internal/form"
	"github.com/five82/comanda/internal/listview"
	"github.com/five82/comanda/internal/logtail"
	"github.com/five82/comanda/internal/modal"
	"github.com/five82/comanda/internal/prefs"
	"github.com/five82/comanda/internal/query"
	"github.com/five82/comanda/internal/realtime"
	"github.com/five82/comanda/internal/state"
	"github.com/five82/comanda/internal/stock"
)

// View represents the current active view.
type View int

const (
	ViewOrders View = iota
	ViewProducts
	ViewStats
	ViewActivity
)

func (v View) String() string {
	switch v {
	case ViewProducts:
		return "Productos"
	case ViewStats:
		return "Estadísticas"
	case ViewActivity:
		return "Actividad"
	default:
		return "Pedidos"
	}
}

var viewOrder = []View{ViewOrders, ViewProducts, ViewStats, ViewActivity}

// Backend is the remote API as seen by the UI. *api.Client implements it.
type Backend interface {
	listview.OrdersSource
	listview.ProductsSource
	listview.StatsSource
	stock.Updater
	form.SideWriter

	Shifts(ctx context.Context) ([]string, error)
	GetProduct(ctx context.Context, id int64) (api.Product, error)
	CreateProduct(ctx context.Context, req api.ProductRequest, photo *api.Upload) error
	DeleteProduct(ctx context.Context, id int64) error
	ListSides(ctx context.Context) ([]api.Side, error)
	ActiveSides(ctx context.Context) ([]api.Side, error)
	CreateSide(ctx context.Context, name string) (api.Side, error)
	DeleteSide(ctx context.Context, id int64) error
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Backend   Backend
	Cache     *query.Cache
	Bridge    *realtime.Bridge // nil disables live updates
	Store     *state.Store
	Logger    *log.Logger
	Clock     clock.Clock
	PollTick  time.Duration
	PageSize  int
	Search    time.Duration // orders search debounce
	Stock     time.Duration // stock edit debounce
	ThemeName string
	PrefsPath string
	Location  string
	LogPath   string
	OnLogout  func() error
}

// inputPurpose names what the single-line prompt is collecting.
type inputPurpose int

const (
	inputNone inputPurpose = iota
	inputOrderSearch
	inputOrderDates
	inputStatsSearch
	inputStatsDates
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	backend   Backend
	cache     *query.Cache
	bridge    *realtime.Bridge
	store     *state.Store
	logger    *log.Logger
	clock     clock.Clock
	prefsPath string
	logPath   string
	onLogout  func() error
	pollTick  time.Duration

	// UI state
	theme       Theme
	keys        keyMap
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	spinner     spinner.Model
	loggedOut   bool

	// Data state
	snapshot state.Snapshot

	// Controllers
	orders   *listview.Orders
	products *listview.Products
	stats    *listview.Stats
	stock    *stock.Editor
	shifts   *query.Subscription

	// Selection per view
	ordersRow   int
	productsRow int
	statsRow    int

	// Prompt
	input      textinput.Model
	inputFor   inputPurpose
	inputLabel string
	inputErr   string

	// Realtime
	ordersFeed *realtime.Subscription
	events     chan realtime.Event
	notices    chan stock.Notice

	// Notifications
	toasts    []toast
	lastErrAt map[View]time.Time

	// Dialogs
	modals   *modal.Controller
	registry *modal.Registry[Component]
	active   Component

	// Activity view
	activityViewport viewport.Model
	activity         []logtail.Entry
	activityErr      error
	activityFollow   bool
}

// New creates the root model and mounts the initial view.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.Real()
	}
	cache := opts.Cache
	if cache == nil {
		cache = query.New(query.WithClock(clk), query.WithLogger(logger))
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Nightfox"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		backend:   opts.Backend,
		cache:     cache,
		bridge:    opts.Bridge,
		store:     opts.Store,
		logger:    logger,
		clock:     clk,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		onLogout:  opts.OnLogout,
		pollTick:  pollTick,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		spinner:   sp,
		input:     newPrompt(),
		events:    make(chan realtime.Event, 32),
		notices:   make(chan stock.Notice, 32),
		lastErrAt: make(map[View]time.Time),
		modals:    &modal.Controller{},
	}

	m.orders = listview.NewOrders(cache, opts.Backend,
		listview.WithClock(clk),
		listview.WithSearchDebounce(opts.Search),
		listview.WithPageSize(opts.PageSize),
	)
	m.products = listview.NewProducts(cache, opts.Backend)
	m.stats = listview.NewStats(cache, opts.Backend, clk)
	notices := m.notices
	m.stock = stock.New(cache, listview.ProductsKey, opts.Backend,
		stock.WithClock(clk),
		stock.WithDelay(opts.Stock),
		stock.WithLogger(logger),
		stock.WithContext(ctx),
		stock.WithNotify(func(n stock.Notice) {
			select {
			case notices <- n:
			default:
			}
		}),
	)
	m.registry = newRegistry(deps{
		ctx:     ctx,
		backend: opts.Backend,
		cache:   cache,
		orders:  m.orders,
		logger:  logger,
	})

	loc := listview.ParseLocation(opts.Location)
	m.orders.ApplyLocation(loc)
	if loc.View == listview.ViewStats {
		m.stats.ApplyLocation(loc)
	}
	switch loc.View {
	case listview.ViewProducts:
		m.currentView = ViewProducts
	case listview.ViewStats:
		m.currentView = ViewStats
	default:
		m.currentView = ViewOrders
	}
	m.shifts = cache.Subscribe(listview.ShiftsKey, func(ctx context.Context) (any, error) {
		return opts.Backend.Shifts(ctx)
	})
	m.mountView(m.currentView)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.pollTick),
		m.spinner.Tick,
		waitSignal(m.orders.Changes(), ordersChangedMsg{}),
		waitSignal(m.products.Changes(), productsChangedMsg{}),
		waitSignal(m.stats.Changes(), statsChangedMsg{}),
		waitEvent(m.events),
		waitNotice(m.notices),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeActivity()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ordersChangedMsg:
		m.clampRows()
		m.toastQueryError(ViewOrders, m.orders.View())
		return m, waitSignal(m.orders.Changes(), ordersChangedMsg{})

	case productsChangedMsg:
		m.clampRows()
		m.toastQueryError(ViewProducts, m.products.View())
		return m, waitSignal(m.products.Changes(), productsChangedMsg{})

	case statsChangedMsg:
		m.clampRows()
		m.toastQueryError(ViewStats, m.stats.View())
		return m, waitSignal(m.stats.Changes(), statsChangedMsg{})

	case realtimeMsg:
		m.handleRealtime(realtime.Event(msg))
		return m, waitEvent(m.events)

	case stockNoticeMsg:
		n := stock.Notice(msg)
		if n.Err != nil {
			m.pushToast(toastError, n.Message())
		} else {
			m.pushToast(toastSuccess, n.Message())
		}
		return m, waitNotice(m.notices)

	case resultMsg:
		return m.handleResult(msg)

	case openModalMsg:
		return m.openModal(msg.id, msg.props)

	case activityMsg:
		m.activity = msg.entries
		m.activityErr = msg.err
		m.refreshActivityViewport()
		return m, nil
	}

	// Anything else belongs to the open dialog, or to the prompt's cursor.
	if m.active != nil {
		return m.updateActive(msg)
	}
	if m.inputFor != inputNone {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// clampRows keeps each view's selection inside its loaded rows.
func (m *Model) clampRows() {
	page, _ := m.orders.Page()
	m.ordersRow = clampRow(m.ordersRow, len(page.Orders))
	products, _ := m.products.Products()
	m.productsRow = clampRow(m.productsRow, len(products))
	m.statsRow = clampRow(m.statsRow, len(m.stats.Orders()))
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Cargando..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.active != nil {
		return m.renderModal()
	}
	return m.renderMain()
}

// updateActive hands msg to the open dialog.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd, closed := m.active.Update(msg, m.keys)
	m.active = next
	if closed {
		m.closeModal()
	}
	return m, cmd
}

// handleKey processes keyboard input. Dialogs and the prompt see keys first.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.active != nil {
		return m.updateActive(msg)
	}

	if m.inputFor != inputNone {
		return m.handleInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		return m.logout()

	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.relativeView(1))

	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.relativeView(-1))

	case key.Matches(msg, m.keys.ViewOrders):
		return m.switchView(ViewOrders)

	case key.Matches(msg, m.keys.ViewProducts):
		return m.switchView(ViewProducts)

	case key.Matches(msg, m.keys.ViewStats):
		return m.switchView(ViewStats)

	case key.Matches(msg, m.keys.ViewActivity):
		return m.switchView(ViewActivity)
	}

	switch m.currentView {
	case ViewOrders:
		return m.handleOrdersKey(msg)
	case ViewProducts:
		return m.handleProductsKey(msg)
	case ViewStats:
		return m.handleStatsKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

func (m Model) relativeView(step int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewOrders
}

// switchView unmounts the current view's queries and mounts the next.
func (m Model) switchView(next View) (tea.Model, tea.Cmd) {
	if next == m.currentView {
		return m, nil
	}
	m.unmountView(m.currentView)
	m.currentView = next
	m.mountView(next)
	m.clampRows()
	m.savePrefs()
	if next == ViewActivity {
		return m, m.refreshActivity()
	}
	return m, nil
}

func (m *Model) mountView(v View) {
	switch v {
	case ViewOrders:
		m.orders.Mount()
		if m.bridge != nil && m.ordersFeed == nil {
			events := m.events
			m.ordersFeed = m.bridge.Subscribe(realtime.TopicOrders, func(ev realtime.Event) {
				select {
				case events <- ev:
				default:
				}
			})
		}
	case ViewProducts:
		m.products.Mount()
	case ViewStats:
		m.stats.Mount()
	}
}

func (m *Model) unmountView(v View) {
	switch v {
	case ViewOrders:
		m.orders.Unmount()
		m.ordersFeed.Close()
		m.ordersFeed = nil
	case ViewProducts:
		m.products.Unmount()
	case ViewStats:
		m.stats.Unmount()
	}
}

// quit releases every subscription. Stock edits still waiting for their
// debounce are dropped.
func (m Model) quit() (tea.Model, tea.Cmd) {
	m.shutdown()
	return m, tea.Quit
}

func (m *Model) shutdown() {
	m.unmountView(m.currentView)
	m.shifts.Close()
	m.stock.Close()
	m.savePrefs()
}

func (m Model) logout() (tea.Model, tea.Cmd) {
	if m.onLogout != nil {
		if err := m.onLogout(); err != nil {
			m.logger.Error("logout failed", "err", err)
			m.pushToast(toastError, "No se pudo cerrar la sesión")
			return m, nil
		}
	}
	m.loggedOut = true
	return m.quit()
}

// LoggedOut reports whether the program ended through the logout key.
func (m Model) LoggedOut() bool { return m.loggedOut }

// handleTick refreshes the snapshot, expires toasts and follows the log.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.pollTick)}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	m.expireToasts(m.clock.Now())
	if m.currentView == ViewActivity {
		cmds = append(cmds, m.refreshActivity())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleRealtime(ev realtime.Event) {
	switch ev.Name {
	case realtime.EventNewOrder:
		m.pushToast(toastInfo, "Nuevo pedido recibido")
	case realtime.EventOrderStatusUpdated:
		m.logger.Debug("order status pushed", "payload", string(ev.Payload))
	}
}

// handleResult reports a finished write. The dialog that issued it sees the
// outcome unless a successful write closes it.
func (m Model) handleResult(msg resultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Error("write failed", "action", msg.failure, "err", msg.err)
		text := msg.failure
		if detail := strings.TrimSpace(msg.err.Error()); detail != "" {
			text += ": " + detail
		}
		m.pushToast(toastError, text)
	} else if msg.success != "" {
		m.pushToast(toastSuccess, msg.success)
	}

	if msg.err == nil && msg.closeModal {
		m.closeModal()
		return m, nil
	}
	if m.active != nil {
		return m.updateActive(msg)
	}
	return m, nil
}

// toastQueryError raises one toast per failed refetch of a view that still
// shows data.
func (m *Model) toastQueryError(v View, state listview.View) {
	if !state.Toast() || state.ErrAt.Equal(m.lastErrAt[v]) {
		return
	}
	m.lastErrAt[v] = state.ErrAt
	m.pushToast(toastError, "No se pudo actualizar: "+state.Err.Error())
}

// savePrefs persists the theme and the current location.
func (m *Model) savePrefs() {
	p := prefs.Prefs{Theme: m.theme.Name, Location: m.location().String()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save prefs failed", "err", err)
	}
}

func (m Model) location() listview.Location {
	switch m.currentView {
	case ViewProducts:
		return listview.Location{View: listview.ViewProducts}
	case ViewStats:
		return m.stats.Location()
	default:
		return m.orders.Location()
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	if m.inputFor != inputNone {
		b.WriteString("\n")
		b.WriteString(m.renderInput())
	}
	if toasts := m.renderToasts(); toasts != "" {
		b.WriteString("\n")
		b.WriteString(toasts)
	}
	return b.String()
}

// renderContent renders the main content area based on current view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewProducts:
		return m.renderProducts()
	case ViewStats:
		return m.renderStats()
	case ViewActivity:
		return m.renderActivity()
	default:
		return m.renderOrders()
	}
}

// contentHeight is the number of rows below the header and command bar.
func (m Model) contentHeight() int {
	h := m.height - 2 - len(m.toasts)
	if m.inputFor != inputNone {
		h--
	}
	if h < 3 {
		return 3
	}
	return h
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type ordersChangedMsg struct{}

type productsChangedMsg struct{}

type statsChangedMsg struct{}

type realtimeMsg realtime.Event

type stockNoticeMsg stock.Notice

type openModalMsg struct {
	id    modal.ID
	props modal.Props
}

// resultMsg reports a write issued from a dialog or a view.
type resultMsg struct {
	success    string
	failure    string
	err        error
	closeModal bool
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitSignal blocks until ch fires. Controller change channels are never
// closed, so each message re-arms the wait.
func waitSignal(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return msg
	}
}

func waitEvent(ch <-chan realtime.Event) tea.Cmd {
	return func() tea.Msg {
		return realtimeMsg(<-ch)
	}
}

func waitNotice(ch <-chan stock.Notice) tea.Cmd {
	return func() tea.Msg {
		return stockNoticeMsg(<-ch)
	}
}

// mutate runs fn with the write timeout on the cache, invalidating keys on
// success, and reports the outcome as a resultMsg.
func mutate(ctx context.Context, cache *query.Cache, res resultMsg, fn func(ctx context.Context) error, keys ...query.Key) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, MutationTimeout)
		defer cancel()
		res.err = cache.Mutate(ctx, fn, keys...)
		return res
	}
}

// Run starts the Bubble Tea program and reports whether the operator logged
// out.
func Run(opts Options) (bool, error) {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	final, err := p.Run()
	killed := errors.Is(err, tea.ErrProgramKilled)
	if killed && m.ctx.Err() != nil {
		// Cancelled from outside, e.g. SIGTERM.
		err = nil
	}
	if fm, ok := final.(Model); ok {
		if killed || err != nil {
			fm.shutdown()
		}
		return fm.LoggedOut(), err
	}
	return false, err
}
