package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/listview"
	"github.com/five82/comanda/internal/modal"
	"github.com/five82/comanda/internal/query"
)

// Lines of the orders view that are not table rows.
const ordersChromeLines = 4

func (m Model) handleOrdersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page, _ := m.orders.Page()
	if row, ok := m.navigate(msg, m.ordersRow, len(page.Orders), m.contentHeight()/2); ok {
		m.ordersRow = row
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		cmd := m.startInput(inputOrderSearch, "Buscar pedido, DNI o cliente", m.orders.SearchInput())
		return m, cmd

	case key.Matches(msg, m.keys.DateRange):
		f := m.orders.Filter()
		cmd := m.startInput(inputOrderDates, "Fechas AAAA-MM-DD AAAA-MM-DD", strings.TrimSpace(f.StartDate+" "+f.EndDate))
		return m, cmd

	case key.Matches(msg, m.keys.CycleStatus):
		m.orders.SetStatus(nextStatus(m.orders.Filter().Status))
		m.ordersRow = 0

	case key.Matches(msg, m.keys.CycleShift):
		m.orders.SetShift(nextShift(m.shiftOptions(), m.orders.Filter().Shift))
		m.ordersRow = 0
		m.savePrefs()

	case key.Matches(msg, m.keys.ClearFilter):
		m.orders.Clear()
		m.ordersRow = 0
		m.savePrefs()

	case key.Matches(msg, m.keys.NextPage):
		m.orders.NextPage()
		m.ordersRow = 0

	case key.Matches(msg, m.keys.PrevPage):
		m.orders.PrevPage()
		m.ordersRow = 0

	case key.Matches(msg, m.keys.Refresh):
		m.orders.Refetch()

	case key.Matches(msg, m.keys.Select):
		if order, ok := m.selectedOrder(); ok {
			return m, openModalCmd(modal.OrderStatusModal, modal.Props{OrderID: order.ID})
		}
	}
	return m, nil
}

func (m Model) selectedOrder() (api.Order, bool) {
	page, ok := m.orders.Page()
	if !ok || m.ordersRow >= len(page.Orders) {
		return api.Order{}, false
	}
	return page.Orders[m.ordersRow], true
}

// shiftOptions merges the known pickup slots with the server's list.
func (m Model) shiftOptions() []string {
	server, _ := query.Data[[]string](m.shifts.Result())
	return listview.MergeShifts(server)
}

// nextStatus cycles "all" through every status.
func nextStatus(current api.OrderStatus) api.OrderStatus {
	if current == "" {
		return api.OrderStatuses[0]
	}
	for i, s := range api.OrderStatuses {
		if s == current && i+1 < len(api.OrderStatuses) {
			return api.OrderStatuses[i+1]
		}
	}
	return ""
}

// nextShift cycles "all" through every slot.
func nextShift(options []string, current string) string {
	if current == "" {
		if len(options) > 0 {
			return options[0]
		}
		return ""
	}
	for i, s := range options {
		if s == current && i+1 < len(options) {
			return options[i+1]
		}
	}
	return ""
}

func (m Model) renderOrders() string {
	height := m.contentHeight()
	width := m.width
	showSummary := m.width >= LayoutSummaryWidth
	summaryWidth := 40
	if showSummary {
		width -= summaryWidth
	}

	content := m.renderOrdersContent(width-2, height-2)
	title := "Pedidos"
	if v := m.orders.View(); v.Refreshing {
		title += " " + m.spinner.View()
	}
	box := m.renderTitledBox(title, content, width, height, true)
	if !showSummary {
		return box
	}
	summary := m.renderTitledBox("Resumen del turno", m.renderShiftSummary(summaryWidth-2), summaryWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, box, summary)
}

func (m Model) renderOrdersContent(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	var b strings.Builder
	b.WriteString(m.renderOrdersFilters(styles))
	b.WriteString("\n")

	view := m.orders.View()
	switch view.State {
	case listview.StateLoading:
		b.WriteString(styles.MutedText.Render(m.spinner.View() + " Cargando pedidos..."))
		return b.String()
	case listview.StateError:
		b.WriteString(styles.DangerText.Render("Error al cargar los pedidos: " + view.Err.Error()))
		b.WriteString("\n")
		b.WriteString(styles.FaintText.Render("r reintentar"))
		return b.String()
	case listview.StateEmpty:
		b.WriteString(styles.MutedText.Render("No hay pedidos para los filtros seleccionados"))
		return b.String()
	}

	page, _ := m.orders.Page()
	compact := width < LayoutCompactWidth
	cols := []column{
		{label: "#", width: 6},
		{label: "Cliente", width: 20},
		{label: "DNI", width: 10},
		{label: "Turno", width: 6},
		{label: "Estado", width: 14},
		{label: "Ítems", width: 5, right: true},
		{label: "Total", width: 11, right: true},
		{label: "Creado", width: 11},
	}
	if compact {
		cols = []column{cols[0], cols[1], cols[3], cols[4], cols[6]}
	}
	rows := make([]tableRow, 0, len(page.Orders))
	for _, o := range page.Orders {
		statusStyle := styles.StatusStyle(o.Status)
		items := 0
		for _, it := range o.Items {
			items += it.Quantity
		}
		cells := []string{
			"#" + strconv.FormatInt(o.ID, 10),
			o.User.Name,
			o.User.NationalID,
			o.Shift,
			o.Status.Label(),
			itoa(items),
			formatMoney(o.TotalPrice),
			formatTimestamp(o.CreatedAt),
		}
		cellStyles := make([]*lipgloss.Style, len(cells))
		cellStyles[4] = &statusStyle
		if compact {
			cells = []string{cells[0], cells[1], cells[3], cells[4], cells[6]}
			cellStyles = []*lipgloss.Style{nil, nil, nil, &statusStyle, nil}
		}
		rows = append(rows, tableRow{cells: cells, styles: cellStyles})
	}
	b.WriteString(m.renderTable(cols, rows, m.ordersRow, height-ordersChromeLines, styles))
	b.WriteString("\n\n")
	b.WriteString(m.renderOrdersPagination(page.Pagination, styles))
	return b.String()
}

func (m Model) renderOrdersFilters(styles Styles) string {
	f := m.orders.Filter()
	label := func(name, value string) string {
		return styles.MutedText.Render(name+":") + " " + styles.Text.Render(value)
	}

	search := m.orders.SearchInput()
	if search == "" {
		search = "-"
	}
	if m.orders.SearchPending() {
		search += "…"
	}
	status := "Todos"
	if f.Status != "" {
		status = f.Status.Label()
	}
	shift := "Todos"
	if f.Shift != "" {
		shift = f.Shift
	}
	dates := "-"
	if f.StartDate != "" || f.EndDate != "" {
		dates = f.StartDate + " → " + f.EndDate
	}

	parts := []string{
		label("Buscar", truncate(search, 20)),
		label("Estado", status),
		label("Turno", shift),
		label("Fechas", dates),
	}
	if m.orders.UpdatingStatus() {
		parts = append(parts, styles.WarningText.Render("actualizando estado..."))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderOrdersPagination(p api.Pagination, styles Styles) string {
	if p.TotalPages <= 0 {
		return styles.FaintText.Render(fmt.Sprintf("%d pedidos", p.Total))
	}
	var pages []string
	for _, item := range listview.PageNumbers(p.TotalPages, p.Page) {
		text := item.String()
		if !item.Ellipsis && item.Page == p.Page {
			pages = append(pages, styles.AccentText.Bold(true).Render("["+text+"]"))
			continue
		}
		pages = append(pages, styles.MutedText.Render(text))
	}
	return styles.MutedText.Render(fmt.Sprintf("Página %d/%d", p.Page, p.TotalPages)) + "  " +
		strings.Join(pages, " ") + "  " +
		styles.FaintText.Render(fmt.Sprintf("%d pedidos", p.Total))
}

// renderShiftSummary lists what the kitchen still has to prepare.
func (m Model) renderShiftSummary(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.SurfaceAlt)
	summary, ok := m.orders.Summary()
	if !ok {
		return styles.MutedText.Render("Cargando resumen...")
	}

	var b strings.Builder
	section := func(title string, dishes []api.PreparedDish, total int) {
		b.WriteString(styles.AccentText.Render(fmt.Sprintf("%s (%d)", title, total)))
		b.WriteString("\n")
		if len(dishes) == 0 {
			b.WriteString(styles.FaintText.Render("  nada por preparar"))
			b.WriteString("\n")
			return
		}
		for _, d := range dishes {
			name := padRight(d.Name, width-12)
			counts := fmt.Sprintf("%3d/%-3d", d.PreparedQuantity, d.TotalToPrepare)
			style := styles.Text
			if d.RemainingToPrepare == 0 {
				style = styles.SuccessText
			}
			b.WriteString(style.Render(name) + " " + styles.MutedText.Render(counts))
			b.WriteString("\n")
		}
	}
	section("Principales", summary.MainDishes, summary.TotalMainDishes)
	b.WriteString("\n")
	section("Guarniciones", summary.Sides, summary.TotalSides)
	return b.String()
}
