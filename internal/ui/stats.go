package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comanda/internal/listview"
)

// dishBarWidth is the width of the share bar in the dish ranking.
const dishBarWidth = 20

func (m Model) handleStatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if row, ok := m.navigate(msg, m.statsRow, len(m.stats.Orders()), m.contentHeight()/2); ok {
		m.statsRow = row
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Search):
		cmd := m.startInput(inputStatsSearch, "Buscar pedido, DNI o cliente", m.stats.Search())
		return m, cmd

	case key.Matches(msg, m.keys.DateRange):
		f := m.stats.Filter()
		cmd := m.startInput(inputStatsDates, "Fechas AAAA-MM-DD AAAA-MM-DD", strings.TrimSpace(f.StartDate+" "+f.EndDate))
		return m, cmd

	case key.Matches(msg, m.keys.ClearFilter):
		m.stats.SetSearch("")
		m.statsRow = 0

	case key.Matches(msg, m.keys.Refresh):
		m.stats.Refetch()
	}
	return m, nil
}

func (m Model) renderStats() string {
	height := m.contentHeight()
	f := m.stats.Filter()
	title := "Estadísticas " + f.StartDate
	if f.EndDate != f.StartDate {
		title += " → " + f.EndDate
	}
	if v := m.stats.View(); v.Refreshing {
		title += " " + m.spinner.View()
	}
	return m.renderTitledBox(title, m.renderStatsContent(m.width-2, height-2), m.width, height, true)
}

func (m Model) renderStatsContent(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	view := m.stats.View()
	switch view.State {
	case listview.StateLoading:
		return styles.MutedText.Render(m.spinner.View() + " Cargando estadísticas...")
	case listview.StateError:
		return styles.DangerText.Render("Error al cargar las estadísticas: "+view.Err.Error()) + "\n" +
			styles.FaintText.Render("r reintentar  d cambiar fechas")
	}

	data, _ := m.stats.Data()
	var b strings.Builder

	sum := data.Summary
	metric := func(label, value string, style lipgloss.Style) string {
		return styles.MutedText.Render(label+" ") + style.Bold(true).Render(value)
	}
	b.WriteString(strings.Join([]string{
		metric("Recaudación", formatMoney(sum.TotalRevenue), styles.SuccessText),
		metric("Pedidos", itoa(sum.TotalOrders), styles.Text),
		metric("Entregados", itoa(sum.DeliveredOrders), styles.InfoText),
		metric("Cancelados", itoa(sum.CancelledOrders), styles.DangerText),
	}, "   "))
	b.WriteString("\n\n")

	if view.State == listview.StateEmpty {
		b.WriteString(styles.MutedText.Render("No hay pedidos en el rango seleccionado"))
		return b.String()
	}

	dishes := m.stats.Dishes()
	dishLines := min(len(dishes), 8)
	b.WriteString(styles.AccentText.Render("Platos más pedidos"))
	b.WriteString("\n")
	for _, d := range dishes[:dishLines] {
		filled := int(d.Share*dishBarWidth + 0.5)
		bar := strings.Repeat("█", filled) + strings.Repeat("░", dishBarWidth-filled)
		b.WriteString(styles.Text.Render(padRight(d.Name, 26)) + " " +
			styles.AccentText.Render(bar) + " " +
			styles.MutedText.Render(fmt.Sprintf("%4d  %3.0f%%", d.Quantity, d.Share*100)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	search := m.stats.Search()
	orders := m.stats.Orders()
	header := fmt.Sprintf("Pedidos (%d)", len(orders))
	if search != "" {
		header += "  " + styles.MutedText.Render("buscar: "+truncate(search, 20))
	}
	b.WriteString(styles.AccentText.Render(header))
	b.WriteString("\n")

	cols := []column{
		{label: "#", width: 6},
		{label: "Cliente", width: 20},
		{label: "DNI", width: 10},
		{label: "Retiro", width: 6},
		{label: "Estado", width: 14},
		{label: "Total", width: 11, right: true},
	}
	rows := make([]tableRow, 0, len(orders))
	for _, o := range orders {
		statusStyle := styles.StatusStyle(o.Status)
		rows = append(rows, tableRow{
			cells: []string{
				"#" + strconv.FormatInt(o.ID, 10),
				o.User.Name,
				o.User.NationalID,
				o.PickUpTime,
				o.Status.Label(),
				formatMoney(o.TotalPrice),
			},
			styles: []*lipgloss.Style{nil, nil, nil, nil, &statusStyle, nil},
		})
	}
	used := 4 + dishLines + 2
	b.WriteString(m.renderTable(cols, rows, m.statsRow, height-used, styles))
	return b.String()
}
