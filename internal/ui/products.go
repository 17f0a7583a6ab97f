package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/listview"
	"github.com/five82/comanda/internal/modal"
	"github.com/five82/comanda/internal/stock"
)

func (m Model) handleProductsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	products, _ := m.products.Products()
	if row, ok := m.navigate(msg, m.productsRow, len(products), m.contentHeight()/2); ok {
		m.productsRow = row
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Refresh):
		m.products.Refetch()

	case key.Matches(msg, m.keys.NewItem):
		return m, openModalCmd(modal.NewProductModal, modal.Props{})

	case key.Matches(msg, m.keys.ManageSides):
		return m, openModalCmd(modal.SidesModal, modal.Props{})

	case key.Matches(msg, m.keys.Edit), key.Matches(msg, m.keys.Select):
		if p, ok := m.selectedProduct(); ok {
			return m, openModalCmd(modal.ProductModal, modal.Props{
				ProductID: strconv.FormatInt(p.ID, 10),
				Title:     "Editar " + p.Name,
			})
		}

	case key.Matches(msg, m.keys.Delete):
		if p, ok := m.selectedProduct(); ok {
			return m, openModalCmd(modal.DeleteConfirmationModal, modal.Props{
				ProductID:   strconv.FormatInt(p.ID, 10),
				ProductName: p.Name,
				Photo:       p.Photo,
			})
		}

	case key.Matches(msg, m.keys.StockUp):
		if p, ok := m.selectedProduct(); ok {
			m.stock.Edit(p, p.Stock+1)
		}

	case key.Matches(msg, m.keys.StockDown):
		if p, ok := m.selectedProduct(); ok && p.Stock > 0 {
			m.stock.Edit(p, p.Stock-1)
		}
	}
	return m, nil
}

// selectedProduct reads from the cache, so stock reflects pending edits.
func (m Model) selectedProduct() (api.Product, bool) {
	products, ok := m.products.Products()
	if !ok || m.productsRow >= len(products) {
		return api.Product{}, false
	}
	return products[m.productsRow], true
}

func (m Model) renderProducts() string {
	height := m.contentHeight()
	title := "Productos"
	if v := m.products.View(); v.Refreshing {
		title += " " + m.spinner.View()
	}
	return m.renderTitledBox(title, m.renderProductsContent(m.width-2, height-2), m.width, height, true)
}

func (m Model) renderProductsContent(width, height int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	view := m.products.View()
	switch view.State {
	case listview.StateLoading:
		return styles.MutedText.Render(m.spinner.View() + " Cargando productos...")
	case listview.StateError:
		return styles.DangerText.Render("Error al cargar los productos: "+view.Err.Error()) + "\n" +
			styles.FaintText.Render("r reintentar")
	case listview.StateEmpty:
		return styles.MutedText.Render("No hay productos cargados") + "\n" +
			styles.FaintText.Render("n nuevo producto")
	}

	products, _ := m.products.Products()
	compact := width < LayoutCompactWidth
	nameWidth := 24
	if !compact {
		nameWidth = 30
	}
	cols := []column{
		{label: "Producto", width: nameWidth},
		{label: "Tipo", width: 7},
		{label: "Precio", width: 10, right: true},
		{label: "Stock", width: 6, right: true},
		{label: "", width: 2},
		{label: "Restricciones", width: 28},
		{label: "Guarniciones", width: 24},
	}
	if compact {
		cols = cols[:5]
	}

	rows := make([]tableRow, 0, len(products))
	for _, p := range products {
		typ := "Comida"
		if p.Type == api.ProductBeverage {
			typ = "Bebida"
		}
		stockStyle := styles.Text
		if p.Stock == 0 {
			stockStyle = styles.DangerText
		}
		marker, markerStyle := m.stockMarker(p.ID, styles)
		cells := []string{
			p.Name,
			typ,
			formatMoney(p.Price),
			itoa(p.Stock),
			marker,
			strings.Join(api.RestrictionLabels(p.Restrictions), ", "),
			strings.Join(p.Sides, ", "),
		}
		cellStyles := []*lipgloss.Style{nil, &styles.MutedText, nil, &stockStyle, &markerStyle, &styles.MutedText, &styles.MutedText}
		if compact {
			cells, cellStyles = cells[:5], cellStyles[:5]
		}
		rows = append(rows, tableRow{cells: cells, styles: cellStyles})
	}

	var b strings.Builder
	b.WriteString(m.renderTable(cols, rows, m.productsRow, height-2, styles))
	b.WriteString("\n\n")
	summary := itoa(len(products)) + " productos"
	if n := m.stock.Pending(); n > 0 {
		summary += " · " + itoa(n) + " cambios de stock sin guardar"
	}
	b.WriteString(styles.FaintText.Render(summary))
	return b.String()
}

// stockMarker shows the persistence state of a product's stock edit.
func (m Model) stockMarker(id int64, styles Styles) (string, lipgloss.Style) {
	switch m.stock.State(id) {
	case stock.Pending:
		return "•", styles.WarningText
	case stock.Committing:
		return "↑", styles.InfoText
	case stock.Failed:
		return "✗", styles.DangerText
	default:
		return "", styles.Text
	}
}
