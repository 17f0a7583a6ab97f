package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type helpSection struct {
	title string
	items []helpItem
}

type helpItem struct {
	key  string
	desc string
}

// renderHelp renders the help overlay.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	sections := []helpSection{
		{
			title: "Navegación",
			items: []helpItem{
				{"1-4", "Pedidos/Productos/Estadísticas/Actividad"},
				{"tab", "Siguiente vista"},
				{"j/k", "Mover arriba/abajo"},
				{"home/G", "Inicio/fin"},
				{"ctrl+d/u", "Media página"},
			},
		},
		{
			title: "Pedidos",
			items: []helpItem{
				{"/", "Buscar por pedido, DNI o cliente"},
				{"s/t", "Filtrar estado/turno"},
				{"d", "Rango de fechas"},
				{"c", "Limpiar filtros"},
				{"[ ]", "Página anterior/siguiente"},
				{"enter", "Cambiar estado"},
			},
		},
		{
			title: "Productos",
			items: []helpItem{
				{"n/e/x", "Nuevo/editar/eliminar"},
				{"+/-", "Ajustar stock"},
				{"g", "Guarniciones"},
				{"ctrl+s", "Guardar formulario"},
			},
		},
		{
			title: "General",
			items: []helpItem{
				{"r", "Recargar"},
				{"T", "Cambiar tema"},
				{"L", "Cerrar sesión"},
				{"?", "Ayuda"},
				{"q/ctrl+c", "Salir"},
			},
		},
	}

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Atajos de teclado"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 30)))
	b.WriteString("\n\n")

	keyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Warning)).
		Width(12)
	for i, section := range sections {
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, item := range section.items {
			b.WriteString(keyStyle.Render(item.key))
			b.WriteString(styles.Text.Render(item.desc))
			b.WriteString("\n")
		}
		if i < len(sections)-1 {
			b.WriteString("\n")
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(56).
		Render(b.String())

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
