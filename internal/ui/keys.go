package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding
	Logout     key.Binding
	Refresh    key.Binding

	// View switching
	ViewOrders   key.Binding
	ViewProducts key.Binding
	ViewStats    key.Binding
	ViewActivity key.Binding

	// Filters
	Search      key.Binding
	CycleStatus key.Binding
	CycleShift  key.Binding
	DateRange   key.Binding
	ClearFilter key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding

	// Row actions
	Select      key.Binding
	NewItem     key.Binding
	Edit        key.Binding
	Delete      key.Binding
	StockUp     key.Binding
	StockDown   key.Binding
	ManageSides key.Binding
	Toggle      key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Input
	Confirm   key.Binding
	NextField key.Binding
	PrevField key.Binding
	Save      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Salir"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Ayuda"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cambiar tema"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Siguiente vista"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Vista anterior"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancelar"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Cerrar sesión"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Recargar"),
		),

		ViewOrders: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "Pedidos"),
		),
		ViewProducts: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "Productos"),
		),
		ViewStats: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "Estadísticas"),
		),
		ViewActivity: key.NewBinding(
			key.WithKeys("4"),
			key.WithHelp("4", "Actividad"),
		),

		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Buscar"),
		),
		CycleStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Estado"),
		),
		CycleShift: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Turno"),
		),
		DateRange: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Fechas"),
		),
		ClearFilter: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Limpiar filtros"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("]", "right"),
			key.WithHelp("]", "Página siguiente"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("[", "left"),
			key.WithHelp("[", "Página anterior"),
		),

		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Abrir"),
		),
		NewItem: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Nuevo"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "Editar"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Eliminar"),
		),
		StockUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Sumar stock"),
		),
		StockDown: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "Restar stock"),
		),
		ManageSides: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "Guarniciones"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Marcar"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Subir"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Bajar"),
		),
		Top: key.NewBinding(
			key.WithKeys("home"),
			key.WithHelp("home", "Inicio"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Final"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Retroceder"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Avanzar"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirmar"),
		),
		NextField: key.NewBinding(
			key.WithKeys("tab", "down"),
			key.WithHelp("tab", "Campo siguiente"),
		),
		PrevField: key.NewBinding(
			key.WithKeys("shift+tab", "up"),
			key.WithHelp("shift+tab", "Campo anterior"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "Guardar"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.ViewOrders, k.ViewProducts, k.ViewStats, k.ViewActivity, k.Tab},
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Search, k.CycleStatus, k.CycleShift, k.DateRange, k.ClearFilter, k.NextPage, k.PrevPage},
		{k.Select, k.NewItem, k.Edit, k.Delete, k.StockUp, k.StockDown, k.ManageSides},
		{k.Refresh, k.CycleTheme, k.Logout, k.Help, k.Quit},
	}
}
