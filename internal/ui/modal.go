package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/five82/comanda/internal/listview"
	"github.com/five82/comanda/internal/modal"
	"github.com/five82/comanda/internal/query"
)

// Component is an open dialog.
// Update returns the updated component, a command, and whether it should close.
type Component interface {
	Init() tea.Cmd
	Update(msg tea.Msg, keys keyMap) (Component, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// deps are what dialogs need to load and write data.
type deps struct {
	ctx     context.Context
	backend Backend
	cache   *query.Cache
	orders  *listview.Orders
	logger  *log.Logger
}

// newRegistry binds every dialog id to its component.
func newRegistry(d deps) *modal.Registry[Component] {
	r := modal.NewRegistry[Component]()
	r.Register(modal.ProductModal, modal.Entry[Component]{
		Title: "Editar producto",
		Size:  modal.Large,
		New:   func(p modal.Props) Component { return newProductModal(d, p) },
	})
	r.Register(modal.NewProductModal, modal.Entry[Component]{
		Title: "Nuevo producto",
		Size:  modal.Large,
		New:   func(p modal.Props) Component { return newProductModal(d, modal.Props{Title: p.Title}) },
	})
	r.Register(modal.SidesModal, modal.Entry[Component]{
		Title: "Guarniciones",
		Size:  modal.Medium,
		New:   func(p modal.Props) Component { return newSidesModal(d) },
	})
	r.Register(modal.DeleteConfirmationModal, modal.Entry[Component]{
		Title: "Eliminar producto",
		Size:  modal.Small,
		New:   func(p modal.Props) Component { return newDeleteModal(d, p) },
	})
	r.Register(modal.OrderStatusModal, modal.Entry[Component]{
		Title: "Estado del pedido",
		Size:  modal.Small,
		New:   func(p modal.Props) Component { return newStatusModal(d, p) },
	})
	return r
}

func openModalCmd(id modal.ID, props modal.Props) tea.Cmd {
	return func() tea.Msg {
		return openModalMsg{id: id, props: props}
	}
}

// openModal shows the dialog registered for id. Unknown ids are logged and
// nothing is shown.
func (m Model) openModal(id modal.ID, props modal.Props) (tea.Model, tea.Cmd) {
	entry, err := m.registry.Resolve(id)
	if err != nil {
		m.logger.Error("cannot open dialog", "err", err)
		return m, nil
	}
	if props.Title == "" {
		props.Title = entry.Title
	}
	m.modals.Open(id, props)
	m.active = entry.New(props)
	return m, m.active.Init()
}

func (m *Model) closeModal() {
	m.modals.Close()
	m.active = nil
}

func modalWidth(size modal.Size, max int) int {
	w := 50
	switch size {
	case modal.Medium:
		w = 70
	case modal.Large:
		w = 90
	}
	if max > 0 && w > max-4 {
		w = max - 4
	}
	if w < 20 {
		w = 20
	}
	return w
}

// renderModal draws the open dialog centered over the screen.
func (m Model) renderModal() string {
	session := m.modals.Current()
	entry, err := m.registry.Resolve(session.ID)
	if err != nil {
		return m.renderMain()
	}
	styles := m.theme.Styles()
	width := modalWidth(entry.Size, m.width)

	title := styles.AccentText.Bold(true).Render(session.Props.Title)
	body := m.active.View(m.theme, width-6, m.height-8)

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(width).
		Render(title + "\n\n" + body)

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
