package ui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comanda/internal/listview"
	"github.com/five82/comanda/internal/modal"
)

// deleteModal asks before removing a product.
type deleteModal struct {
	deps     deps
	props    modal.Props
	deleting bool
}

func newDeleteModal(d deps, props modal.Props) *deleteModal {
	return &deleteModal{deps: d, props: props}
}

func (m *deleteModal) Init() tea.Cmd { return nil }

func (m *deleteModal) Update(msg tea.Msg, keys keyMap) (Component, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case resultMsg:
		m.deleting = false
		return m, nil, false
	case tea.KeyMsg:
		if m.deleting {
			return m, nil, false
		}
		switch {
		case key.Matches(msg, keys.Escape):
			return m, nil, true
		case key.Matches(msg, keys.Confirm):
			return m, m.confirm(), false
		}
		switch msg.String() {
		case "y", "s":
			return m, m.confirm(), false
		case "n":
			return m, nil, true
		}
	}
	return m, nil, false
}

func (m *deleteModal) confirm() tea.Cmd {
	id, err := strconv.ParseInt(m.props.ProductID, 10, 64)
	if err != nil {
		return func() tea.Msg {
			return resultMsg{failure: "Error al eliminar el producto", err: fmt.Errorf("producto inválido %q", m.props.ProductID)}
		}
	}
	m.deleting = true
	d := m.deps
	return mutate(d.ctx, d.cache,
		resultMsg{success: "Producto eliminado exitosamente", failure: "Error al eliminar el producto", closeModal: true},
		func(ctx context.Context) error { return d.backend.DeleteProduct(ctx, id) },
		listview.ProductsKey,
	)
}

func (m *deleteModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	if m.deleting {
		return styles.WarningText.Render("Eliminando...")
	}
	name := m.props.ProductName
	if name == "" {
		name = "este producto"
	}
	out := styles.Text.Render("¿Seguro que querés eliminar "+truncate(name, width-30)+"?") + "\n"
	if m.props.Photo != "" {
		out += styles.FaintText.Render("Foto: "+truncate(m.props.Photo, width-6)) + "\n"
	}
	out += "\n" + styles.DangerText.Render("s/enter eliminar") + "  " + styles.FaintText.Render("n/esc cancelar")
	return out
}
