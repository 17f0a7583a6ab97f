package ui

import (
	"context"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/modal"
)

// statusModal moves an order to another status.
type statusModal struct {
	deps     deps
	orderID  int64
	cursor   int
	updating bool
}

func newStatusModal(d deps, props modal.Props) *statusModal {
	return &statusModal{deps: d, orderID: props.OrderID}
}

func (m *statusModal) Init() tea.Cmd { return nil }

func (m *statusModal) Update(msg tea.Msg, keys keyMap) (Component, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case resultMsg:
		m.updating = false
		return m, nil, false
	case tea.KeyMsg:
		if m.updating {
			return m, nil, false
		}
		switch {
		case key.Matches(msg, keys.Escape):
			return m, nil, true
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(api.OrderStatuses)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Confirm):
			return m, m.apply(api.OrderStatuses[m.cursor]), false
		}
	}
	return m, nil, false
}

func (m *statusModal) apply(status api.OrderStatus) tea.Cmd {
	m.updating = true
	d, id := m.deps, m.orderID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(d.ctx, MutationTimeout)
		defer cancel()
		err := d.orders.UpdateStatus(ctx, id, status)
		return resultMsg{
			success:    "Estado actualizado a " + status.Label(),
			failure:    "Error al actualizar el estado del pedido",
			err:        err,
			closeModal: true,
		}
	}
}

func (m *statusModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.MutedText.Render("Pedido #"+strconv.FormatInt(m.orderID, 10)) + "\n\n")
	for i, s := range api.OrderStatuses {
		prefix := "  "
		if i == m.cursor {
			prefix = styles.AccentText.Render("› ")
		}
		b.WriteString(prefix + styles.StatusStyle(s).Render(s.Label()) + "\n")
	}
	b.WriteString("\n")
	if m.updating {
		b.WriteString(styles.WarningText.Render("Actualizando..."))
	} else {
		b.WriteString(styles.FaintText.Render("enter aplicar  esc cancelar"))
	}
	return b.String()
}
