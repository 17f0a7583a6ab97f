package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/form"
	"github.com/five82/comanda/internal/listview"
)

type sidesLoadedMsg struct {
	sides []api.Side
	err   error
}

type sidesMode int

const (
	sidesBrowse sidesMode = iota
	sidesRename
	sidesCreate
	sidesConfirmDelete
)

// sidesModal edits the side dishes. Renames and availability changes are
// drafted locally and saved together; create and delete write immediately.
type sidesModal struct {
	deps    deps
	sides   []api.Side
	loading bool
	loadErr error
	saving  bool

	draft  *form.SidesDraft
	cursor int
	mode   sidesMode
	input  textinput.Model
	errMsg string
}

func newSidesModal(d deps) *sidesModal {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.CharLimit = 60
	return &sidesModal{
		deps:    d,
		loading: true,
		draft:   form.NewSidesDraft(),
		input:   ti,
	}
}

func (m *sidesModal) Init() tea.Cmd {
	return m.load()
}

func (m *sidesModal) load() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		v, err := d.cache.Fetch(d.ctx, listview.SidesKey, func(ctx context.Context) (any, error) {
			return d.backend.ListSides(ctx)
		})
		if err != nil {
			return sidesLoadedMsg{err: err}
		}
		sides, _ := v.([]api.Side)
		return sidesLoadedMsg{sides: sides}
	}
}

func (m *sidesModal) selected() (api.Side, bool) {
	if m.cursor < 0 || m.cursor >= len(m.sides) {
		return api.Side{}, false
	}
	return m.sides[m.cursor], true
}

func (m *sidesModal) Update(msg tea.Msg, keys keyMap) (Component, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case sidesLoadedMsg:
		m.loading = false
		m.loadErr = msg.err
		if msg.err == nil {
			m.sides = msg.sides
			if m.cursor >= len(m.sides) {
				m.cursor = max(len(m.sides)-1, 0)
			}
		}
		return m, nil, false

	case resultMsg:
		m.saving = false
		if msg.err != nil {
			return m, nil, false
		}
		m.loading = true
		return m, m.load(), false

	case tea.KeyMsg:
		if m.saving || m.loading {
			if key.Matches(msg, keys.Escape) {
				return m, nil, true
			}
			return m, nil, false
		}
		if m.mode != sidesBrowse {
			return m.handleEditKey(msg, keys)
		}
		return m.handleBrowseKey(msg, keys)
	}

	if m.mode == sidesRename || m.mode == sidesCreate {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd, false
	}
	return m, nil, false
}

func (m *sidesModal) handleBrowseKey(msg tea.KeyMsg, keys keyMap) (Component, tea.Cmd, bool) {
	m.errMsg = ""
	switch {
	case key.Matches(msg, keys.Escape):
		return m, nil, true

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.sides)-1 {
			m.cursor++
		}

	case key.Matches(msg, keys.Toggle):
		if side, ok := m.selected(); ok {
			shown := m.draft.Apply(side)
			m.draft.SetActive(side, !shown.IsActive)
		}

	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Confirm):
		if side, ok := m.selected(); ok {
			m.mode = sidesRename
			m.input.SetValue(m.draft.Apply(side).Name)
			m.input.CursorEnd()
			return m, m.input.Focus(), false
		}

	case key.Matches(msg, keys.NewItem):
		m.mode = sidesCreate
		m.input.SetValue("")
		return m, m.input.Focus(), false

	case key.Matches(msg, keys.Delete):
		if _, ok := m.selected(); ok {
			m.mode = sidesConfirmDelete
		}

	case key.Matches(msg, keys.Save):
		return m, m.save(), false
	}
	return m, nil, false
}

func (m *sidesModal) handleEditKey(msg tea.KeyMsg, keys keyMap) (Component, tea.Cmd, bool) {
	if m.mode == sidesConfirmDelete {
		m.mode = sidesBrowse
		switch msg.String() {
		case "y", "s", "enter":
			return m, m.remove(), false
		}
		return m, nil, false
	}

	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = sidesBrowse
		m.input.Blur()
		return m, nil, false

	case key.Matches(msg, keys.Confirm):
		return m, m.commitInput(), false
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd, false
}

func (m *sidesModal) commitInput() tea.Cmd {
	value := m.input.Value()
	mode := m.mode
	if mode == sidesRename {
		if side, ok := m.selected(); ok {
			if strings.TrimSpace(value) == "" {
				m.errMsg = "El nombre de la guarnición es obligatorio"
				return nil
			}
			m.draft.Rename(side, value)
		}
		m.mode = sidesBrowse
		m.input.Blur()
		return nil
	}

	name, errs := form.SideName(value)
	if errs != nil {
		m.errMsg = errs["name"]
		return nil
	}
	m.mode = sidesBrowse
	m.input.Blur()
	m.saving = true
	d := m.deps
	return mutate(d.ctx, d.cache,
		resultMsg{success: "Guarnición creada exitosamente", failure: "Error al crear la guarnición"},
		func(ctx context.Context) error {
			_, err := d.backend.CreateSide(ctx, name)
			return err
		},
		listview.SidesKey,
	)
}

func (m *sidesModal) remove() tea.Cmd {
	side, ok := m.selected()
	if !ok {
		return nil
	}
	m.saving = true
	d := m.deps
	return mutate(d.ctx, d.cache,
		resultMsg{success: "Guarnición eliminada exitosamente", failure: "Error al eliminar la guarnición"},
		func(ctx context.Context) error { return d.backend.DeleteSide(ctx, side.ID) },
		listview.SidesKey,
	)
}

// save sends the drafted edits. The draft is only touched by the command
// while saving is set.
func (m *sidesModal) save() tea.Cmd {
	if !m.draft.Dirty() {
		return nil
	}
	if errs := m.draft.Validate(); errs != nil {
		m.errMsg = errs["name"]
		return nil
	}
	m.saving = true
	d, draft := m.deps, m.draft
	return mutate(d.ctx, d.cache,
		resultMsg{success: "Guarniciones actualizadas exitosamente", failure: "Error al actualizar las guarniciones"},
		func(ctx context.Context) error { return draft.Save(ctx, d.backend) },
		listview.SidesKey,
	)
}

func (m *sidesModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	if m.saving {
		return styles.WarningText.Render("Guardando...")
	}
	if m.loading {
		return styles.MutedText.Render("Cargando guarniciones...")
	}
	if m.loadErr != nil {
		return styles.DangerText.Render("No se pudieron cargar las guarniciones: "+m.loadErr.Error()) +
			"\n\n" + styles.FaintText.Render("esc cerrar")
	}

	var b strings.Builder
	if len(m.sides) == 0 {
		b.WriteString(styles.FaintText.Render("No hay guarniciones cargadas") + "\n")
	}
	nameWidth := max(width-16, 10)
	for i, side := range m.sides {
		shown := m.draft.Apply(side)
		prefix := "  "
		if i == m.cursor {
			prefix = styles.AccentText.Render("› ")
		}
		state := styles.SuccessText.Render("activa  ")
		if !shown.IsActive {
			state = styles.MutedText.Render("inactiva")
		}
		name := styles.Text.Render(padRight(shown.Name, nameWidth))
		if shown != side {
			name = styles.WarningText.Render(padRight(shown.Name+" *", nameWidth))
		}
		b.WriteString(prefix + name + " " + state + "\n")
	}

	b.WriteString("\n")
	switch m.mode {
	case sidesRename:
		b.WriteString(styles.MutedText.Render("Nuevo nombre") + "\n" + m.input.View() + "\n")
	case sidesCreate:
		b.WriteString(styles.MutedText.Render("Nueva guarnición") + "\n" + m.input.View() + "\n")
	case sidesConfirmDelete:
		side, _ := m.selected()
		b.WriteString(styles.DangerText.Render("¿Eliminar "+side.Name+"? (s/n)") + "\n")
	}
	if m.errMsg != "" {
		b.WriteString(styles.DangerText.Render(m.errMsg) + "\n")
	}
	if m.draft.Dirty() {
		b.WriteString(styles.WarningText.Render("Cambios sin guardar") + "\n")
	}
	b.WriteString(styles.FaintText.Render("e renombrar  espacio activar  n nueva  x eliminar  ctrl+s guardar  esc cerrar"))
	return b.String()
}
