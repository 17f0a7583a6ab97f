package ui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/form"
	"github.com/five82/comanda/internal/listview"
	"github.com/five82/comanda/internal/modal"
)

// Text fields of the product form, in focus order.
const (
	fieldName = iota
	fieldDescription
	fieldPrice
	fieldImage
	textFieldCount
)

var textFieldKeys = [textFieldCount]string{"name", "description", "price", "image"}

var textFieldLabels = [textFieldCount]string{"Nombre", "Descripción", "Precio", "Imagen (ruta local)"}

type productLoadedMsg struct {
	id      int64
	product api.Product
	err     error
}

type activeSidesMsg struct {
	sides []api.Side
	err   error
}

// productModal creates a product or edits an existing one.
type productModal struct {
	deps    deps
	id      int64 // 0 when creating
	loading bool
	loadErr error
	saving  bool

	form    form.Product
	stock   int
	inputs  [textFieldCount]textinput.Model
	sides   []string
	sideErr error
	focus   int
	errs    form.Errors
}

func newProductModal(d deps, props modal.Props) *productModal {
	m := &productModal{deps: d, form: form.NewProduct()}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 200
		m.inputs[i] = ti
	}
	m.inputs[fieldPrice].Placeholder = "1200"
	if props.ProductID != "" {
		if id, err := strconv.ParseInt(props.ProductID, 10, 64); err == nil {
			m.id = id
			m.loading = true
		} else {
			m.loadErr = fmt.Errorf("producto inválido %q", props.ProductID)
		}
	}
	m.syncFocus()
	return m
}

func (m *productModal) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.loadSides()}
	if m.loading {
		cmds = append(cmds, m.loadProduct())
	}
	return tea.Batch(cmds...)
}

func (m *productModal) loadProduct() tea.Cmd {
	d, id := m.deps, m.id
	return func() tea.Msg {
		v, err := d.cache.Fetch(d.ctx, listview.ProductKey(strconv.FormatInt(id, 10)), func(ctx context.Context) (any, error) {
			return d.backend.GetProduct(ctx, id)
		})
		if err != nil {
			return productLoadedMsg{id: id, err: err}
		}
		p, _ := v.(api.Product)
		return productLoadedMsg{id: id, product: p}
	}
}

func (m *productModal) loadSides() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		v, err := d.cache.Fetch(d.ctx, listview.ActiveSidesKey, func(ctx context.Context) (any, error) {
			return d.backend.ActiveSides(ctx)
		})
		if err != nil {
			return activeSidesMsg{err: err}
		}
		sides, _ := v.([]api.Side)
		return activeSidesMsg{sides: sides}
	}
}

// fieldCount is the number of focusable rows.
func (m *productModal) fieldCount() int {
	return textFieldCount + len(api.Restrictions) + len(m.sides) + 2
}

func (m *productModal) syncFocus() {
	for i := range m.inputs {
		if i == m.focus {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *productModal) fill(p api.Product) {
	m.form = form.FromProduct(p)
	m.stock = p.Stock
	m.inputs[fieldName].SetValue(m.form.Name)
	m.inputs[fieldDescription].SetValue(m.form.Description)
	m.inputs[fieldPrice].SetValue(m.form.Price)
	m.inputs[fieldImage].SetValue("")
}

func (m *productModal) Update(msg tea.Msg, keys keyMap) (Component, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case productLoadedMsg:
		if msg.id != m.id {
			return m, nil, false
		}
		m.loading = false
		if msg.err != nil {
			m.loadErr = msg.err
			return m, nil, false
		}
		m.fill(msg.product)
		return m, nil, false

	case activeSidesMsg:
		m.sideErr = msg.err
		m.sides = m.sides[:0]
		for _, s := range msg.sides {
			m.sides = append(m.sides, s.Name)
		}
		return m, nil, false

	case resultMsg:
		m.saving = false
		return m, nil, false

	case tea.KeyMsg:
		return m.handleKey(msg, keys)
	}

	if m.focus < textFieldCount {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd, false
	}
	return m, nil, false
}

func (m *productModal) handleKey(msg tea.KeyMsg, keys keyMap) (Component, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Escape):
		return m, nil, true

	case m.loading || m.loadErr != nil || m.saving:
		return m, nil, false

	case key.Matches(msg, keys.Save):
		return m, m.submit(), false

	case key.Matches(msg, keys.NextField):
		m.focus = (m.focus + 1) % m.fieldCount()
		m.syncFocus()
		return m, nil, false

	case key.Matches(msg, keys.PrevField):
		m.focus = (m.focus - 1 + m.fieldCount()) % m.fieldCount()
		m.syncFocus()
		return m, nil, false
	}

	if m.focus < textFieldCount {
		if key.Matches(msg, keys.Confirm) {
			m.focus++
			m.syncFocus()
			return m, nil, false
		}
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd, false
	}

	if key.Matches(msg, keys.Toggle) || key.Matches(msg, keys.Confirm) {
		m.toggleFocused()
	}
	return m, nil, false
}

func (m *productModal) toggleFocused() {
	i := m.focus - textFieldCount
	if i < len(api.Restrictions) {
		m.form.Restrictions = form.Toggle(m.form.Restrictions, api.Restrictions[i])
		return
	}
	i -= len(api.Restrictions)
	if i < len(m.sides) {
		m.form.Sides = form.Toggle(m.form.Sides, m.sides[i])
		return
	}
	i -= len(m.sides)
	switch i {
	case 0:
		if m.form.AllowsClarifications == form.Yes {
			m.form.AllowsClarifications = form.No
		} else {
			m.form.AllowsClarifications = form.Yes
		}
	case 1:
		if m.form.ProductType == form.Food {
			m.form.ProductType = form.Drink
		} else {
			m.form.ProductType = form.Food
		}
	}
}

// submit validates locally and only then writes. Validation failures never
// reach the network.
func (m *productModal) submit() tea.Cmd {
	m.form.Name = m.inputs[fieldName].Value()
	m.form.Description = m.inputs[fieldDescription].Value()
	m.form.Price = m.inputs[fieldPrice].Value()
	m.form.ImagePath = m.inputs[fieldImage].Value()

	var stock *int
	if m.id != 0 {
		s := m.stock
		stock = &s
	}
	req, photo, err := m.form.ToRequest(stock)
	if err != nil {
		var errs form.Errors
		if errors.As(err, &errs) {
			m.errs = errs
			return nil
		}
		m.errs = form.Errors{"price": err.Error()}
		return nil
	}
	m.errs = nil
	m.saving = true

	d, id := m.deps, m.id
	if id == 0 {
		return mutate(d.ctx, d.cache,
			resultMsg{success: "Producto creado exitosamente", failure: "Error al crear el producto", closeModal: true},
			func(ctx context.Context) error { return d.backend.CreateProduct(ctx, req, photo) },
			listview.ProductsKey,
		)
	}
	return mutate(d.ctx, d.cache,
		resultMsg{success: "Producto actualizado exitosamente", failure: "Error al actualizar el producto", closeModal: true},
		func(ctx context.Context) error { return d.backend.UpdateProduct(ctx, id, req, photo) },
		listview.ProductsKey,
	)
}

func (m *productModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	if m.loading {
		return styles.MutedText.Render("Cargando producto...")
	}
	if m.loadErr != nil {
		return styles.DangerText.Render("No se pudo cargar el producto: "+m.loadErr.Error()) +
			"\n\n" + styles.FaintText.Render("esc cerrar")
	}

	var b strings.Builder
	row := 0
	cursor := func() string {
		if row == m.focus {
			return styles.AccentText.Render("› ")
		}
		return "  "
	}

	for i := 0; i < textFieldCount; i++ {
		b.WriteString(cursor())
		b.WriteString(styles.MutedText.Render(padRight(textFieldLabels[i], 20)))
		b.WriteString(m.inputs[i].View())
		if i == fieldImage && m.inputs[i].Value() == "" && m.form.ExistingPhoto != "" {
			b.WriteString(styles.FaintText.Render("  actual: " + truncate(m.form.ExistingPhoto, 30)))
		}
		b.WriteString("\n")
		if msg, ok := m.errs[textFieldKeys[i]]; ok {
			b.WriteString("    " + styles.DangerText.Render(msg) + "\n")
		}
		row++
	}

	b.WriteString("\n" + styles.AccentText.Render("Restricciones") + "\n")
	for _, r := range api.Restrictions {
		b.WriteString(cursor() + checkbox(contains(m.form.Restrictions, r)) + " " + styles.Text.Render(r) + "\n")
		row++
	}

	b.WriteString("\n" + styles.AccentText.Render("Guarniciones") + "\n")
	if m.sideErr != nil {
		b.WriteString("  " + styles.DangerText.Render("No se pudieron cargar las guarniciones") + "\n")
	} else if len(m.sides) == 0 {
		b.WriteString("  " + styles.FaintText.Render("Sin guarniciones activas") + "\n")
	}
	for _, s := range m.sides {
		b.WriteString(cursor() + checkbox(contains(m.form.Sides, s)) + " " + styles.Text.Render(s) + "\n")
		row++
	}

	b.WriteString("\n")
	clar := "Sí"
	if m.form.AllowsClarifications == form.No {
		clar = "No"
	}
	b.WriteString(cursor() + styles.MutedText.Render(padRight("Permite aclaraciones", 22)) + styles.Text.Render(clar) + "\n")
	row++
	typ := "Comida"
	if m.form.ProductType == form.Drink {
		typ = "Bebida"
	}
	b.WriteString(cursor() + styles.MutedText.Render(padRight("Tipo", 22)) + styles.Text.Render(typ) + "\n")

	b.WriteString("\n")
	if m.saving {
		b.WriteString(styles.WarningText.Render("Guardando..."))
	} else {
		b.WriteString(styles.FaintText.Render("tab campo  espacio marcar  ctrl+s guardar  esc cancelar"))
	}
	return b.String()
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
