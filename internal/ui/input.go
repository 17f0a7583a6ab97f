package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/comanda/internal/listview"
)

// startInput opens the prompt line for purpose.
func (m *Model) startInput(purpose inputPurpose, label, value string) tea.Cmd {
	m.inputFor = purpose
	m.inputErr = ""
	m.inputLabel = label
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.inputFor = inputNone
	m.inputErr = ""
	m.input.Blur()
}

// handleInputKey edits the prompt. Searches apply as the operator types;
// date ranges apply on enter.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.stopInput()
		return m, nil

	case msg.Type == tea.KeyEnter:
		if m.submitInput() {
			m.stopInput()
			m.savePrefs()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	switch m.inputFor {
	case inputOrderSearch:
		m.orders.SetSearchInput(m.input.Value())
		m.ordersRow = 0
	case inputStatsSearch:
		m.stats.SetSearch(m.input.Value())
		m.statsRow = 0
	}
	return m, cmd
}

// submitInput applies the prompt and reports whether it can close.
func (m *Model) submitInput() bool {
	value := m.input.Value()
	switch m.inputFor {
	case inputOrderDates:
		start, end, err := parseDateRange(value)
		if err != nil {
			m.inputErr = err.Error()
			return false
		}
		m.orders.SetDateRange(start, end)
		m.ordersRow = 0
	case inputStatsDates:
		start, end, err := parseDateRange(value)
		if err == nil {
			err = m.stats.SetRange(start, end)
		}
		if err != nil {
			m.inputErr = err.Error()
			return false
		}
		m.statsRow = 0
	}
	return true
}

// parseDateRange reads "start end". A single date selects that day; an
// empty value clears the range.
func parseDateRange(value string) (string, string, error) {
	fields := strings.Fields(strings.ReplaceAll(value, ",", " "))
	if len(fields) > 2 {
		return "", "", listview.ErrInvalidRange
	}
	var raw [2]string
	copy(raw[:], fields)
	if len(fields) == 1 {
		raw[1] = raw[0]
	}
	start, err := listview.ParseDate(raw[0])
	if err != nil {
		return "", "", fmt.Errorf("fecha inválida %q", raw[0])
	}
	end, err := listview.ParseDate(raw[1])
	if err != nil {
		return "", "", fmt.Errorf("fecha inválida %q", raw[1])
	}
	if start != "" && end != "" && start > end {
		return "", "", listview.ErrInvalidRange
	}
	return start, end, nil
}

func (m Model) renderInput() string {
	styles := m.theme.Styles()
	line := styles.AccentText.Render(m.inputLabel+": ") + m.input.View()
	if m.inputErr != "" {
		line += "  " + styles.DangerText.Render(m.inputErr)
	}
	return line
}

func newPrompt() textinput.Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 100
	return ti
}
