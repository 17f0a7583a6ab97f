package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/comanda/internal/logtail"
)

type activityMsg struct {
	entries []logtail.Entry
	err     error
}

// refreshActivity reads the tail of the log file off the update loop.
func (m Model) refreshActivity() tea.Cmd {
	path := m.logPath
	if path == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Tail(path, ActivityLineLimit)
		return activityMsg{entries: entries, err: err}
	}
}

func (m *Model) resizeActivity() {
	w, h := m.width-4, m.contentHeight()-2
	if w < 1 || h < 1 {
		return
	}
	if m.activityViewport.Width == 0 {
		m.activityViewport = viewport.New(w, h)
		m.activityFollow = true
	}
	m.activityViewport.Width = w
	m.activityViewport.Height = h
	m.refreshActivityViewport()
}

func (m *Model) refreshActivityViewport() {
	if m.activityViewport.Width == 0 {
		return
	}
	m.activityViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.activityViewport.SetContent(m.renderActivityLines(m.activityViewport.Width))
	if m.activityFollow {
		m.activityViewport.GotoBottom()
	}
}

func (m Model) handleActivityKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.activityFollow = !m.activityFollow
		if m.activityFollow {
			m.activityViewport.GotoBottom()
		}
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshActivity()
	case key.Matches(msg, m.keys.Top):
		m.activityFollow = false
		m.activityViewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Bottom):
		m.activityFollow = true
		m.activityViewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.activityViewport, cmd = m.activityViewport.Update(msg)
	if !m.activityViewport.AtBottom() {
		m.activityFollow = false
	}
	return m, cmd
}

func (m Model) renderActivity() string {
	title := "Actividad"
	if m.activityFollow {
		title += " (siguiendo)"
	}
	return m.renderTitledBox(title, m.activityViewport.View(), m.width, m.contentHeight(), true)
}

// renderActivityLines formats log entries with the level colored.
func (m Model) renderActivityLines(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	if m.logPath == "" {
		return styles.MutedText.Render("El registro está desactivado")
	}
	if m.activityErr != nil {
		return styles.DangerText.Render("No se pudo leer el registro: " + m.activityErr.Error())
	}
	if len(m.activity) == 0 {
		return styles.MutedText.Render("Sin actividad registrada")
	}

	lines := make([]string, 0, len(m.activity))
	for _, e := range m.activity {
		if e.Level == "" {
			lines = append(lines, styles.Text.Render(truncate(e.Raw, width)))
			continue
		}
		var b strings.Builder
		if !e.Time.IsZero() {
			b.WriteString(styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
			b.WriteString(" ")
		}
		b.WriteString(m.levelStyle(e.Level, styles).Render(padRight(strings.ToUpper(e.Level), 5)))
		b.WriteString(" ")
		b.WriteString(styles.Text.Render(e.Message))
		for _, f := range e.Fields {
			b.WriteString(" ")
			b.WriteString(styles.MutedText.Render(f.Key + "="))
			b.WriteString(styles.Text.Render(f.Value))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

func (m Model) levelStyle(level string, styles Styles) lipgloss.Style {
	switch strings.ToLower(level) {
	case "error", "fatal":
		return styles.DangerText
	case "warn":
		return styles.WarningText
	case "debug":
		return styles.FaintText
	default:
		return styles.InfoText
	}
}
