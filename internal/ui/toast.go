package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type toastKind int

const (
	toastInfo toastKind = iota
	toastSuccess
	toastError
)

// maxToasts bounds how many notifications are stacked at once.
const maxToasts = 3

type toast struct {
	kind    toastKind
	text    string
	expires time.Time
}

// pushToast shows text until ToastDuration passes. An identical toast still
// on screen is extended instead of repeated.
func (m *Model) pushToast(kind toastKind, text string) {
	expires := m.clock.Now().Add(ToastDuration)
	for i := range m.toasts {
		if m.toasts[i].kind == kind && m.toasts[i].text == text {
			m.toasts[i].expires = expires
			return
		}
	}
	m.toasts = append(m.toasts, toast{kind: kind, text: text, expires: expires})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
}

func (m *Model) expireToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

func (m Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}
	styles := m.theme.Styles()
	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		var color string
		icon := "•"
		switch t.kind {
		case toastSuccess:
			color, icon = m.theme.Success, "✓"
		case toastError:
			color, icon = m.theme.Danger, "✗"
		default:
			color = m.theme.Info
		}
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
		lines = append(lines, style.Render(icon)+" "+styles.Text.Render(truncate(t.text, m.width-4)))
	}
	return strings.Join(lines, "\n")
}
