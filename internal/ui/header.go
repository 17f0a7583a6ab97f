package ui

import (
	"strings"

	"github.com/five82/comanda/internal/api"
	"github.com/five82/comanda/internal/realtime"
)

// renderHeader renders the status bar: user, API health, live updates and
// the view tabs.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	sep := bg.Spaces(2)
	compact := m.width < LayoutCompactWidth

	parts := []string{bg.Render("comanda", styles.Logo)}

	snap := m.snapshot
	switch {
	case snap.LastError != nil && (snap.IsOffline() || !snap.HasUser):
		parts = append(parts,
			bg.Render("API "+classifyConnectionError(snap.LastError), styles.DangerText.Bold(true)),
			bg.Render("Reintentando...", styles.WarningText))
	case snap.HasUser:
		parts = append(parts, bg.Render("● API", styles.SuccessText))
		if !compact {
			parts = append(parts, bg.Render(snap.User.Name, styles.Text))
		}
	default:
		parts = append(parts, bg.Render("Conectando...", styles.WarningText.Bold(true)))
	}

	parts = append(parts, m.realtimeIndicator(styles, bg))

	var tabs []string
	for i, v := range viewOrder {
		label := itoa(i+1) + " " + v.String()
		if compact {
			label = itoa(i+1) + " " + truncate(v.String(), 4)
		}
		style := styles.MutedText
		if v == m.currentView {
			style = styles.AccentText.Bold(true)
		}
		tabs = append(tabs, bg.Render(label, style))
	}
	parts = append(parts, strings.Join(tabs, bg.Spaces(1)))

	if !compact && !snap.LastUpdated.IsZero() {
		parts = append(parts, bg.Render("act. "+humanizeSince(snap.LastUpdated, m.clock.Now()), styles.FaintText))
	}

	return styles.Header.Width(m.width).Render(strings.Join(parts, sep))
}

func (m Model) realtimeIndicator(styles Styles, bg BgStyle) string {
	if m.bridge == nil {
		return bg.Render("○ sin tiempo real", styles.FaintText)
	}
	switch m.snapshot.Realtime {
	case realtime.StatusConnected:
		return bg.Render("● en vivo", styles.SuccessText)
	case realtime.StatusReconnecting:
		return bg.Render("● reconectando", styles.WarningText)
	case realtime.StatusStopped:
		return bg.Render("○ detenido", styles.MutedText)
	default:
		return bg.Render("○ conectando", styles.MutedText)
	}
}

// classifyConnectionError returns a short label for a poll failure.
func classifyConnectionError(err error) string {
	switch api.KindOf(err) {
	case api.KindUnauthorized:
		return "SESIÓN VENCIDA"
	case api.KindTimeout:
		return "TIMEOUT"
	case api.KindTransport:
		return "SIN CONEXIÓN"
	case api.KindHTTP, api.KindAPI:
		return "ERROR DEL SERVIDOR"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "connection refused"):
		return "SIN CONEXIÓN"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the command hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewProducts:
		commands = []cmd{
			{"n", "Nuevo"},
			{"e", "Editar"},
			{"x", "Eliminar"},
			{"+/-", "Stock"},
			{"g", "Guarniciones"},
			{"r", "Recargar"},
		}
	case ViewStats:
		commands = []cmd{
			{"d", "Fechas"},
			{"/", "Buscar"},
			{"c", "Limpiar"},
			{"r", "Recargar"},
		}
	case ViewActivity:
		label := "Pausar"
		if !m.activityFollow {
			label = "Seguir"
		}
		commands = []cmd{
			{"espacio", label},
			{"j/k", "Desplazar"},
			{"r", "Recargar"},
		}
	default:
		commands = []cmd{
			{"/", "Buscar"},
			{"s", "Estado"},
			{"t", "Turno"},
			{"d", "Fechas"},
			{"c", "Limpiar"},
			{"[/]", "Página"},
			{"enter", "Cambiar estado"},
		}
	}
	commands = append(commands, cmd{"tab", "Vista"}, cmd{"?", "Ayuda"})

	colon := bg.Sep(":")
	sep := bg.Spaces(2)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}
