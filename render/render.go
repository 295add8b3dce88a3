// Package render рисует фиксированный макет виджета для терминала.
package render

import (
	"fmt"
	"strings"

	"agenda-widget/models"

	"github.com/charmbracelet/lipgloss"
)

var frameStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("63")).
	Padding(0, 1)

var (
	dayStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dateStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// Widget возвращает макет: день, дата, до трёх занятий, ближайшее событие,
// счётчик событий, время обновления и строка статуса.
func Widget(view models.WidgetView, width int) string {
	if width < 24 {
		width = 24
	}
	inner := width - 4

	var b strings.Builder
	b.WriteString(dayStyle.Render(view.DayLabel))
	b.WriteString("  ")
	b.WriteString(dateStyle.Render(view.DateLabel))
	b.WriteString("\n\n")

	b.WriteString(headerStyle.Render("Clases"))
	b.WriteString("\n")
	if len(view.Classes) == 0 {
		b.WriteString(truncate(firstLine(view.ClassesText), inner))
		b.WriteString("\n")
	}
	for _, class := range view.Classes {
		b.WriteString(truncate(fmt.Sprintf("%s  %s · %s", class.Start, class.Subject, class.Room), inner))
		b.WriteString("\n")
	}
	if view.CurrentSubject != "" {
		b.WriteString(truncate("Ahora: "+view.CurrentSubject, inner))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(headerStyle.Render("Eventos"))
	b.WriteString("\n")
	if view.NextEventTitle != "" {
		b.WriteString(truncate(fmt.Sprintf("🔔 %s  %s", view.NextEventTime, view.NextEventTitle), inner))
	} else {
		b.WriteString(truncate(firstLine(view.EventsText), inner))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Hoy: %d", view.EventsToday))
	b.WriteString("\n\n")

	b.WriteString(mutedStyle.Render(truncate(view.LastUpdated, inner)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(truncate(view.Status, inner)))

	return frameStyle.Width(width - 2).Render(b.String())
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, max int) string {
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > max {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
