package cli

import (
	"strings"

	"marcenaria_mdf/internal/domain/entities"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorMuted  = lipgloss.Color("#6F6E69")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
	colorOrange = lipgloss.Color("#DA702C")
	colorRed    = lipgloss.Color("#D14D41")
	colorBlue   = lipgloss.Color("#4385BE")
	colorPurple = lipgloss.Color("#8B7EC8")
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	warnStyle   = lipgloss.NewStyle().Foreground(colorOrange)
	okStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	titleBox    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

var statusStyles = map[entities.BudgetStatus]lipgloss.Style{
	entities.BudgetStatusDraft:    mutedStyle,
	entities.BudgetStatusSent:     lipgloss.NewStyle().Foreground(colorBlue),
	entities.BudgetStatusApproved: okStyle,
	entities.BudgetStatusRejected: lipgloss.NewStyle().Foreground(colorRed),
	entities.BudgetStatusPaid:     lipgloss.NewStyle().Bold(true).Foreground(colorPurple),
}

func (a *App) style(s lipgloss.Style, text string) string {
	if a.Plain {
		return text
	}
	return s.Render(text)
}

func (a *App) status(s entities.BudgetStatus) string {
	label := strings.ToUpper(string(s))
	st, ok := statusStyles[s]
	if !ok {
		return label
	}
	return a.style(st, label)
}

func (a *App) title(text string) string {
	if a.Plain {
		return text
	}
	return titleBox.Render(headerStyle.Render(text))
}

// table renders rows as left-aligned columns; widths account for styled cells.
func (a *App) table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, header bool) {
		for i, cell := range cells {
			if i >= len(widths) {
				break
			}
			text := cell
			if header {
				text = a.style(headerStyle, cell)
			}
			b.WriteString(text)
			if i < len(cells)-1 {
				b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(cell)+2))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, true)
	for _, row := range rows {
		writeRow(row, false)
	}
	return b.String()
}
