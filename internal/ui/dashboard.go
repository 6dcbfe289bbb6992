package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/travel-assistant/concierge/internal/adminapi"
)

const barRune = "█"

func (m Model) renderDashboard() string {
	if m.ws == nil {
		return ""
	}
	styles := m.theme.Styles()
	d, at, err := m.ws.Dashboard()
	if at.IsZero() {
		if err != nil {
			return "\n  " + styles.DangerText.Render("Could not load the dashboard: "+adminapi.Message(err))
		}
		return "\n  " + styles.MutedText.Render("Loading dashboard...")
	}

	totals := lipgloss.JoinHorizontal(lipgloss.Top,
		m.statCard("Users", d.Summary.TotalUsers),
		m.statCard("Itineraries", d.Summary.TotalItinerary),
		m.statCard("Events", d.Summary.TotalEvents),
		m.statCard("New this year", d.Growth.TotalThisYear),
	)

	chartWidth := m.width - 4
	sideBySide := m.width >= LayoutChartsSideBySide
	if sideBySide {
		chartWidth = m.width/2 - 4
	}

	growthLabels := make([]string, len(d.Growth.Monthly))
	growthValues := make([]float64, len(d.Growth.Monthly))
	for i, p := range d.Growth.Monthly {
		growthLabels[i] = shortMonth(p.Month)
		growthValues[i] = float64(p.Users)
	}
	revenueLabels := make([]string, len(d.Revenue))
	revenueValues := make([]float64, len(d.Revenue))
	for i, p := range d.Revenue {
		revenueLabels[i] = shortMonth(p.Month)
		revenueValues[i] = p.Amount
	}

	growthTitle := fmt.Sprintf("User growth %d", d.Growth.Year)
	growth := m.chart(growthTitle, barChart(growthLabels, growthValues, chartWidth, formatCount))
	revenue := m.chart("Revenue", barChart(revenueLabels, revenueValues, chartWidth, formatAmount))

	var charts string
	if sideBySide {
		charts = lipgloss.JoinHorizontal(lipgloss.Top, growth, "  ", revenue)
	} else {
		charts = lipgloss.JoinVertical(lipgloss.Left, growth, revenue)
	}

	var recent strings.Builder
	recent.WriteString(styles.Column.Render("Recent users"))
	for _, u := range d.RecentUsers {
		recent.WriteString("\n")
		recent.WriteString(padRight(truncate(u.Name, 24), 25))
		recent.WriteString(styles.MutedText.Render(padRight(truncate(u.Email, 32), 33)))
		recent.WriteString(styles.StatusStyle(u.Status).Render(u.Status))
	}
	if len(d.RecentUsers) == 0 {
		recent.WriteString("\n" + styles.FaintText.Render("No users yet"))
	}

	parts := []string{totals, charts, recent.String()}
	if len(d.Summary.Categories) > 0 {
		cats := make([]string, 0, len(d.Summary.Categories))
		for _, c := range d.Summary.Categories {
			cats = append(cats, fmt.Sprintf("%s %d", c.Name, c.Count))
		}
		parts = append(parts, styles.MutedText.Render("Events by category: "+strings.Join(cats, " · ")))
	}
	if d.Growth.ReportedOnDate != "" {
		parts = append(parts, styles.FaintText.Render("Reported on "+d.Growth.ReportedOnDate))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (m Model) statCard(label string, value int) string {
	styles := m.theme.Styles()
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Border)).
		Padding(0, 2).
		MarginRight(1).
		Render(styles.MutedText.Render(label) + "\n" + styles.Text.Bold(true).Render(formatCount(float64(value))))
}

func (m Model) chart(title, body string) string {
	styles := m.theme.Styles()
	return styles.Column.Render(title) + "\n" + styles.Bar.Render(body)
}

// barChart renders one horizontal bar per label, scaled to the largest
// value. Non-positive values draw no bar.
func barChart(labels []string, values []float64, width int, format func(float64) string) string {
	if len(labels) == 0 {
		return "no data"
	}
	labelWidth, valueWidth := 0, 0
	peak := 0.0
	for i, l := range labels {
		labelWidth = max(labelWidth, lipgloss.Width(l))
		if i < len(values) {
			valueWidth = max(valueWidth, len(format(values[i])))
			peak = math.Max(peak, values[i])
		}
	}
	barWidth := max(1, width-labelWidth-valueWidth-2)

	lines := make([]string, len(labels))
	for i, l := range labels {
		v := 0.0
		if i < len(values) {
			v = values[i]
		}
		n := 0
		if peak > 0 && v > 0 {
			n = max(1, int(math.Round(v/peak*float64(barWidth))))
		}
		lines[i] = padRight(l, labelWidth) + " " +
			padRight(strings.Repeat(barRune, n), barWidth) + " " +
			fmt.Sprintf("%*s", valueWidth, format(v))
	}
	return strings.Join(lines, "\n")
}

func shortMonth(month string) string {
	if r := []rune(month); len(r) > 3 {
		return string(r[:3])
	}
	return month
}

func formatCount(v float64) string {
	return fmt.Sprintf("%d", int(math.Round(v)))
}

func formatAmount(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}
