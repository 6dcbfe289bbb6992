package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/travel-assistant/concierge/internal/adminapi"
	"github.com/travel-assistant/concierge/internal/logtail"
	"github.com/travel-assistant/concierge/internal/state"
)

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.view(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

func (m Model) bodyHeight() int {
	return max(1, m.height-chromeLines)
}

func (m Model) renderMain() string {
	var body string
	switch {
	case m.view == ViewDashboard:
		body = m.renderDashboard()
	case m.view == ViewLogs:
		body = m.logs.View()
	default:
		body = m.renderList()
	}
	body = lipgloss.NewStyle().Height(m.bodyHeight()).MaxHeight(m.bodyHeight()).Render(body)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTabs(),
		body,
		m.renderStatus(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("concierge", styles.Logo)}
	if m.ws != nil {
		if id, ok := m.ws.Session.Identity(); ok {
			name := id.FullName
			if name == "" {
				name = id.Email
			}
			parts = append(parts, bg.Render(name, styles.Text))
		} else {
			parts = append(parts, bg.Render("signed out", styles.DangerText))
		}
	}
	if m.offline() {
		parts = append(parts, bg.Render(" OFFLINE ", styles.StatusStyle("offline")))
	}
	right := bg.Render(m.theme.Name, styles.FaintText)
	return styles.Header.Width(m.width).Render(bg.Spread(bg.Join(parts, "  "), right, m.width-2))
}

// offline reports whether any resource has failed repeatedly.
func (m Model) offline() bool {
	for _, src := range m.sources {
		if src.meta().offline {
			return true
		}
	}
	return false
}

func (m Model) renderTabs() string {
	styles := m.theme.Styles()
	tabs := make([]string, 0, len(viewNames))
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, titleCase(name))
		if View(i) == m.view {
			tabs = append(tabs, styles.TabOn.Render(label))
		} else {
			tabs = append(tabs, styles.TabOff.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) visibleColumns(cols []column) []column {
	if m.width >= LayoutCompactWidth {
		return cols
	}
	out := make([]column, 0, len(cols))
	for _, c := range cols {
		if !c.compact {
			out = append(out, c)
		}
	}
	return out
}

// columnWidths resolves flexible columns against the terminal width.
func columnWidths(cols []column, total int) []int {
	widths := make([]int, len(cols))
	fixed, flex := 0, 0
	for i, c := range cols {
		widths[i] = c.width
		fixed += c.width + 1
		if c.width == 0 {
			flex++
		}
	}
	if flex == 0 {
		return widths
	}
	share := max(10, (total-fixed)/flex)
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}

func (m Model) renderList() string {
	src := m.source()
	styles := m.theme.Styles()
	meta := src.meta()
	rows := m.currentRows()
	ls := m.lists[m.view]

	if len(rows) == 0 {
		var msg string
		switch {
		case !meta.loaded && meta.err != nil:
			msg = "Could not load " + strings.ToLower(src.title()) + ": " + adminapi.Message(meta.err) + " (r to retry)"
		case !meta.loaded:
			msg = "Loading " + strings.ToLower(src.title()) + "..."
		case meta.total == 0:
			msg = "No " + strings.ToLower(src.title()) + " yet"
		default:
			msg = "Nothing matches the current filter"
		}
		return "\n  " + styles.MutedText.Render(msg)
	}

	height := m.bodyHeight()
	detail := ""
	if id := m.selectedID(); id != "" {
		detail = src.detail(id)
	}
	detailHeight := 0
	if detail != "" {
		detailHeight = min(strings.Count(detail, "\n")+3, height/2)
	}

	cols := m.visibleColumns(src.columns())
	widths := columnWidths(cols, m.width-2)
	visible := min(height-1-detailHeight, m.prefs.PageSize)
	visible = max(1, visible)
	offset := 0
	if ls.cursor >= visible {
		offset = ls.cursor - visible + 1
	}

	var b strings.Builder
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = padRight(truncate(c.title, widths[i]), widths[i])
	}
	b.WriteString("  " + styles.Column.Render(strings.Join(header, " ")))

	all := src.columns()
	for i := offset; i < len(rows) && i < offset+visible; i++ {
		r := rows[i]
		cells := make([]string, 0, len(cols))
		for ci, c := range cols {
			value := cellFor(all, r.cells, c.title)
			if c.title == "STATUS" && r.pending != "" {
				value = r.pending + "..."
			}
			cells = append(cells, padRight(truncate(value, widths[ci]), widths[ci]))
		}
		line := strings.Join(cells, " ")
		b.WriteString("\n")
		switch {
		case i == ls.cursor:
			b.WriteString(styles.Selected.Render("› " + line))
		case r.temp || r.pending != "":
			b.WriteString("  " + styles.FaintText.Render(line))
		default:
			b.WriteString("  " + m.styleRow(line, r))
		}
	}
	if detail != "" {
		b.WriteString("\n")
		box := lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(lipgloss.Color(m.theme.Border)).
			Width(m.width-2).
			MaxHeight(detailHeight).
			Padding(0, 1)
		b.WriteString(box.Render(detail))
	}
	return b.String()
}

func cellFor(cols []column, cells []string, title string) string {
	for i, c := range cols {
		if c.title == title && i < len(cells) {
			return cells[i]
		}
	}
	return ""
}

func (m Model) styleRow(line string, r row) string {
	styles := m.theme.Styles()
	switch r.status {
	case adminapi.UserDeactive, "inactive":
		return styles.MutedText.Render(line)
	case adminapi.UserNew:
		return styles.AccentText.Render(line)
	default:
		return styles.Text.Render(line)
	}
}

func (m Model) renderStatus() string {
	styles := m.theme.Styles()
	var left, right string
	switch m.view {
	case ViewDashboard:
		left = m.dashboardStatus()
	case ViewLogs:
		left, right = m.logStatus()
	default:
		src := m.source()
		left = describeSync(src.meta(), len(m.currentRows()))
		f := m.filter()
		var parts []string
		if f.Status != state.StatusAll {
			parts = append(parts, "status: "+f.Status)
		}
		if f.Text != "" {
			parts = append(parts, "search: "+f.Text)
		}
		right = strings.Join(parts, " · ")
	}
	line := styles.MutedText.Render(left)
	if right != "" {
		gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
		if gap > 0 {
			line += strings.Repeat(" ", gap) + styles.AccentText.Render(right)
		}
	}
	return " " + line
}

// describeSync renders a store's sync state for the status line.
func describeSync(meta syncMeta, shown int) string {
	switch {
	case meta.status == state.StatusLoading && !meta.loaded:
		return "Loading..."
	case meta.err != nil:
		msg := fmt.Sprintf("Refresh failed (%dx): %s", meta.failures, adminapi.Message(meta.err))
		if meta.loaded {
			msg += " · showing data from " + meta.updated.Local().Format("15:04:05")
		}
		return msg
	}
	s := fmt.Sprintf("%d of %d %s", shown, meta.total, plural(meta.total, "row", "rows"))
	if !meta.updated.IsZero() {
		s += " · updated " + meta.updated.Local().Format("15:04:05")
	}
	if meta.status == state.StatusLoading {
		s += " · refreshing"
	}
	return s
}

func (m Model) dashboardStatus() string {
	if m.ws == nil {
		return ""
	}
	_, at, err := m.ws.Dashboard()
	switch {
	case err != nil:
		return "Dashboard refresh failed: " + adminapi.Message(err)
	case at.IsZero():
		return "Loading dashboard..."
	default:
		return "Dashboard updated " + at.Local().Format("15:04:05")
	}
}

func (m Model) logStatus() (string, string) {
	floor := "level ≥ " + strings.ToLower(logLevels[m.logFloor].String())
	switch {
	case m.logPath == "":
		return "Logging to stderr; no log file to show", floor
	case m.logErr != nil:
		return "Could not read " + m.logPath + ": " + m.logErr.Error(), floor
	case !m.logLoaded:
		return "Reading " + m.logPath + "...", floor
	}
	return fmt.Sprintf("%d %s · %s", m.logCount, plural(m.logCount, "entry", "entries"), m.logPath), floor
}

func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	switch {
	case m.searching:
		return " " + m.search.View()
	case m.flash != "" && m.flashErr:
		return " " + styles.DangerText.Render(m.flash)
	case m.flash != "":
		return " " + styles.SuccessText.Render(m.flash)
	}
	return " " + m.help.View(m.keys)
}

func (m Model) renderLogEntries(entries []logtail.Entry) string {
	styles := m.theme.Styles()
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		if e.Time.IsZero() && e.Message == "" {
			b.WriteString(styles.FaintText.Render(e.Raw))
			continue
		}
		ts := "--:--:--"
		if !e.Time.IsZero() {
			ts = e.Time.Local().Format(time.TimeOnly)
		}
		b.WriteString(styles.FaintText.Render(ts))
		b.WriteString(" ")
		b.WriteString(m.levelStyle(e.Level).Render(fmt.Sprintf("%-5s", e.Level.String())))
		b.WriteString(" ")
		if e.Component != "" {
			b.WriteString(styles.AccentText.Render(e.Component))
			b.WriteString(" ")
		}
		b.WriteString(styles.Text.Render(e.Message))
		for _, a := range e.Attrs {
			b.WriteString(" ")
			b.WriteString(styles.MutedText.Render(a.Key + "=" + a.Value))
		}
	}
	return b.String()
}

func (m Model) levelStyle(l slog.Level) lipgloss.Style {
	styles := m.theme.Styles()
	switch {
	case l >= slog.LevelError:
		return styles.DangerText
	case l >= slog.LevelWarn:
		return styles.WarningText
	case l >= slog.LevelInfo:
		return styles.SuccessText
	default:
		return styles.FaintText
	}
}
