package sorter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/perch/internal/tree"
)

const (
	defaultWidth  = 80
	minPaneHeight = 5
)

// View implements tea.Model.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	leftWidth := width / 2
	rightWidth := width - leftWidth

	scenes := m.renderScenes()
	outline := m.editor.Render(tree.RenderOptions{ShowAnchors: m.showAnchors})
	paneHeight := max(strings.Count(outline, "\n"), len(m.editor.Titles()), 1) + 2
	paneHeight = max(paneHeight, minPaneHeight)

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.RenderPanel(scenes, "Scenes", leftWidth, paneHeight, m.mode == ModeNormal),
		m.styles.RenderPanel(outline, "Tree", rightWidth, paneHeight, false),
	)

	var b strings.Builder
	b.WriteString(top)
	b.WriteByte('\n')

	if m.maxActivity > 0 {
		b.WriteString(m.styles.RenderPanel(strings.Join(m.activity, "\n"), "Activity", width, m.maxActivity+2, false))
		b.WriteByte('\n')
	}

	switch {
	case m.mode != ModeNormal:
		b.WriteString(m.input.View())
	case m.err != nil:
		b.WriteString(m.styles.ErrorText.Render("Error: " + m.err.Error()))
	case m.status != "":
		b.WriteString(m.styles.Muted.Render(m.status))
	}
	b.WriteByte('\n')
	b.WriteString(m.help.View(m.keys))
	return zone.Scan(b.String())
}

// zoneScenePrefix prefixes the bubblezone IDs of scene rows.
const zoneScenePrefix = "sorter-scene:"

func sceneZoneID(index int) string {
	return fmt.Sprintf("%s%d", zoneScenePrefix, index)
}

func (m Model) renderScenes() string {
	scenes := m.editor.Scenes()
	if len(scenes) == 0 {
		return m.styles.Muted.Render("(no scenes, press a to add one)")
	}

	lines := make([]string, len(scenes))
	for i, s := range scenes {
		label := fmt.Sprintf("%d. %s", i+1, s.Title())
		if n := s.Buttons.Len(); n > 0 {
			label += m.styles.Muted.Render(fmt.Sprintf(" [%d]", n))
		}
		if i == m.cursor {
			lines[i] = m.styles.SelectionIndicator.Render(">") + " " + m.styles.Selected.Render(label)
		} else {
			lines[i] = "  " + m.styles.Normal.Render(label)
		}
		lines[i] = zone.Mark(sceneZoneID(i), lines[i])
	}
	return strings.Join(lines, "\n")
}
