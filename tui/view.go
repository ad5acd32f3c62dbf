// ABOUTME: Rendering and display functions for the TUI
// ABOUTME: Implements the Bubble Tea View() function and all render helpers

package tui

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m model) View() string {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] View panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	if m.quitting {
		return "Exiting...\n"
	}

	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == modeHelp {
		return m.renderHelp()
	}

	// Build the UI in two columns
	leftPanel := m.renderPlaylistPanel()
	rightPanel := m.renderVideoPanel()

	// Leave room for the preview, status bar, input, and help lines.
	panelHeight := m.height - (previewHeight + statusBarHeight + helpHeight + 1)

	leftPanelStyle := lipgloss.NewStyle().
		Width(playlistPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	rightPanelWidth := m.width - playlistPanelWidth - panelPadding
	if rightPanelWidth < minViewportWidth*2 {
		rightPanelWidth = minViewportWidth * 2 // Minimum width for readable video rows
	}

	rightPanelStyle := lipgloss.NewStyle().
		Width(rightPanelWidth).
		Height(panelHeight).
		Padding(0, 1)

	combined := lipgloss.JoinHorizontal(
		lipgloss.Top,
		leftPanelStyle.Render(leftPanel),
		rightPanelStyle.Render(rightPanel),
	)

	return combined + "\n" +
		m.renderPreview() + "\n" +
		m.renderStatusBar() + "\n" +
		m.renderBottomLine()
}

// renderPlaylistPanel renders the playlist column.
func (m model) renderPlaylistPanel() string {
	var sb strings.Builder

	title := "Playlists"
	if m.focusPlaylists {
		sb.WriteString(focusedTitleStyle.Render(title))
	} else {
		sb.WriteString(titleStyle.Render(title))
	}

	sb.WriteString("\n\n")

	if len(m.playlists) == 0 {
		if m.loading {
			sb.WriteString(dimStyle.Render("Loading playlists..."))
		} else {
			sb.WriteString(dimStyle.Render("No playlists"))
		}

		return sb.String()
	}

	openID := m.openPlaylistID()
	width := playlistPanelWidth - 4

	for i, p := range m.playlists {
		marker := "  "
		if p.ID == openID {
			marker = "▸ "
		}

		line := fmt.Sprintf("%s%s (%d)", marker, truncate(p.Title, width-8), p.ItemCount)

		switch {
		case i == m.plCursor && m.focusPlaylists:
			line = cursorStyle.Render(line)
		case p.IsSpecial || p.IsVirtual:
			line = specialStyle.Render(line)
		}

		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String()
}

// renderVideoPanel renders the video column around the scrolling viewport.
func (m model) renderVideoPanel() string {
	var sb strings.Builder

	title := "Videos"
	if p := m.dispatcher.CurrentPlaylist(); p != nil {
		title = p.String()
	}

	if m.focusPlaylists {
		sb.WriteString(titleStyle.Render(title))
	} else {
		sb.WriteString(focusedTitleStyle.Render(title))
	}

	sb.WriteString("\n")

	if m.openPlaylistID() == "" {
		sb.WriteString("\n")
		sb.WriteString(dimStyle.Render("Press enter on a playlist to open it"))

		return sb.String()
	}

	sb.WriteString(listHeaderStyle.Render(fmt.Sprintf("  %-4s %-*s %8s %10s", "#", m.titleColumnWidth(), "Title", "Length", "Views")))
	sb.WriteString("\n")
	sb.WriteString(m.viewport.View())

	return sb.String()
}

// titleColumnWidth is how many cells the video title column gets.
func (m model) titleColumnWidth() int {
	width := m.viewport.Width - 28
	if width < 16 {
		width = 16
	}

	return width
}

// updateViewportContent rebuilds the video rows and scrolls the cursor
// into view.
func (m *model) updateViewportContent() {
	videos := m.dispatcher.Videos()
	cursor := m.dispatcher.Selection.Cursor()
	marks := m.dispatcher.Selection.EffectiveMarks()

	m.vm.SetTotalItems(len(videos))
	m.vm.SetCursorPos(cursor)

	titleWidth := m.titleColumnWidth()
	query := strings.ToLower(m.searchQuery)

	var sb strings.Builder

	for i, v := range videos {
		mark := " "
		if marks[i] {
			mark = "*"
		}

		line := fmt.Sprintf("%s %-4d %-*s %8s %10s",
			mark, i+1, titleWidth, truncate(v.Title, titleWidth), v.FormatDuration(), v.FormatViews())

		switch {
		case i == cursor && !m.focusPlaylists:
			line = cursorStyle.Render(line)
		case marks[i]:
			line = markedStyle.Render(line)
		case query != "" && (strings.Contains(strings.ToLower(v.Title), query) ||
			strings.Contains(strings.ToLower(v.ChannelTitle), query)):
			line = specialStyle.Render(line)
		}

		sb.WriteString(line)

		if i < len(videos)-1 {
			sb.WriteString("\n")
		}
	}

	m.viewport.SetContent(sb.String())
	m.viewport.YOffset = m.vm.CalculateOffset()
}

// renderPreview renders the detail line for the video under the cursor.
func (m model) renderPreview() string {
	videos := m.dispatcher.Videos()

	cursor := m.dispatcher.Selection.Cursor()
	if m.focusPlaylists || cursor >= len(videos) {
		return ""
	}

	v := videos[cursor]

	added := ""
	if !v.AddedAt.IsZero() {
		added = " · added " + v.AddedAt.Format("2006-01-02")
	}

	return dimStyle.Render(truncate(fmt.Sprintf("%s · %s · %s · %s views%s",
		v.Title, v.ChannelTitle, v.FormatDuration(), v.FormatViews(), added), m.width))
}

// renderStatusBar renders quota, marks, clipboard, and transient status.
func (m model) renderStatusBar() string {
	var parts []string

	if m.statusMsg != "" && time.Since(m.statusMsgAge) < statusMessageDuration {
		parts = append(parts, m.statusMsg)
	}

	if m.busy {
		parts = append(parts, "working...")
	}

	if pending := m.interp.Pending(); pending != "" {
		parts = append(parts, pending)
	}

	if m.marksCount > 0 {
		parts = append(parts, fmt.Sprintf("marks: %d", m.marksCount))
	}

	if m.clipCount > 0 {
		parts = append(parts, fmt.Sprintf("clipboard: %d (%s)", m.clipCount, m.clipKind))
	}

	if undo, redo := m.dispatcher.Stack.UndoSize(), m.dispatcher.Stack.RedoSize(); undo > 0 || redo > 0 {
		parts = append(parts, fmt.Sprintf("undo: %d redo: %d", undo, redo))
	}

	parts = append(parts, fmt.Sprintf("quota: %d/%d", m.remote.QuotaUsed(), m.remote.QuotaLimit()))

	if m.dryRun {
		parts = append(parts, "DRY RUN")
	}

	return statusStyle.Width(m.width).Render(strings.Join(parts, " │ "))
}

// renderBottomLine renders the prompt, confirmation, or help hints.
func (m model) renderBottomLine() string {
	switch m.mode {
	case modeConfirmDeleteVideos, modeConfirmDeletePlaylist:
		return errorStyle.Render(m.confirmPrompt)
	case modePromptNewPlaylist:
		return "New playlist: " + m.input.View()
	case modePromptRename:
		return "Rename: " + m.input.View()
	case modeSearch:
		return "/" + m.input.View()
	case modeCommand:
		return ":" + m.input.View()
	}

	hints := "j/k move · enter open · space mark · dd cut · yy copy · pp paste · u undo · ? help"
	if m.searchQuery != "" {
		hints = fmt.Sprintf("search %q · n/N next/prev · %s", m.searchQuery, hints)
	}

	return helpStyle.Render(truncate(hints, m.width))
}

// renderHelp renders the full-screen keybinding overlay.
func (m model) renderHelp() string {
	var sb strings.Builder

	sb.WriteString(m.keymap.HelpText())
	sb.WriteString("\nSort menu (o): t=title d=date p=position v=views D=duration\n")
	sb.WriteString("Commands: :quota  :cache [status|clear]  :clear marks  :refresh [all]  :help  :q\n")
	sb.WriteString("\n")
	sb.WriteString(helpStyle.Render("Press any key to return"))

	return sb.String()
}
