// ABOUTME: Event handling and state updates for the TUI
// ABOUTME: Implements the Bubble Tea Update() function and message handlers

package tui

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"yanger/engine"
	"yanger/playlist"
)

// Update handles messages and updates the model
//
//nolint:ireturn // Bubble Tea framework requires returning tea.Model interface
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer func() {
		if r := recover(); r != nil {
			m.debugf("[PANIC] Update panic: %v", r)
			m.debugf("[PANIC] Stack trace: %s", string(debug.Stack()))
			panic(r) // Re-panic so Bubble Tea can handle it
		}
	}()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case playlistsLoadedMsg:
		return m.handlePlaylistsLoaded(msg)

	case videosLoadedMsg:
		return m.handleVideosLoaded(msg)

	case opDoneMsg:
		return m.handleOpDone(msg)

	case historyDoneMsg:
		return m.handleHistoryDone(msg)

	case playlistDeletedMsg:
		return m.handlePlaylistDeleted(msg)

	case marksChangedMsg:
		m.marksCount = msg.count
		m.updateViewportContent()

		return m, m.waitForNotify()

	case clipboardChangedMsg:
		m.clipCount = msg.count
		m.clipKind = msg.kind

		return m, m.waitForNotify()

	case opCompletedMsg:
		m.setStatus(msg.desc)

		return m, m.waitForNotify()

	case configReloadedMsg:
		m.dispatcher.SetDefaultPrivacy(playlist.Privacy(msg.settings.DefaultPrivacy))
		m.setStatus("Config reloaded")
		m.debugf("[TUI] Config reloaded from %s", m.configPath)

		return m, m.waitForConfigReload()
	}

	return m, nil
}

// handleResize recalculates the video viewport dimensions.
func (m model) handleResize(msg tea.WindowSizeMsg) model {
	m.width = msg.Width
	m.height = msg.Height

	viewportWidth := msg.Width - playlistPanelWidth - panelPadding
	if viewportWidth < minViewportWidth {
		viewportWidth = minViewportWidth
	}

	viewportHeight := msg.Height - totalUIChrome
	if viewportHeight < minViewportHeight {
		viewportHeight = minViewportHeight
	}

	m.viewport.Width = viewportWidth
	m.viewport.Height = viewportHeight
	m.vm.SetHeight(viewportHeight)
	m.updateViewportContent()

	return m
}

// ========== Key handling ==========

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, whatever mode we are in.
	if msg.Type == tea.KeyCtrlC {
		m.quitting = true
		m.cancel()

		return m, tea.Quit
	}

	switch m.mode {
	case modeNormal:
		return m.handleNormalKey(msg)
	case modeConfirmDeleteVideos, modeConfirmDeletePlaylist:
		return m.handleConfirmKey(msg)
	case modeHelp:
		m.mode = modeNormal

		return m, nil
	default:
		return m.handlePromptKey(msg)
	}
}

// handleNormalKey feeds one key through the interpreter and applies the
// resolved command.
func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// n/N cycle search matches; they are free keys outside a chord.
	if m.searchQuery != "" && m.interp.Pending() == "" && msg.Type == tea.KeyRunes && len(msg.Runes) == 1 {
		switch msg.Runes[0] {
		case 'n':
			m.jumpToMatch(1)

			return m, nil
		case 'N':
			m.jumpToMatch(-1)

			return m, nil
		}
	}

	token := keyToken(msg)
	if token == "" {
		return m, nil
	}

	cmd, ok := m.interp.Interpret(token)
	if !ok {
		// Prefix key swallowed; the status bar shows the pending chord.
		return m, nil
	}

	// The playlist column has its own cursor; the selection model only
	// tracks the video list.
	if m.focusPlaylists {
		switch cmd.Kind {
		case engine.CmdMoveCursor:
			m.movePlaylistCursor(cmd.Delta)
			return m, nil
		case engine.CmdMoveTop:
			m.plCursor = 0
			return m, nil
		case engine.CmdMoveBottom:
			if len(m.playlists) > 0 {
				m.plCursor = len(m.playlists) - 1
			}

			return m, nil
		}
	}

	res := m.dispatcher.Apply(cmd)

	m.updateViewportContent()

	return m.handleResult(res)
}

func (m model) handleConfirmKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	confirmed := msg.Type == tea.KeyEnter ||
		(msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && (msg.Runes[0] == 'y' || msg.Runes[0] == 'Y'))

	mode := m.mode
	m.mode = modeNormal
	m.confirmPrompt = ""

	if !confirmed {
		m.dispatcher.CancelDeleteSelection()
		m.setStatus("Cancelled")

		return m, nil
	}

	if mode == modeConfirmDeleteVideos {
		return m.handleResult(m.dispatcher.ConfirmDeleteSelection())
	}

	m.busy = true

	return m, m.runDeletePlaylist()
}

func (m model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.mode = modeNormal
		m.input.Reset()
		m.input.Blur()

		return m, nil

	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		mode := m.mode

		m.mode = modeNormal
		m.input.Reset()
		m.input.Blur()

		switch mode {
		case modePromptNewPlaylist:
			return m.handleResult(m.dispatcher.SubmitCreatePlaylist(value, ""))
		case modePromptRename:
			return m.handleResult(m.dispatcher.SubmitRename(value))
		case modeSearch:
			m.applySearch(value)

			return m, nil
		case modeCommand:
			return m.runCommand(value)
		}

		return m, nil

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)

		return m, cmd
	}
}

// keyToken normalizes a Bubble Tea key event into an interpreter token.
func keyToken(msg tea.KeyMsg) engine.Key {
	switch msg.Type {
	case tea.KeyEscape:
		return engine.KeyEscape
	case tea.KeyEnter:
		return engine.KeyEnter
	case tea.KeySpace:
		return engine.KeySpace
	case tea.KeyPgUp:
		return engine.KeyPageUp
	case tea.KeyPgDown:
		return engine.KeyPageDown
	case tea.KeyUp:
		return "k"
	case tea.KeyDown:
		return "j"
	case tea.KeyLeft:
		return "h"
	case tea.KeyRight:
		return "l"
	case tea.KeyRunes:
		if len(msg.Runes) == 1 {
			return engine.Key(msg.Runes)
		}
	}

	return ""
}

// ========== Result handling ==========

// handleResult acts on the outcome of a dispatched command.
func (m model) handleResult(res engine.Result) (tea.Model, tea.Cmd) {
	if res.Err != nil {
		m.debugf("[TUI] Command failed: %v", res.Err)
		m.setStatus(friendlyError(res.Err))

		return m, nil
	}

	switch res.Action {
	case engine.ActExecute:
		m.busy = true

		return m, m.runOperation(res.Op)
	case engine.ActUndo, engine.ActRedo:
		m.busy = true

		return m, m.runHistory(res.Action)
	}

	if res.Request != engine.ReqNone {
		return m.handleRequest(res.Request)
	}

	if res.Status != "" {
		m.setStatus(res.Status)
		m.updateViewportContent()
	}

	return m, nil
}

func (m model) handleRequest(req engine.Request) (tea.Model, tea.Cmd) {
	switch req {
	case engine.ReqConfirmDeleteVideos:
		count := m.dispatcher.Selection.MarkedCount()
		if count == 0 {
			count = 1
		}

		m.mode = modeConfirmDeleteVideos
		m.confirmPrompt = fmt.Sprintf("Delete %d video(s) from the playlist? (y/n)", count)

	case engine.ReqConfirmDeletePlaylist:
		title := ""
		if p := m.dispatcher.CurrentPlaylist(); p != nil {
			title = p.Title
		}

		m.mode = modeConfirmDeletePlaylist
		m.confirmPrompt = fmt.Sprintf("Delete playlist %q? This cannot be undone. (y/n)", title)

	case engine.ReqNewPlaylist:
		m.mode = modePromptNewPlaylist
		m.input.Placeholder = "New playlist title"
		m.input.Focus()

	case engine.ReqRename:
		m.mode = modePromptRename
		m.input.Placeholder = "New title"
		m.input.SetValue(m.renameSeed())
		m.input.CursorEnd()
		m.input.Focus()

	case engine.ReqSearch:
		m.mode = modeSearch
		m.input.Placeholder = "Search"
		m.input.Focus()

	case engine.ReqCommandLine:
		m.mode = modeCommand
		m.input.Placeholder = "Command"
		m.input.Focus()

	case engine.ReqSortMenu:
		// The interpreter holds the menu state; the status bar shows it.

	case engine.ReqHelp:
		m.mode = modeHelp

	case engine.ReqFocusLeft:
		m.focusPlaylists = true
		m.dispatcher.SetFocus(true)

	case engine.ReqFocusRight:
		if m.openPlaylistID() != "" {
			m.focusPlaylists = false
			m.dispatcher.SetFocus(false)
		}

	case engine.ReqSelect:
		return m.openSelected()

	case engine.ReqQuit:
		m.quitting = true
		m.cancel()

		return m, tea.Quit
	}

	return m, nil
}

// renameSeed returns the current title of whatever a rename would target.
func (m *model) renameSeed() string {
	if m.focusPlaylists {
		if p := m.dispatcher.CurrentPlaylist(); p != nil {
			return p.Title
		}

		return ""
	}

	videos := m.dispatcher.Videos()

	cursor := m.dispatcher.Selection.Cursor()
	if cursor < len(videos) {
		return videos[cursor].Title
	}

	return ""
}

// openSelected loads the playlist under the cursor into the video column.
func (m model) openSelected() (tea.Model, tea.Cmd) {
	if !m.focusPlaylists {
		return m, nil
	}

	p := m.currentPlaylist()
	if p == nil {
		return m, nil
	}

	m.loading = true

	return m, m.loadVideos(p.ID, false)
}

// movePlaylistCursor moves the playlist-column cursor, clamped.
func (m *model) movePlaylistCursor(delta int) {
	m.plCursor += delta

	if m.plCursor < 0 {
		m.plCursor = 0
	}

	if m.plCursor >= len(m.playlists) && len(m.playlists) > 0 {
		m.plCursor = len(m.playlists) - 1
	}
}

// ========== Load/operation message handlers ==========

func (m model) handlePlaylistsLoaded(msg playlistsLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false

	if msg.err != nil {
		m.debugf("[TUI] Playlist load failed: %v", msg.err)
		m.setStatus(friendlyError(msg.err))

		return m, nil
	}

	m.playlists = msg.playlists
	m.movePlaylistCursor(0) // clamp after the list changed

	// Keep the open playlist's header (title, count) current.
	if open := m.openPlaylistID(); open != "" {
		found := false

		for i := range m.playlists {
			if m.playlists[i].ID == open {
				m.dispatcher.SetContext(&m.playlists[i], m.dispatcher.Videos())
				found = true

				break
			}
		}

		if !found {
			// Open playlist no longer exists remotely.
			m.dispatcher.SetContext(nil, nil)
			m.videos = nil
			m.focusPlaylists = true
			m.dispatcher.SetFocus(true)
		}
	}

	m.updateViewportContent()

	return m, nil
}

func (m model) handleVideosLoaded(msg videosLoadedMsg) (tea.Model, tea.Cmd) {
	m.loading = false

	if msg.err != nil {
		m.debugf("[TUI] Video load failed for %s: %v", msg.playlistID, msg.err)
		m.setStatus(friendlyError(msg.err))

		return m, nil
	}

	var target *playlist.Playlist

	for i := range m.playlists {
		if m.playlists[i].ID == msg.playlistID {
			target = &m.playlists[i]

			break
		}
	}

	if target == nil {
		return m, nil
	}

	// Ignore a stale load if the user already opened another playlist.
	if open := m.openPlaylistID(); open != "" && open != msg.playlistID && m.plCursor < len(m.playlists) && m.playlists[m.plCursor].ID != msg.playlistID {
		return m, nil
	}

	m.videos = msg.videos
	m.dispatcher.SetContext(target, msg.videos)
	m.focusPlaylists = false
	m.dispatcher.SetFocus(false)
	m.updateViewportContent()

	return m, nil
}

func (m model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	var reloads []tea.Cmd

	if msg.err != nil {
		m.debugf("[TUI] Operation failed: %s: %v", msg.desc, msg.err)
		m.setStatus(friendlyError(msg.err))

		// Partial batch failures changed remote state; refresh anyway.
		var batch *engine.BatchError
		if !errors.As(msg.err, &batch) {
			return m, nil
		}
	}

	if msg.paste && msg.err == nil {
		// A successful paste consumes the clipboard and the marks that
		// staged it; this key loop owns both.
		m.dispatcher.FinishPaste()
		m.updateViewportContent()
	}

	reloads = append(reloads, m.loadPlaylists(false))

	if open := m.openPlaylistID(); open != "" {
		reloads = append(reloads, m.loadVideos(open, false))
	}

	return m, tea.Batch(reloads...)
}

func (m model) handleHistoryDone(msg historyDoneMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		m.debugf("[TUI] History action failed: %v", msg.err)
		m.setStatus(friendlyError(msg.err))

		return m, nil
	}

	reloads := []tea.Cmd{m.loadPlaylists(false)}

	if open := m.openPlaylistID(); open != "" {
		reloads = append(reloads, m.loadVideos(open, false))
	}

	return m, tea.Batch(reloads...)
}

func (m model) handlePlaylistDeleted(msg playlistDeletedMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		m.debugf("[TUI] Playlist delete failed: %v", msg.err)
		m.setStatus(friendlyError(msg.err))

		return m, nil
	}

	m.videos = nil
	m.dispatcher.SetContext(nil, nil)
	m.focusPlaylists = true
	m.dispatcher.SetFocus(true)
	m.updateViewportContent()

	return m, m.loadPlaylists(true)
}

// ========== Search ==========

// applySearch sets the active query and jumps to the first match.
func (m *model) applySearch(query string) {
	m.searchQuery = query

	if query == "" {
		m.setStatus("Search cleared")

		return
	}

	matches := len(m.matchIndexes())
	if matches == 0 {
		m.setStatus(fmt.Sprintf("No matches for %q", query))

		return
	}

	m.setStatus(fmt.Sprintf("%d match(es) for %q", matches, query))
	m.jumpToMatch(1)
}

// matchIndexes returns the indexes in the focused column matching the
// active query, case-insensitively.
func (m *model) matchIndexes() []int {
	query := strings.ToLower(m.searchQuery)

	var out []int

	if m.focusPlaylists {
		for i, p := range m.playlists {
			if strings.Contains(strings.ToLower(p.Title), query) {
				out = append(out, i)
			}
		}

		return out
	}

	for i, v := range m.dispatcher.Videos() {
		if strings.Contains(strings.ToLower(v.Title), query) ||
			strings.Contains(strings.ToLower(v.ChannelTitle), query) {
			out = append(out, i)
		}
	}

	return out
}

// jumpToMatch moves the cursor to the next (dir > 0) or previous match,
// wrapping around the list.
func (m *model) jumpToMatch(dir int) {
	matches := m.matchIndexes()
	if len(matches) == 0 {
		return
	}

	cursor := m.plCursor
	if !m.focusPlaylists {
		cursor = m.dispatcher.Selection.Cursor()
	}

	target := -1

	if dir > 0 {
		for _, i := range matches {
			if i > cursor {
				target = i

				break
			}
		}

		if target == -1 {
			target = matches[0]
		}
	} else {
		for j := len(matches) - 1; j >= 0; j-- {
			if matches[j] < cursor {
				target = matches[j]

				break
			}
		}

		if target == -1 {
			target = matches[len(matches)-1]
		}
	}

	if m.focusPlaylists {
		m.plCursor = target
	} else {
		m.dispatcher.Selection.MoveCursor(target - cursor)
		m.updateViewportContent()
	}
}

// ========== Command line ==========

// runCommand executes one ":" command.
func (m model) runCommand(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return m, nil
	}

	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch fields[0] {
	case "quota":
		m.setStatus(fmt.Sprintf("API quota: %d/%d used, %d remaining",
			m.remote.QuotaUsed(), m.remote.QuotaLimit(), m.remote.QuotaRemaining()))

	case "cache":
		switch arg {
		case "", "status":
			m.setStatus(m.cache.Stats())
		case "clear":
			m.cache.Clear()
			m.setStatus("Cache cleared")
		default:
			m.setStatus(fmt.Sprintf("Unknown cache command: %s", arg))
		}

	case "clear":
		// ":clear marks" and bare ":clear" both drop the marks.
		m.dispatcher.Apply(engine.Command{Kind: engine.CmdClearMarks})
		m.updateViewportContent()
		m.setStatus("Marks cleared")

	case "refresh":
		if arg == "all" {
			// Everything refetches; recorded item ids are stale now.
			m.cache.Clear()
			m.dispatcher.ClearHistory()
			m.setStatus("Refreshing everything; history cleared")

			reloads := []tea.Cmd{m.loadPlaylists(true)}
			if open := m.openPlaylistID(); open != "" {
				reloads = append(reloads, m.loadVideos(open, true))
			}

			return m, tea.Batch(reloads...)
		}

		if open := m.openPlaylistID(); open != "" {
			m.loading = true

			return m, m.loadVideos(open, true)
		}

		m.loading = true

		return m, m.loadPlaylists(true)

	case "help":
		m.mode = modeHelp

	case "q", "quit":
		m.quitting = true
		m.cancel()

		return m, tea.Quit

	default:
		m.setStatus(fmt.Sprintf("Unknown command: %s", fields[0]))
	}

	return m, nil
}

// friendlyError maps engine errors to short status-bar messages.
func friendlyError(err error) string {
	var preflight *engine.QuotaPreflightError

	switch {
	case errors.Is(err, engine.ErrClipboardEmpty):
		return "Clipboard is empty"
	case errors.Is(err, engine.ErrImmutableContainer):
		return "This playlist cannot be modified"
	case errors.Is(err, engine.ErrQuotaExceeded):
		return "Daily API quota exhausted; try again after the reset"
	case errors.Is(err, engine.ErrOperationInFlight):
		return "Another operation is still running"
	case errors.Is(err, engine.ErrNothingToUndo):
		return "Nothing to undo"
	case errors.Is(err, engine.ErrNothingToRedo):
		return "Nothing to redo"
	case errors.As(err, &preflight):
		return preflight.Error()
	default:
		return err.Error()
	}
}
