// ABOUTME: Tests for TUI state transitions against the dry-run remote
// ABOUTME: Covers key normalization, mode switching, and command handling

package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"yanger/api"
	"yanger/cache"
	"yanger/config"
	"yanger/engine"
)

func newTestModel(t *testing.T) model {
	t.Helper()

	shared := &config.SharedConfig{}
	shared.Update(config.DefaultConfig())

	remote := api.NewDryRunRemote(api.NewQuotaCounter(10000), nil)

	m := initModel(Options{DryRun: true}, Dependencies{
		SharedConfig: shared,
		Remote:       remote,
		Cache:        cache.New(time.Minute, nil, nil),
	})

	// Simulate the startup sequence: a window size, then the playlist load.
	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m = update(t, m, m.loadPlaylists(false)())

	return m
}

// update feeds one message through Update and unwraps the model.
func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()

	next, _ := m.Update(msg)

	out, ok := next.(model)
	if !ok {
		t.Fatalf("Update returned %T, want model", next)
	}

	return out
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// openPlaylist moves the cursor to the named playlist and opens it.
func openPlaylist(t *testing.T, m model, title string) model {
	t.Helper()

	found := false

	for i, p := range m.playlists {
		if p.Title == title {
			m.plCursor = i
			found = true

			break
		}
	}

	if !found {
		t.Fatalf("playlist %q not in %v", title, m.playlists)
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)

	if cmd == nil {
		t.Fatal("enter on a playlist should load its videos")
	}

	return update(t, m, cmd())
}

func TestKeyToken(t *testing.T) {
	tests := []struct {
		msg  tea.KeyMsg
		want engine.Key
	}{
		{tea.KeyMsg{Type: tea.KeyEscape}, engine.KeyEscape},
		{tea.KeyMsg{Type: tea.KeyEnter}, engine.KeyEnter},
		{tea.KeyMsg{Type: tea.KeySpace}, engine.KeySpace},
		{tea.KeyMsg{Type: tea.KeyPgUp}, engine.KeyPageUp},
		{tea.KeyMsg{Type: tea.KeyPgDown}, engine.KeyPageDown},
		{tea.KeyMsg{Type: tea.KeyUp}, "k"},
		{tea.KeyMsg{Type: tea.KeyDown}, "j"},
		{tea.KeyMsg{Type: tea.KeyLeft}, "h"},
		{tea.KeyMsg{Type: tea.KeyRight}, "l"},
		{keyRune('d'), "d"},
		{keyRune('G'), "G"},
		{tea.KeyMsg{Type: tea.KeyTab}, ""},
	}

	for _, tt := range tests {
		if got := keyToken(tt.msg); got != tt.want {
			t.Errorf("keyToken(%v) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestInitialLoadShowsPlaylists(t *testing.T) {
	m := newTestModel(t)

	if len(m.playlists) == 0 {
		t.Fatal("expected seeded playlists after load")
	}

	if !m.focusPlaylists {
		t.Error("focus should start on the playlist column")
	}

	// Special containers sort first.
	if !m.playlists[0].IsSpecial {
		t.Errorf("first playlist %q should be the special one", m.playlists[0].Title)
	}
}

func TestPlaylistCursorMovesAndClamps(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, keyRune('k'))
	if m.plCursor != 0 {
		t.Errorf("cursor moved above top: %d", m.plCursor)
	}

	for range 20 {
		m = update(t, m, keyRune('j'))
	}

	if m.plCursor != len(m.playlists)-1 {
		t.Errorf("cursor = %d, want clamped to %d", m.plCursor, len(m.playlists)-1)
	}
}

func TestOpenPlaylistSwitchesFocus(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	if m.focusPlaylists {
		t.Error("opening a playlist should focus the video column")
	}

	if m.dispatcher.CurrentPlaylist() == nil {
		t.Fatal("dispatcher has no current playlist")
	}

	if len(m.dispatcher.Videos()) == 0 {
		t.Error("expected seeded videos")
	}
}

func TestFocusKeysSwitchColumns(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	m = update(t, m, keyRune('h'))
	if !m.focusPlaylists {
		t.Error("h should focus the playlist column")
	}

	m = update(t, m, keyRune('l'))
	if m.focusPlaylists {
		t.Error("l should focus the video column again")
	}
}

func TestMarkAndCutUpdatesIndicators(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})

	if m.dispatcher.Selection.MarkedCount() != 1 {
		t.Fatalf("marked = %d, want 1", m.dispatcher.Selection.MarkedCount())
	}

	m = update(t, m, keyRune('d'))
	m = update(t, m, keyRune('d'))

	if m.dispatcher.Clipboard.Len() != 1 {
		t.Errorf("clipboard = %d, want 1", m.dispatcher.Clipboard.Len())
	}

	if m.statusMsg == "" {
		t.Error("cut should set a status message")
	}
}

func TestDeletePlaylistConfirmFlow(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	m = update(t, m, keyRune('g'))
	m = update(t, m, keyRune('d'))

	if m.mode != modeConfirmDeletePlaylist {
		t.Fatalf("mode = %d, want confirm-delete-playlist", m.mode)
	}

	if !strings.Contains(m.confirmPrompt, "Music") {
		t.Errorf("prompt %q should name the playlist", m.confirmPrompt)
	}

	// Declining returns to normal mode without touching the remote.
	m = update(t, m, keyRune('n'))

	if m.mode != modeNormal {
		t.Errorf("mode = %d after decline, want normal", m.mode)
	}

	if m.statusMsg != "Cancelled" {
		t.Errorf("status = %q, want Cancelled", m.statusMsg)
	}
}

func TestDeleteVideosNeedsConfirmation(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	m = update(t, m, keyRune('d'))
	m = update(t, m, keyRune('D'))

	if m.mode != modeConfirmDeleteVideos {
		t.Fatalf("mode = %d, want confirm-delete-videos", m.mode)
	}

	// Confirming hands an operation to the background runner.
	next, cmd := m.Update(keyRune('y'))
	m = next.(model)

	if cmd == nil {
		t.Fatal("confirming a delete should start the operation")
	}

	if !m.busy {
		t.Error("model should be busy while the delete runs")
	}

	m = update(t, m, cmd())

	if m.busy {
		t.Error("opDoneMsg should clear busy")
	}
}

func TestRenamePromptSeedsCurrentTitle(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	m = update(t, m, keyRune('c'))
	m = update(t, m, keyRune('w'))

	if m.mode != modePromptRename {
		t.Fatalf("mode = %d, want rename prompt", m.mode)
	}

	if m.input.Value() == "" {
		t.Error("rename prompt should be seeded with the current title")
	}

	// Escape cancels without submitting.
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})

	if m.mode != modeNormal {
		t.Errorf("mode = %d after escape, want normal", m.mode)
	}
}

func TestSearchSetsQueryAndJumps(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	m = update(t, m, keyRune('/'))

	if m.mode != modeSearch {
		t.Fatalf("mode = %d, want search", m.mode)
	}

	m.input.SetValue("zzz-no-such-video")
	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.searchQuery != "zzz-no-such-video" {
		t.Errorf("searchQuery = %q", m.searchQuery)
	}

	if !strings.Contains(m.statusMsg, "No matches") {
		t.Errorf("status = %q, want no-matches message", m.statusMsg)
	}
}

func TestCommandQuota(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.runCommand("quota")
	m = next.(model)

	if !strings.Contains(m.statusMsg, "quota") {
		t.Errorf("status = %q, want quota report", m.statusMsg)
	}
}

func TestCommandCacheStatusAndClear(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.runCommand("cache")
	m = next.(model)

	if m.statusMsg == "" {
		t.Error("cache status should report something")
	}

	next, _ = m.runCommand("cache clear")
	m = next.(model)

	if m.statusMsg != "Cache cleared" {
		t.Errorf("status = %q, want Cache cleared", m.statusMsg)
	}

	if _, ok := m.cache.GetPlaylists(); ok {
		t.Error("playlists survived a cache clear")
	}
}

func TestCommandRefreshAllClearsHistory(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	// Put something in the history first: copy a video, paste it back.
	m = update(t, m, keyRune('y'))
	m = update(t, m, keyRune('y'))
	m = update(t, m, keyRune('p'))

	next, cmd := m.Update(keyRune('p'))
	m = next.(model)

	if cmd == nil {
		t.Fatal("paste should start an operation")
	}

	m = update(t, m, cmd())

	if m.dispatcher.Stack.UndoSize() != 1 {
		t.Fatalf("undo stack = %d, want 1", m.dispatcher.Stack.UndoSize())
	}

	next, cmd = m.runCommand("refresh all")
	m = next.(model)

	if cmd == nil {
		t.Fatal("refresh all should trigger reloads")
	}

	if m.dispatcher.Stack.UndoSize() != 0 {
		t.Error("refresh all should clear the history")
	}
}

func TestPasteConsumesClipboardOnCompletion(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	m = update(t, m, tea.KeyMsg{Type: tea.KeySpace})
	m = update(t, m, keyRune('y'))
	m = update(t, m, keyRune('y'))

	m = update(t, m, keyRune('p'))

	next, cmd := m.Update(keyRune('p'))
	m = next.(model)

	if cmd == nil {
		t.Fatal("paste should start an operation")
	}

	// Staging stays intact until the operation result arrives on the
	// update loop.
	if m.dispatcher.Clipboard.IsEmpty() {
		t.Fatal("clipboard consumed before the paste finished")
	}

	m = update(t, m, cmd())

	if !m.dispatcher.Clipboard.IsEmpty() {
		t.Error("completed paste should consume the clipboard")
	}

	if m.dispatcher.Selection.MarkedCount() != 0 {
		t.Error("completed paste should clear the marks")
	}
}

func TestCommandUnknown(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.runCommand("frobnicate")
	m = next.(model)

	if !strings.Contains(m.statusMsg, "Unknown command") {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestHelpModeRoundTrip(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, keyRune('?'))

	if m.mode != modeHelp {
		t.Fatalf("mode = %d after ?, want help", m.mode)
	}

	view := m.View()
	if !strings.Contains(view, "dd") || !strings.Contains(view, "Keyboard Shortcuts") {
		t.Error("help view should render the keymap")
	}

	m = update(t, m, keyRune('x'))

	if m.mode != modeNormal {
		t.Errorf("mode = %d after keypress, want normal", m.mode)
	}

	// :help reaches the same overlay.
	next, _ := m.runCommand("help")
	m = next.(model)

	if m.mode != modeHelp {
		t.Errorf("mode = %d after :help, want help", m.mode)
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(keyRune('q'))
	m = next.(model)

	if !m.quitting {
		t.Error("q should quit")
	}

	if cmd == nil {
		t.Error("quit should return the tea.Quit command")
	}
}

func TestSortMenuPendingHint(t *testing.T) {
	m := newTestModel(t)
	m = openPlaylist(t, m, "Music")

	m = update(t, m, keyRune('o'))

	if m.interp.Pending() == "" {
		t.Error("sort menu should show a pending hint")
	}

	m = update(t, m, keyRune('t'))

	if m.interp.Pending() != "" {
		t.Error("choosing a field should close the menu")
	}

	if !strings.Contains(m.statusMsg, "Sorted") {
		t.Errorf("status = %q, want sort confirmation", m.statusMsg)
	}
}

func TestNotificationsUpdateIndicators(t *testing.T) {
	m := newTestModel(t)

	m = update(t, m, marksChangedMsg{count: 3})
	if m.marksCount != 3 {
		t.Errorf("marksCount = %d, want 3", m.marksCount)
	}

	m = update(t, m, clipboardChangedMsg{count: 2, kind: engine.ClipCut})
	if m.clipCount != 2 || m.clipKind != engine.ClipCut {
		t.Errorf("clipboard indicator = %d/%v", m.clipCount, m.clipKind)
	}

	m = update(t, m, opCompletedMsg{desc: "Move 2 video(s)"})
	if m.statusMsg != "Move 2 video(s)" {
		t.Errorf("status = %q", m.statusMsg)
	}
}

func TestFriendlyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{engine.ErrClipboardEmpty, "Clipboard is empty"},
		{engine.ErrImmutableContainer, "cannot be modified"},
		{engine.ErrQuotaExceeded, "quota exhausted"},
		{engine.ErrOperationInFlight, "still running"},
		{&engine.QuotaPreflightError{Required: 100, Remaining: 10}, "quota"},
	}

	for _, tt := range tests {
		if got := friendlyError(tt.err); !strings.Contains(got, tt.want) {
			t.Errorf("friendlyError(%v) = %q, want substring %q", tt.err, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is too long", 10, "this is..."},
		{"tiny", 2, "ti"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
		}
	}
}
