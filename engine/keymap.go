// ABOUTME: Static keybinding table injected into the key interpreter
// ABOUTME: Session-scoped (not a process global) to ease testing with alternate maps

package engine

import (
	"fmt"
	"sort"
	"strings"

	"yanger/playlist"
)

// Key is one normalized key token from the host: a printable character,
// or "escape", "enter", "space", "pageup", "pagedown".
type Key string

// Special key tokens.
const (
	KeyEscape   Key = "escape"
	KeyEnter    Key = "enter"
	KeySpace    Key = "space"
	KeyPageUp   Key = "pageup"
	KeyPageDown Key = "pagedown"
)

// pageJumpSize is how far pageup/pagedown move the cursor.
const pageJumpSize = 10

// Binding describes one keybinding for the help overlay.
type Binding struct {
	Keys        string // display form, e.g. "dd" or "space"
	Description string
	Category    string
}

// Keymap is the constructed-once binding table consumed by the
// Interpreter. Idle single keys resolve directly; prefix keys open a
// two-key chord; sort keys select a field while the sort menu is open.
type Keymap struct {
	idle     map[Key]Command
	prefixes map[Key]map[Key]Command
	sortKeys map[Key]playlist.SortField
	bindings []Binding
}

// DefaultKeymap returns the standard ranger-style bindings.
func DefaultKeymap() *Keymap {
	km := &Keymap{
		idle:     map[Key]Command{},
		prefixes: map[Key]map[Key]Command{},
		sortKeys: map[Key]playlist.SortField{},
	}

	// Navigation
	km.bindIdle("j", move(1), "j", "Move down", "Navigation")
	km.bindIdle("k", move(-1), "k", "Move up", "Navigation")
	km.bindIdle(KeyPageDown, move(pageJumpSize), "pagedown", "Page down", "Navigation")
	km.bindIdle(KeyPageUp, move(-pageJumpSize), "pageup", "Page up", "Navigation")
	km.bindIdle("h", Command{Kind: CmdFocusLeft}, "h", "Focus left column", "Navigation")
	km.bindIdle("l", Command{Kind: CmdFocusRight}, "l", "Focus right column", "Navigation")
	km.bindIdle("G", Command{Kind: CmdMoveBottom}, "G", "Jump to bottom", "Navigation")
	km.bindIdle(KeyEnter, Command{Kind: CmdSelect}, "enter", "Open item", "Navigation")

	// Selection
	km.bindIdle(KeySpace, Command{Kind: CmdToggleMark}, "space", "Toggle mark on current video", "Selection")
	km.bindIdle("V", Command{Kind: CmdEnterVisual}, "V", "Visual mode (range selection)", "Selection")
	km.bindIdle("v", Command{Kind: CmdInvertSelection}, "v", "Invert selection", "Selection")
	km.bindChord("g", "u", Command{Kind: CmdEnterVisualUnmark}, "gu", "Visual unmark mode", "Selection")

	// Operations
	km.bindChord("d", "d", Command{Kind: CmdCutSelection}, "dd", "Cut selected/marked videos", "Operations")
	km.bindChord("d", "D", Command{Kind: CmdDeleteSelectionRequest}, "dD", "Delete selected/marked videos", "Operations")
	km.bindChord("y", "y", Command{Kind: CmdCopySelection}, "yy", "Copy selected/marked videos", "Operations")
	km.bindChord("y", "u", Command{Kind: CmdYankURL}, "yu", "Yank video URL to system clipboard", "Operations")
	km.bindChord("p", "p", Command{Kind: CmdPasteClipboard}, "pp", "Paste videos from clipboard", "Operations")
	km.bindChord("c", "w", Command{Kind: CmdRenameRequest}, "cw", "Rename playlist/video", "Operations")
	km.bindIdle("u", Command{Kind: CmdUndo}, "u", "Undo last operation", "Operations")
	km.bindIdle("U", Command{Kind: CmdRedo}, "U", "Redo last undone operation", "Operations")
	km.bindIdle("o", Command{Kind: CmdOpenSortMenu}, "o", "Open sort menu", "Operations")

	// Playlist
	km.bindChord("g", "g", Command{Kind: CmdMoveTop}, "gg", "Jump to top", "Navigation")
	km.bindChord("g", "n", Command{Kind: CmdNewContainerRequest}, "gn", "Create new playlist", "Playlist")
	km.bindChord("g", "d", Command{Kind: CmdDeleteContainerRequest}, "gd", "Delete playlist", "Playlist")

	// Application
	km.bindIdle("/", Command{Kind: CmdEnterSearch}, "/", "Search in current list", "Application")
	km.bindIdle(":", Command{Kind: CmdOpenCommandLine}, ":", "Enter command mode", "Application")
	km.bindIdle("?", Command{Kind: CmdOpenHelp}, "?", "Show keybinding help", "Application")
	km.bindIdle(KeyEscape, Command{Kind: CmdEscape}, "escape", "Cancel visual mode/search", "Application")
	km.bindIdle("q", Command{Kind: CmdQuit}, "q", "Quit", "Application")

	// Sort menu fields
	km.sortKeys["t"] = playlist.SortTitle
	km.sortKeys["d"] = playlist.SortDateAdded
	km.sortKeys["p"] = playlist.SortPosition
	km.sortKeys["v"] = playlist.SortViews
	km.sortKeys["D"] = playlist.SortDuration

	return km
}

func (km *Keymap) bindIdle(k Key, cmd Command, display, description, category string) {
	km.idle[k] = cmd
	km.bindings = append(km.bindings, Binding{Keys: display, Description: description, Category: category})
}

func (km *Keymap) bindChord(prefix, k Key, cmd Command, display, description, category string) {
	if km.prefixes[prefix] == nil {
		km.prefixes[prefix] = map[Key]Command{}
	}

	km.prefixes[prefix][k] = cmd
	km.bindings = append(km.bindings, Binding{Keys: display, Description: description, Category: category})
}

// IsPrefix reports whether the key opens a two-key chord.
func (km *Keymap) IsPrefix(k Key) bool {
	_, ok := km.prefixes[k]
	return ok
}

// Bindings returns all bindings for help display.
func (km *Keymap) Bindings() []Binding {
	out := make([]Binding, len(km.bindings))
	copy(out, km.bindings)

	return out
}

// HelpText renders the bindings grouped by category.
func (km *Keymap) HelpText() string {
	byCategory := map[string][]Binding{}
	for _, b := range km.bindings {
		byCategory[b.Category] = append(byCategory[b.Category], b)
	}

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}

	sort.Strings(categories)

	var sb strings.Builder

	sb.WriteString("Keyboard Shortcuts\n")

	for _, c := range categories {
		fmt.Fprintf(&sb, "\n%s:\n", c)

		bindings := byCategory[c]
		sort.Slice(bindings, func(i, j int) bool { return bindings[i].Keys < bindings[j].Keys })

		for _, b := range bindings {
			fmt.Fprintf(&sb, "  %-10s %s\n", b.Keys, b.Description)
		}
	}

	return sb.String()
}
