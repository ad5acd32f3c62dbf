// ABOUTME: Semantic commands produced by the key interpreter
// ABOUTME: One command per completed chord; applied by the Dispatcher

// Package engine implements the interaction core of the playlist client:
// key interpretation, selection, clipboard, and the reversible operation
// history that mutates the remote API.
package engine

import "yanger/playlist"

// CommandKind identifies a semantic command.
type CommandKind int

// The closed set of commands the interpreter can emit.
const (
	CmdNone CommandKind = iota

	// Cursor and focus
	CmdMoveCursor // uses Command.Delta
	CmdMoveTop
	CmdMoveBottom
	CmdFocusLeft
	CmdFocusRight
	CmdSelect

	// Selection
	CmdToggleMark
	CmdEnterVisual
	CmdEnterVisualUnmark
	CmdInvertSelection
	CmdClearMarks

	// Clipboard
	CmdCutSelection
	CmdCopySelection
	CmdPasteClipboard
	CmdYankURL

	// Requests that need host input before an operation is built
	CmdDeleteSelectionRequest
	CmdNewContainerRequest
	CmdDeleteContainerRequest
	CmdRenameRequest

	// History
	CmdUndo
	CmdRedo

	// Modes and menus
	CmdEnterSearch
	CmdOpenSortMenu
	CmdSortBy // uses Command.Sort
	CmdOpenCommandLine
	CmdOpenHelp
	CmdEscape
	CmdQuit
)

// Command is one resolved chord. Delta is set for CmdMoveCursor and Sort
// for CmdSortBy; both are zero otherwise.
type Command struct {
	Kind  CommandKind
	Delta int
	Sort  playlist.SortField
}

// move returns a cursor-motion command.
func move(delta int) Command {
	return Command{Kind: CmdMoveCursor, Delta: delta}
}
