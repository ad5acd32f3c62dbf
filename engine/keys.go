// ABOUTME: Key interpreter state machine resolving chords into commands
// ABOUTME: Explicit states replace reactive pending flags; one key per transition

package engine

// interpreterState is the interpreter's explicit mode.
type interpreterState int

const (
	stateIdle interpreterState = iota
	statePending
	stateSortSelect
)

// Interpreter consumes one key token at a time and resolves completed
// chords into Commands. It holds only pending-prefix state; it never
// touches the selection, clipboard, or operation history, which keeps the
// grammar testable without mocking remote calls.
type Interpreter struct {
	keymap *Keymap
	state  interpreterState
	prefix Key
}

// NewInterpreter creates an interpreter over the given keymap.
func NewInterpreter(km *Keymap) *Interpreter {
	return &Interpreter{keymap: km}
}

// Interpret consumes one key and returns the resolved command, if any.
// Pending state is always cleared before the next key is interpreted;
// resolution is strictly per-keystroke, with no timeout.
func (it *Interpreter) Interpret(k Key) (Command, bool) {
	switch it.state {
	case statePending:
		prefix := it.prefix
		it.reset()

		cmd, ok := it.keymap.prefixes[prefix][k]
		if !ok {
			// Chord aborted: silently return to idle, no command.
			return Command{}, false
		}

		if cmd.Kind == CmdOpenSortMenu {
			it.state = stateSortSelect
		}

		return cmd, true

	case stateSortSelect:
		// The sort menu swallows its key: a non-field key cancels but is
		// still consumed, unlike a chord abort.
		it.reset()

		if field, ok := it.keymap.sortKeys[k]; ok {
			return Command{Kind: CmdSortBy, Sort: field}, true
		}

		return Command{}, false

	default: // stateIdle
		if it.keymap.IsPrefix(k) {
			it.state = statePending
			it.prefix = k

			return Command{}, false
		}

		cmd, ok := it.keymap.idle[k]
		if !ok {
			return Command{}, false
		}

		if cmd.Kind == CmdOpenSortMenu {
			it.state = stateSortSelect
		}

		return cmd, ok
	}
}

// Pending returns the pending prefix for status-bar display ("" if idle).
func (it *Interpreter) Pending() string {
	switch it.state {
	case statePending:
		return string(it.prefix)
	case stateSortSelect:
		return "sort: (t)itle (d)ate (p)osition (v)iews (D)uration"
	default:
		return ""
	}
}

// Reset aborts any pending chord or menu selection.
func (it *Interpreter) Reset() {
	it.reset()
}

func (it *Interpreter) reset() {
	it.state = stateIdle
	it.prefix = ""
}
