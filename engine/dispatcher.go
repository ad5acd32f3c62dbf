// ABOUTME: Applies resolved commands to selection, clipboard, and history
// ABOUTME: Owns quota pre-flight, cache invalidation, and UI notifications

package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"

	"yanger/playlist"
)

// Request asks the host shell for input the engine cannot collect itself
// (confirmation modals, text prompts, mode switches).
type Request int

// Host requests.
const (
	ReqNone Request = iota
	ReqConfirmDeleteVideos
	ReqConfirmDeletePlaylist
	ReqNewPlaylist
	ReqRename
	ReqSearch
	ReqCommandLine
	ReqSortMenu
	ReqHelp
	ReqFocusLeft
	ReqFocusRight
	ReqSelect
	ReqQuit
)

// Action tells the host which stack call to run off the key-handling
// loop. Operations suspend on remote calls, so the host runs them in a
// background task while the dispatcher's stack guard serializes them.
type Action int

// Stack actions.
const (
	ActNone Action = iota
	ActExecute
	ActUndo
	ActRedo
)

// Result is the outcome of applying one command.
type Result struct {
	Request Request   // input the host must collect, if any
	Action  Action    // stack call the host must run, if any
	Op      Operation // prepared operation for ActExecute
	Status  string    // transient status message
	Err     error
}

// Recorder receives an audit record for every operation outcome.
type Recorder interface {
	Record(action, description string, cost int, err error)
}

// Dispatcher applies Commands to the selection model, clipboard, and
// operation stack, and talks to the collaborators around them. Commands
// are applied synchronously in key order; only operation execution is
// handed back to the host to run off the key loop.
type Dispatcher struct {
	Selection *SelectionModel
	Clipboard *Clipboard
	Stack     *OperationStack

	api      RemoteAPI
	cache    CacheInvalidator
	notify   Notifier
	recorder Recorder
	debugf   func(format string, args ...interface{})

	// yank writes to the OS clipboard; a field so tests can intercept.
	yank func(string) error

	current        *playlist.Playlist
	videos         []playlist.Video
	focusPlaylists bool
	defaultPrivacy playlist.Privacy

	// pendingDelete holds videos between a delete request and its
	// confirmation.
	pendingDelete []playlist.Video
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	API            RemoteAPI
	Cache          CacheInvalidator
	Notifier       Notifier
	Recorder       Recorder
	HistorySize    int
	DefaultPrivacy playlist.Privacy
	Debugf         func(format string, args ...interface{})
}

// NewDispatcher wires the engine components together.
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	if opts.Cache == nil {
		opts.Cache = NopInvalidator{}
	}

	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}

	if opts.Debugf == nil {
		opts.Debugf = func(string, ...interface{}) {}
	}

	if opts.DefaultPrivacy == "" {
		opts.DefaultPrivacy = playlist.PrivacyPrivate
	}

	return &Dispatcher{
		Selection:      NewSelectionModel(0),
		Clipboard:      NewClipboard(),
		Stack:          NewOperationStack(opts.HistorySize),
		api:            opts.API,
		cache:          opts.Cache,
		notify:         opts.Notifier,
		recorder:       opts.Recorder,
		debugf:         opts.Debugf,
		yank:           clipboard.WriteAll,
		defaultPrivacy: opts.DefaultPrivacy,
	}
}

// SetContext replaces the current playlist and its videos. Marks and any
// visual range are invalidated with the list.
func (d *Dispatcher) SetContext(p *playlist.Playlist, videos []playlist.Video) {
	d.current = p
	d.videos = videos
	d.Selection.SetItemCount(len(videos))
	d.notify.MarksChanged(0)
}

// SetFocus records whether the playlist column has focus (affects what a
// rename targets).
func (d *Dispatcher) SetFocus(onPlaylists bool) {
	d.focusPlaylists = onPlaylists
}

// SetDefaultPrivacy changes the privacy applied to new playlists; the
// config watcher calls this on reload.
func (d *Dispatcher) SetDefaultPrivacy(p playlist.Privacy) {
	switch p {
	case playlist.PrivacyPublic, playlist.PrivacyPrivate, playlist.PrivacyUnlisted:
		d.defaultPrivacy = p
	}
}

// Videos returns the current video list.
func (d *Dispatcher) Videos() []playlist.Video { return d.videos }

// CurrentPlaylist returns the loaded playlist (nil if none).
func (d *Dispatcher) CurrentPlaylist() *playlist.Playlist { return d.current }

// Apply routes one command. Selection and clipboard mutations happen
// synchronously here; anything remote comes back as a Result the host
// must act on.
func (d *Dispatcher) Apply(cmd Command) Result {
	switch cmd.Kind {
	case CmdMoveCursor:
		d.Selection.MoveCursor(cmd.Delta)
		d.notifyMarksIfVisual()
	case CmdMoveTop:
		d.Selection.MoveToTop()
		d.notifyMarksIfVisual()
	case CmdMoveBottom:
		d.Selection.MoveToBottom()
		d.notifyMarksIfVisual()

	case CmdToggleMark:
		d.Selection.ToggleMarkAtCursor()
		d.notify.MarksChanged(d.Selection.MarkedCount())

	case CmdEnterVisual:
		// V toggles: entering while active commits the range.
		if d.Selection.VisualActive() {
			d.Selection.ExitVisual(true)
		} else {
			d.Selection.EnterVisual(false)
		}

		d.notify.MarksChanged(d.Selection.MarkedCount())

	case CmdEnterVisualUnmark:
		if !d.Selection.VisualActive() {
			d.Selection.EnterVisual(true)
			d.notify.MarksChanged(d.Selection.MarkedCount())
		}

	case CmdEscape:
		// Escape cancels an open visual range without touching marks;
		// with no range open it clears the marks instead.
		if d.Selection.VisualActive() {
			d.Selection.ExitVisual(false)
			d.notify.MarksChanged(d.Selection.MarkedCount())
		} else if d.Selection.MarkedCount() > 0 {
			d.Selection.ClearMarks()
			d.notify.MarksChanged(0)
		}

	case CmdInvertSelection:
		d.Selection.InvertSelection()
		d.notify.MarksChanged(d.Selection.MarkedCount())

	case CmdClearMarks:
		d.Selection.ClearMarks()
		d.notify.MarksChanged(0)

	case CmdCutSelection:
		return d.stageClipboard(ClipCut)

	case CmdCopySelection:
		return d.stageClipboard(ClipCopy)

	case CmdPasteClipboard:
		return d.preparePaste()

	case CmdYankURL:
		return d.yankURL()

	case CmdSortBy:
		return d.sortVideos(cmd.Sort)

	case CmdDeleteSelectionRequest:
		videos := d.selectedVideos()
		if len(videos) == 0 {
			return Result{Status: "Nothing to delete"}
		}

		if d.current == nil || !d.current.Mutable() {
			return Result{Err: ErrImmutableContainer}
		}

		d.pendingDelete = videos

		return Result{Request: ReqConfirmDeleteVideos}

	case CmdDeleteContainerRequest:
		// Rejected here, before anything reaches the operation stack.
		if d.current == nil {
			return Result{Status: "No playlist selected"}
		}

		if !d.current.Mutable() {
			return Result{Err: ErrImmutableContainer}
		}

		return Result{Request: ReqConfirmDeletePlaylist}

	case CmdNewContainerRequest:
		return Result{Request: ReqNewPlaylist}

	case CmdRenameRequest:
		return Result{Request: ReqRename}

	case CmdUndo:
		if d.Stack.UndoSize() == 0 {
			return Result{Status: "Nothing to undo"}
		}

		return Result{Action: ActUndo}

	case CmdRedo:
		if d.Stack.RedoSize() == 0 {
			return Result{Status: "Nothing to redo"}
		}

		return Result{Action: ActRedo}

	case CmdFocusLeft:
		return Result{Request: ReqFocusLeft}
	case CmdFocusRight:
		return Result{Request: ReqFocusRight}
	case CmdSelect:
		return Result{Request: ReqSelect}
	case CmdEnterSearch:
		return Result{Request: ReqSearch}
	case CmdOpenCommandLine:
		return Result{Request: ReqCommandLine}
	case CmdOpenSortMenu:
		return Result{Request: ReqSortMenu}
	case CmdOpenHelp:
		return Result{Request: ReqHelp}
	case CmdQuit:
		return Result{Request: ReqQuit}

	case CmdNone:
	}

	return Result{}
}

// ConfirmDeleteSelection builds the delete operation after the operator
// confirmed the irreversibility warning.
func (d *Dispatcher) ConfirmDeleteSelection() Result {
	videos := d.pendingDelete
	d.pendingDelete = nil

	if len(videos) == 0 || d.current == nil {
		return Result{Status: "Nothing to delete"}
	}

	op := NewDeleteItemsOp(d.api, d.current.ID, videos)
	if err := d.preflight(op); err != nil {
		return Result{Err: err}
	}

	return Result{Action: ActExecute, Op: op}
}

// CancelDeleteSelection drops a pending delete request.
func (d *Dispatcher) CancelDeleteSelection() {
	d.pendingDelete = nil
}

// SubmitCreatePlaylist builds the creation operation from prompt input.
func (d *Dispatcher) SubmitCreatePlaylist(title, description string) Result {
	if title == "" {
		return Result{Status: "Title required"}
	}

	op := NewCreateContainerOp(d.api, title, description, d.defaultPrivacy)
	if err := d.preflight(op); err != nil {
		return Result{Err: err}
	}

	return Result{Action: ActExecute, Op: op}
}

// SubmitRename builds a rename for the focused item (playlist when the
// playlist column has focus, otherwise the video under the cursor).
func (d *Dispatcher) SubmitRename(newTitle string) Result {
	if newTitle == "" {
		return Result{Status: "Title required"}
	}

	var op *RenameOp

	switch {
	case d.focusPlaylists && d.current != nil:
		if !d.current.Mutable() {
			return Result{Err: ErrImmutableContainer}
		}

		op = NewRenameOp(d.api, RenamePlaylistTarget, d.current.ID, d.current.Title, newTitle)
	case d.Selection.Count() > 0:
		v := d.videos[d.Selection.Cursor()]
		op = NewRenameOp(d.api, RenameVideoTarget, v.ID, v.Title, newTitle)
	default:
		return Result{Status: "Nothing to rename"}
	}

	if err := d.preflight(op); err != nil {
		return Result{Err: err}
	}

	return Result{Action: ActExecute, Op: op}
}

// ExecuteOperation runs the operation through the history stack and, on
// success, invalidates affected caches and notifies the renderer. Partial
// batch failures still invalidate: memberships did change.
func (d *Dispatcher) ExecuteOperation(ctx context.Context, op Operation) error {
	err := d.Stack.Execute(ctx, op)
	d.record("execute", op, err)

	var batch *BatchError
	if err != nil && !errors.As(err, &batch) {
		return err
	}

	d.invalidateFor(op)

	if err != nil {
		return err
	}

	d.notify.OperationCompleted(op.Description())

	return nil
}

// FinishPaste consumes the clipboard and the marks that staged a
// successful paste. ExecuteOperation runs off the key-handling loop and
// must not touch the selection model or clipboard, so the host calls this
// from the key loop once the paste result comes back.
func (d *Dispatcher) FinishPaste() {
	d.Clipboard.Clear()
	d.Selection.ClearMarks()
	d.notify.ClipboardChanged(0, ClipNone)
	d.notify.MarksChanged(0)
}

// UndoOperation reverses the most recent operation.
func (d *Dispatcher) UndoOperation(ctx context.Context) (Operation, error) {
	op, err := d.Stack.Undo(ctx)
	if err != nil {
		if !errors.Is(err, ErrNothingToUndo) {
			d.record("undo", op, err)
		}

		return nil, err
	}

	d.record("undo", op, nil)
	d.invalidateFor(op)
	d.notify.OperationCompleted(fmt.Sprintf("Undone: %s", op.Description()))

	return op, nil
}

// RedoOperation replays the most recently undone operation.
func (d *Dispatcher) RedoOperation(ctx context.Context) (Operation, error) {
	op, err := d.Stack.Redo(ctx)
	if err != nil {
		if !errors.Is(err, ErrNothingToRedo) {
			d.record("redo", op, err)
		}

		return nil, err
	}

	d.record("redo", op, nil)
	d.invalidateFor(op)
	d.notify.OperationCompleted(fmt.Sprintf("Redone: %s", op.Description()))

	return op, nil
}

// DeletePlaylist deletes the current playlist directly. Playlist deletion
// is not represented in the operation history: the remote cannot restore
// a deleted playlist, so offering undo would lie.
func (d *Dispatcher) DeletePlaylist(ctx context.Context) error {
	if d.current == nil {
		return ErrImmutableContainer
	}

	if !d.current.Mutable() {
		return ErrImmutableContainer
	}

	if d.api.QuotaRemaining() < CostDelete {
		return &QuotaPreflightError{Required: CostDelete, Remaining: d.api.QuotaRemaining()}
	}

	title := d.current.Title

	if err := d.api.DeletePlaylist(ctx, d.current.ID); err != nil {
		return err
	}

	d.cache.InvalidatePlaylists()
	d.notify.OperationCompleted(fmt.Sprintf("Deleted playlist: %s", title))

	return nil
}

// ClearHistory drops the operation history; used after a full cache
// refresh invalidates every recorded item id.
func (d *Dispatcher) ClearHistory() {
	d.Stack.Clear()
}

func (d *Dispatcher) stageClipboard(kind ClipKind) Result {
	videos := d.selectedVideos()
	if len(videos) == 0 {
		return Result{Status: "Nothing selected"}
	}

	sourceID := ""
	if d.current != nil {
		sourceID = d.current.ID
	}

	verb := "Copied"

	if kind == ClipCut {
		d.Clipboard.Cut(videos, sourceID)

		verb = "Cut"
	} else {
		d.Clipboard.Copy(videos, sourceID)
	}

	d.notify.ClipboardChanged(d.Clipboard.Len(), kind)

	if len(videos) == 1 {
		return Result{Status: fmt.Sprintf("%s: %s", verb, videos[0].Title)}
	}

	return Result{Status: fmt.Sprintf("%s %d videos", verb, len(videos))}
}

func (d *Dispatcher) preparePaste() Result {
	if d.Clipboard.IsEmpty() {
		return Result{Err: ErrClipboardEmpty}
	}

	if d.current == nil {
		return Result{Status: "No playlist selected"}
	}

	if !d.current.Mutable() {
		return Result{Err: ErrImmutableContainer}
	}

	items := d.Clipboard.Items()
	isCut := d.Clipboard.OperationKind() == ClipCut

	op := NewPasteOp(d.api, d.Clipboard.Videos(), d.current.ID, items[0].SourcePlaylistID, isCut)
	if err := d.preflight(op); err != nil {
		return Result{Err: err}
	}

	return Result{Action: ActExecute, Op: op}
}

func (d *Dispatcher) yankURL() Result {
	if d.Selection.Count() == 0 {
		return Result{Status: "Nothing to yank"}
	}

	v := d.videos[d.Selection.Cursor()]
	if err := d.yank(v.URL()); err != nil {
		return Result{Err: fmt.Errorf("yank failed: %w", err)}
	}

	return Result{Status: fmt.Sprintf("Yanked %s", v.URL())}
}

func (d *Dispatcher) sortVideos(field playlist.SortField) Result {
	if len(d.videos) == 0 {
		return Result{}
	}

	// Local reorder only: no remote call and no history entry. The list
	// is replaced, so marks are invalidated with it.
	playlist.SortVideos(d.videos, field)
	d.Selection.SetItemCount(len(d.videos))
	d.notify.MarksChanged(0)

	return Result{Status: fmt.Sprintf("Sorted by %s", field)}
}

// selectedVideos returns the effective-marked videos, falling back to the
// video under the cursor when nothing is marked.
func (d *Dispatcher) selectedVideos() []playlist.Video {
	if len(d.videos) == 0 {
		return nil
	}

	indices := d.Selection.MarkedIndices()
	if len(indices) == 0 {
		return []playlist.Video{d.videos[d.Selection.Cursor()]}
	}

	out := make([]playlist.Video, 0, len(indices))

	for _, i := range indices {
		if i < len(d.videos) {
			out = append(out, d.videos[i])
		}
	}

	return out
}

// preflight rejects an operation whose estimated cost exceeds the
// remaining quota, before any remote call is issued.
func (d *Dispatcher) preflight(op Operation) error {
	remaining := d.api.QuotaRemaining()
	if op.Cost() > remaining {
		d.debugf("[ENGINE] Pre-flight rejected %q: need %d, have %d", op.Description(), op.Cost(), remaining)

		return &QuotaPreflightError{Required: op.Cost(), Remaining: remaining}
	}

	return nil
}

func (d *Dispatcher) invalidateFor(op Operation) {
	switch o := op.(type) {
	case *PasteOp:
		d.cache.InvalidatePlaylist(o.TargetPlaylistID())

		if src := o.SourcePlaylistID(); src != "" && src != o.TargetPlaylistID() {
			d.cache.InvalidatePlaylist(src)
		}
	case *CreateContainerOp:
		d.cache.InvalidatePlaylists()
	case *RenameOp:
		if o.target == RenamePlaylistTarget {
			d.cache.InvalidatePlaylists()
		} else if d.current != nil {
			d.cache.InvalidatePlaylist(d.current.ID)
		}
	case *DeleteItemsOp:
		d.cache.InvalidatePlaylist(o.PlaylistID())
	}
}

func (d *Dispatcher) record(action string, op Operation, err error) {
	if d.recorder == nil || op == nil {
		return
	}

	d.recorder.Record(action, op.Description(), op.Cost(), err)
}

// notifyMarksIfVisual keeps the marks indicator live while the visual
// range tracks the cursor.
func (d *Dispatcher) notifyMarksIfVisual() {
	if d.Selection.VisualActive() {
		d.notify.MarksChanged(d.Selection.MarkedCount())
	}
}
