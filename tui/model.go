// ABOUTME: Terminal UI model and core state management
// ABOUTME: Bubble Tea model wiring the key interpreter to the dispatcher

// Package tui provides the ranger-style terminal UI for browsing and
// editing YouTube playlists.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"yanger/cache"
	"yanger/config"
	"yanger/engine"
	"yanger/playlist"
)

// Layout constants for UI dimensions
const (
	playlistPanelWidth = 34 // Left panel width for the playlist column
	panelPadding       = 2  // Horizontal spacing between panels

	// UI chrome heights (elements that reduce available viewport space)
	titleHeight     = 1 // Panel title bars
	headerHeight    = 1 // Column headers for the video list
	previewHeight   = 1 // Detail line for the video under the cursor
	statusBarHeight = 1 // Bottom status bar
	helpHeight      = 1 // Help text line
	spacingHeight   = 1 // Vertical spacing between elements
	totalUIChrome   = titleHeight + headerHeight + previewHeight + statusBarHeight + helpHeight + spacingHeight

	// Minimum viewport dimensions to ensure usability
	minViewportWidth  = 20
	minViewportHeight = 5
)

// statusMessageDuration is how long transient status messages stay visible.
const statusMessageDuration = 5 * time.Second

// inputMode says what the keyboard currently drives.
type inputMode int

const (
	modeNormal inputMode = iota
	modeConfirmDeleteVideos
	modeConfirmDeletePlaylist
	modePromptNewPlaylist
	modePromptRename
	modeSearch
	modeCommand
	modeHelp
)

// ========== Messages ==========

// playlistsLoadedMsg carries the playlist collection (from cache or remote).
type playlistsLoadedMsg struct {
	playlists []playlist.Playlist
	fromCache bool
	err       error
}

// videosLoadedMsg carries one playlist's videos.
type videosLoadedMsg struct {
	playlistID string
	videos     []playlist.Video
	fromCache  bool
	err        error
}

// opDoneMsg reports a finished operation execution.
type opDoneMsg struct {
	desc  string
	paste bool
	err   error
}

// historyDoneMsg reports a finished undo or redo.
type historyDoneMsg struct {
	action engine.Action
	err    error
}

// playlistDeletedMsg reports a finished playlist deletion.
type playlistDeletedMsg struct {
	title string
	err   error
}

// Engine notifications, forwarded from the dispatcher's Notifier.
type marksChangedMsg struct{ count int }

type clipboardChangedMsg struct {
	count int
	kind  engine.ClipKind
}

type opCompletedMsg struct{ desc string }

// configReloadedMsg reports a live config file reload.
type configReloadedMsg struct{ settings config.Settings }

// uiNotifier implements engine.Notifier by forwarding events into the
// Bubble Tea message loop. Sends never block: a full buffer drops the
// event, the next render reads fresh state anyway.
type uiNotifier struct {
	ch chan tea.Msg
}

func (n uiNotifier) MarksChanged(count int) { n.send(marksChangedMsg{count: count}) }

func (n uiNotifier) ClipboardChanged(count int, kind engine.ClipKind) {
	n.send(clipboardChangedMsg{count: count, kind: kind})
}

func (n uiNotifier) OperationCompleted(desc string) { n.send(opCompletedMsg{desc: desc}) }

func (n uiNotifier) send(msg tea.Msg) {
	select {
	case n.ch <- msg:
	default:
	}
}

// ========== Model ==========

// model holds the TUI state
type model struct {
	// Dependencies
	sharedConfig *config.SharedConfig
	remote       RemoteService
	cache        *cache.Cache
	debugf       func(string, ...interface{})
	configPath   string
	dryRun       bool

	// Engine
	dispatcher *engine.Dispatcher
	interp     *engine.Interpreter
	keymap     *engine.Keymap

	// Framework exception: Context stored in struct because Bubble Tea's Init/Update/View
	// pattern doesn't allow passing context through function parameters. The framework owns
	// the model lifecycle, making context-in-struct the idiomatic pattern for cancellation.
	ctx    context.Context //nolint:containedctx // See framework exception above
	cancel context.CancelFunc

	notifyChan chan tea.Msg
	configChan chan config.Settings
	watcher    *fsnotify.Watcher

	// Browsing state
	playlists      []playlist.Playlist
	plCursor       int
	videos         []playlist.Video
	focusPlaylists bool
	loading        bool
	busy           bool // an operation is running against the remote

	// Input state
	mode          inputMode
	input         textinput.Model
	confirmPrompt string
	searchQuery   string

	// UI state
	width        int
	height       int
	quitting     bool
	statusMsg    string
	statusMsgAge time.Time
	marksCount   int
	clipCount    int
	clipKind     engine.ClipKind

	viewport viewport.Model
	vm       *ViewportManager
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	focusedTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("25"))

	listHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("10"))

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15"))

	markedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	specialStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// Run starts the TUI mode with injected dependencies
func Run(opts Options, deps Dependencies) error {
	m := initModel(opts, deps)

	defer m.cancel()

	if m.watcher != nil {
		defer func() {
			if err := m.watcher.Close(); err != nil {
				m.debugf("[TUI] Failed to close config watcher: %v", err)
			}
		}()
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// initModel creates the initial model with injected dependencies
func initModel(opts Options, deps Dependencies) model {
	if deps.Debugf == nil {
		deps.Debugf = func(string, ...interface{}) {}
	}

	settings := deps.SharedConfig.Get()

	// Buffer of 16 absorbs the notification burst of a batch operation
	// without ever blocking the engine; dropped events are harmless
	// because every render reads current engine state.
	notifyChan := make(chan tea.Msg, 16)

	dispatcher := engine.NewDispatcher(engine.DispatcherOptions{
		API:            deps.Remote,
		Cache:          deps.Cache,
		Notifier:       uiNotifier{ch: notifyChan},
		Recorder:       deps.Recorder,
		HistorySize:    settings.HistorySize,
		DefaultPrivacy: playlist.Privacy(settings.DefaultPrivacy),
		Debugf:         deps.Debugf,
	})
	dispatcher.SetFocus(true)

	keymap := engine.DefaultKeymap()

	ctx, cancel := context.WithCancel(context.Background())

	input := textinput.New()
	input.CharLimit = 150

	m := model{
		sharedConfig: deps.SharedConfig,
		remote:       deps.Remote,
		cache:        deps.Cache,
		debugf:       deps.Debugf,
		configPath:   opts.ConfigPath,
		dryRun:       opts.DryRun,

		dispatcher: dispatcher,
		interp:     engine.NewInterpreter(keymap),
		keymap:     keymap,

		ctx:    ctx,
		cancel: cancel,

		notifyChan: notifyChan,
		configChan: make(chan config.Settings, 1),

		focusPlaylists: true,
		loading:        true,

		input:    input,
		viewport: viewport.New(0, 0), // Width and height set on first WindowSizeMsg
		vm:       NewViewportManager(0, 0, 0),
	}

	m.watcher = startConfigWatcher(opts.ConfigPath, deps.SharedConfig, m.configChan, deps.Debugf)

	return m
}

// startConfigWatcher watches the config file and pushes reloaded settings
// into ch. Returns nil when watching is not possible; the TUI works
// without live reload.
func startConfigWatcher(path string, shared *config.SharedConfig, ch chan<- config.Settings, debugf func(string, ...interface{})) *fsnotify.Watcher {
	if path == "" {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		debugf("[TUI] Config watcher unavailable: %v", err)
		return nil
	}

	if err := watcher.Add(path); err != nil {
		debugf("[TUI] Cannot watch config %s: %v", path, err)
		watcher.Close()

		return nil
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}

				settings, err := config.LoadConfig(path)
				if err != nil {
					debugf("[TUI] Config reload failed: %v", err)
					continue
				}

				shared.Update(settings)

				select {
				case ch <- settings:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}

				debugf("[TUI] Config watcher error: %v", err)
			}
		}
	}()

	return watcher
}

// Init kicks off the initial playlist load and the notification pumps.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.loadPlaylists(false), m.waitForNotify(), m.waitForConfigReload())
}

// ========== Commands ==========

// loadPlaylists fetches the playlist collection, serving from cache
// unless force is set.
func (m model) loadPlaylists(force bool) tea.Cmd {
	ctx, remote, store := m.ctx, m.remote, m.cache

	return func() tea.Msg {
		if !force {
			if playlists, ok := store.GetPlaylists(); ok {
				return playlistsLoadedMsg{playlists: playlists, fromCache: true}
			}
		}

		playlists, err := remote.ListPlaylists(ctx)
		if err != nil {
			return playlistsLoadedMsg{err: err}
		}

		store.SetPlaylists(playlists)

		return playlistsLoadedMsg{playlists: playlists}
	}
}

// loadVideos fetches one playlist's videos, serving from cache unless
// force is set.
func (m model) loadVideos(playlistID string, force bool) tea.Cmd {
	ctx, remote, store := m.ctx, m.remote, m.cache

	return func() tea.Msg {
		if !force {
			if videos, ok := store.GetVideos(playlistID); ok {
				return videosLoadedMsg{playlistID: playlistID, videos: videos, fromCache: true}
			}
		}

		videos, err := remote.ListVideos(ctx, playlistID)
		if err != nil {
			return videosLoadedMsg{playlistID: playlistID, err: err}
		}

		store.SetVideos(playlistID, videos)

		return videosLoadedMsg{playlistID: playlistID, videos: videos}
	}
}

// runOperation executes a prepared operation off the key loop.
func (m model) runOperation(op engine.Operation) tea.Cmd {
	ctx, dispatcher := m.ctx, m.dispatcher
	_, isPaste := op.(*engine.PasteOp)

	return func() tea.Msg {
		err := dispatcher.ExecuteOperation(ctx, op)

		return opDoneMsg{desc: op.Description(), paste: isPaste, err: err}
	}
}

// runHistory performs an undo or redo off the key loop.
func (m model) runHistory(action engine.Action) tea.Cmd {
	ctx, dispatcher := m.ctx, m.dispatcher

	return func() tea.Msg {
		var err error

		if action == engine.ActUndo {
			_, err = dispatcher.UndoOperation(ctx)
		} else {
			_, err = dispatcher.RedoOperation(ctx)
		}

		return historyDoneMsg{action: action, err: err}
	}
}

// runDeletePlaylist deletes the open playlist off the key loop.
func (m model) runDeletePlaylist() tea.Cmd {
	ctx, dispatcher := m.ctx, m.dispatcher

	title := ""
	if p := dispatcher.CurrentPlaylist(); p != nil {
		title = p.Title
	}

	return func() tea.Msg {
		return playlistDeletedMsg{title: title, err: dispatcher.DeletePlaylist(ctx)}
	}
}

// waitForNotify pumps one engine notification into the update loop.
func (m model) waitForNotify() tea.Cmd {
	ch := m.notifyChan

	return func() tea.Msg {
		return <-ch
	}
}

// waitForConfigReload pumps one config reload into the update loop.
func (m model) waitForConfigReload() tea.Cmd {
	ch := m.configChan

	return func() tea.Msg {
		return configReloadedMsg{settings: <-ch}
	}
}

// ========== Helpers ==========

// setStatus shows a transient status message.
func (m *model) setStatus(msg string) {
	m.statusMsg = msg
	m.statusMsgAge = time.Now()
}

// currentPlaylist returns the playlist under the playlist-column cursor.
func (m *model) currentPlaylist() *playlist.Playlist {
	if m.plCursor < 0 || m.plCursor >= len(m.playlists) {
		return nil
	}

	return &m.playlists[m.plCursor]
}

// openPlaylistID returns the id of the playlist whose videos are loaded.
func (m *model) openPlaylistID() string {
	if p := m.dispatcher.CurrentPlaylist(); p != nil {
		return p.ID
	}

	return ""
}

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}

	if maxLen <= 3 {
		return s[:maxLen]
	}

	return s[:maxLen-3] + "..."
}
