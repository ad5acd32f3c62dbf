// ABOUTME: Collaborator contracts consumed by the engine
// ABOUTME: Remote API, cache invalidation, renderer notifications, quota costs

package engine

import (
	"context"

	"yanger/playlist"
)

// Per-call quota costs charged by the remote API. Mutations are fifty
// times the cost of reads.
const (
	CostList   = 1
	CostInsert = 50
	CostUpdate = 50
	CostDelete = 50
)

// RemoteAPI is the remote playlist service consumed by operations. Every
// call may fail with ErrQuotaExceeded or a *RemoteError; every successful
// call charges its fixed cost against the quota counter.
type RemoteAPI interface {
	// AddVideo inserts a video into a playlist and returns the new
	// playlist-item id (the video's membership identity).
	AddVideo(ctx context.Context, videoID, playlistID string) (string, error)
	// RemoveVideo deletes a playlist membership by its playlist-item id.
	RemoveVideo(ctx context.Context, playlistItemID string) error
	// RenamePlaylist updates a playlist title.
	RenamePlaylist(ctx context.Context, playlistID, title string) error
	// RenameVideo updates a video title.
	RenameVideo(ctx context.Context, videoID, title string) error
	// CreatePlaylist creates a playlist and returns its id.
	CreatePlaylist(ctx context.Context, title, description string, privacy playlist.Privacy) (string, error)
	// DeletePlaylist deletes a playlist by id.
	DeletePlaylist(ctx context.Context, playlistID string) error
	// QuotaRemaining returns the unspent quota units for today.
	QuotaRemaining() int
}

// CacheInvalidator receives invalidation triggers after operations that
// change playlist membership, titles, or existence. The engine never
// reads the cache.
type CacheInvalidator interface {
	InvalidatePlaylist(playlistID string)
	InvalidatePlaylists()
}

// Notifier receives post-hoc UI notifications. Implementations must not
// block; the engine never waits on render completion.
type Notifier interface {
	MarksChanged(count int)
	ClipboardChanged(count int, kind ClipKind)
	OperationCompleted(description string)
}

// NopNotifier discards all notifications.
type NopNotifier struct{}

func (NopNotifier) MarksChanged(int)                 {}
func (NopNotifier) ClipboardChanged(int, ClipKind)   {}
func (NopNotifier) OperationCompleted(string)        {}

// NopInvalidator discards invalidation triggers.
type NopInvalidator struct{}

func (NopInvalidator) InvalidatePlaylist(string) {}
func (NopInvalidator) InvalidatePlaylists()      {}
