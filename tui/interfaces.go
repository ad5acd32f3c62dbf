// ABOUTME: Interfaces defining dependencies for the TUI package
// ABOUTME: Allows clean separation and easy testing with fakes

package tui

import (
	"context"

	"yanger/engine"
	"yanger/playlist"
)

// RemoteService is everything the TUI needs from the remote API: the
// mutation surface the engine drives, plus the read paths and quota
// accounting the UI displays. Both the live client and the dry-run
// remote satisfy it.
type RemoteService interface {
	engine.RemoteAPI

	ListPlaylists(ctx context.Context) ([]playlist.Playlist, error)
	ListVideos(ctx context.Context, playlistID string) ([]playlist.Video, error)

	QuotaUsed() int
	QuotaLimit() int
}
