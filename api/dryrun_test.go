// ABOUTME: Tests for the in-memory dry-run remote
// ABOUTME: Mutations behave like the real API, including quota charges

package api

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yanger/engine"
	"yanger/playlist"
)

func newDryRun(t *testing.T, quota int) *DryRunRemote {
	t.Helper()
	return NewDryRunRemote(NewQuotaCounter(quota), nil)
}

func TestDryRunSeedData(t *testing.T) {
	r := newDryRun(t, 10000)
	ctx := context.Background()

	playlists, err := r.ListPlaylists(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, playlists)

	// Special containers sort first.
	assert.True(t, playlists[0].IsSpecial)

	videos, err := r.ListVideos(ctx, "dry-music")
	require.NoError(t, err)
	assert.Len(t, videos, 3)
}

func TestDryRunAddRemoveRoundTrip(t *testing.T) {
	r := newDryRun(t, 10000)
	ctx := context.Background()

	itemID, err := r.AddVideo(ctx, "vid-x", "dry-talks")
	require.NoError(t, err)
	require.NotEmpty(t, itemID)

	videos, err := r.ListVideos(ctx, "dry-talks")
	require.NoError(t, err)
	assert.Len(t, videos, 3)

	require.NoError(t, r.RemoveVideo(ctx, itemID))

	videos, err = r.ListVideos(ctx, "dry-talks")
	require.NoError(t, err)
	assert.Len(t, videos, 2)
}

func TestDryRunRemoveUnknownItem(t *testing.T) {
	r := newDryRun(t, 10000)

	err := r.RemoveVideo(context.Background(), "no-such-item")

	var remoteErr *engine.RemoteError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, 404, remoteErr.Status)
}

func TestDryRunCreateDeletePlaylist(t *testing.T) {
	r := newDryRun(t, 10000)
	ctx := context.Background()

	id, err := r.CreatePlaylist(ctx, "Scratch", "", playlist.PrivacyPrivate)
	require.NoError(t, err)

	require.NoError(t, r.RenamePlaylist(ctx, id, "Scratch 2"))

	playlists, err := r.ListPlaylists(ctx)
	require.NoError(t, err)

	found := false
	for _, p := range playlists {
		if p.ID == id {
			found = true
			assert.Equal(t, "Scratch 2", p.Title)
		}
	}
	require.True(t, found, "created playlist missing from list")

	require.NoError(t, r.DeletePlaylist(ctx, id))

	err = r.DeletePlaylist(ctx, id)
	var remoteErr *engine.RemoteError
	require.ErrorAs(t, err, &remoteErr)
}

func TestDryRunChargesQuota(t *testing.T) {
	// Budget covers exactly one insert; the second must fail without
	// mutating state.
	r := newDryRun(t, engine.CostInsert)
	ctx := context.Background()

	_, err := r.AddVideo(ctx, "vid-1", "dry-music")
	require.NoError(t, err)

	_, err = r.AddVideo(ctx, "vid-2", "dry-music")
	require.ErrorIs(t, err, engine.ErrQuotaExceeded)

	assert.Equal(t, 0, r.QuotaRemaining())
}

func TestDryRunImplementsRemoteAPI(t *testing.T) {
	var _ engine.RemoteAPI = newDryRun(t, 100)
}
