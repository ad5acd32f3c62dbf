// ABOUTME: In-memory remote used by -dry-run mode
// ABOUTME: Mutations succeed locally and charge the quota counter, nothing leaves the process

package api

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"yanger/engine"
	"yanger/playlist"
)

// DryRunRemote implements engine.RemoteAPI against in-memory state. It
// charges the same quota costs as the real client so pre-flight behavior
// can be exercised without touching an account.
type DryRunRemote struct {
	mu        sync.Mutex
	quota     *QuotaCounter
	playlists map[string]*playlist.Playlist
	videos    map[string][]playlist.Video // by playlist id
	itemSeq   int
	plSeq     int
	debugf    func(format string, args ...interface{})
}

// NewDryRunRemote creates a dry-run remote seeded with sample playlists.
func NewDryRunRemote(quota *QuotaCounter, debugf func(string, ...interface{})) *DryRunRemote {
	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	r := &DryRunRemote{
		quota:     quota,
		playlists: map[string]*playlist.Playlist{},
		videos:    map[string][]playlist.Video{},
		debugf:    debugf,
	}

	r.seed()

	return r
}

func (r *DryRunRemote) seed() {
	seeds := []struct {
		p      playlist.Playlist
		titles []string
	}{
		{
			playlist.Playlist{ID: "WL", Title: "Watch Later", IsSpecial: true, Privacy: playlist.PrivacyPrivate},
			[]string{"Concert stream", "Conference keynote"},
		},
		{
			playlist.Playlist{ID: "dry-music", Title: "Music", Privacy: playlist.PrivacyPrivate},
			[]string{"Morning mix", "Late night set", "Acoustic session"},
		},
		{
			playlist.Playlist{ID: "dry-talks", Title: "Talks", Privacy: playlist.PrivacyUnlisted},
			[]string{"Systems talk", "Database internals"},
		},
	}

	added := time.Now().Add(-90 * 24 * time.Hour)

	for _, seed := range seeds {
		p := seed.p
		p.ItemCount = len(seed.titles)
		r.playlists[p.ID] = &p

		for i, title := range seed.titles {
			r.itemSeq++
			r.videos[p.ID] = append(r.videos[p.ID], playlist.Video{
				ID:             fmt.Sprintf("dryvid-%s-%d", p.ID, i),
				PlaylistItemID: fmt.Sprintf("dryitem-%d", r.itemSeq),
				Title:          title,
				ChannelTitle:   "Dry Run Channel",
				Position:       i,
				Duration:       "PT12M34S",
				ViewCount:      int64(1000 * (i + 1)),
				AddedAt:        added.Add(time.Duration(i) * 24 * time.Hour),
				PlaylistID:     p.ID,
			})
		}
	}
}

func (r *DryRunRemote) charge(cost int) error {
	if !r.quota.Spend(cost) {
		return engine.ErrQuotaExceeded
	}

	return nil
}

// QuotaRemaining implements engine.RemoteAPI.
func (r *DryRunRemote) QuotaRemaining() int { return r.quota.Remaining() }

// QuotaUsed returns the units spent today.
func (r *DryRunRemote) QuotaUsed() int { return r.quota.Used() }

// QuotaLimit returns the daily budget.
func (r *DryRunRemote) QuotaLimit() int { return r.quota.Limit() }

// AddVideo appends a membership to the target playlist.
func (r *DryRunRemote) AddVideo(_ context.Context, videoID, playlistID string) (string, error) {
	if err := r.charge(engine.CostInsert); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.playlists[playlistID]
	if !ok {
		return "", &engine.RemoteError{Status: 404, Message: "playlist not found: " + playlistID}
	}

	r.itemSeq++
	itemID := fmt.Sprintf("dryitem-%d", r.itemSeq)

	r.videos[playlistID] = append(r.videos[playlistID], playlist.Video{
		ID:             videoID,
		PlaylistItemID: itemID,
		Title:          videoID,
		Position:       len(r.videos[playlistID]),
		AddedAt:        time.Now(),
		PlaylistID:     playlistID,
	})
	p.ItemCount++

	r.debugf("[DRYRUN] Added %s to %s as %s", videoID, playlistID, itemID)

	return itemID, nil
}

// RemoveVideo deletes a membership by playlist-item id.
func (r *DryRunRemote) RemoveVideo(_ context.Context, playlistItemID string) error {
	if err := r.charge(engine.CostDelete); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for plID, videos := range r.videos {
		for i, v := range videos {
			if v.PlaylistItemID != playlistItemID {
				continue
			}

			r.videos[plID] = append(videos[:i], videos[i+1:]...)
			r.playlists[plID].ItemCount--
			r.debugf("[DRYRUN] Removed item %s from %s", playlistItemID, plID)

			return nil
		}
	}

	return &engine.RemoteError{Status: 404, Message: "playlist item not found: " + playlistItemID}
}

// RenamePlaylist updates a playlist title.
func (r *DryRunRemote) RenamePlaylist(_ context.Context, playlistID, title string) error {
	if err := r.charge(engine.CostUpdate); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.playlists[playlistID]
	if !ok {
		return &engine.RemoteError{Status: 404, Message: "playlist not found: " + playlistID}
	}

	p.Title = title

	return nil
}

// RenameVideo updates a video title everywhere it appears.
func (r *DryRunRemote) RenameVideo(_ context.Context, videoID, title string) error {
	if err := r.charge(engine.CostUpdate); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	found := false

	for plID, videos := range r.videos {
		for i := range videos {
			if videos[i].ID == videoID {
				r.videos[plID][i].Title = title
				found = true
			}
		}
	}

	if !found {
		return &engine.RemoteError{Status: 404, Message: "video not found: " + videoID}
	}

	return nil
}

// CreatePlaylist creates a playlist and returns its id.
func (r *DryRunRemote) CreatePlaylist(_ context.Context, title, description string, privacy playlist.Privacy) (string, error) {
	if err := r.charge(engine.CostInsert); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.plSeq++
	id := fmt.Sprintf("drypl-%d", r.plSeq)

	r.playlists[id] = &playlist.Playlist{
		ID:          id,
		Title:       title,
		Description: description,
		Privacy:     privacy,
	}

	return id, nil
}

// DeletePlaylist deletes a playlist by id.
func (r *DryRunRemote) DeletePlaylist(_ context.Context, playlistID string) error {
	if err := r.charge(engine.CostDelete); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.playlists[playlistID]; !ok {
		return &engine.RemoteError{Status: 404, Message: "playlist not found: " + playlistID}
	}

	delete(r.playlists, playlistID)
	delete(r.videos, playlistID)

	return nil
}

// ListPlaylists returns the in-memory playlists.
func (r *DryRunRemote) ListPlaylists(context.Context) ([]playlist.Playlist, error) {
	if err := r.charge(engine.CostList); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]playlist.Playlist, 0, len(r.playlists))
	for _, p := range r.playlists {
		out = append(out, *p)
	}

	sortPlaylists(out)

	return out, nil
}

// ListVideos returns the in-memory videos of a playlist.
func (r *DryRunRemote) ListVideos(_ context.Context, playlistID string) ([]playlist.Video, error) {
	if err := r.charge(engine.CostList); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	videos := r.videos[playlistID]

	out := make([]playlist.Video, len(videos))
	copy(out, videos)

	return out, nil
}

// sortPlaylists orders special containers first, then alphabetical.
func sortPlaylists(playlists []playlist.Playlist) {
	sort.Slice(playlists, func(i, j int) bool {
		if playlists[i].IsSpecial != playlists[j].IsSpecial {
			return playlists[i].IsSpecial
		}

		return playlists[i].Title < playlists[j].Title
	})
}
