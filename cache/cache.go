// ABOUTME: TTL cache for remote playlist state, memory first then SQLite
// ABOUTME: The engine invalidates entries, the TUI read path consults them

package cache

import (
	"fmt"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"yanger/playlist"
)

// DefaultTTL is how long cached remote state is served before a refetch.
const DefaultTTL = 5 * time.Minute

const memPlaylistsKey = "playlists"

// Cache layers a TTL memory cache over an optional SQLite store. Reads
// hit memory first, then the store (respecting the TTL against its
// recorded fetch time), then miss. Writes go to both layers.
type Cache struct {
	ttl    time.Duration
	mem    *gocache.Cache
	store  *Store // nil when persistence is disabled
	debugf func(format string, args ...interface{})

	// statsMu guards the counters; lookups run concurrently from the
	// TUI's batched load commands.
	statsMu      sync.Mutex
	hits, misses int
}

// New creates a cache with the given TTL. store may be nil.
func New(ttl time.Duration, store *Store, debugf func(string, ...interface{})) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if debugf == nil {
		debugf = func(string, ...interface{}) {}
	}

	return &Cache{
		ttl:    ttl,
		mem:    gocache.New(ttl, 2*ttl),
		store:  store,
		debugf: debugf,
	}
}

// GetPlaylists returns the cached playlist collection, if fresh.
func (c *Cache) GetPlaylists() ([]playlist.Playlist, bool) {
	if v, ok := c.mem.Get(memPlaylistsKey); ok {
		c.recordHit()
		return v.([]playlist.Playlist), true
	}

	if c.store != nil {
		playlists, fetchedAt, err := c.store.LoadPlaylists()
		if err == nil && !fetchedAt.IsZero() && time.Since(fetchedAt) < c.ttl {
			c.recordHit()
			c.mem.Set(memPlaylistsKey, playlists, gocache.DefaultExpiration)

			return playlists, true
		}
	}

	c.recordMiss()

	return nil, false
}

// SetPlaylists stores the playlist collection in both layers.
func (c *Cache) SetPlaylists(playlists []playlist.Playlist) {
	c.mem.Set(memPlaylistsKey, playlists, gocache.DefaultExpiration)

	if c.store != nil {
		if err := c.store.SavePlaylists(playlists, time.Now()); err != nil {
			c.debugf("[CACHE] Persist playlists failed: %v", err)
		}
	}
}

// GetVideos returns the cached video list of one playlist, if fresh.
func (c *Cache) GetVideos(playlistID string) ([]playlist.Video, bool) {
	if v, ok := c.mem.Get(videoKey(playlistID)); ok {
		c.recordHit()
		return v.([]playlist.Video), true
	}

	if c.store != nil {
		videos, fetchedAt, err := c.store.LoadVideos(playlistID)
		if err == nil && !fetchedAt.IsZero() && time.Since(fetchedAt) < c.ttl {
			c.recordHit()
			c.mem.Set(videoKey(playlistID), videos, gocache.DefaultExpiration)

			return videos, true
		}
	}

	c.recordMiss()

	return nil, false
}

// SetVideos stores the video list of one playlist in both layers.
func (c *Cache) SetVideos(playlistID string, videos []playlist.Video) {
	c.mem.Set(videoKey(playlistID), videos, gocache.DefaultExpiration)

	if c.store != nil {
		if err := c.store.SaveVideos(playlistID, videos, time.Now()); err != nil {
			c.debugf("[CACHE] Persist videos of %s failed: %v", playlistID, err)
		}
	}
}

// InvalidatePlaylist drops the cached video list of one playlist.
// Implements engine.CacheInvalidator.
func (c *Cache) InvalidatePlaylist(playlistID string) {
	c.mem.Delete(videoKey(playlistID))

	if c.store != nil {
		if err := c.store.DeleteVideos(playlistID); err != nil {
			c.debugf("[CACHE] Invalidate %s failed: %v", playlistID, err)
		}
	}

	c.debugf("[CACHE] Invalidated videos of %s", playlistID)
}

// InvalidatePlaylists drops the cached playlist collection.
// Implements engine.CacheInvalidator.
func (c *Cache) InvalidatePlaylists() {
	c.mem.Delete(memPlaylistsKey)

	if c.store != nil {
		if err := c.store.DeletePlaylists(); err != nil {
			c.debugf("[CACHE] Invalidate playlists failed: %v", err)
		}
	}

	c.debugf("[CACHE] Invalidated playlist collection")
}

// Clear drops everything in both layers.
func (c *Cache) Clear() {
	c.mem.Flush()

	if c.store != nil {
		if err := c.store.Clear(); err != nil {
			c.debugf("[CACHE] Clear failed: %v", err)
		}
	}
}

// Stats describes cache effectiveness for the :cache status command.
func (c *Cache) Stats() string {
	c.statsMu.Lock()
	hits, misses := c.hits, c.misses
	c.statsMu.Unlock()

	total := hits + misses
	if total == 0 {
		return "cache: no lookups yet"
	}

	return fmt.Sprintf("cache: %d hits, %d misses (%.0f%% hit rate), %d entries in memory",
		hits, misses, float64(hits)/float64(total)*100, c.mem.ItemCount())
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.misses++
	c.statsMu.Unlock()
}

func videoKey(playlistID string) string {
	return "videos:" + playlistID
}
