// ABOUTME: Defines Video struct and display formatting for playlist items
// ABOUTME: Provides duration and view-count formatters used by the TUI columns

package playlist

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Video represents a video inside a playlist.
//
// ID is the video's global identity and is stable across playlists.
// PlaylistItemID identifies this video's membership in one specific
// playlist; it is required to remove the video from that playlist and is
// invalidated by any move or delete.
type Video struct {
	ID             string // Global video id
	PlaylistItemID string // Membership id within the current playlist
	Title          string
	ChannelTitle   string
	Position       int    // 0-based position within the playlist
	Duration       string // ISO 8601 duration (e.g. "PT4M13S")
	ViewCount      int64
	AddedAt        time.Time // When the video was added to the playlist
	PlaylistID     string    // Playlist this membership belongs to
}

// URL returns the watch URL for the video.
func (v Video) URL() string {
	return "https://www.youtube.com/watch?v=" + v.ID
}

// FormatDuration renders the ISO 8601 duration as h:mm:ss or m:ss.
// Returns "--:--" when no duration is known.
func (v Video) FormatDuration() string {
	if v.Duration == "" {
		return "--:--"
	}

	d := v.Duration
	if !strings.HasPrefix(d, "PT") {
		return d
	}
	d = d[2:]

	var hours, minutes, seconds int

	if i := strings.Index(d, "H"); i >= 0 {
		hours, _ = strconv.Atoi(d[:i])
		d = d[i+1:]
	}

	if i := strings.Index(d, "M"); i >= 0 {
		minutes, _ = strconv.Atoi(d[:i])
		d = d[i+1:]
	}

	if i := strings.Index(d, "S"); i >= 0 {
		seconds, _ = strconv.Atoi(d[:i])
	}

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}

	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// FormatViews renders the view count in compact form (e.g. "1.2M views").
func (v Video) FormatViews() string {
	count := v.ViewCount

	switch {
	case count >= 1_000_000_000:
		return fmt.Sprintf("%.1fB views", float64(count)/1_000_000_000)
	case count >= 1_000_000:
		return fmt.Sprintf("%.1fM views", float64(count)/1_000_000)
	case count >= 1_000:
		return fmt.Sprintf("%.1fK views", float64(count)/1_000)
	default:
		return fmt.Sprintf("%d views", count)
	}
}

func (v Video) String() string {
	return fmt.Sprintf("%s [%s]", v.Title, v.FormatDuration())
}
