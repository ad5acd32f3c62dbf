// ABOUTME: Defines Playlist struct and privacy/mutability semantics
// ABOUTME: Special and virtual playlists reject remote mutation

// Package playlist provides the domain types for YouTube playlists and
// the videos they contain.
package playlist

import "fmt"

// Privacy is a playlist or video privacy status.
type Privacy string

// Privacy statuses supported by the remote API.
const (
	PrivacyPublic   Privacy = "public"
	PrivacyPrivate  Privacy = "private"
	PrivacyUnlisted Privacy = "unlisted"
)

// Playlist represents an ordered collection of videos.
type Playlist struct {
	ID          string
	Title       string
	Description string
	ItemCount   int
	Privacy     Privacy

	// Special playlists (Watch Later, History) are managed by YouTube and
	// reject mutation. Virtual playlists exist only locally (e.g. imported
	// from a Takeout archive) and have nothing remote to mutate.
	IsSpecial bool
	IsVirtual bool
}

// Mutable reports whether remote mutations may target this playlist.
func (p Playlist) Mutable() bool {
	return !p.IsSpecial && !p.IsVirtual
}

func (p Playlist) String() string {
	return fmt.Sprintf("%s (%d videos)", p.Title, p.ItemCount)
}
