// ABOUTME: Clipboard staging buffer with cut/copy provenance
// ABOUTME: Cut and copy replace contents; a clipboard never mixes kinds

package engine

import "yanger/playlist"

// ClipKind is the provenance of clipboard contents.
type ClipKind int

// Clipboard operation kinds.
const (
	ClipNone ClipKind = iota
	ClipCopy
	ClipCut
)

func (k ClipKind) String() string {
	switch k {
	case ClipCopy:
		return "copy"
	case ClipCut:
		return "cut"
	default:
		return "none"
	}
}

// ClipboardItem is one staged video with its source playlist.
type ClipboardItem struct {
	Video            playlist.Video
	SourcePlaylistID string
	Kind             ClipKind
}

// Clipboard holds the videos staged by the last cut or copy. It never
// talks to the remote; the paste operation reads it at execute time.
type Clipboard struct {
	items []ClipboardItem
}

// NewClipboard returns an empty clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

// Cut replaces the clipboard contents with videos tagged as cut.
func (c *Clipboard) Cut(videos []playlist.Video, sourcePlaylistID string) {
	c.stage(videos, sourcePlaylistID, ClipCut)
}

// Copy replaces the clipboard contents with videos tagged as copied.
func (c *Clipboard) Copy(videos []playlist.Video, sourcePlaylistID string) {
	c.stage(videos, sourcePlaylistID, ClipCopy)
}

func (c *Clipboard) stage(videos []playlist.Video, sourcePlaylistID string, kind ClipKind) {
	c.items = make([]ClipboardItem, 0, len(videos))
	for _, v := range videos {
		c.items = append(c.items, ClipboardItem{Video: v, SourcePlaylistID: sourcePlaylistID, Kind: kind})
	}
}

// Clear empties the clipboard.
func (c *Clipboard) Clear() {
	c.items = nil
}

// IsEmpty reports whether the clipboard holds no items.
func (c *Clipboard) IsEmpty() bool {
	return len(c.items) == 0
}

// Len returns the number of staged items.
func (c *Clipboard) Len() int {
	return len(c.items)
}

// OperationKind returns the kind of the staged items (ClipNone if empty).
func (c *Clipboard) OperationKind() ClipKind {
	if len(c.items) == 0 {
		return ClipNone
	}

	return c.items[0].Kind
}

// Items returns the staged items.
func (c *Clipboard) Items() []ClipboardItem {
	out := make([]ClipboardItem, len(c.items))
	copy(out, c.items)

	return out
}

// Videos returns the staged videos in order.
func (c *Clipboard) Videos() []playlist.Video {
	out := make([]playlist.Video, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item.Video)
	}

	return out
}
