// ABOUTME: Sort fields and in-memory sorting for video lists
// ABOUTME: Backs the TUI sort menu (o, then t/d/p/v/D)

package playlist

import (
	"sort"
	"strings"
)

// SortField selects the attribute videos are ordered by.
type SortField int

// Sort fields offered by the sort menu.
const (
	SortNone SortField = iota
	SortTitle
	SortDateAdded
	SortPosition
	SortViews
	SortDuration
)

func (f SortField) String() string {
	switch f {
	case SortTitle:
		return "title"
	case SortDateAdded:
		return "date added"
	case SortPosition:
		return "position"
	case SortViews:
		return "views"
	case SortDuration:
		return "duration"
	default:
		return "none"
	}
}

// SortVideos reorders videos in place by the given field. Title sorts
// ascending case-insensitively; date added and views sort descending
// (newest/most first), matching the remote UI's conventions.
func SortVideos(videos []Video, field SortField) {
	switch field {
	case SortTitle:
		sort.SliceStable(videos, func(i, j int) bool {
			return strings.ToLower(videos[i].Title) < strings.ToLower(videos[j].Title)
		})
	case SortDateAdded:
		sort.SliceStable(videos, func(i, j int) bool {
			return videos[i].AddedAt.After(videos[j].AddedAt)
		})
	case SortPosition:
		sort.SliceStable(videos, func(i, j int) bool {
			return videos[i].Position < videos[j].Position
		})
	case SortViews:
		sort.SliceStable(videos, func(i, j int) bool {
			return videos[i].ViewCount > videos[j].ViewCount
		})
	case SortDuration:
		sort.SliceStable(videos, func(i, j int) bool {
			return durationSeconds(videos[i].Duration) > durationSeconds(videos[j].Duration)
		})
	case SortNone:
	}
}

// durationSeconds parses an ISO 8601 duration into seconds for comparison.
func durationSeconds(iso string) int {
	if !strings.HasPrefix(iso, "PT") {
		return 0
	}

	total := 0
	n := 0

	for _, r := range iso[2:] {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
		case r == 'H':
			total += n * 3600
			n = 0
		case r == 'M':
			total += n * 60
			n = 0
		case r == 'S':
			total += n
			n = 0
		}
	}

	return total
}
