// ABOUTME: Selection model tracking cursor, marks, and visual range
// ABOUTME: All operations are total over possibly-empty item lists

package engine

import "sort"

// VisualRange is a transient anchor-to-cursor selection overlay. While
// active, the effective mark set is the persisted marks plus (or minus,
// in unmark mode) the inclusive anchor..cursor range. Committing on exit
// materializes the range into the mark set.
type VisualRange struct {
	Anchor int
	Active bool
	Unmark bool
}

// SelectionModel tracks the cursor position, per-item marks, and an
// optional visual range over the currently loaded item list. Mark indices
// are only meaningful for that list and are cleared when it is replaced.
type SelectionModel struct {
	cursor int
	count  int
	marks  map[int]bool
	visual VisualRange
}

// NewSelectionModel creates a selection over count items.
func NewSelectionModel(count int) *SelectionModel {
	return &SelectionModel{count: count, marks: map[int]bool{}}
}

// SetItemCount replaces the item list: marks and any visual range are
// invalidated, and the cursor is clamped into the new list.
func (s *SelectionModel) SetItemCount(count int) {
	s.count = count
	s.marks = map[int]bool{}
	s.visual = VisualRange{}
	s.clampCursor()
}

// Cursor returns the current cursor index (0 on an empty list).
func (s *SelectionModel) Cursor() int { return s.cursor }

// Count returns the item count.
func (s *SelectionModel) Count() int { return s.count }

// MoveCursor moves by delta, clamped to [0, count-1]. No-op on empty lists.
func (s *SelectionModel) MoveCursor(delta int) {
	s.cursor += delta
	s.clampCursor()
}

// MoveToTop moves the cursor to the first item.
func (s *SelectionModel) MoveToTop() {
	s.cursor = 0
}

// MoveToBottom moves the cursor to the last item.
func (s *SelectionModel) MoveToBottom() {
	if s.count > 0 {
		s.cursor = s.count - 1
	}
}

// ToggleMark flips exactly the mark at index. The cursor does not move:
// marking must not auto-advance.
func (s *SelectionModel) ToggleMark(index int) {
	if index < 0 || index >= s.count {
		return
	}

	if s.marks[index] {
		delete(s.marks, index)
	} else {
		s.marks[index] = true
	}
}

// ToggleMarkAtCursor flips the mark under the cursor.
func (s *SelectionModel) ToggleMarkAtCursor() {
	if s.count > 0 {
		s.ToggleMark(s.cursor)
	}
}

// EnterVisual opens a visual range anchored at the cursor. At most one of
// visual mode and a pending toggle is open at a time; re-entering while
// active is a no-op.
func (s *SelectionModel) EnterVisual(unmarkMode bool) {
	if s.visual.Active || s.count == 0 {
		return
	}

	s.visual = VisualRange{Anchor: s.cursor, Active: true, Unmark: unmarkMode}
}

// VisualActive reports whether a visual range is open.
func (s *SelectionModel) VisualActive() bool { return s.visual.Active }

// ExitVisual closes the visual range. With commit, the inclusive
// anchor..cursor range is materialized into the mark set (as marks, or as
// un-marks in unmark mode); without, the mark set is left untouched.
func (s *SelectionModel) ExitVisual(commit bool) {
	if !s.visual.Active {
		return
	}

	if commit {
		lo, hi := s.visualBounds()
		for i := lo; i <= hi; i++ {
			if s.visual.Unmark {
				delete(s.marks, i)
			} else {
				s.marks[i] = true
			}
		}
	}

	s.visual = VisualRange{}
}

// InvertSelection flips every mark in the current item list.
func (s *SelectionModel) InvertSelection() {
	for i := 0; i < s.count; i++ {
		if s.marks[i] {
			delete(s.marks, i)
		} else {
			s.marks[i] = true
		}
	}
}

// ClearMarks removes all marks.
func (s *SelectionModel) ClearMarks() {
	s.marks = map[int]bool{}
}

// IsMarked reports the persisted mark at index (ignores the visual overlay).
func (s *SelectionModel) IsMarked(index int) bool { return s.marks[index] }

// EffectiveMarks returns the materialized view of the selection: the
// persisted marks combined with the active visual range. Used for
// rendering and MarkedIndices only.
func (s *SelectionModel) EffectiveMarks() map[int]bool {
	out := make(map[int]bool, len(s.marks))
	for i := range s.marks {
		out[i] = true
	}

	if s.visual.Active {
		lo, hi := s.visualBounds()
		for i := lo; i <= hi; i++ {
			if s.visual.Unmark {
				delete(out, i)
			} else {
				out[i] = true
			}
		}
	}

	return out
}

// MarkedIndices returns the effective marks in ascending order.
func (s *SelectionModel) MarkedIndices() []int {
	marks := s.EffectiveMarks()

	out := make([]int, 0, len(marks))
	for i := range marks {
		out = append(out, i)
	}

	sort.Ints(out)

	return out
}

// MarkedCount returns the number of effective marks.
func (s *SelectionModel) MarkedCount() int {
	return len(s.EffectiveMarks())
}

func (s *SelectionModel) visualBounds() (int, int) {
	lo, hi := s.visual.Anchor, s.cursor
	if lo > hi {
		lo, hi = hi, lo
	}

	return lo, hi
}

func (s *SelectionModel) clampCursor() {
	if s.cursor < 0 || s.count == 0 {
		s.cursor = 0
		return
	}

	if s.cursor >= s.count {
		s.cursor = s.count - 1
	}
}
