// ABOUTME: Tests for viewport scrolling calculations
// ABOUTME: Covers top, middle, and bottom scroll phases

package tui

import "testing"

func TestCalculateOffset(t *testing.T) {
	tests := []struct {
		name       string
		height     int
		cursorPos  int
		totalItems int
		want       int
	}{
		{"empty list", 10, 0, 0, 0},
		{"zero height", 0, 5, 100, 0},
		{"cursor at top", 10, 0, 100, 0},
		{"cursor in top half", 10, 4, 100, 0},
		{"cursor at middle", 10, 5, 100, 0},
		{"cursor scrolling", 10, 50, 100, 45},
		{"cursor near bottom", 10, 99, 100, 90},
		{"cursor at bottom threshold", 10, 95, 100, 90},
		{"list shorter than viewport", 10, 3, 5, 0},
		{"list exactly viewport height", 10, 9, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewViewportManager(tt.height, tt.cursorPos, tt.totalItems)

			if got := vm.CalculateOffset(); got != tt.want {
				t.Errorf("CalculateOffset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCalculateOffsetAfterUpdates(t *testing.T) {
	vm := NewViewportManager(10, 0, 100)

	vm.SetCursorPos(50)
	if got := vm.CalculateOffset(); got != 45 {
		t.Errorf("offset after cursor move = %d, want 45", got)
	}

	// Shrinking the list pulls the viewport back.
	vm.SetTotalItems(20)
	vm.SetCursorPos(19)

	if got := vm.CalculateOffset(); got != 10 {
		t.Errorf("offset after shrink = %d, want 10", got)
	}

	vm.SetHeight(30)

	if got := vm.CalculateOffset(); got != 0 {
		t.Errorf("offset after grow = %d, want 0", got)
	}
}

func TestCursorAlwaysVisible(t *testing.T) {
	// Whatever the cursor position, it must land inside the rendered window.
	vm := NewViewportManager(10, 0, 57)

	for pos := 0; pos < 57; pos++ {
		vm.SetCursorPos(pos)

		offset := vm.CalculateOffset()
		if pos < offset || pos >= offset+10 {
			t.Fatalf("cursor %d outside viewport [%d, %d)", pos, offset, offset+10)
		}
	}
}
