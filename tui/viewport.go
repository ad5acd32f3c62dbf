// ABOUTME: Viewport manager for cursor-to-middle scrolling
// ABOUTME: Implements vim/less style viewport scrolling for the video list

package tui

// ViewportManager handles cursor visibility and viewport scrolling
// Implements vim/less style scrolling: cursor moves to middle, then content scrolls
type ViewportManager struct {
	height     int // Viewport height in lines
	cursorPos  int // Current cursor position
	totalItems int // Total number of items
}

// NewViewportManager creates a new viewport manager
func NewViewportManager(height, cursorPos, totalItems int) *ViewportManager {
	return &ViewportManager{
		height:     height,
		cursorPos:  cursorPos,
		totalItems: totalItems,
	}
}

// SetHeight updates the viewport height
func (vm *ViewportManager) SetHeight(height int) {
	vm.height = height
}

// SetCursorPos updates the cursor position
func (vm *ViewportManager) SetCursorPos(pos int) {
	vm.cursorPos = pos
}

// SetTotalItems updates the total item count
func (vm *ViewportManager) SetTotalItems(total int) {
	vm.totalItems = total
}

// CalculateOffset computes the viewport Y offset to keep cursor visible
//
// Scrolling behavior:
// - Phase 1 (top): Cursor moves freely, viewport stays at 0
// - Phase 2 (middle): Cursor stays at middle, content scrolls
// - Phase 3 (bottom): Viewport shows end, cursor moves to bottom
func (vm *ViewportManager) CalculateOffset() int {
	if vm.totalItems == 0 || vm.height < 1 {
		return 0
	}

	middle := vm.height / 2

	// Phase 1: Cursor in top half - cursor moves, viewport stays at top
	if vm.cursorPos < middle {
		return 0
	}

	// Phase 2: Cursor in middle section - cursor stays at middle, content scrolls
	bottomThreshold := vm.totalItems - vm.height + middle
	if vm.cursorPos < bottomThreshold {
		return vm.cursorPos - middle
	}

	// Phase 3: Near bottom - viewport shows the last height items
	maxOffset := vm.totalItems - vm.height
	if maxOffset < 0 {
		maxOffset = 0
	}

	return maxOffset
}
