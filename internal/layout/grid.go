// Package layout holds the grid arithmetic and the saved tile order.
package layout

import "math"

// Grid returns the column and row count for tileCount tiles. Zero tiles yield
// (0, 0), which means no grid template. Portrait viewports stack tiles in a
// single column.
func Grid(tileCount int, portrait bool) (cols, rows int) {
	if tileCount <= 0 {
		return 0, 0
	}

	switch {
	case portrait, tileCount == 1:
		cols = 1
	case tileCount <= 4:
		cols = 2
	case tileCount <= 6:
		cols = 3
	case tileCount <= 12:
		cols = 4
	default:
		cols = int(math.Ceil(math.Sqrt(float64(tileCount))))
	}

	rows = (tileCount + cols - 1) / cols
	return cols, rows
}
