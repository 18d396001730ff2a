package entity

import (
	"fmt"

	"github.com/rocketscienceinc/tictactoe-session/internal/apperror"
)

const BoardSize = 3

// Snapshot is a read-only copy of the board cells, indexed [row][col].
type Snapshot [BoardSize][BoardSize]Mark

// Board holds the cells of one game. It is not safe for concurrent use; the
// session that owns it serialises access.
type Board struct {
	cells Snapshot
}

func NewBoard() *Board {
	return &Board{}
}

// Place puts mark into the cell at row, col. The cell must be empty.
func (that *Board) Place(row, col int, mark Mark) error {
	if !inRange(row) || !inRange(col) {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrInvalidCoordinate, row, col)
	}

	if mark != MarkA && mark != MarkB {
		return fmt.Errorf("%w: %d", apperror.ErrInvalidMark, mark)
	}

	if that.cells[row][col] != Empty {
		return fmt.Errorf("%w: row %d col %d", apperror.ErrCellOccupied, row, col)
	}

	that.cells[row][col] = mark

	return nil
}

func (that *Board) Reset() {
	that.cells = Snapshot{}
}

func (that *Board) Snapshot() Snapshot {
	return that.cells
}

func (that *Board) At(row, col int) Mark {
	if !inRange(row) || !inRange(col) {
		return Empty
	}
	return that.cells[row][col]
}

func (that Snapshot) Full() bool {
	for _, row := range that {
		for _, cell := range row {
			if cell == Empty {
				return false
			}
		}
	}
	return true
}

func (that Snapshot) Empty() bool {
	return that == Snapshot{}
}

func inRange(v int) bool {
	return v >= 0 && v < BoardSize
}
