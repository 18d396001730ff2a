package entity

type OutcomeStatus uint8

const (
	StatusOngoing OutcomeStatus = iota
	StatusWin
	StatusDraw
)

func (that OutcomeStatus) String() string {
	switch that {
	case StatusWin:
		return "win"
	case StatusDraw:
		return "draw"
	default:
		return "ongoing"
	}
}

func (that OutcomeStatus) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

// Outcome is the result of evaluating a board after a move. Winner is set only
// when Status is StatusWin.
type Outcome struct {
	Status OutcomeStatus `json:"status"`
	Winner Mark          `json:"winner,omitempty"`
}

func Ongoing() Outcome {
	return Outcome{Status: StatusOngoing}
}

func Win(winner Mark) Outcome {
	return Outcome{Status: StatusWin, Winner: winner}
}

func Draw() Outcome {
	return Outcome{Status: StatusDraw}
}

func (that Outcome) IsOngoing() bool {
	return that.Status == StatusOngoing
}

// WinnerIndex returns the participant slot of the winner, or -1.
func (that Outcome) WinnerIndex() int {
	if that.Status != StatusWin {
		return -1
	}
	return that.Winner.Index()
}

// WinLines lists every row, column and diagonal as [row, col] pairs.
var WinLines = [][BoardSize][2]int{
	{{0, 0}, {0, 1}, {0, 2}},
	{{1, 0}, {1, 1}, {1, 2}},
	{{2, 0}, {2, 1}, {2, 2}},
	{{0, 0}, {1, 0}, {2, 0}},
	{{0, 1}, {1, 1}, {2, 1}},
	{{0, 2}, {1, 2}, {2, 2}},
	{{0, 0}, {1, 1}, {2, 2}},
	{{0, 2}, {1, 1}, {2, 0}},
}

// Evaluate reports whether the board is won, drawn or still in play. A
// completed line wins even when the board is also full.
func Evaluate(board Snapshot) Outcome {
	for _, line := range WinLines {
		a := board[line[0][0]][line[0][1]]
		b := board[line[1][0]][line[1][1]]
		c := board[line[2][0]][line[2][1]]
		if a != Empty && a == b && b == c {
			return Win(a)
		}
	}

	// the game will continue until all the squares are full
	if !board.Full() {
		return Ongoing()
	}

	return Draw()
}
