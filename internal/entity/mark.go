package entity

import "fmt"

// Mark is the symbol a participant places on the board. The zero value is an
// empty cell.
type Mark uint8

const (
	Empty Mark = iota
	MarkA
	MarkB
)

// MarkForIndex returns the mark assigned to the participant slot. Slot 0
// always plays MarkA.
func MarkForIndex(index int) Mark {
	if index == 0 {
		return MarkA
	}
	return MarkB
}

// Index returns the participant slot that owns the mark, or -1 for Empty.
func (that Mark) Index() int {
	switch that {
	case MarkA:
		return 0
	case MarkB:
		return 1
	default:
		return -1
	}
}

func (that Mark) String() string {
	switch that {
	case MarkA:
		return "X"
	case MarkB:
		return "O"
	default:
		return ""
	}
}

func (that Mark) MarshalText() ([]byte, error) {
	return []byte(that.String()), nil
}

func (that *Mark) UnmarshalText(text []byte) error {
	switch string(text) {
	case "X":
		*that = MarkA
	case "O":
		*that = MarkB
	case "":
		*that = Empty
	default:
		return fmt.Errorf("unknown mark %q", text)
	}
	return nil
}
