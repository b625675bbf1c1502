package main

import "fmt"

// Square is the linearized index of a board position, 0..24 in row-major
// order counting from the bottom row. Square 0 is a1, square 24 is e5.
type Square int

const (
	boardSide    = 5
	boardSquares = boardSide * boardSide
)

func (s Square) Valid() bool {
	return s >= 0 && s < boardSquares
}

// Col returns the column letter 'a'..'e'.
func (s Square) Col() byte {
	return byte('a' + int(s)%boardSide)
}

// Row returns the row digit '1'..'5'.
func (s Square) Row() byte {
	return byte('1' + int(s)/boardSide)
}

func (s Square) String() string {
	return string([]byte{s.Col(), s.Row()})
}

func SquareAt(col, row byte) (Square, bool) {
	if col < 'a' || col > 'e' || row < '1' || row > '5' {
		return 0, false
	}
	return Square(int(row-'1')*boardSide + int(col-'a')), true
}

func ParseSquare(text string) (Square, error) {
	if len(text) != 2 {
		return 0, fmt.Errorf("bad square %q", text)
	}
	sq, ok := SquareAt(text[0], text[1])
	if !ok {
		return 0, fmt.Errorf("bad square %q", text)
	}
	return sq, nil
}

// jumpedSquare returns the square hopped over by a jump from one square to
// another. The jump-neighbor pairs in the adjacency tables were chosen so
// that the jumped square is always the midpoint in linear index space; this
// does not hold for arbitrary square pairs, so only call it for pairs drawn
// from jumpTargets.
func jumpedSquare(from, to Square) Square {
	diff := int(to) - int(from)
	if diff < 0 {
		diff = -diff
	}
	lo := from
	if to < from {
		lo = to
	}
	return lo + Square(diff/2)
}
