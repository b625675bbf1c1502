package main

import (
	"fmt"
	"strings"
)

// Move is one step or one full jump sequence. A multi-jump is a singly
// linked chain of segments; tail is nil for the last segment. Moves are
// immutable once built: Concat allocates a fresh chain and never touches
// its operands.
type Move struct {
	from Square
	to   Square
	tail *Move
}

func NewMove(from, to Square, tail *Move) *Move {
	return &Move{from: from, to: to, tail: tail}
}

func (m *Move) From() Square { return m.from }
func (m *Move) To() Square   { return m.to }
func (m *Move) Tail() *Move  { return m.tail }

// IsJump reports whether the first segment hops over a square. Jump
// landings are two columns or two rows away; simple steps are one.
func (m *Move) IsJump() bool {
	dc := int(m.to.Col()) - int(m.from.Col())
	dr := int(m.to.Row()) - int(m.from.Row())
	return dc == 2 || dc == -2 || dr == 2 || dr == -2
}

// IsLateral reports whether the first segment is a non-jump step within a
// single row. Only lateral steps participate in the oscillation block.
func (m *Move) IsLateral() bool {
	return !m.IsJump() && m.from.Row() == m.to.Row()
}

// End returns the final landing square of the chain.
func (m *Move) End() Square {
	seg := m
	for seg.tail != nil {
		seg = seg.tail
	}
	return seg.to
}

// segments flattens the chain in play order.
func (m *Move) segments() []*Move {
	var out []*Move
	for seg := m; seg != nil; seg = seg.tail {
		out = append(out, seg)
	}
	return out
}

// CapturedSquares returns the jumped squares of the chain in play order,
// empty for a simple step.
func (m *Move) CapturedSquares() []Square {
	var out []Square
	for seg := m; seg != nil; seg = seg.tail {
		if seg.IsJump() {
			out = append(out, jumpedSquare(seg.from, seg.to))
		}
	}
	return out
}

// Concat joins a chain ending at some square with a chain starting there,
// producing a new chain with head's segments followed by tail's.
func Concat(head, tail *Move) *Move {
	if head == nil {
		return tail
	}
	return NewMove(head.from, head.to, Concat(head.tail, tail))
}

// Equals is structural over the full segment sequence.
func (m *Move) Equals(other *Move) bool {
	if m == nil || other == nil {
		return m == other
	}
	if m.from != other.from || m.to != other.to {
		return false
	}
	return m.tail.Equals(other.tail)
}

// String renders the chain in move notation: squares joined by dashes,
// with each shared square written once ("a3-a5-c3").
func (m *Move) String() string {
	var b strings.Builder
	b.WriteString(m.from.String())
	for seg := m; seg != nil; seg = seg.tail {
		b.WriteByte('-')
		b.WriteString(seg.to.String())
	}
	return b.String()
}

// ParseMove is the exact inverse of String. It checks only well-formedness
// (square syntax), not legality on any board.
func ParseMove(text string) (*Move, error) {
	parts := strings.Split(text, "-")
	if len(parts) < 2 {
		return nil, fmt.Errorf("bad move %q: need at least two squares", text)
	}
	squares := make([]Square, len(parts))
	for i, part := range parts {
		sq, err := ParseSquare(part)
		if err != nil {
			return nil, fmt.Errorf("bad move %q: %v", text, err)
		}
		squares[i] = sq
	}
	var mv *Move
	for i := len(squares) - 2; i >= 0; i-- {
		mv = NewMove(squares[i], squares[i+1], mv)
	}
	return mv, nil
}
