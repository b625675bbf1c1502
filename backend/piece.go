package main

import (
	"fmt"
	"strings"
)

type Piece int

const (
	Empty Piece = iota
	White
	Black
)

func (p Piece) Opposite() Piece {
	switch p {
	case White:
		return Black
	case Black:
		return White
	default:
		return Empty
	}
}

func (p Piece) IsPiece() bool {
	return p == White || p == Black
}

// Glyph returns the one-character board notation ('w', 'b' or '-').
func (p Piece) Glyph() byte {
	switch p {
	case White:
		return 'w'
	case Black:
		return 'b'
	default:
		return '-'
	}
}

func (p Piece) String() string {
	switch p {
	case White:
		return "White"
	case Black:
		return "Black"
	default:
		return "Empty"
	}
}

func PieceFromString(s string) (Piece, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return White, nil
	case "black", "b":
		return Black, nil
	case "empty", "-":
		return Empty, nil
	default:
		return Empty, fmt.Errorf("not a piece color: %q", s)
	}
}

func pieceFromGlyph(ch byte) (Piece, bool) {
	switch ch {
	case 'w', 'W':
		return White, true
	case 'b', 'B':
		return Black, true
	case '-':
		return Empty, true
	default:
		return Empty, false
	}
}
