package main

import (
	"fmt"
	"strings"
)

// standardSetup is the initial position in row-major order from the bottom
// row: two full rows of White, the mixed middle row, two full rows of Black.
const standardSetup = "wwwwwwwwwwbb-wwbbbbbbbbbb"

// blockPair records that the piece currently on At may not step laterally
// onto Barred. Pairs are keyed by the piece's current square and remapped
// when it moves again; a jump by that piece discards its pairs.
type blockPair struct {
	At     Square
	Barred Square
}

// Board is the full mutable game position: 25 cells, side to move,
// game-over bookkeeping and the horizontal-oscillation block relation.
type Board struct {
	cells    [boardSquares]Piece
	toMove   Piece
	gameOver bool
	winner   Piece
	blocks   []blockPair
}

func NewBoard() *Board {
	b := &Board{}
	b.Reset()
	return b
}

// Reset restores the standard starting position with White to move.
func (b *Board) Reset() {
	if err := b.SetPieces(standardSetup, White); err != nil {
		panic(err)
	}
}

// SetPieces initializes the position from a 25-character layout string of
// 'w', 'b' and '-' (whitespace ignored), row-major from the bottom row.
// On any validation error the board is left untouched.
func (b *Board) SetPieces(layout string, next Piece) error {
	if !next.IsPiece() {
		return fmt.Errorf("bad side to move: %s", next)
	}
	stripped := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, layout)
	if len(stripped) != boardSquares {
		return fmt.Errorf("bad board description: want %d squares, got %d", boardSquares, len(stripped))
	}
	var cells [boardSquares]Piece
	for k := 0; k < boardSquares; k++ {
		piece, ok := pieceFromGlyph(stripped[k])
		if !ok {
			return fmt.Errorf("bad board description: invalid character %q", stripped[k])
		}
		cells[k] = piece
	}
	b.cells = cells
	b.toMove = next
	b.gameOver = false
	b.winner = Empty
	b.blocks = nil
	return nil
}

func (b *Board) Get(sq Square) Piece {
	return b.cells[sq]
}

func (b *Board) set(sq Square, v Piece) {
	b.cells[sq] = v
}

func (b *Board) ToMove() Piece {
	return b.toMove
}

func (b *Board) setToMove(p Piece) {
	b.toMove = p
}

func (b *Board) GameOver() bool {
	return b.gameOver
}

// Winner is meaningful only once GameOver reports true.
func (b *Board) Winner() Piece {
	return b.winner
}

func (b *Board) Clone() *Board {
	clone := &Board{
		cells:    b.cells,
		toMove:   b.toMove,
		gameOver: b.gameOver,
		winner:   b.winner,
	}
	clone.blocks = append([]blockPair(nil), b.blocks...)
	return clone
}

// MaterialScore is the static evaluation: White piece count minus Black
// piece count.
func (b *Board) MaterialScore() int {
	score := 0
	for k := 0; k < boardSquares; k++ {
		switch b.cells[k] {
		case White:
			score++
		case Black:
			score--
		}
	}
	return score
}

// Layout returns the position as a 25-character setup string, the same
// form SetPieces accepts.
func (b *Board) Layout() string {
	var sb strings.Builder
	for k := 0; k < boardSquares; k++ {
		sb.WriteByte(b.cells[k].Glyph())
	}
	return sb.String()
}

// Render returns the fixed-width text depiction, top row first, one glyph
// per square. With legend, column letters and row digits frame the grid.
func (b *Board) Render(legend bool) string {
	var sb strings.Builder
	if legend {
		sb.WriteString("  a b c d e")
	}
	for r := boardSide - 1; r >= 0; r-- {
		if legend || r < boardSide-1 {
			sb.WriteByte('\n')
		}
		if legend {
			sb.WriteByte(byte('1' + r))
		} else {
			sb.WriteByte(' ')
		}
		for c := 0; c < boardSide; c++ {
			sb.WriteByte(' ')
			sb.WriteByte(b.cells[r*boardSide+c].Glyph())
		}
	}
	return sb.String()
}

func (b *Board) String() string {
	return b.Render(false)
}

// blocked reports whether a lateral step from one square to another is
// currently forbidden by the oscillation rule.
func (b *Board) blocked(from, to Square) bool {
	for _, pair := range b.blocks {
		if pair.At == from && pair.Barred == to {
			return true
		}
	}
	return false
}

func (b *Board) addBlock(at, barred Square) {
	b.blocks = append(b.blocks, blockPair{At: at, Barred: barred})
}

// remapBlocks follows a piece from old to curr so its pairs keep tracking
// the piece rather than the square it left.
func (b *Board) remapBlocks(old, curr Square) {
	for i := range b.blocks {
		if b.blocks[i].At == old {
			b.blocks[i].At = curr
		}
	}
}

// clearBlocks drops every pair keyed on sq; called when the piece there
// jumps, which re-opens the lateral step it had denied itself.
func (b *Board) clearBlocks(sq Square) {
	kept := b.blocks[:0]
	for _, pair := range b.blocks {
		if pair.At != sq {
			kept = append(kept, pair)
		}
	}
	b.blocks = kept
}

func (b *Board) copyBlocks() []blockPair {
	return append([]blockPair(nil), b.blocks...)
}

func (b *Board) setBlocks(pairs []blockPair) {
	b.blocks = pairs
}

// Apply commits a full move, simple step or complete jump chain, and flips
// the side to move. The move must already have been validated.
func (b *Board) Apply(m *Move) {
	side := b.toMove
	b.set(m.from, Empty)
	b.set(m.to, side)
	if m.IsLateral() {
		b.addBlock(m.to, m.from)
	}
	if m.IsJump() {
		b.clearBlocks(m.from)
		b.set(jumpedSquare(m.from, m.to), Empty)
	} else {
		b.remapBlocks(m.from, m.to)
	}
	for seg := m.tail; seg != nil; seg = seg.tail {
		b.set(seg.from, Empty)
		b.set(jumpedSquare(seg.from, seg.to), Empty)
		b.set(seg.to, side)
	}
	b.toMove = side.Opposite()
}

// applySearch is the lighter mutator used by the searcher: it moves pieces
// and empties jumped squares without flipping the side to move. Block
// bookkeeping is advanced but not undoable; the searcher snapshots the
// block relation around every explored branch.
func (b *Board) applySearch(m *Move) {
	side := b.toMove
	for seg := m; seg != nil; seg = seg.tail {
		b.set(seg.from, Empty)
		if seg.IsJump() {
			b.set(jumpedSquare(seg.from, seg.to), Empty)
		}
		b.set(seg.to, side)
	}
	if m.IsJump() {
		b.clearBlocks(m.from)
		return
	}
	if m.IsLateral() {
		b.addBlock(m.to, m.from)
	}
	b.remapBlocks(m.from, m.to)
}

// undoSearch exactly reverses applySearch's cell mutations by walking the
// chain backwards. The caller restores the block relation from its own
// snapshot; the side to move must be the same as when applySearch ran.
func (b *Board) undoSearch(m *Move) {
	side := b.toMove
	segs := m.segments()
	for i := len(segs) - 1; i >= 0; i-- {
		seg := segs[i]
		b.set(seg.to, Empty)
		if seg.IsJump() {
			b.set(jumpedSquare(seg.from, seg.to), side.Opposite())
		}
		b.set(seg.from, side)
	}
}

// CheckGameOver runs the terminal-condition check for the side to move:
// no pieces left, or no legal move and no jump. On a terminal position it
// latches gameOver and awards the win to the opponent.
func (b *Board) CheckGameOver() bool {
	if b.gameOver {
		return true
	}
	if b.wipedOut() || b.cantMove() {
		b.winner = b.toMove.Opposite()
		b.gameOver = true
		return true
	}
	return false
}

func (b *Board) wipedOut() bool {
	for k := 0; k < boardSquares; k++ {
		if b.cells[k] == b.toMove {
			return false
		}
	}
	return true
}

func (b *Board) cantMove() bool {
	return len(b.Moves()) == 0 && !b.JumpPossible()
}
