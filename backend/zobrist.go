package main

import "sync"

// ZobristTable holds the random keys the position hash is built from: one
// key per (square, color), one for the side to move, and one per possible
// block pair so positions differing only in lateral-step history hash
// differently.
type ZobristTable struct {
	cells  [boardSquares * 2]uint64
	side   uint64
	blocks [boardSquares * boardSquares]uint64
}

var (
	zobristOnce  sync.Once
	zobristTable *ZobristTable
)

func GetZobrist() *ZobristTable {
	zobristOnce.Do(func() {
		rng := splitmix64{state: uint64(0x9e3779b97f4a7c15) ^ uint64(boardSquares)}
		table := &ZobristTable{}
		for i := range table.cells {
			table.cells[i] = rng.next()
		}
		table.side = rng.next()
		for i := range table.blocks {
			table.blocks[i] = rng.next()
		}
		zobristTable = table
	})
	return zobristTable
}

func (z *ZobristTable) piece(sq Square, color Piece) uint64 {
	idx := int(sq) * 2
	if color == Black {
		idx++
	}
	return z.cells[idx]
}

func (z *ZobristTable) block(at, barred Square) uint64 {
	return z.blocks[int(at)*boardSquares+int(barred)]
}

// hashKey computes the full position hash from scratch. The searcher
// rehashes per node rather than updating incrementally; the board is small
// enough that the difference never shows up in profiles.
func (b *Board) hashKey() uint64 {
	z := GetZobrist()
	var hash uint64
	for k := Square(0); k < boardSquares; k++ {
		if piece := b.Get(k); piece.IsPiece() {
			hash ^= z.piece(k, piece)
		}
	}
	if b.toMove == White {
		hash ^= z.side
	}
	for _, pair := range b.blocks {
		hash ^= z.block(pair.At, pair.Barred)
	}
	return hash
}

type splitmix64 struct {
	state uint64
}

func (s *splitmix64) next() uint64 {
	s.state += 0x9e3779b97f4a7c15
	z := s.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
