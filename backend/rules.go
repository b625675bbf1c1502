package main

// Move legality and generation. Captures are mandatory and maximal: when
// any jump exists for the side to move, only jump chains are offered, and
// every offered chain runs until no further capture is possible from its
// landing square.

// ValidateMove checks a move for the current side to move and, when the
// move is illegal, says why.
func (b *Board) ValidateMove(m *Move) (bool, string) {
	if m == nil {
		return false, "no move"
	}
	if b.gameOver {
		return false, "game is over"
	}
	if b.Get(m.from) != b.toMove {
		return false, "no " + b.toMove.String() + " piece on " + m.from.String()
	}
	if m.IsJump() {
		if ok, reason := b.checkJump(m, true); !ok {
			return ok, reason
		}
		return true, ""
	}
	if b.JumpPossible() {
		return false, "capture available, must jump"
	}
	if m.tail != nil {
		return false, "only jumps may chain"
	}
	if b.Get(m.to) != Empty {
		return false, "square " + m.to.String() + " is occupied"
	}
	reachable := false
	for _, t := range stepTargets(b.toMove, m.from) {
		if t == m.to {
			reachable = true
			break
		}
	}
	if !reachable {
		return false, "cannot step from " + m.from.String() + " to " + m.to.String()
	}
	if m.IsLateral() && b.blocked(m.from, m.to) {
		return false, "lateral step " + m.String() + " would oscillate"
	}
	return true, ""
}

// checkJump validates a jump chain. With requireFull, the chain must also
// be maximal: it may not stop while another capture is possible from its
// landing square. The chain is replayed on a scratch copy so captured
// pieces vanish as each segment is checked.
func (b *Board) checkJump(m *Move, requireFull bool) (bool, string) {
	scratch := b.Clone()
	return scratch.checkJumpTail(m, requireFull)
}

func (b *Board) checkJumpTail(m *Move, requireFull bool) (bool, string) {
	if m == nil {
		return true, ""
	}
	if !m.IsJump() {
		return false, "segment " + m.from.String() + "-" + m.to.String() + " is not a jump"
	}
	side := b.toMove
	if b.Get(m.from) != side {
		return false, "no " + side.String() + " piece on " + m.from.String()
	}
	if b.Get(m.to) != Empty {
		return false, "square " + m.to.String() + " is occupied"
	}
	legal := false
	for _, t := range jumpTargets[m.from] {
		if t == m.to {
			legal = true
			break
		}
	}
	if !legal {
		return false, "cannot jump from " + m.from.String() + " to " + m.to.String()
	}
	mid := jumpedSquare(m.from, m.to)
	if b.Get(mid) != side.Opposite() {
		return false, "no " + side.Opposite().String() + " piece to capture on " + mid.String()
	}
	b.set(m.from, Empty)
	b.set(mid, Empty)
	b.set(m.to, side)
	if m.tail == nil {
		if requireFull && b.jumpPossibleFrom(m.to) {
			return false, "jump must continue from " + m.to.String()
		}
		return true, ""
	}
	if m.tail.from != m.to {
		return false, "chain breaks at " + m.to.String()
	}
	return b.checkJumpTail(m.tail, requireFull)
}

// JumpPossible reports whether the side to move has any capture.
func (b *Board) JumpPossible() bool {
	for k := Square(0); k < boardSquares; k++ {
		if b.Get(k) == b.toMove && b.jumpPossibleFrom(k) {
			return true
		}
	}
	return false
}

func (b *Board) jumpPossibleFrom(from Square) bool {
	side := b.toMove
	for _, to := range jumpTargets[from] {
		if b.Get(to) == Empty && b.Get(jumpedSquare(from, to)) == side.Opposite() {
			return true
		}
	}
	return false
}

// Moves enumerates every legal move for the side to move, jumps before
// steps per the forced-capture rule. A finished game has no moves.
func (b *Board) Moves() []*Move {
	if b.gameOver {
		return nil
	}
	if b.JumpPossible() {
		return b.jumpMoves()
	}
	return b.stepMoves()
}

func (b *Board) stepMoves() []*Move {
	var moves []*Move
	for k := Square(0); k < boardSquares; k++ {
		if b.Get(k) == b.toMove {
			moves = b.stepMovesFrom(moves, k)
		}
	}
	return moves
}

func (b *Board) stepMovesFrom(moves []*Move, from Square) []*Move {
	for _, to := range stepTargets(b.toMove, from) {
		if b.Get(to) != Empty {
			continue
		}
		m := NewMove(from, to, nil)
		if m.IsLateral() && b.blocked(from, to) {
			continue
		}
		moves = append(moves, m)
	}
	return moves
}

func (b *Board) jumpMoves() []*Move {
	var moves []*Move
	for k := Square(0); k < boardSquares; k++ {
		if b.Get(k) == b.toMove {
			moves = b.jumpChainsFrom(moves, k)
		}
	}
	return moves
}

// jumpChainsFrom appends every maximal jump chain starting at from. Each
// candidate segment is applied tentatively, continuations are collected
// recursively, then the segment is undone. A segment with no continuation
// is itself a complete chain; otherwise only the extended chains count.
func (b *Board) jumpChainsFrom(moves []*Move, from Square) []*Move {
	side := b.toMove
	for _, to := range jumpTargets[from] {
		mid := jumpedSquare(from, to)
		if b.Get(to) != Empty || b.Get(mid) != side.Opposite() {
			continue
		}
		captured := b.Get(mid)
		b.set(from, Empty)
		b.set(mid, Empty)
		b.set(to, side)
		var tails []*Move
		tails = b.jumpChainsFrom(tails, to)
		b.set(to, Empty)
		b.set(mid, captured)
		b.set(from, side)
		seg := NewMove(from, to, nil)
		if len(tails) == 0 {
			moves = append(moves, seg)
			continue
		}
		for _, tail := range tails {
			moves = append(moves, Concat(seg, tail))
		}
	}
	return moves
}
