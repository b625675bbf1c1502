package main

import (
	"testing"
	"time"
)

// refMinimax is a plain minimax without pruning or caching, used as the
// oracle for the alpha-beta searcher.
func refMinimax(b *Board, depth, sense int) int {
	moves := b.Moves()
	if len(moves) == 0 {
		if b.ToMove() == White {
			return -winningValue
		}
		return winningValue
	}
	if depth == 0 {
		return b.MaterialScore()
	}
	best := searchInfinity
	if sense > 0 {
		best = -searchInfinity
	}
	side := b.ToMove()
	for _, m := range moves {
		snapshot := b.copyBlocks()
		b.applySearch(m)
		b.setToMove(side.Opposite())
		score := refMinimax(b, depth-1, -sense)
		b.setToMove(side)
		b.undoSearch(m)
		b.setBlocks(snapshot)
		if sense > 0 && score > best {
			best = score
		}
		if sense < 0 && score < best {
			best = score
		}
	}
	return best
}

func searchPosition(t *testing.T, layout string, next Piece, depth int, tt *TranspositionTable) (int, *Move) {
	t.Helper()
	b := NewBoard()
	if layout != "" {
		if err := b.SetPieces(layout, next); err != nil {
			t.Fatalf("SetPieces: %v", err)
		}
	}
	s := &searcher{
		board:  b,
		config: DefaultConfig(),
		tt:     tt,
		stats:  &SearchStats{Start: time.Now()},
	}
	sense := 1
	if next == Black {
		sense = -1
	}
	score := s.findMove(depth, true, sense, -searchInfinity, searchInfinity)
	return score, s.best
}

func TestAlphaBetaMatchesPlainMinimax(t *testing.T) {
	cases := []struct {
		layout string
		next   Piece
		depth  int
	}{
		{standardSetup, White, 3},
		{standardSetup, Black, 3},
		{"-bw--bb---------bb-------", White, 3},
		{"-bw--bb------------------", White, 4},
		{"-------w--------b-------b", White, 4},
		{"w-----------b------------", Black, 4},
	}
	for _, c := range cases {
		b := NewBoard()
		if err := b.SetPieces(c.layout, c.next); err != nil {
			t.Fatalf("SetPieces: %v", err)
		}
		sense := 1
		if c.next == Black {
			sense = -1
		}
		want := refMinimax(b, c.depth, sense)
		got, _ := searchPosition(t, c.layout, c.next, c.depth, nil)
		if got != want {
			t.Fatalf("layout %q depth %d: alpha-beta %d, plain minimax %d", c.layout, c.depth, got, want)
		}
	}
}

func TestSearcherPicksLongestCaptureAtDepthOne(t *testing.T) {
	// The three-capture chain wipes Black out and wins immediately; the
	// first such chain in generation order must be kept.
	_, best := searchPosition(t, "-bw--bb------------------", White, 1, nil)
	if best == nil {
		t.Fatalf("expected a best move")
	}
	if got := best.String(); got != "c1-a1-a3-c1" {
		t.Fatalf("best move = %s, want c1-a1-a3-c1", got)
	}
}

func TestFirstBestMoveWinsTies(t *testing.T) {
	// At depth 1 every opening move scores zero; the strict comparison
	// keeps the first move generated.
	_, best := searchPosition(t, standardSetup, White, 1, nil)
	if best == nil {
		t.Fatalf("expected a best move")
	}
	if got := best.String(); got != "b2-c3" {
		t.Fatalf("best move = %s, want b2-c3", got)
	}
}

func TestSearcherAvoidsLosingStep(t *testing.T) {
	// Stepping c2-c3 walks into b4-d2; at depth 2 White must prefer a
	// lateral step that concedes nothing.
	score, best := searchPosition(t, "-------w--------b-------b", White, 2, nil)
	if best == nil {
		t.Fatalf("expected a best move")
	}
	if got := best.String(); got == "c2-c3" {
		t.Fatalf("searcher stepped into the capture")
	}
	if score != -1 {
		t.Fatalf("score = %d, want -1", score)
	}
}

func TestTerminalPositionScores(t *testing.T) {
	score, best := searchPosition(t, "w------------------------", Black, 3, nil)
	if best != nil {
		t.Fatalf("no move should be chosen in a lost position")
	}
	if score != winningValue {
		t.Fatalf("Black cannot act, score = %d, want %d", score, winningValue)
	}
}

func TestTranspositionTableDoesNotChangeScore(t *testing.T) {
	for _, c := range []struct {
		layout string
		next   Piece
		depth  int
	}{
		{standardSetup, White, 4},
		{"-bw--bb---------bb-------", White, 3},
	} {
		plain, _ := searchPosition(t, c.layout, c.next, c.depth, nil)
		cached, _ := searchPosition(t, c.layout, c.next, c.depth, NewTranspositionTable(1<<12, 2))
		if plain != cached {
			t.Fatalf("layout %q: TT changed the score from %d to %d", c.layout, plain, cached)
		}
	}
}

func TestChooseMoveReturnsLegalMove(t *testing.T) {
	old := GetConfig()
	cfg := old
	cfg.AiDepth = 2
	configStore.Update(cfg)
	t.Cleanup(func() { configStore.Update(old) })

	b := NewBoard()
	ai := NewAIPlayer()
	move := ai.ChooseMove(b)
	if move == nil {
		t.Fatalf("expected a move from the opening position")
	}
	if ok, reason := b.ValidateMove(move); !ok {
		t.Fatalf("AI chose illegal move %s: %s", move, reason)
	}
}

func TestStartThinkingDeliversMove(t *testing.T) {
	old := GetConfig()
	cfg := old
	cfg.AiDepth = 2
	configStore.Update(cfg)
	t.Cleanup(func() { configStore.Update(old) })

	b := NewBoard()
	ai := NewAIPlayer()
	ai.StartThinking(b)
	deadline := time.Now().Add(10 * time.Second)
	for !ai.HasMoveReady() {
		if time.Now().After(deadline) {
			t.Fatalf("search did not finish in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
	move := ai.TakeMove()
	if move == nil {
		t.Fatalf("worker finished without a move")
	}
	if ok, reason := b.ValidateMove(move); !ok {
		t.Fatalf("AI chose illegal move %s: %s", move, reason)
	}
	if ai.HasMoveReady() {
		t.Fatalf("TakeMove must clear the ready flag")
	}
}
