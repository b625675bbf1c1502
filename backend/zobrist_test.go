package main

import "testing"

func TestHashDependsOnSideToMove(t *testing.T) {
	b := NewBoard()
	white := b.hashKey()
	b.setToMove(Black)
	black := b.hashKey()
	if white == black {
		t.Fatalf("side to move must change the hash")
	}
	b.setToMove(White)
	if b.hashKey() != white {
		t.Fatalf("hash did not return to its original value")
	}
}

func TestHashDependsOnBlockPairs(t *testing.T) {
	b := NewBoard()
	if err := b.SetPieces("------------w---------b-b", White); err != nil {
		t.Fatalf("SetPieces: %v", err)
	}
	before := b.hashKey()
	b.addBlock(13, 12)
	if b.hashKey() == before {
		t.Fatalf("a block pair must change the hash")
	}
	b.clearBlocks(13)
	if b.hashKey() != before {
		t.Fatalf("clearing the pair must restore the hash")
	}
}

func TestHashSurvivesSearchRoundTrip(t *testing.T) {
	cases := []struct {
		layout string
		next   Piece
		move   string
	}{
		{standardSetup, White, "c2-c3"},
		{"-bw--bb---------bb-------", White, "c1-a1-a3-c5-c3-a1"},
	}
	for _, c := range cases {
		b := NewBoard()
		if err := b.SetPieces(c.layout, c.next); err != nil {
			t.Fatalf("SetPieces: %v", err)
		}
		before := b.hashKey()
		m := mustParseMove(t, c.move)
		snapshot := b.copyBlocks()
		b.applySearch(m)
		if b.hashKey() == before {
			t.Fatalf("%s: applying a move left the hash unchanged", c.move)
		}
		b.undoSearch(m)
		b.setBlocks(snapshot)
		if b.hashKey() != before {
			t.Fatalf("%s: undo did not restore the hash", c.move)
		}
	}
}

func TestHashDistinguishesPositions(t *testing.T) {
	seen := make(map[uint64]string)
	for _, layout := range []string{
		standardSetup,
		"-bw--bb---------bb-------",
		"-bw--bb------------------",
		"w-----------b------------",
		"------------w---------b-b",
	} {
		b := NewBoard()
		if err := b.SetPieces(layout, White); err != nil {
			t.Fatalf("SetPieces: %v", err)
		}
		key := b.hashKey()
		if other, ok := seen[key]; ok {
			t.Fatalf("layouts %q and %q collide on %#x", layout, other, key)
		}
		seen[key] = layout
	}
}

func TestSplitmixIsDeterministic(t *testing.T) {
	a := splitmix64{state: 42}
	b := splitmix64{state: 42}
	for i := 0; i < 16; i++ {
		if a.next() != b.next() {
			t.Fatalf("same seed diverged at step %d", i)
		}
	}
}
