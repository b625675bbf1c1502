package main

import (
	"sync"
	"testing"
)

func TestTTStoreProbeRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1<<8, 2)
	tt.Store(0xdeadbeef, 4, 12, TTExact, "c2-c3")
	entry, ok := tt.Probe(0xdeadbeef)
	if !ok {
		t.Fatalf("stored entry not found")
	}
	if entry.Depth != 4 || entry.Score != 12 || entry.Flag != TTExact || entry.BestMove != "c2-c3" {
		t.Fatalf("entry mangled: %+v", entry)
	}
	if _, ok := tt.Probe(0xfeedface); ok {
		t.Fatalf("probe of an absent key must miss")
	}
}

func TestTTScoreHoldsWinningValue(t *testing.T) {
	tt := NewTranspositionTable(1<<4, 2)
	tt.Store(7, 3, winningValue, TTExact, "")
	tt.Store(9, 3, -winningValue, TTExact, "")
	if entry, _ := tt.Probe(7); int(entry.Score) != winningValue {
		t.Fatalf("winning score truncated to %d", entry.Score)
	}
	if entry, _ := tt.Probe(9); int(entry.Score) != -winningValue {
		t.Fatalf("losing score truncated to %d", entry.Score)
	}
}

func TestTTShallowerStoreKeepsDeeperEntry(t *testing.T) {
	tt := NewTranspositionTable(1<<4, 2)
	tt.Store(42, 6, 3, TTExact, "c2-c3")
	if _, overwrote := tt.Store(42, 2, -5, TTExact, "b2-c3"); overwrote {
		t.Fatalf("shallower result must not overwrite a deeper one")
	}
	entry, _ := tt.Probe(42)
	if entry.Depth != 6 || entry.Score != 3 {
		t.Fatalf("deep entry lost: %+v", entry)
	}
}

func TestTTDeeperStoreOverwrites(t *testing.T) {
	tt := NewTranspositionTable(1<<4, 2)
	tt.Store(42, 2, -5, TTUpper, "b2-c3")
	if _, overwrote := tt.Store(42, 6, 3, TTExact, "c2-c3"); !overwrote {
		t.Fatalf("deeper result should overwrite")
	}
	entry, _ := tt.Probe(42)
	if entry.Depth != 6 || entry.Flag != TTExact {
		t.Fatalf("deep entry did not land: %+v", entry)
	}
}

func TestTTExactUpgradesBoundAtSameDepth(t *testing.T) {
	tt := NewTranspositionTable(1<<4, 2)
	tt.Store(42, 4, 1, TTLower, "")
	tt.Store(42, 4, 2, TTExact, "c2-c3")
	entry, _ := tt.Probe(42)
	if entry.Flag != TTExact || entry.Score != 2 {
		t.Fatalf("exact result should replace a bound of equal depth: %+v", entry)
	}
}

func TestTTBucketEvictionPicksWeakestVictim(t *testing.T) {
	// Size 1 forces every key into the same bucket pair.
	tt := NewTranspositionTable(1, 2)
	tt.Store(1, 5, 0, TTExact, "")
	tt.Store(2, 2, 0, TTExact, "")
	replaced, _ := tt.Store(3, 4, 0, TTExact, "")
	if !replaced {
		t.Fatalf("full bucket with a shallower entry should evict")
	}
	if _, ok := tt.Probe(2); ok {
		t.Fatalf("shallow entry should have been the victim")
	}
	if _, ok := tt.Probe(1); !ok {
		t.Fatalf("deeper entry must survive")
	}
}

func TestTTCountClearAndDelete(t *testing.T) {
	tt := NewTranspositionTable(1<<6, 2)
	keys := []uint64{11, 22, 33, 44}
	for _, k := range keys {
		tt.Store(k, 1, 0, TTExact, "")
	}
	if got := tt.Count(); got != len(keys) {
		t.Fatalf("Count = %d, want %d", got, len(keys))
	}
	if !tt.DeleteByKey(22) {
		t.Fatalf("DeleteByKey missed a present key")
	}
	if tt.DeleteByKey(22) {
		t.Fatalf("DeleteByKey deleted twice")
	}
	if got := tt.Count(); got != len(keys)-1 {
		t.Fatalf("Count after delete = %d", got)
	}
	tt.Clear()
	if got := tt.Count(); got != 0 {
		t.Fatalf("Count after Clear = %d", got)
	}
}

func TestTTTopEntriesByHits(t *testing.T) {
	tt := NewTranspositionTable(1<<6, 2)
	tt.Store(1, 1, 0, TTExact, "")
	tt.Store(2, 1, 0, TTExact, "")
	tt.Store(3, 1, 0, TTExact, "")
	for i := 0; i < 3; i++ {
		tt.Probe(2)
	}
	tt.Probe(3)
	top, total := tt.TopEntriesByHits(0, 2)
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	if len(top) != 2 || top[0].Key != 2 || top[1].Key != 3 {
		t.Fatalf("unexpected top entries: %+v", top)
	}
	if rest, _ := tt.TopEntriesByHits(5, 2); len(rest) != 0 {
		t.Fatalf("offset past the end should be empty, got %+v", rest)
	}
}

func TestTTGenerationWrapStaysNonZero(t *testing.T) {
	tt := NewTranspositionTable(1<<4, 2)
	tt.gen.Store(^uint32(0))
	tt.NextGeneration()
	if got := tt.Generation(); got == 0 {
		t.Fatalf("generation wrapped to zero")
	}
}

func TestTTConcurrentProbeStore(t *testing.T) {
	tt := NewTranspositionTable(1<<10, 2)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(seed uint64) {
			defer wg.Done()
			rng := splitmix64{state: seed}
			for i := 0; i < 2000; i++ {
				key := rng.next()
				tt.Store(key, int(key%8), int(key%100), TTFlag(key%3), "")
				tt.Probe(key)
			}
		}(uint64(g + 1))
	}
	wg.Wait()
	if tt.Count() == 0 {
		t.Fatalf("concurrent stores left the table empty")
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[uint64]uint64{1: 1, 2: 2, 3: 4, 5: 8, 1000: 1024, 1 << 16: 1 << 16}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Fatalf("nextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestEnsureTTRebuildsOnGeometryChange(t *testing.T) {
	cache := &AISearchCache{}
	cfg := DefaultConfig()
	cfg.AiTtSize = 1 << 8
	cfg.AiTtBuckets = 2
	ensureTT(cache, cfg)
	first := cache.table()
	if first == nil {
		t.Fatalf("table not built")
	}
	ensureTT(cache, cfg)
	if cache.table() != first {
		t.Fatalf("same geometry must keep the same table")
	}
	cfg.AiTtSize = 1 << 9
	ensureTT(cache, cfg)
	if cache.table() == first {
		t.Fatalf("size change must rebuild the table")
	}
	cfg.AiEnableTt = false
	ensureTT(cache, cfg)
	if cache.table() != nil {
		t.Fatalf("disabling caching must drop the table")
	}
	if TranspositionSize(cache) != 0 {
		t.Fatalf("size of a disabled cache should be zero")
	}
}
