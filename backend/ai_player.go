package main

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

const searchInfinity = math.MaxInt32

// winningValue is the absolute score of a decided position; it dominates
// any material count the evaluation can produce.
const winningValue = searchInfinity

type SearchStats struct {
	Start     time.Time
	Nodes     int64
	TTProbes  int64
	TTHits    int64
	TTStores  int64
	TTCutoffs int64
	ABCutoffs int64
}

type searcher struct {
	board  *Board
	config Config
	tt     *TranspositionTable
	stats  *SearchStats
	best   *Move
}

// findMove is a fixed-depth minimax with alpha-beta pruning. sense is +1
// when the side to move is White (maximizing) and -1 for Black; it flips at
// every ply. Scores are absolute: positive favors White regardless of whose
// turn it is. With saveMove, the best root move lands in s.best; strict
// comparisons mean the first move reaching the best score is kept.
func (s *searcher) findMove(depth int, saveMove bool, sense int, alpha, beta int) int {
	b := s.board
	s.stats.Nodes++
	moves := b.Moves()
	if len(moves) == 0 {
		// Side to move cannot act and loses.
		if b.ToMove() == White {
			return -winningValue
		}
		return winningValue
	}
	if depth == 0 {
		return b.MaterialScore()
	}
	var key uint64
	if s.tt != nil {
		key = b.hashKey()
		s.stats.TTProbes++
		if entry, ok := s.tt.Probe(key); ok {
			s.stats.TTHits++
			if entry.Depth >= depth && !saveMove {
				score := int(entry.Score)
				switch entry.Flag {
				case TTExact:
					s.stats.TTCutoffs++
					return score
				case TTLower:
					if score > alpha {
						alpha = score
					}
				case TTUpper:
					if score < beta {
						beta = score
					}
				}
				if alpha >= beta {
					s.stats.TTCutoffs++
					return score
				}
			}
		}
	}
	alphaOrig, betaOrig := alpha, beta
	side := b.ToMove()
	bestScore := searchInfinity
	if sense > 0 {
		bestScore = -searchInfinity
	}
	var bestMove *Move
	for _, m := range moves {
		snapshot := b.copyBlocks()
		b.applySearch(m)
		b.setToMove(side.Opposite())
		score := s.findMove(depth-1, false, -sense, alpha, beta)
		b.setToMove(side)
		b.undoSearch(m)
		b.setBlocks(snapshot)
		if sense > 0 {
			if score > bestScore {
				bestScore = score
				bestMove = m
				if saveMove {
					s.best = m
				}
			}
			if bestScore > alpha {
				alpha = bestScore
			}
		} else {
			if score < bestScore {
				bestScore = score
				bestMove = m
				if saveMove {
					s.best = m
				}
			}
			if bestScore < beta {
				beta = bestScore
			}
		}
		if beta <= alpha {
			s.stats.ABCutoffs++
			break
		}
	}
	if s.tt != nil {
		flag := TTExact
		if bestScore <= alphaOrig {
			flag = TTUpper
		} else if bestScore >= betaOrig {
			flag = TTLower
		}
		best := ""
		if bestMove != nil {
			best = bestMove.String()
		}
		s.tt.Store(key, depth, bestScore, flag, best)
		s.stats.TTStores++
	}
	return bestScore
}

// searchBestMove runs a full search on a private clone of the board and
// returns the chosen move, nil only when the position has no legal move.
func searchBestMove(board *Board, config Config, stats *SearchStats) *Move {
	cache := SharedSearchCache()
	ensureTT(cache, config)
	s := &searcher{
		board:  board.Clone(),
		config: config,
		tt:     cache.table(),
		stats:  stats,
	}
	depth := config.AiDepth
	if depth < 1 {
		depth = 1
	}
	sense := 1
	if board.ToMove() == Black {
		sense = -1
	}
	s.findMove(depth, true, sense, -searchInfinity, searchInfinity)
	if s.tt != nil {
		s.tt.NextGeneration()
	}
	return s.best
}

type AIPlayer struct {
	moveMutex  sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	stopSignal atomic.Bool
	readyMove  *Move
}

func NewAIPlayer() *AIPlayer {
	return &AIPlayer{}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

// ChooseMove searches synchronously on the caller's goroutine.
func (a *AIPlayer) ChooseMove(board *Board) *Move {
	config := GetConfig()
	stats := &SearchStats{Start: time.Now()}
	move := searchBestMove(board, config, stats)
	if config.AiLogSearchStats {
		logSearchStats("choose", stats, config)
	}
	return move
}

// StartThinking kicks off a background search; the game loop polls
// HasMoveReady and collects the result with TakeMove.
func (a *AIPlayer) StartThinking(board *Board) {
	if a.thinking.Load() {
		return
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)
	a.stopSignal.Store(false)

	boardCopy := board.Clone()
	done := make(chan struct{})
	a.workerDone = done
	config := GetConfig()
	go func() {
		defer close(done)
		stats := &SearchStats{Start: time.Now()}
		move := searchBestMove(boardCopy, config, stats)
		if a.stopSignal.Load() {
			a.moveReady.Store(false)
			a.thinking.Store(false)
			return
		}
		if config.AiLogSearchStats {
			logSearchStats("think", stats, config)
		}
		a.moveMutex.Lock()
		a.readyMove = move
		a.moveMutex.Unlock()
		a.moveReady.Store(true)
		a.thinking.Store(false)
	}()
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

func (a *AIPlayer) TakeMove() *Move {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove
}

func (a *AIPlayer) StopThinking() {
	a.stopSignal.Store(true)
	if a.workerDone != nil {
		<-a.workerDone
		a.workerDone = nil
	}
	a.moveReady.Store(false)
	a.stopSignal.Store(false)
}

func (a *AIPlayer) OnMoveApplied(*Board) {
	ensureTT(SharedSearchCache(), GetConfig())
}

func (a *AIPlayer) CacheSize() int {
	return TranspositionSize(SharedSearchCache())
}

func (a *AIPlayer) ResetForConfigChange() {
	a.stopSignal.Store(true)
	a.stopSignal.Store(false)
}

func logSearchStats(tag string, stats *SearchStats, config Config) {
	if stats == nil {
		return
	}
	elapsed := time.Duration(0)
	if !stats.Start.IsZero() {
		elapsed = time.Since(stats.Start)
	}
	nps := 0.0
	if elapsed > 0 {
		nps = float64(stats.Nodes) / elapsed.Seconds()
	}
	ttHitRate := 0.0
	if stats.TTProbes > 0 {
		ttHitRate = float64(stats.TTHits) * 100.0 / float64(stats.TTProbes)
	}
	ttSize := TranspositionSize(SharedSearchCache())
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	log.Printf("[ai:%s] t=%dms depth=%d nodes=%d nps=%.0f tt_size=%d tt_probe=%d tt_hit=%d tt_hit_rate=%.1f%% tt_store=%d tt_cutoff=%d ab_cutoff=%d mem_alloc=%s mem_sys=%s",
		tag,
		elapsed.Milliseconds(),
		config.AiDepth,
		stats.Nodes,
		nps,
		ttSize,
		stats.TTProbes,
		stats.TTHits,
		ttHitRate,
		stats.TTStores,
		stats.TTCutoffs,
		stats.ABCutoffs,
		formatBytes(mem.Alloc),
		formatBytes(mem.Sys),
	)
}

func formatBytes(v uint64) string {
	const unit = 1024
	if v < unit {
		return fmt.Sprintf("%dB", v)
	}
	div, exp := uint64(unit), 0
	for n := v / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f%cB", float64(v)/float64(div), "KMG"[exp])
}
