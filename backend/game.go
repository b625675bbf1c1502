package main

import (
	"log"
	"time"
)

type Game struct {
	settings    GameSettings
	board       *Board
	status      GameStatus
	history     MoveHistory
	whitePlayer IPlayer
	blackPlayer IPlayer
	lastMove    *Move
	lastMessage string
	turnStart   time.Time
}

func NewGame(settings GameSettings) Game {
	g := Game{}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.settings = settings
	g.board = NewBoard()
	if settings.InitialLayout != "" {
		side := settings.InitialSide
		if !side.IsPiece() {
			side = White
		}
		if err := g.board.SetPieces(settings.InitialLayout, side); err != nil {
			log.Printf("[backend] bad initial layout, using standard setup: %v", err)
		}
	}
	g.status = StatusNotStarted
	g.history.Clear()
	g.lastMove = nil
	g.lastMessage = ""
	g.createPlayers()
	g.turnStart = time.Now()
	g.logMatchup()
}

func (g *Game) Start() {
	if g.status == StatusNotStarted {
		g.status = StatusRunning
		g.turnStart = time.Now()
		g.syncAIPlayersToCurrentState()
		g.checkTerminal()
	}
}

// Setup replaces the position mid-session and puts the game in the running
// state. A bad layout leaves the game untouched.
func (g *Game) Setup(layout string, next Piece) error {
	if err := g.board.SetPieces(layout, next); err != nil {
		return err
	}
	g.status = StatusRunning
	g.history.Clear()
	g.lastMove = nil
	g.lastMessage = ""
	g.turnStart = time.Now()
	g.syncAIPlayersToCurrentState()
	g.checkTerminal()
	return nil
}

func (g *Game) State() GameState {
	lastMove := ""
	if g.lastMove != nil {
		lastMove = g.lastMove.String()
	}
	return GameState{
		Layout:      g.board.Layout(),
		Rendered:    g.board.Render(false),
		ToMove:      g.board.ToMove(),
		Status:      g.status,
		Winner:      g.board.Winner(),
		LastMove:    lastMove,
		LastMessage: g.lastMessage,
		MoveCount:   g.history.Size(),
	}
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

// LegalMoves lists the current side's moves in text notation.
func (g *Game) LegalMoves() []string {
	moves := g.board.Moves()
	out := make([]string, 0, len(moves))
	for _, m := range moves {
		out = append(out, m.String())
	}
	return out
}

// Hint searches the current position without touching the live game and
// returns the move the engine would play.
func (g *Game) Hint() (string, bool) {
	if g.status != StatusRunning {
		return "", false
	}
	ai := NewAIPlayer()
	move := ai.ChooseMove(g.board.Clone())
	if move == nil {
		return "", false
	}
	return move.String(), true
}

func (g *Game) TryApplyMove(move *Move) (bool, string) {
	if g.status != StatusRunning {
		return false, "game not running"
	}
	player := g.currentPlayer()
	isAiMove := player != nil && !player.IsHuman()
	ok, reason := g.board.ValidateMove(move)
	if !ok {
		g.lastMessage = "Illegal move: " + reason
		return false, g.lastMessage
	}
	g.lastMessage = ""
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	side := g.board.ToMove()
	captured := len(move.CapturedSquares())
	g.board.Apply(move)
	g.lastMove = move
	g.history.Push(HistoryEntry{
		Move:          move,
		Player:        side,
		ElapsedMs:     elapsedMs,
		IsAi:          isAiMove,
		CapturedCount: captured,
	})
	g.logMovePlayed(move, side, elapsedMs, isAiMove, captured)
	g.checkTerminal()
	g.turnStart = time.Now()
	g.syncAIPlayersToCurrentState()
	return true, ""
}

// Tick advances the game by at most one move: it applies a pending human
// move or collects a finished AI search, starting one when none is running.
// It reports whether a move was applied.
func (g *Game) Tick() bool {
	if g.status != StatusRunning {
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		return false
	}
	if player.IsHuman() {
		human, ok := player.(*HumanPlayer)
		if ok && human.HasPendingMove() {
			move := human.TakePendingMove()
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		return false
	}
	ai, ok := player.(*AIPlayer)
	if ok {
		if ai.HasMoveReady() {
			move := ai.TakeMove()
			if move == nil {
				g.checkTerminal()
				return false
			}
			applied, _ := g.TryApplyMove(move)
			return applied
		}
		if !ai.IsThinking() {
			ai.StartThinking(g.board)
		}
		return false
	}
	move := player.ChooseMove(g.board.Clone())
	if move == nil {
		g.checkTerminal()
		return false
	}
	applied, _ := g.TryApplyMove(move)
	return applied
}

func (g *Game) SubmitHumanMove(move *Move) bool {
	player := g.currentPlayer()
	if player == nil || !player.IsHuman() {
		return false
	}
	human, ok := player.(*HumanPlayer)
	if !ok {
		return false
	}
	human.SetPendingMove(move)
	return true
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

func (g *Game) AiThinking() bool {
	ai, ok := g.currentPlayer().(*AIPlayer)
	return ok && ai.IsThinking()
}

func (g *Game) ResetForConfigChange() {
	if aiWhite, ok := g.whitePlayer.(*AIPlayer); ok {
		aiWhite.ResetForConfigChange()
	}
	if aiBlack, ok := g.blackPlayer.(*AIPlayer); ok {
		aiBlack.ResetForConfigChange()
	}
}

func (g *Game) checkTerminal() {
	if g.status != StatusRunning {
		return
	}
	if !g.board.CheckGameOver() {
		return
	}
	winner := g.board.Winner()
	if winner == White {
		g.status = StatusWhiteWon
	} else {
		g.status = StatusBlackWon
	}
	g.logWin(winner)
}

func (g *Game) currentPlayer() IPlayer {
	return g.playerForColor(g.board.ToMove())
}

func (g *Game) playerForColor(color Piece) IPlayer {
	if color == White {
		return g.whitePlayer
	}
	return g.blackPlayer
}

func (g *Game) createPlayers() {
	if g.settings.WhiteType == PlayerHuman {
		g.whitePlayer = NewHumanPlayer()
	} else {
		g.whitePlayer = NewAIPlayer()
	}
	if g.settings.BlackType == PlayerHuman {
		g.blackPlayer = NewHumanPlayer()
	} else {
		g.blackPlayer = NewAIPlayer()
	}
}

func (g *Game) syncAIPlayersToCurrentState() {
	if aiWhite, ok := g.whitePlayer.(*AIPlayer); ok {
		aiWhite.OnMoveApplied(g.board)
	}
	if aiBlack, ok := g.blackPlayer.(*AIPlayer); ok {
		aiBlack.OnMoveApplied(g.board)
	}
}

func (g *Game) logMatchup() {
	label := func(t PlayerType) string {
		if t == PlayerAI {
			return "AI"
		}
		return "Human"
	}
	log.Printf("[backend] new game: White (%s) vs Black (%s)",
		label(g.settings.WhiteType), label(g.settings.BlackType))
}

func (g *Game) logMovePlayed(move *Move, side Piece, elapsedMs float64, isAiMove bool, captured int) {
	actor := "human"
	if isAiMove {
		actor = "ai"
	}
	log.Printf("[backend] %s (%s) played %s in %.0fms, captured %d",
		side, actor, move, elapsedMs, captured)
}

func (g *Game) logWin(winner Piece) {
	log.Printf("[backend] game over: %s wins after %d moves", winner, g.history.Size())
}
