package main

type GameStatus int

const (
	StatusNotStarted GameStatus = iota
	StatusRunning
	StatusWhiteWon
	StatusBlackWon
)

func (s GameStatus) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusWhiteWon:
		return "white_won"
	case StatusBlackWon:
		return "black_won"
	default:
		return "unknown"
	}
}

// GameState is an immutable snapshot of a game, safe to hand to handlers
// and broadcasters while the game keeps running.
type GameState struct {
	Layout      string
	Rendered    string
	ToMove      Piece
	Status      GameStatus
	Winner      Piece
	LastMove    string
	LastMessage string
	MoveCount   int
}
