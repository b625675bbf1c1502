package main

type PlayerType int

const (
	PlayerHuman PlayerType = iota
	PlayerAI
)

type GameSettings struct {
	WhiteType     PlayerType `json:"-"`
	BlackType     PlayerType `json:"-"`
	InitialLayout string     `json:"initial_layout"`
	InitialSide   Piece      `json:"-"`
}

func DefaultGameSettings() GameSettings {
	return GameSettings{
		WhiteType:     PlayerHuman,
		BlackType:     PlayerAI,
		InitialLayout: "",
		InitialSide:   White,
	}
}
