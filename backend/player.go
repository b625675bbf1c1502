package main

type IPlayer interface {
	IsHuman() bool
	ChooseMove(board *Board) *Move
}
