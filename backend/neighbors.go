package main

// Static adjacency tables for the 25-square board, indexed by linearized
// square. They are the single source of truth for which squares are
// reachable from where; all legality checks and move generation route
// through them. Target order within each row is significant: the generator
// emits moves in table order, which keeps enumeration deterministic.

// whiteStepTargets lists the squares a non-capturing White piece may step
// onto from each square. White moves toward row 5, so the top row has no
// targets.
var whiteStepTargets = [boardSquares][]Square{
	0:  {1, 5, 6},
	1:  {0, 2, 6},
	2:  {1, 3, 6, 7, 8},
	3:  {2, 4, 8},
	4:  {3, 8, 9},
	5:  {6, 10},
	6:  {5, 7, 10, 11, 12},
	7:  {6, 8, 12},
	8:  {7, 9, 12, 13, 14},
	9:  {8, 14},
	10: {6, 11, 15, 16},
	11: {10, 12, 16},
	12: {11, 13, 16, 17, 18},
	13: {12, 14, 18},
	14: {13, 18, 19},
	15: {16, 20},
	16: {15, 17, 20, 21, 22},
	17: {16, 18, 22},
	18: {17, 19, 22, 23, 24},
	19: {18, 24},
	20: {},
	21: {},
	22: {},
	23: {},
	24: {},
}

// blackStepTargets is the mirror table: Black moves toward row 1.
var blackStepTargets = [boardSquares][]Square{
	0:  {},
	1:  {},
	2:  {},
	3:  {},
	4:  {},
	5:  {0, 6},
	6:  {0, 1, 2, 5, 7},
	7:  {2, 6, 8},
	8:  {2, 3, 4, 7, 9},
	9:  {4, 8},
	10: {5, 6, 11},
	11: {6, 10, 12},
	12: {6, 7, 8, 11, 13},
	13: {8, 12, 14},
	14: {8, 9, 13},
	15: {10, 16},
	16: {10, 11, 12, 15, 17},
	17: {12, 16, 18},
	18: {12, 13, 14, 17, 19},
	19: {14, 18},
	20: {15, 16, 21},
	21: {16, 20, 22},
	22: {16, 17, 18, 21, 23},
	23: {18, 22, 24},
	24: {18, 19, 23},
}

// jumpTargets lists jump landing squares from each square, for either
// color. The jumped square for any pair here is jumpedSquare(from, to).
var jumpTargets = [boardSquares][]Square{
	0:  {2, 10, 12},
	1:  {3, 11},
	2:  {0, 4, 10, 12, 14},
	3:  {1, 13},
	4:  {2, 12, 14},
	5:  {7, 15},
	6:  {8, 16, 18},
	7:  {5, 9, 17},
	8:  {6, 16, 18},
	9:  {7, 19},
	10: {0, 2, 12, 20, 22},
	11: {1, 13, 21},
	12: {0, 2, 4, 10, 14, 20, 22, 24},
	13: {3, 11, 23},
	14: {2, 4, 12, 22, 24},
	15: {5, 17},
	16: {6, 8, 18},
	17: {7, 15, 19},
	18: {6, 8, 16},
	19: {9, 17},
	20: {10, 12, 22},
	21: {11, 23},
	22: {10, 12, 14, 20, 24},
	23: {13, 21},
	24: {12, 14, 22},
}

func stepTargets(color Piece, from Square) []Square {
	if color == White {
		return whiteStepTargets[from]
	}
	if color == Black {
		return blackStepTargets[from]
	}
	return nil
}
