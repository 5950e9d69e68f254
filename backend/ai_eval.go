package main

const fiveScore = 100000

// runScores[length][blockedEnds] for runs shorter than five.
var runScores = [5][3]int{
	{0, 0, 0},
	{1, 1, 1},
	{50, 10, 0},
	{500, 100, 0},
	{10000, 2000, 0},
}

// Heuristic scores the board from perspective's point of view. Each run is
// scored once, from its first stone along the direction; the opponent's
// runs count against.
func Heuristic(board Board, perspective PlayerColor) int {
	size := board.Size()
	mine := CellFromPlayer(perspective)
	total := 0
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			cell := board.At(row, col)
			if cell == CellEmpty {
				continue
			}
			for _, dir := range axisDirections {
				prevRow := row - dir[0]
				prevCol := col - dir[1]
				if board.InBounds(prevRow, prevCol) && board.At(prevRow, prevCol) == cell {
					continue
				}
				score := evaluatePattern(board, row, col, dir[0], dir[1], cell)
				if cell == mine {
					total += score
				} else {
					total -= score
				}
			}
		}
	}
	return total
}

// evaluatePattern measures the run through (row, col) along (dr, dc) and
// counts how many of its two ends are closed by the edge or any stone.
func evaluatePattern(board Board, row, col, dr, dc int, cell Cell) int {
	length := 1
	blocked := 0

	r, c := row+dr, col+dc
	for board.InBounds(r, c) && board.At(r, c) == cell {
		length++
		r += dr
		c += dc
	}
	if !board.InBounds(r, c) || board.At(r, c) != CellEmpty {
		blocked++
	}

	r, c = row-dr, col-dc
	for board.InBounds(r, c) && board.At(r, c) == cell {
		length++
		r -= dr
		c -= dc
	}
	if !board.InBounds(r, c) || board.At(r, c) != CellEmpty {
		blocked++
	}

	return scoreForRun(length, blocked)
}

func scoreForRun(length, blocked int) int {
	if length >= 5 {
		return fiveScore
	}
	if length < 1 || blocked < 0 || blocked > 2 {
		return 0
	}
	return runScores[length][blocked]
}
