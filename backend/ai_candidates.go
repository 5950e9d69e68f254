package main

const proximityRadius = 2

// collectCandidateMoves returns every empty cell within Chebyshev distance
// proximityRadius of a stone, in row-major order. An empty board yields the
// centre only; a full board yields nothing.
func collectCandidateMoves(board Board) []Move {
	size := board.Size()
	if size <= 0 {
		return nil
	}
	seen := make([]bool, size*size)
	stones := 0
	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			if board.At(row, col) == CellEmpty {
				continue
			}
			stones++
			for dr := -proximityRadius; dr <= proximityRadius; dr++ {
				for dc := -proximityRadius; dc <= proximityRadius; dc++ {
					nr := row + dr
					nc := col + dc
					if board.IsEmpty(nr, nc) {
						seen[nr*size+nc] = true
					}
				}
			}
		}
	}
	if stones == 0 {
		center := size / 2
		return []Move{{Row: center, Col: center}}
	}
	moves := make([]Move, 0, 64)
	for idx, ok := range seen {
		if ok {
			moves = append(moves, Move{Row: idx / size, Col: idx % size})
		}
	}
	return moves
}
