package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// plainMinimax explores every candidate without pruning.
func plainMinimax(board *Board, player, opponent PlayerColor, depth int, maximizing bool) int {
	if depth == 0 {
		return Heuristic(*board, player)
	}
	moves := collectCandidateMoves(*board)
	if len(moves) == 0 {
		return Heuristic(*board, player)
	}
	mover := opponent
	best := scorePosInf
	if maximizing {
		mover = player
		best = scoreNegInf
	}
	for _, m := range moves {
		if !board.ApplyMove(m.Row, m.Col, mover) {
			panic("candidate not playable")
		}
		score := plainMinimax(board, player, opponent, depth-1, !maximizing)
		board.UndoMove(m.Row, m.Col)
		if maximizing {
			best = max(best, score)
		} else {
			best = min(best, score)
		}
	}
	return best
}

func TestSearchTakesImmediateWin(t *testing.T) {
	board := NewBoard(BoardSize)
	placeStones(t, &board, PlayerBlack, rowRun(9, 4, 7)...)
	placeStones(t, &board, PlayerWhite, Move{Row: 8, Col: 5}, Move{Row: 10, Col: 6}, Move{Row: 3, Col: 3})

	for _, budget := range []time.Duration{0, 500 * time.Millisecond} {
		engine := NewEngine(PlayerBlack, budget, WithMaxDepth(2))
		result := engine.Run(&board)
		require.True(t, result.Found)
		require.True(t, result.Stats.ImmediateWin)
		require.Contains(t, []Move{{Row: 9, Col: 3}, {Row: 9, Col: 8}}, result.Move)
	}
}

func TestSearchEmptyBoardPlaysCentre(t *testing.T) {
	board := NewBoard(BoardSize)
	engine := NewEngine(PlayerBlack, 10*time.Second, WithMaxDepth(2))
	move, ok := engine.Search(&board)
	require.True(t, ok)
	require.Equal(t, Move{Row: 9, Col: 9}, move)
	require.Zero(t, board.StoneCount())
}

func TestSearchZeroBudgetWithoutWinFindsNothing(t *testing.T) {
	board := NewBoard(BoardSize)
	placeStones(t, &board, PlayerBlack, Move{Row: 9, Col: 9})
	placeStones(t, &board, PlayerWhite, Move{Row: 9, Col: 10})
	before := board.Clone()

	result := NewEngine(PlayerBlack, 0).Run(&board)
	require.False(t, result.Found)
	require.Zero(t, result.Stats.CompletedDepths)
	require.True(t, board.Equal(before))
}

func TestSearchBlocksClosedFour(t *testing.T) {
	board := NewBoard(BoardSize)
	placeStones(t, &board, PlayerWhite, rowRun(9, 4, 7)...)
	placeStones(t, &board, PlayerBlack, Move{Row: 9, Col: 3}, Move{Row: 12, Col: 12})

	engine := NewEngine(PlayerBlack, time.Minute, WithMaxDepth(2))
	move, ok := engine.Search(&board)
	require.True(t, ok)
	require.Equal(t, Move{Row: 9, Col: 8}, move)
}

func TestSearchRestoresBoard(t *testing.T) {
	board := NewBoard(BoardSize)
	placeStones(t, &board, PlayerBlack, Move{Row: 9, Col: 9}, Move{Row: 10, Col: 10}, Move{Row: 8, Col: 11})
	placeStones(t, &board, PlayerWhite, Move{Row: 9, Col: 10}, Move{Row: 10, Col: 9})
	before := board.Clone()

	move, ok := NewEngine(PlayerWhite, time.Minute, WithMaxDepth(2)).Search(&board)
	require.True(t, ok)
	require.True(t, board.Equal(before))
	require.True(t, board.IsEmpty(move.Row, move.Col))
}

func TestAlphaBetaMatchesExhaustiveMinimax(t *testing.T) {
	board := NewBoard(7)
	placeStones(t, &board, PlayerBlack, Move{Row: 3, Col: 3}, Move{Row: 2, Col: 4})
	placeStones(t, &board, PlayerWhite, Move{Row: 3, Col: 4}, Move{Row: 4, Col: 2})

	for depth := 1; depth <= 3; depth++ {
		engine := NewEngine(PlayerBlack, 0)
		score, move, ok := engine.searchToDepth(&board, depth)
		require.True(t, ok)
		require.Equal(t, plainMinimax(&board, PlayerBlack, PlayerWhite, depth, true), score, "depth %d", depth)

		require.True(t, board.ApplyMove(move.Row, move.Col, PlayerBlack))
		require.Equal(t, score, plainMinimax(&board, PlayerBlack, PlayerWhite, depth-1, false), "depth %d best move", depth)
		board.UndoMove(move.Row, move.Col)
	}
}

func TestDepthCallbackReportsEveryDepth(t *testing.T) {
	board := NewBoard(BoardSize)
	placeStones(t, &board, PlayerBlack, Move{Row: 9, Col: 9})
	placeStones(t, &board, PlayerWhite, Move{Row: 10, Col: 10})

	var depths []int
	engine := NewEngine(PlayerBlack, time.Minute, WithMaxDepth(2), WithDepthCallback(func(depth int, move Move, score int) {
		require.True(t, board.IsEmpty(move.Row, move.Col))
		depths = append(depths, depth)
	}))
	result := engine.Run(&board)
	require.True(t, result.Found)
	require.Equal(t, []int{1, 2}, depths)
	require.Equal(t, 2, result.Stats.CompletedDepths)
	require.Len(t, result.Stats.DepthDurations, 2)
	require.Positive(t, result.Stats.Nodes)
	require.Positive(t, result.Stats.Evaluations)
}

func TestInterruptedDepthIsDiscarded(t *testing.T) {
	board := NewBoard(BoardSize)
	placeStones(t, &board, PlayerBlack, Move{Row: 9, Col: 9}, Move{Row: 9, Col: 10})
	placeStones(t, &board, PlayerWhite, Move{Row: 10, Col: 10})

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	armed := false
	calls := 0
	clock := func() time.Time {
		if armed {
			calls++
			if calls > 10 {
				return base.Add(time.Hour)
			}
		}
		return base
	}
	var depthOneMove Move
	engine := NewEngine(PlayerBlack, time.Minute, withClock(clock), WithDepthCallback(func(depth int, move Move, score int) {
		if depth == 1 {
			depthOneMove = move
			armed = true
		}
	}))

	before := board.Clone()
	result := engine.Run(&board)
	require.True(t, result.Found)
	require.Equal(t, 1, result.Stats.CompletedDepths)
	require.Len(t, result.Stats.DepthDurations, 1)
	require.Equal(t, depthOneMove, result.Move)
	require.True(t, board.Equal(before))
}

func TestOrderingSortsByStaticScore(t *testing.T) {
	board := NewBoard(BoardSize)
	placeStones(t, &board, PlayerBlack, Move{Row: 9, Col: 9})
	ctx := &minimaxContext{player: PlayerWhite, opponent: PlayerBlack, now: time.Now, stats: &SearchStats{}}

	candidates := collectCandidateMoves(board)
	ordered := orderCandidateMoves(&board, ctx, candidates, PlayerWhite)
	require.Len(t, ordered, len(candidates))
	for i := 1; i < len(ordered); i++ {
		require.GreaterOrEqual(t, scoreMove(&board, ctx, ordered[i-1], PlayerWhite), scoreMove(&board, ctx, ordered[i], PlayerWhite))
	}
	require.Equal(t, 1, board.StoneCount())
}

func TestPlayPanicsOnOccupiedCandidate(t *testing.T) {
	board := NewBoard(BoardSize)
	placeStones(t, &board, PlayerBlack, Move{Row: 0, Col: 0})
	ctx := &minimaxContext{player: PlayerWhite, opponent: PlayerBlack, now: time.Now, stats: &SearchStats{}}
	require.Panics(t, func() {
		ctx.play(&board, Move{Row: 0, Col: 0}, PlayerWhite)
	})
}
