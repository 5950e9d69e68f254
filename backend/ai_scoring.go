package main

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	scoreNegInf = math.MinInt
	scorePosInf = math.MaxInt
)

type SearchStats struct {
	Start           time.Time
	Nodes           int64
	Evaluations     int64
	Cutoffs         int64
	CompletedDepths int
	DepthDurations  []time.Duration
	BestScore       int
	ImmediateWin    bool
}

type SearchResult struct {
	Move  Move
	Found bool
	Stats SearchStats
}

type EngineOption func(*Engine)

// WithMaxDepth stops iterative deepening once depth has completed. Zero
// leaves the search bounded by time alone.
func WithMaxDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.maxDepth = depth
	}
}

// WithDepthCallback is invoked after every fully completed depth.
func WithDepthCallback(fn func(depth int, move Move, score int)) EngineOption {
	return func(e *Engine) {
		e.onDepthComplete = fn
	}
}

func withClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine picks moves for one player under a wall-clock budget per move.
type Engine struct {
	player          PlayerColor
	opponent        PlayerColor
	timeBudget      time.Duration
	maxDepth        int
	onDepthComplete func(depth int, move Move, score int)
	now             func() time.Time
}

func NewEngine(player PlayerColor, timeBudget time.Duration, opts ...EngineOption) *Engine {
	e := &Engine{
		player:     player,
		opponent:   otherPlayer(player),
		timeBudget: timeBudget,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Search returns the move to play, or false when no depth finished inside
// the budget and no immediate win exists. The board is mutated during the
// search and restored before returning.
func (e *Engine) Search(board *Board) (Move, bool) {
	result := e.Run(board)
	return result.Move, result.Found
}

func (e *Engine) Run(board *Board) SearchResult {
	start := e.now()
	ctx := &minimaxContext{
		player:      e.player,
		opponent:    e.opponent,
		now:         e.now,
		deadline:    start.Add(e.timeBudget),
		hasDeadline: true,
		stats:       &SearchStats{Start: start},
	}
	result := SearchResult{}

	if move, ok := findImmediateWin(board, e.player); ok {
		ctx.stats.ImmediateWin = true
		ctx.stats.BestScore = fiveScore
		result.Move = move
		result.Found = true
		result.Stats = *ctx.stats
		return result
	}

	for depth := 1; !ctx.timedOut(); depth++ {
		if e.maxDepth > 0 && depth > e.maxDepth {
			break
		}
		depthStart := e.now()
		score, move, ok := alphabeta(board, ctx, depth, scoreNegInf, scorePosInf, true)
		if ctx.timedOut() {
			log.Debug().Int("depth", depth).Msg("search depth interrupted by deadline")
			break
		}
		ctx.stats.CompletedDepths = depth
		ctx.stats.DepthDurations = append(ctx.stats.DepthDurations, e.now().Sub(depthStart))
		if !ok {
			continue
		}
		result.Move = move
		result.Found = true
		ctx.stats.BestScore = score
		log.Debug().Int("depth", depth).Str("move", move.String()).Int("score", score).Msg("search depth complete")
		if e.onDepthComplete != nil {
			e.onDepthComplete(depth, move, score)
		}
	}
	result.Stats = *ctx.stats
	return result
}

type minimaxContext struct {
	player      PlayerColor
	opponent    PlayerColor
	now         func() time.Time
	deadline    time.Time
	hasDeadline bool
	stats       *SearchStats
}

func (ctx *minimaxContext) timedOut() bool {
	if !ctx.hasDeadline {
		return false
	}
	return !ctx.now().Before(ctx.deadline)
}

func (ctx *minimaxContext) evaluate(board *Board) int {
	ctx.stats.Evaluations++
	return Heuristic(*board, ctx.player)
}

// play places a candidate that the generator reported as empty. Failure
// means the candidate list and the board disagree.
func (ctx *minimaxContext) play(board *Board, move Move, player PlayerColor) {
	if !board.ApplyMove(move.Row, move.Col, player) {
		panic(fmt.Sprintf("search: candidate %s is not playable", move))
	}
}

// alphabeta always scores leaves from the searching player's side; the
// maximizing flag only selects whose stone is placed.
func alphabeta(board *Board, ctx *minimaxContext, depth, alpha, beta int, maximizing bool) (int, Move, bool) {
	if ctx.timedOut() || depth == 0 {
		return ctx.evaluate(board), Move{}, false
	}
	ctx.stats.Nodes++

	mover := ctx.opponent
	if maximizing {
		mover = ctx.player
	}
	moves := orderCandidateMoves(board, ctx, collectCandidateMoves(*board), mover)
	if len(moves) == 0 {
		return ctx.evaluate(board), Move{}, false
	}

	var best Move
	found := false
	if maximizing {
		value := scoreNegInf
		for _, move := range moves {
			ctx.play(board, move, ctx.player)
			score, _, _ := alphabeta(board, ctx, depth-1, alpha, beta, false)
			board.UndoMove(move.Row, move.Col)
			if score > value {
				value = score
				best = move
				found = true
			}
			alpha = max(alpha, value)
			if beta <= alpha {
				ctx.stats.Cutoffs++
				break
			}
		}
		return value, best, found
	}

	value := scorePosInf
	for _, move := range moves {
		ctx.play(board, move, ctx.opponent)
		score, _, _ := alphabeta(board, ctx, depth-1, alpha, beta, true)
		board.UndoMove(move.Row, move.Col)
		if score < value {
			value = score
			best = move
			found = true
		}
		beta = min(beta, value)
		if beta <= alpha {
			ctx.stats.Cutoffs++
			break
		}
	}
	return value, best, found
}

type scoredMove struct {
	move  Move
	score int
}

// orderCandidateMoves sorts candidates by the static score after placing
// mover's stone, highest first. Ties keep generator order.
func orderCandidateMoves(board *Board, ctx *minimaxContext, candidates []Move, mover PlayerColor) []Move {
	scored := make([]scoredMove, 0, len(candidates))
	for _, move := range candidates {
		scored = append(scored, scoredMove{move: move, score: scoreMove(board, ctx, move, mover)})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})
	moves := make([]Move, 0, len(scored))
	for _, entry := range scored {
		moves = append(moves, entry.move)
	}
	return moves
}

func scoreMove(board *Board, ctx *minimaxContext, move Move, mover PlayerColor) int {
	ctx.play(board, move, mover)
	score := ctx.evaluate(board)
	board.UndoMove(move.Row, move.Col)
	return score
}

// findImmediateWin returns the first candidate that completes five for
// player, in generator order.
func findImmediateWin(board *Board, player PlayerColor) (Move, bool) {
	for _, move := range collectCandidateMoves(*board) {
		if !board.ApplyMove(move.Row, move.Col, player) {
			continue
		}
		win := board.CheckWin(move.Row, move.Col, player)
		board.UndoMove(move.Row, move.Col)
		if win {
			return move, true
		}
	}
	return Move{}, false
}

// searchToDepth runs a single alpha-beta pass with no deadline.
func (e *Engine) searchToDepth(board *Board, depth int) (int, Move, bool) {
	ctx := &minimaxContext{
		player:   e.player,
		opponent: e.opponent,
		now:      e.now,
		stats:    &SearchStats{Start: e.now()},
	}
	return alphabeta(board, ctx, depth, scoreNegInf, scorePosInf, true)
}
