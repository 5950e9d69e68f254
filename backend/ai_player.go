package main

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

var ErrSearchExhausted = errors.New("search completed no depth within budget")

// ghostPayload previews the engine's best move after each completed depth.
type ghostPayload struct {
	Mode   string     `json:"mode,omitempty"`
	Best   *ghostCell `json:"best,omitempty"`
	Depth  int        `json:"depth,omitempty"`
	Score  int        `json:"score,omitempty"`
	Active bool       `json:"active"`
}

type ghostCell struct {
	Row    int `json:"row"`
	Col    int `json:"col"`
	Player int `json:"player"`
}

type AIPlayer struct {
	moveMutex  sync.Mutex
	rngMutex   sync.Mutex
	workerDone chan struct{}
	thinking   atomic.Bool
	moveReady  atomic.Bool
	generation atomic.Uint64
	lastDepth  atomic.Int64
	readyMove  Move
	rng        *rand.Rand
}

func NewAIPlayer(seed uint64) *AIPlayer {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &AIPlayer{rng: rand.New(rand.NewSource(seed))}
}

func (a *AIPlayer) IsHuman() bool {
	return false
}

// ChooseMove searches synchronously on a copy of the board. When the search
// yields nothing the player falls back to a candidate of its own.
func (a *AIPlayer) ChooseMove(state GameState) (Move, bool) {
	return a.think(state, GetConfig(), nil)
}

func (a *AIPlayer) think(state GameState, config Config, ghostSink func(ghostPayload)) (Move, bool) {
	board := state.Board.Clone()
	opts := []EngineOption{WithMaxDepth(config.AiMaxDepth)}
	if ghostSink != nil {
		throttle := time.Duration(config.AiGhostThrottleMs) * time.Millisecond
		var lastPublish time.Time
		player := state.ToMove
		opts = append(opts, WithDepthCallback(func(depth int, move Move, score int) {
			now := time.Now()
			if throttle > 0 && !lastPublish.IsZero() && now.Sub(lastPublish) < throttle {
				return
			}
			lastPublish = now
			ghostSink(ghostPayload{
				Mode:   "best_move",
				Best:   &ghostCell{Row: move.Row, Col: move.Col, Player: playerToInt(player)},
				Depth:  depth,
				Score:  score,
				Active: true,
			})
		}))
	}
	engine := NewEngine(state.ToMove, config.TimeBudget(), opts...)
	result := engine.Run(&board)
	if config.AiLogSearchStats {
		logSearchStats(state.ToMove, result)
	}
	a.lastDepth.Store(int64(result.Stats.CompletedDepths))
	if result.Found {
		return result.Move, true
	}
	fallback, ok := a.fallbackMove(state.Board)
	if ok {
		log.Warn().Err(ErrSearchExhausted).Str("player", state.ToMove.String()).Str("fallback", fallback.String()).Msg("using fallback move")
	}
	return fallback, ok
}

// fallbackMove picks the centre on an empty board and a random candidate
// otherwise.
func (a *AIPlayer) fallbackMove(board Board) (Move, bool) {
	candidates := collectCandidateMoves(board)
	if len(candidates) == 0 {
		return Move{}, false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	a.rngMutex.Lock()
	idx := a.rng.Intn(len(candidates))
	a.rngMutex.Unlock()
	return candidates[idx], true
}

// StartThinking searches in the background. The result is picked up with
// HasMoveReady and TakeMove; a Discard in between drops it.
func (a *AIPlayer) StartThinking(state GameState, ghostSink func(ghostPayload)) {
	if a.thinking.Load() {
		return
	}
	if a.workerDone != nil {
		<-a.workerDone
	}
	a.thinking.Store(true)
	a.moveReady.Store(false)

	stateCopy := state.Clone()
	config := GetConfig()
	generation := a.generation.Load()
	done := make(chan struct{})
	a.workerDone = done
	go func() {
		defer close(done)
		defer a.thinking.Store(false)
		move, ok := a.think(stateCopy, config, ghostSink)
		a.moveMutex.Lock()
		defer a.moveMutex.Unlock()
		if a.generation.Load() != generation {
			return
		}
		a.readyMove = move
		a.moveReady.Store(ok)
	}()
}

// LastDepth is the deepest fully searched ply behind the most recent move,
// zero for an immediate win or a fallback.
func (a *AIPlayer) LastDepth() int {
	return int(a.lastDepth.Load())
}

func (a *AIPlayer) IsThinking() bool {
	return a.thinking.Load()
}

func (a *AIPlayer) HasMoveReady() bool {
	return a.moveReady.Load()
}

func (a *AIPlayer) TakeMove() Move {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.moveReady.Store(false)
	return a.readyMove
}

// Discard drops any result of a search that is still running.
func (a *AIPlayer) Discard() {
	a.moveMutex.Lock()
	defer a.moveMutex.Unlock()
	a.generation.Add(1)
	a.moveReady.Store(false)
}

// Wait blocks until a background search, if any, has finished.
func (a *AIPlayer) Wait() {
	if a.workerDone != nil {
		<-a.workerDone
	}
}

func logSearchStats(player PlayerColor, result SearchResult) {
	stats := result.Stats
	elapsed := time.Duration(0)
	for _, d := range stats.DepthDurations {
		elapsed += d
	}
	nps := 0.0
	if elapsed > 0 {
		nps = float64(stats.Nodes) / elapsed.Seconds()
	}
	depthTimes := make([]int64, 0, len(stats.DepthDurations))
	for _, d := range stats.DepthDurations {
		depthTimes = append(depthTimes, d.Milliseconds())
	}
	event := log.Info().
		Str("player", player.String()).
		Bool("found", result.Found).
		Bool("immediate_win", stats.ImmediateWin).
		Int("completed", stats.CompletedDepths).
		Int64("nodes", stats.Nodes).
		Int64("evals", stats.Evaluations).
		Int64("cutoffs", stats.Cutoffs).
		Float64("nps", nps).
		Int("score", stats.BestScore).
		Ints64("depth_ms", depthTimes)
	if result.Found {
		event = event.Str("move", result.Move.String())
	}
	event.Msg("search stats")
}
