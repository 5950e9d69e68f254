package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrGameNotRunning = errors.New("game not running")
	ErrNotHumanTurn   = errors.New("not human turn")
)

type Game struct {
	id          string
	settings    GameSettings
	state       GameState
	history     MoveHistory
	blackPlayer Player
	whitePlayer Player
	turnStart   time.Time
	startedAt   time.Time
	seed        uint64
	onGameOver  func(GameOverEvent)
}

func NewGame(settings GameSettings) Game {
	g := Game{seed: GetConfig().Seed}
	g.Reset(settings)
	return g
}

func (g *Game) Reset(settings GameSettings) {
	g.discardAIResults()
	g.id = uuid.NewString()
	g.settings = settings
	g.state.Reset(settings)
	g.history.Clear()
	g.createPlayers()
	g.turnStart = time.Now()
	g.startedAt = time.Time{}
	g.logMatchup()
}

func (g *Game) Start() {
	if g.state.Status == StatusNotStarted {
		g.state.Status = StatusRunning
		g.turnStart = time.Now()
		g.startedAt = g.turnStart
		log.Info().Str("game", g.id).Str("to_move", g.state.ToMove.String()).Msg("game started")
	}
}

// SetGameOverHook registers fn to be called once when a move wins the game.
func (g *Game) SetGameOverHook(fn func(GameOverEvent)) {
	g.onGameOver = fn
}

func (g *Game) ID() string {
	return g.id
}

func (g *Game) State() GameState {
	return g.state.Clone()
}

func (g *Game) History() MoveHistory {
	return g.history
}

func (g *Game) Settings() GameSettings {
	return g.settings
}

func (g *Game) TurnStartedAtMs() int64 {
	if g.turnStart.IsZero() {
		return 0
	}
	return g.turnStart.UnixMilli()
}

// TryApplyMove commits move for the side to move. An occupied or off-board
// cell yields ErrIllegalMove and leaves the game untouched.
func (g *Game) TryApplyMove(move Move) error {
	if g.state.Status != StatusRunning {
		return ErrGameNotRunning
	}
	player := g.state.ToMove
	if !g.state.Board.ApplyMove(move.Row, move.Col, player) {
		err := fmt.Errorf("%w: %s is occupied or off the board", ErrIllegalMove, move)
		g.state.LastMessage = err.Error()
		log.Warn().Str("game", g.id).Str("player", player.String()).Str("move", move.String()).Msg("rejected illegal move")
		return err
	}
	mover := g.playerForColor(player)
	isAiMove := mover != nil && !mover.IsHuman()
	depth := 0
	if ai, ok := mover.(*AIPlayer); ok {
		depth = ai.LastDepth()
	}
	elapsedMs := float64(time.Since(g.turnStart).Milliseconds())
	g.state.LastMove = move
	g.state.HasLastMove = true
	g.state.LastMessage = ""
	g.history.Push(HistoryEntry{
		Move:        move,
		Player:      player,
		ElapsedMs:   elapsedMs,
		IsAi:        isAiMove,
		Depth:       depth,
		Fingerprint: g.state.Board.Fingerprint(),
	})
	g.logMovePlayed(move, player, elapsedMs, isAiMove)

	if g.state.Board.CheckWin(move.Row, move.Col, player) {
		g.state.Status = winStatusFor(player)
		if line, ok := g.state.Board.WinningLine(move.Row, move.Col); ok {
			g.state.WinningLine = line
		}
		g.logWin(player)
		return nil
	}
	g.state.ToMove = otherPlayer(player)
	g.turnStart = time.Now()
	return nil
}

// Tick advances the game by at most one move. It returns true when a move
// was applied.
func (g *Game) Tick(ghostSink func(ghostPayload)) bool {
	if g.state.Status != StatusRunning {
		return false
	}
	player := g.currentPlayer()
	if player == nil {
		return false
	}
	if ai, ok := player.(*AIPlayer); ok {
		if ai.HasMoveReady() {
			return g.TryApplyMove(ai.TakeMove()) == nil
		}
		if !ai.IsThinking() {
			ai.StartThinking(g.state.Clone(), ghostSink)
		}
		return false
	}
	move, ok := player.ChooseMove(g.state.Clone())
	return ok && g.TryApplyMove(move) == nil
}

// SubmitHumanMove queues move for the human to move. The next Tick or
// PlayQueuedMove commits it.
func (g *Game) SubmitHumanMove(move Move) error {
	human, ok := g.currentPlayer().(*HumanPlayer)
	if !ok {
		return ErrNotHumanTurn
	}
	if g.state.Status != StatusRunning {
		return ErrGameNotRunning
	}
	human.Queue(move)
	return nil
}

// PlayQueuedMove commits the move queued for the human to move.
func (g *Game) PlayQueuedMove() error {
	human, ok := g.currentPlayer().(*HumanPlayer)
	if !ok {
		return ErrNotHumanTurn
	}
	move, ok := human.ChooseMove(g.state)
	if !ok {
		return fmt.Errorf("%w: no move queued", ErrIllegalMove)
	}
	return g.TryApplyMove(move)
}

func (g *Game) CurrentPlayerIsHuman() bool {
	player := g.currentPlayer()
	return player != nil && player.IsHuman()
}

func (g *Game) AiThinking() bool {
	ai, ok := g.currentPlayer().(*AIPlayer)
	if ok {
		return ai.IsThinking()
	}
	return false
}

func (g *Game) currentPlayer() Player {
	return g.playerForColor(g.state.ToMove)
}

func (g *Game) playerForColor(color PlayerColor) Player {
	if color == PlayerBlack {
		return g.blackPlayer
	}
	return g.whitePlayer
}

func (g *Game) createPlayers() {
	g.blackPlayer = g.newPlayer(g.settings.TypeFor(PlayerBlack), 1)
	g.whitePlayer = g.newPlayer(g.settings.TypeFor(PlayerWhite), 2)
}

func (g *Game) newPlayer(kind PlayerType, salt uint64) Player {
	if kind == PlayerHuman {
		return NewHumanPlayer()
	}
	seed := uint64(0)
	if g.seed != 0 {
		seed = g.seed + salt
	}
	return NewAIPlayer(seed)
}

func (g *Game) aiPlayers() []*AIPlayer {
	var ais []*AIPlayer
	for _, player := range []Player{g.blackPlayer, g.whitePlayer} {
		if ai, ok := player.(*AIPlayer); ok {
			ais = append(ais, ai)
		}
	}
	return ais
}

func (g *Game) discardAIResults() {
	for _, ai := range g.aiPlayers() {
		ai.Discard()
	}
}

func (g *Game) logMatchup() {
	label := func(t PlayerType) string {
		if t == PlayerAI {
			return "AI"
		}
		return "Human"
	}
	log.Debug().Str("game", g.id).Msgf("Black (%s) vs White (%s)", label(g.settings.BlackType), label(g.settings.WhiteType))
}

func (g *Game) logMovePlayed(move Move, player PlayerColor, elapsedMs float64, isAiMove bool) {
	log.Info().
		Str("game", g.id).
		Str("player", player.String()).
		Str("move", move.String()).
		Bool("ai", isAiMove).
		Float64("elapsed_ms", elapsedMs).
		Int("ply", g.history.Size()).
		Msg("move played")
}

func (g *Game) logWin(player PlayerColor) {
	duration := time.Duration(0)
	if !g.startedAt.IsZero() {
		duration = time.Since(g.startedAt)
	}
	log.Info().Str("game", g.id).Str("winner", player.String()).Int("moves", g.history.Size()).Dur("duration", duration).Str("transcript", g.history.Transcript()).Msg("game over")
	if g.onGameOver != nil {
		g.onGameOver(GameOverEvent{
			Event:      "GAME_OVER",
			GameID:     g.id,
			Winner:     player.String(),
			Moves:      g.history.Size(),
			Duration:   duration.Seconds(),
			Transcript: g.history.Transcript(),
		})
	}
}
