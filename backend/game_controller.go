package main

import "sync"

// Snapshot is a consistent view of the game taken under one lock.
type Snapshot struct {
	GameID          string
	Settings        GameSettings
	State           GameState
	History         MoveHistory
	AiThinking      bool
	TurnStartedAtMs int64
}

// GameController serialises access to a Game shared by the HTTP handlers
// and the tick loop.
type GameController struct {
	mu    sync.Mutex
	game  Game
	ghost func(ghostPayload)
	// wantGhost gates previews so searches skip them when nobody listens.
	wantGhost func() bool
	onOver    func(GameOverEvent)
}

func NewGameController(settings GameSettings) *GameController {
	return &GameController{game: NewGame(settings)}
}

func (gc *GameController) locked(fn func(g *Game)) {
	gc.mu.Lock()
	defer gc.mu.Unlock()
	fn(&gc.game)
}

func (gc *GameController) SetGhostPublisher(enabled func() bool, publish func(ghostPayload)) {
	gc.locked(func(*Game) {
		gc.wantGhost = enabled
		gc.ghost = publish
	})
}

// SetGameOverHook is carried over to every game started afterwards.
func (gc *GameController) SetGameOverHook(fn func(GameOverEvent)) {
	gc.locked(func(g *Game) {
		gc.onOver = fn
		g.SetGameOverHook(fn)
	})
}

// ApplyHumanMove queues move for the human to move and commits it at once.
func (gc *GameController) ApplyHumanMove(move Move) (err error) {
	gc.locked(func(g *Game) {
		if err = g.SubmitHumanMove(move); err != nil {
			return
		}
		err = g.PlayQueuedMove()
	})
	return err
}

// QueueHumanMove leaves move for the tick loop to commit.
func (gc *GameController) QueueHumanMove(move Move) (err error) {
	gc.locked(func(g *Game) {
		err = g.SubmitHumanMove(move)
	})
	return err
}

func (gc *GameController) Tick() (moved bool) {
	gc.locked(func(g *Game) {
		var sink func(ghostPayload)
		if gc.ghost != nil && (gc.wantGhost == nil || gc.wantGhost()) {
			sink = gc.ghost
		}
		moved = g.Tick(sink)
	})
	return moved
}

func (gc *GameController) Snapshot() (snap Snapshot) {
	gc.locked(func(g *Game) {
		snap = Snapshot{
			GameID:          g.ID(),
			Settings:        g.Settings(),
			State:           g.State(),
			History:         g.History(),
			AiThinking:      g.AiThinking(),
			TurnStartedAtMs: g.TurnStartedAtMs(),
		}
	})
	return snap
}

func (gc *GameController) State() GameState {
	return gc.Snapshot().State
}

func (gc *GameController) Settings() GameSettings {
	return gc.Snapshot().Settings
}

func (gc *GameController) LatestHistoryEntry() (HistoryEntry, bool) {
	return gc.Snapshot().History.Last()
}

// Reset replaces the game with a fresh, unstarted one.
func (gc *GameController) Reset(settings GameSettings) {
	gc.locked(func(g *Game) {
		g.Reset(settings)
		g.SetGameOverHook(gc.onOver)
	})
}

// Shutdown drops pending engine results and waits for searches still
// running in the background.
func (gc *GameController) Shutdown() {
	var ais []*AIPlayer
	gc.locked(func(g *Game) {
		g.discardAIResults()
		ais = g.aiPlayers()
	})
	for _, ai := range ais {
		ai.Wait()
	}
}

func (gc *GameController) StartGame(settings GameSettings) {
	gc.locked(func(g *Game) {
		g.Reset(settings)
		g.SetGameOverHook(gc.onOver)
		g.Start()
	})
}
