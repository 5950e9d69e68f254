package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func humanSettings() GameSettings {
	settings := DefaultGameSettings()
	settings.BlackType = PlayerHuman
	settings.WhiteType = PlayerHuman
	return settings
}

func TestTryApplyMoveAlternatesTurns(t *testing.T) {
	game := NewGame(humanSettings())
	require.ErrorIs(t, game.TryApplyMove(Move{Row: 9, Col: 9}), ErrGameNotRunning)

	game.Start()
	require.NoError(t, game.TryApplyMove(Move{Row: 9, Col: 9}))
	state := game.State()
	require.Equal(t, PlayerWhite, state.ToMove)
	require.Equal(t, CellBlack, state.Board.At(9, 9))
	require.True(t, state.HasLastMove)

	entry, ok := game.History().Last()
	require.True(t, ok)
	require.Equal(t, PlayerBlack, entry.Player)
	require.Equal(t, state.Board.Fingerprint(), entry.Fingerprint)
	require.False(t, entry.IsAi)
}

func TestTryApplyMoveRejectsIllegal(t *testing.T) {
	game := NewGame(humanSettings())
	game.Start()
	require.NoError(t, game.TryApplyMove(Move{Row: 9, Col: 9}))

	for _, move := range []Move{{Row: 9, Col: 9}, {Row: -1, Col: 3}, {Row: 3, Col: 19}} {
		err := game.TryApplyMove(move)
		require.ErrorIs(t, err, ErrIllegalMove)
	}
	state := game.State()
	require.Equal(t, PlayerWhite, state.ToMove)
	require.Equal(t, 1, state.Board.StoneCount())
	require.Equal(t, 1, game.History().Size())
	require.NotEmpty(t, state.LastMessage)
}

func TestGameDetectsWinAndFiresHook(t *testing.T) {
	game := NewGame(humanSettings())
	var events []GameOverEvent
	game.SetGameOverHook(func(e GameOverEvent) { events = append(events, e) })
	game.Start()

	for i := 0; i < 4; i++ {
		require.NoError(t, game.TryApplyMove(Move{Row: 3, Col: 3 + i}))
		require.NoError(t, game.TryApplyMove(Move{Row: 15, Col: 3 + i}))
	}
	require.NoError(t, game.TryApplyMove(Move{Row: 3, Col: 7}))

	state := game.State()
	require.Equal(t, StatusBlackWon, state.Status)
	require.Equal(t, rowRun(3, 3, 7), state.WinningLine)
	require.Equal(t, PlayerBlack, state.ToMove)
	require.ErrorIs(t, game.TryApplyMove(Move{Row: 15, Col: 7}), ErrGameNotRunning)

	require.Len(t, events, 1)
	require.Equal(t, "GAME_OVER", events[0].Event)
	require.Equal(t, game.ID(), events[0].GameID)
	require.Equal(t, "B", events[0].Winner)
	require.Equal(t, 9, events[0].Moves)
}

func TestGameResetStartsFreshGame(t *testing.T) {
	game := NewGame(humanSettings())
	game.Start()
	require.NoError(t, game.TryApplyMove(Move{Row: 1, Col: 1}))
	firstID := game.ID()

	game.Reset(humanSettings())
	require.NotEqual(t, firstID, game.ID())
	require.Zero(t, game.History().Size())
	require.Equal(t, StatusNotStarted, game.State().Status)
	require.Zero(t, game.State().Board.StoneCount())
}

func TestTickAppliesPendingHumanMove(t *testing.T) {
	game := NewGame(humanSettings())
	game.Start()
	require.False(t, game.Tick(nil))
	require.NoError(t, game.SubmitHumanMove(Move{Row: 4, Col: 4}))
	require.True(t, game.Tick(nil))
	require.Equal(t, CellBlack, game.State().Board.At(4, 4))
	require.False(t, game.Tick(nil))
}

func TestSubmitHumanMoveChecksTurnAndStatus(t *testing.T) {
	game := NewGame(humanSettings())
	require.ErrorIs(t, game.SubmitHumanMove(Move{Row: 4, Col: 4}), ErrGameNotRunning)

	game.Start()
	require.ErrorIs(t, game.PlayQueuedMove(), ErrIllegalMove)
	require.NoError(t, game.SubmitHumanMove(Move{Row: 4, Col: 4}))
	require.NoError(t, game.PlayQueuedMove())

	require.NoError(t, game.SubmitHumanMove(Move{Row: 4, Col: 4}))
	require.ErrorIs(t, game.PlayQueuedMove(), ErrIllegalMove)
	require.Equal(t, PlayerWhite, game.State().ToMove)
}

func TestTickRunsEngineInBackground(t *testing.T) {
	withConfig(t, func(c *Config) {
		c.AiTimeBudgetMs = 5000
		c.AiMaxDepth = 1
	})
	game := NewGame(DefaultGameSettings())
	game.Start()
	require.ErrorIs(t, game.SubmitHumanMove(Move{Row: 0, Col: 0}), ErrNotHumanTurn)

	require.Eventually(t, func() bool { return game.Tick(nil) }, 5*time.Second, 5*time.Millisecond)
	state := game.State()
	require.Equal(t, CellBlack, state.Board.At(9, 9))
	require.Equal(t, PlayerWhite, state.ToMove)
	entry, ok := game.History().Last()
	require.True(t, ok)
	require.True(t, entry.IsAi)
	require.Equal(t, 1, entry.Depth)
	require.True(t, game.CurrentPlayerIsHuman())
}

func TestHistoryReplaysToCurrentBoard(t *testing.T) {
	game := NewGame(humanSettings())
	game.Start()
	for _, m := range []Move{{Row: 9, Col: 9}, {Row: 10, Col: 10}, {Row: 9, Col: 10}} {
		require.NoError(t, game.TryApplyMove(m))
	}
	history := game.History()
	require.Equal(t, "J10 K11 K10", history.Transcript())

	board, ok := history.Replay(BoardSize)
	require.True(t, ok)
	require.True(t, board.Equal(game.State().Board))
	last, _ := history.Last()
	require.Equal(t, board.Fingerprint(), last.Fingerprint)
}
