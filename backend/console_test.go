package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type scriptedPlayer struct {
	moves []Move
	next  int
}

func (p *scriptedPlayer) IsHuman() bool {
	return false
}

func (p *scriptedPlayer) ChooseMove(GameState) (Move, bool) {
	if p.next >= len(p.moves) {
		return Move{}, false
	}
	move := p.moves[p.next]
	p.next++
	return move, true
}

func TestConsoleHumanWinsAfterRetries(t *testing.T) {
	ai := &scriptedPlayer{moves: []Move{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 0, Col: 3}}}
	input := strings.Join([]string{
		"hello",
		"J,10",
		"A,1",
		"J,11",
		"J 12",
		"j13",
		"J,14",
	}, "\n") + "\n"
	var out strings.Builder

	winner, finished, err := NewConsole(strings.NewReader(input), &out, PlayerWhite, ai).Run()
	require.NoError(t, err)
	require.True(t, finished)
	require.Equal(t, PlayerBlack, winner)

	text := out.String()
	require.Contains(t, text, "Invalid input. Try again.")
	require.Contains(t, text, "Invalid move. Try again.")
	require.Contains(t, text, "AI(W) is thinking...")
	require.Contains(t, text, "AI chooses: A,1")
	require.Contains(t, text, "Enter move (e.g., J,10): ")
	require.True(t, strings.HasSuffix(text, "B wins!\n"))
}

func TestConsoleEngineMovesFirstAsBlack(t *testing.T) {
	ai := &scriptedPlayer{moves: []Move{{Row: 9, Col: 9}}}
	var out strings.Builder

	_, finished, err := NewConsole(strings.NewReader(""), &out, PlayerBlack, ai).Run()
	require.NoError(t, err)
	require.False(t, finished)
	require.Contains(t, out.String(), "AI(B) is thinking...")
	require.Contains(t, out.String(), "AI chooses: J,10")
}

func TestConsoleEngineWithoutMoveFails(t *testing.T) {
	var out strings.Builder
	_, finished, err := NewConsole(strings.NewReader(""), &out, PlayerBlack, &scriptedPlayer{}).Run()
	require.ErrorIs(t, err, ErrSearchExhausted)
	require.False(t, finished)
}
