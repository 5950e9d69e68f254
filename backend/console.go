package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// Console plays one game between a human on in/out and the engine.
type Console struct {
	in      *bufio.Scanner
	out     io.Writer
	aiColor PlayerColor
	ai      Player
	game    Game
}

func NewConsole(in io.Reader, out io.Writer, aiColor PlayerColor, ai Player) *Console {
	c := &Console{
		in:      bufio.NewScanner(in),
		out:     out,
		aiColor: aiColor,
		ai:      ai,
	}
	c.game = NewGame(SettingsForAI(aiColor))
	c.game.Start()
	return c
}

// Run alternates turns until a move wins or input runs out. It returns the
// winner when the game finished.
func (c *Console) Run() (PlayerColor, bool, error) {
	for {
		state := c.game.State()
		if state.Status == StatusBlackWon || state.Status == StatusWhiteWon {
			winner := PlayerBlack
			if state.Status == StatusWhiteWon {
				winner = PlayerWhite
			}
			if err := state.Board.Render(c.out); err != nil {
				return winner, true, err
			}
			fmt.Fprintf(c.out, "%s wins!\n", winner)
			return winner, true, nil
		}
		if err := state.Board.Render(c.out); err != nil {
			return PlayerBlack, false, err
		}

		var move Move
		if state.ToMove == c.aiColor {
			fmt.Fprintf(c.out, "AI(%s) is thinking...\n", c.aiColor)
			chosen, ok := c.ai.ChooseMove(state)
			if !ok {
				return PlayerBlack, false, fmt.Errorf("engine has no move: %w", ErrSearchExhausted)
			}
			move = chosen
			fmt.Fprintf(c.out, "AI chooses: %c,%d\n", columnLetter(move.Col), move.Row+1)
		} else {
			parsed, err := c.readMove()
			if errors.Is(err, io.EOF) {
				return PlayerBlack, false, nil
			}
			if err != nil {
				return PlayerBlack, false, err
			}
			move = parsed
		}

		if err := c.game.TryApplyMove(move); err != nil {
			if errors.Is(err, ErrIllegalMove) {
				fmt.Fprintln(c.out, "Invalid move. Try again.")
				continue
			}
			return PlayerBlack, false, err
		}
	}
}

func (c *Console) readMove() (Move, error) {
	for {
		fmt.Fprint(c.out, "Enter move (e.g., J,10): ")
		if !c.in.Scan() {
			if err := c.in.Err(); err != nil {
				return Move{}, fmt.Errorf("read move: %w", err)
			}
			return Move{}, io.EOF
		}
		line := strings.TrimSpace(c.in.Text())
		move, err := ParseMove(line, c.game.State().Board.Size())
		if err != nil {
			log.Debug().Err(err).Msg("bad move input")
			fmt.Fprintln(c.out, "Invalid input. Try again.")
			continue
		}
		return move, nil
	}
}
