package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrIllegalMove    = errors.New("illegal move")
	ErrMalformedInput = errors.New("malformed move")
)

type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (m Move) IsValid(boardSize int) bool {
	return m.Row >= 0 && m.Col >= 0 && m.Row < boardSize && m.Col < boardSize
}

// String formats the move as column letter followed by the 1-indexed row,
// e.g. "J10".
func (m Move) String() string {
	if m.Col < 0 || m.Col >= 26 {
		return fmt.Sprintf("(%d,%d)", m.Row, m.Col)
	}
	return fmt.Sprintf("%c%d", columnLetter(m.Col), m.Row+1)
}

// ParseMove reads a letter column and a 1-indexed row. "J,10", "J 10" and
// "j10" all name the same cell.
func ParseMove(text string, boardSize int) (Move, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Move{}, fmt.Errorf("%w: empty input", ErrMalformedInput)
	}
	letter := raw[0]
	if letter >= 'a' && letter <= 'z' {
		letter -= 'a' - 'A'
	}
	if letter < 'A' || letter > 'Z' {
		return Move{}, fmt.Errorf("%w: %q does not start with a column letter", ErrMalformedInput, text)
	}
	rest := strings.TrimSpace(raw[1:])
	rest = strings.TrimSpace(strings.TrimPrefix(rest, ","))
	row, err := strconv.Atoi(rest)
	if err != nil {
		return Move{}, fmt.Errorf("%w: %q has no row number", ErrMalformedInput, text)
	}
	move := Move{Row: row - 1, Col: int(letter - 'A')}
	if !move.IsValid(boardSize) {
		return Move{}, fmt.Errorf("%w: %q is outside the %dx%d board", ErrMalformedInput, text, boardSize, boardSize)
	}
	return move, nil
}

func columnLetter(col int) byte {
	return byte('A' + col)
}
