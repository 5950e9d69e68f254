package main

import (
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/OneOfOne/xxhash"
)

const BoardSize = 19

type Cell int

const (
	CellEmpty Cell = iota
	CellBlack
	CellWhite
)

var axisDirections = [4][2]int{{1, 0}, {0, 1}, {1, 1}, {1, -1}}

type Board struct {
	size  int
	cells []Cell
}

func NewBoard(boardSize int) Board {
	b := Board{}
	b.Reset(boardSize)
	return b
}

func (b *Board) Reset(boardSize int) {
	b.size = boardSize
	b.cells = make([]Cell, boardSize*boardSize)
}

func (b Board) At(row, col int) Cell {
	return b.cells[b.index(row, col)]
}

func (b Board) InBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < b.size && col < b.size
}

func (b Board) IsEmpty(row, col int) bool {
	return b.InBounds(row, col) && b.At(row, col) == CellEmpty
}

// ApplyMove places a stone for player. It reports false, leaving the board
// untouched, when the cell is off the board or already occupied.
func (b *Board) ApplyMove(row, col int, player PlayerColor) bool {
	if !b.IsEmpty(row, col) {
		return false
	}
	b.cells[b.index(row, col)] = CellFromPlayer(player)
	return true
}

// UndoMove clears a cell without validation. Only the search uses it, to
// take back stones it placed itself.
func (b *Board) UndoMove(row, col int) {
	b.cells[b.index(row, col)] = CellEmpty
}

func (b Board) CheckWin(row, col int, player PlayerColor) bool {
	target := CellFromPlayer(player)
	for _, dir := range axisDirections {
		count := 1
		count += b.countDirection(row, col, dir[0], dir[1], target)
		count += b.countDirection(row, col, -dir[0], -dir[1], target)
		if count >= 5 {
			return true
		}
	}
	return false
}

// WinningLine returns the stones of the first run of five or more passing
// through (row, col), ordered from one end to the other.
func (b Board) WinningLine(row, col int) ([]Move, bool) {
	if !b.InBounds(row, col) || b.At(row, col) == CellEmpty {
		return nil, false
	}
	target := b.At(row, col)
	for _, dir := range axisDirections {
		back := b.countDirection(row, col, -dir[0], -dir[1], target)
		forward := b.countDirection(row, col, dir[0], dir[1], target)
		if back+forward+1 < 5 {
			continue
		}
		line := make([]Move, 0, back+forward+1)
		for i := -back; i <= forward; i++ {
			line = append(line, Move{Row: row + i*dir[0], Col: col + i*dir[1]})
		}
		return line, true
	}
	return nil, false
}

func (b Board) countDirection(row, col, dr, dc int, target Cell) int {
	count := 0
	r := row + dr
	c := col + dc
	for b.InBounds(r, c) && b.At(r, c) == target {
		count++
		r += dr
		c += dc
	}
	return count
}

func (b Board) StoneCount() int {
	count := 0
	for _, cell := range b.cells {
		if cell != CellEmpty {
			count++
		}
	}
	return count
}

func (b Board) Size() int {
	return b.size
}

func (b Board) Clone() Board {
	clone := Board{size: b.size}
	clone.cells = make([]Cell, len(b.cells))
	copy(clone.cells, b.cells)
	return clone
}

func (b Board) Equal(other Board) bool {
	if b.size != other.size || len(b.cells) != len(other.cells) {
		return false
	}
	for i := range b.cells {
		if b.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// Fingerprint hashes the grid contents. Equal boards share a fingerprint.
func (b Board) Fingerprint() uint64 {
	h := xxhash.New64()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(b.size))
	_, _ = h.Write(buf[:])
	raw := make([]byte, len(b.cells))
	for i, cell := range b.cells {
		raw[i] = byte(cell)
	}
	_, _ = h.Write(raw)
	return h.Sum64()
}

// Render writes the grid as text: a header of column letters, then one line
// per row prefixed with its 1-indexed number.
func (b Board) Render(w io.Writer) error {
	var sb strings.Builder
	sb.WriteString("  ")
	for col := 0; col < b.size; col++ {
		if col > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(columnLetter(col))
	}
	sb.WriteByte('\n')
	for row := 0; row < b.size; row++ {
		sb.WriteString(fmt.Sprintf("%2d ", row+1))
		for col := 0; col < b.size; col++ {
			if col > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(b.At(row, col).Symbol())
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func (b Board) String() string {
	var sb strings.Builder
	_ = b.Render(&sb)
	return sb.String()
}

func (b Board) index(row, col int) int {
	return row*b.size + col
}

func (c Cell) String() string {
	switch c {
	case CellBlack:
		return "Black"
	case CellWhite:
		return "White"
	default:
		return "Empty"
	}
}

func (c Cell) Symbol() byte {
	switch c {
	case CellBlack:
		return 'B'
	case CellWhite:
		return 'W'
	default:
		return '.'
	}
}

func CellFromPlayer(player PlayerColor) Cell {
	if player == PlayerBlack {
		return CellBlack
	}
	return CellWhite
}
