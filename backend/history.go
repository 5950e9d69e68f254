package main

import "strings"

// HistoryEntry records one committed move together with the position hash
// it produced.
type HistoryEntry struct {
	Move        Move
	Player      PlayerColor
	ElapsedMs   float64
	IsAi        bool
	Depth       int
	Fingerprint uint64
}

type MoveHistory struct {
	entries []HistoryEntry
}

func (h *MoveHistory) Clear() {
	h.entries = nil
}

func (h *MoveHistory) Push(entry HistoryEntry) {
	h.entries = append(h.entries, entry)
}

func (h MoveHistory) Size() int {
	return len(h.entries)
}

func (h MoveHistory) Last() (HistoryEntry, bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h MoveHistory) All() []HistoryEntry {
	return append([]HistoryEntry(nil), h.entries...)
}

// Transcript lists the moves in play order, e.g. "J10 K11 J11".
func (h MoveHistory) Transcript() string {
	moves := make([]string, 0, len(h.entries))
	for _, entry := range h.entries {
		moves = append(moves, entry.Move.String())
	}
	return strings.Join(moves, " ")
}

// Replay rebuilds the board by playing every entry on an empty grid. It
// reports false if an entry does not fit the board it builds.
func (h MoveHistory) Replay(size int) (Board, bool) {
	board := NewBoard(size)
	for _, entry := range h.entries {
		if !board.ApplyMove(entry.Move.Row, entry.Move.Col, entry.Player) {
			return board, false
		}
	}
	return board, true
}
