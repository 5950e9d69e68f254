package main

// Player supplies moves for one colour. Humans return false until a move
// has been queued for them.
type Player interface {
	IsHuman() bool
	ChooseMove(state GameState) (Move, bool)
}

// HumanPlayer holds at most one queued move; a newer submission replaces an
// older one that was never played.
type HumanPlayer struct {
	queued *Move
}

func NewHumanPlayer() *HumanPlayer {
	return &HumanPlayer{}
}

func (h *HumanPlayer) IsHuman() bool {
	return true
}

func (h *HumanPlayer) ChooseMove(GameState) (Move, bool) {
	if h.queued == nil {
		return Move{}, false
	}
	move := *h.queued
	h.queued = nil
	return move, true
}

func (h *HumanPlayer) Queue(move Move) {
	h.queued = &move
}
