package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

type SelfPlayResult struct {
	GameID   string
	Winner   PlayerColor
	Finished bool
	Moves    int
	Duration time.Duration
}

// RunSelfPlay plays engine against engine. Each game opens with
// cfg.SelfPlayOpeningPlies random candidate moves so the games differ.
func RunSelfPlay(ctx context.Context, cfg Config, games int) ([]SelfPlayResult, error) {
	if games < 0 {
		return nil, fmt.Errorf("self-play game count must not be negative, got %d", games)
	}
	if games == 0 {
		return nil, nil
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := rand.New(rand.NewSource(seed))
	results := make([]SelfPlayResult, 0, games)
	blackWins, whiteWins := 0, 0
	for i := 0; i < games; i++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		log.Info().Msgf("starting self-play game %d of %d...", i+1, games)
		result, err := playSelfPlayGame(ctx, cfg, rng)
		if err != nil {
			return results, fmt.Errorf("self-play game %d: %w", i+1, err)
		}
		results = append(results, result)
		if result.Finished {
			if result.Winner == PlayerBlack {
				blackWins++
			} else {
				whiteWins++
			}
		}
		log.Info().
			Str("game", result.GameID).
			Bool("finished", result.Finished).
			Str("winner", result.Winner.String()).
			Int("moves", result.Moves).
			Dur("duration", result.Duration).
			Msgf("completed self-play game %d", i+1)
	}
	log.Info().Int("games", len(results)).Int("black_wins", blackWins).Int("white_wins", whiteWins).Msg("self-play complete")
	return results, nil
}

func playSelfPlayGame(ctx context.Context, cfg Config, rng *rand.Rand) (SelfPlayResult, error) {
	settings := DefaultGameSettings()
	settings.BlackType = PlayerAI
	settings.WhiteType = PlayerAI
	game := NewGame(settings)
	game.Start()
	start := time.Now()

	for ply := 0; ply < cfg.SelfPlayOpeningPlies; ply++ {
		candidates := collectCandidateMoves(game.state.Board)
		if len(candidates) == 0 {
			break
		}
		move := candidates[rng.Intn(len(candidates))]
		if err := game.TryApplyMove(move); err != nil {
			return SelfPlayResult{}, err
		}
	}

	maxPlies := game.state.Board.Size() * game.state.Board.Size()
	for game.state.Status == StatusRunning && game.history.Size() < maxPlies {
		if err := ctx.Err(); err != nil {
			return SelfPlayResult{}, err
		}
		move, ok := game.currentPlayer().ChooseMove(game.State())
		if !ok {
			break
		}
		if err := game.TryApplyMove(move); err != nil {
			return SelfPlayResult{}, err
		}
	}

	result := SelfPlayResult{
		GameID:   game.ID(),
		Moves:    game.history.Size(),
		Duration: time.Since(start),
	}
	switch game.state.Status {
	case StatusBlackWon:
		result.Finished = true
		result.Winner = PlayerBlack
	case StatusWhiteWon:
		result.Finished = true
		result.Winner = PlayerWhite
	}
	return result, nil
}
