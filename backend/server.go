package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type StatusResponse struct {
	GameID          string            `json:"game_id"`
	Settings        GameSettingsDTO   `json:"settings"`
	NextPlayer      int               `json:"next_player"`
	Winner          int               `json:"winner"`
	BoardSize       int               `json:"board_size"`
	Status          string            `json:"status"`
	Board           [][]int           `json:"board"`
	History         []historyEntryDTO `json:"history"`
	WinningLine     []Move            `json:"winning_line"`
	AiThinking      bool              `json:"ai_thinking"`
	TurnStartedAtMs int64             `json:"turn_started_at_ms"`
}

type GameSettingsDTO struct {
	Mode        string `json:"mode"`
	HumanPlayer int    `json:"human_player"`
}

type apiMove struct {
	Row      *int   `json:"row"`
	Col      *int   `json:"col"`
	Notation string `json:"notation"`
}

type historyEntryDTO struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Notation  string  `json:"notation"`
	Player    int     `json:"player"`
	ElapsedMs float64 `json:"elapsed_ms"`
	IsAi      bool    `json:"is_ai"`
	Depth     int     `json:"depth"`
}

// historyResponse reports whether replaying the history reproduces the
// live board.
type historyResponse struct {
	GameID     string            `json:"game_id"`
	History    []historyEntryDTO `json:"history"`
	Transcript string            `json:"transcript"`
	Consistent bool              `json:"consistent"`
}

type historyPayload struct {
	History []historyEntryDTO `json:"history"`
}

var wsUpgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// runServer serves the REST and websocket API until ctx is cancelled.
func runServer(ctx context.Context, cfg Config, controller *GameController) error {
	feed := NewBroadcaster("game", 64, false)
	ghosts := NewBroadcaster("ghost", 32, true)
	controller.SetGhostPublisher(ghosts.HasSubscribers, func(p ghostPayload) {
		ghosts.Publish("ghost", p)
	})

	server := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           newRouter(controller, feed, ghosts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		feed.Run(gctx)
		return nil
	})
	g.Go(func() error {
		ghosts.Run(gctx)
		return nil
	})
	g.Go(func() error {
		runTickLoop(gctx, cfg.TickInterval(), controller, feed)
		return nil
	})
	g.Go(func() error {
		log.Info().Str("addr", cfg.ServerAddr).Msg("backend listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", cfg.ServerAddr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("graceful shutdown failed")
			return server.Close()
		}
		return nil
	})
	err := g.Wait()
	controller.Shutdown()
	return err
}

func runTickLoop(ctx context.Context, interval time.Duration, controller *GameController, feed *Broadcaster) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !controller.Tick() {
				continue
			}
			if entry, ok := controller.LatestHistoryEntry(); ok {
				feed.Publish("history", historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
			}
			feed.Publish("status", controllerStatus(controller))
		}
	}
}

func newRouter(controller *GameController, feed, ghosts *Broadcaster) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/status", func(w http.ResponseWriter, r *http.Request) {
		status := controllerStatus(controller)
		etag := statusETag(status, controller.State().Board)
		w.Header().Set("ETag", etag)
		if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/api/history", func(w http.ResponseWriter, r *http.Request) {
		snap := controller.Snapshot()
		replayed, ok := snap.History.Replay(snap.State.Board.Size())
		writeJSON(w, http.StatusOK, historyResponse{
			GameID:     snap.GameID,
			History:    historyToDTO(snap.History),
			Transcript: snap.History.Transcript(),
			Consistent: ok && replayed.Equal(snap.State.Board),
		})
	})

	r.Get("/api/board", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_ = controller.State().Board.Render(w)
	})

	r.Post("/api/start", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Settings GameSettingsDTO `json:"settings"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		controller.StartGame(settingsFromDTO(payload.Settings, DefaultGameSettings()))
		status := controllerStatus(controller)
		writeJSON(w, http.StatusOK, status)
		feed.Publish("reset", status)
	})

	r.Post("/api/stop", func(w http.ResponseWriter, r *http.Request) {
		controller.Reset(controller.Settings())
		status := controllerStatus(controller)
		writeJSON(w, http.StatusOK, status)
		feed.Publish("reset", status)
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GetConfig())
	})

	r.Post("/api/config", func(w http.ResponseWriter, r *http.Request) {
		cfg := GetConfig()
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		if err := cfg.Validate(); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		configStore.Update(cfg)
		writeJSON(w, http.StatusOK, cfg)
	})

	r.Post("/api/move", func(w http.ResponseWriter, r *http.Request) {
		var payload apiMove
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
			return
		}
		move, err := payload.toMove(controller.State().Board.Size())
		if err != nil {
			writeError(w, err)
			return
		}
		if err := controller.ApplyHumanMove(move); err != nil {
			writeError(w, err)
			return
		}
		if entry, ok := controller.LatestHistoryEntry(); ok {
			feed.Publish("history", historyPayload{History: []historyEntryDTO{historyEntryToDTO(entry)}})
		}
		status := controllerStatus(controller)
		feed.Publish("status", status)
		writeJSON(w, http.StatusOK, status)
	})

	r.Get("/ws/", func(w http.ResponseWriter, r *http.Request) {
		sendStatus := func(sub *Subscriber) {
			sub.deliver(wsMessage{Type: "status", Payload: mustMarshal(controllerStatus(controller))})
		}
		feed.ServeWS(w, r, sendStatus, func(sub *Subscriber, msg wsMessage) {
			switch msg.Type {
			case "request_status":
				sendStatus(sub)
			case "move":
				var payload apiMove
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					sub.deliver(wsMessage{Type: "error", Payload: mustMarshal(map[string]string{"error": "invalid payload"})})
					return
				}
				move, err := payload.toMove(BoardSize)
				if err == nil {
					err = controller.QueueHumanMove(move)
				}
				if err != nil {
					sub.deliver(wsMessage{Type: "error", Payload: mustMarshal(map[string]string{"error": err.Error()})})
				}
			}
		})
	})
	r.Get("/ws/ghost", func(w http.ResponseWriter, r *http.Request) {
		ghosts.ServeWS(w, r, nil, nil)
	})
	return r
}

func (m apiMove) toMove(boardSize int) (Move, error) {
	if strings.TrimSpace(m.Notation) != "" {
		return ParseMove(m.Notation, boardSize)
	}
	if m.Row == nil || m.Col == nil {
		return Move{}, fmt.Errorf("%w: row and col or notation required", ErrMalformedInput)
	}
	return Move{Row: *m.Row, Col: *m.Col}, nil
}

func controllerStatus(controller *GameController) StatusResponse {
	snap := controller.Snapshot()
	state := snap.State
	return StatusResponse{
		GameID:          snap.GameID,
		Settings:        controllerSettingsDTO(snap.Settings),
		NextPlayer:      playerToInt(state.ToMove),
		Winner:          winnerFromStatus(state.Status),
		BoardSize:       state.Board.Size(),
		Status:          statusToString(state.Status),
		Board:           boardToSlice(state.Board),
		History:         historyToDTO(snap.History),
		WinningLine:     append([]Move(nil), state.WinningLine...),
		AiThinking:      snap.AiThinking,
		TurnStartedAtMs: snap.TurnStartedAtMs,
	}
}

func statusETag(status StatusResponse, board Board) string {
	key := fmt.Sprintf("%s|%016x|%d|%s|%v", status.GameID, board.Fingerprint(), len(status.History), status.Status, status.AiThinking)
	return fmt.Sprintf("\"%016x\"", xxhash.ChecksumString64(key))
}

func settingsFromDTO(dto GameSettingsDTO, base GameSettings) GameSettings {
	settings := base
	switch dto.Mode {
	case "ai_vs_ai":
		settings.BlackType = PlayerAI
		settings.WhiteType = PlayerAI
	case "human_vs_human":
		settings.BlackType = PlayerHuman
		settings.WhiteType = PlayerHuman
	case "ai_vs_human":
		if dto.HumanPlayer == 1 {
			settings = SettingsForAI(PlayerWhite)
		} else {
			settings = SettingsForAI(PlayerBlack)
		}
	}
	return settings
}

func controllerSettingsDTO(settings GameSettings) GameSettingsDTO {
	switch {
	case settings.BlackType == PlayerAI && settings.WhiteType == PlayerAI:
		return GameSettingsDTO{Mode: "ai_vs_ai"}
	case settings.BlackType == PlayerHuman && settings.WhiteType == PlayerHuman:
		return GameSettingsDTO{Mode: "human_vs_human", HumanPlayer: 1}
	case settings.BlackType == PlayerHuman:
		return GameSettingsDTO{Mode: "ai_vs_human", HumanPlayer: 1}
	default:
		return GameSettingsDTO{Mode: "ai_vs_human", HumanPlayer: 2}
	}
}

func boardToSlice(board Board) [][]int {
	size := board.Size()
	rows := make([][]int, size)
	for row := 0; row < size; row++ {
		rows[row] = make([]int, size)
		for col := 0; col < size; col++ {
			rows[row][col] = cellToInt(board.At(row, col))
		}
	}
	return rows
}

func cellToInt(cell Cell) int {
	switch cell {
	case CellBlack:
		return 1
	case CellWhite:
		return 2
	default:
		return 0
	}
}

func playerToInt(player PlayerColor) int {
	if player == PlayerWhite {
		return 2
	}
	return 1
}

func winnerFromStatus(status GameStatus) int {
	switch status {
	case StatusBlackWon:
		return 1
	case StatusWhiteWon:
		return 2
	default:
		return 0
	}
}

func statusToString(status GameStatus) string {
	switch status {
	case StatusNotStarted:
		return "not_started"
	case StatusRunning:
		return "running"
	case StatusBlackWon:
		return "black_won"
	case StatusWhiteWon:
		return "white_won"
	default:
		return "unknown"
	}
}

func historyToDTO(history MoveHistory) []historyEntryDTO {
	entries := history.All()
	out := make([]historyEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, historyEntryToDTO(entry))
	}
	return out
}

func historyEntryToDTO(entry HistoryEntry) historyEntryDTO {
	return historyEntryDTO{
		Row:       entry.Move.Row,
		Col:       entry.Move.Col,
		Notation:  entry.Move.String(),
		Player:    playerToInt(entry.Player),
		ElapsedMs: entry.ElapsedMs,
		IsAi:      entry.IsAi,
		Depth:     entry.Depth,
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrIllegalMove), errors.Is(err, ErrMalformedInput):
		status = http.StatusBadRequest
	case errors.Is(err, ErrNotHumanTurn), errors.Is(err, ErrGameNotRunning):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		log.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

func mustMarshal(v any) json.RawMessage {
	data, _ := json.Marshal(v)
	return data
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
