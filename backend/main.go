package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

type options struct {
	mode       string
	configPath string
	player     string
	timeLimit  time.Duration
	addr       string
	depth      int
	games      int
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		log.Error().Err(err).Msg("exiting")
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}
	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	cfg = opts.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	configStore.Update(cfg)

	// Board output owns stdout in console mode.
	setupLogging(cfg, stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch opts.mode {
	case "console":
		aiColor, err := ParsePlayerColor(opts.player)
		if err != nil {
			return err
		}
		console := NewConsole(stdin, stdout, aiColor, NewAIPlayer(cfg.Seed))
		_, _, err = console.Run()
		return err
	case "server":
		controller := NewGameController(DefaultGameSettings())
		if len(cfg.KafkaBrokers) > 0 {
			producer, err := NewEventProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
			if err != nil {
				log.Warn().Err(err).Msg("analytics disabled")
			} else {
				defer producer.Close()
				controller.SetGameOverHook(producer.Hook())
			}
		}
		return runServer(ctx, cfg, controller)
	case "selfplay":
		_, err := RunSelfPlay(ctx, cfg, cfg.SelfPlayGames)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("unknown mode %q", opts.mode)
	}
}

func parseOptions(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("omok", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.mode, "mode", "console", "console, server or selfplay")
	fs.StringVar(&opts.configPath, "config", "", "path to a JSON config file")
	fs.StringVar(&opts.player, "player", "B", "colour played by the engine in console mode (B or W)")
	fs.DurationVar(&opts.timeLimit, "time", 0, "per-move search budget, overrides the config")
	fs.StringVar(&opts.addr, "addr", "", "listen address in server mode, overrides the config")
	fs.IntVar(&opts.depth, "depth", -1, "maximum search depth, 0 for time bound only")
	fs.IntVar(&opts.games, "games", 0, "number of self-play games")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func (o options) apply(cfg Config) Config {
	if o.timeLimit > 0 {
		cfg.AiTimeBudgetMs = int(o.timeLimit / time.Millisecond)
	}
	if o.addr != "" {
		cfg.ServerAddr = o.addr
	}
	if o.depth >= 0 {
		cfg.AiMaxDepth = o.depth
	}
	if o.games > 0 {
		cfg.SelfPlayGames = o.games
	}
	return cfg
}
