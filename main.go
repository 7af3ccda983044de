// ChessPlay - a chess game for the terminal
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/NikoM94/JSChess/internal/board"
	"github.com/NikoM94/JSChess/internal/cli"
	"github.com/NikoM94/JSChess/internal/engine"
	"github.com/NikoM94/JSChess/internal/game"
	"github.com/NikoM94/JSChess/internal/storage"
)

var (
	fenFlag     = flag.String("fen", "", "start from this position instead of the initial one")
	dbFlag      = flag.String("db", os.Getenv("CHESSPLAY_DB"), "database directory (default: platform data dir, \"none\" disables saving)")
	loadFlag    = flag.String("load", "", "resume the saved game with this id or id prefix")
	vsFlag      = flag.String("vs", "computer", "opponent: computer or human")
	colorFlag   = flag.String("color", "white", "your color against the computer")
	levelFlag   = flag.String("level", "medium", "computer strength: easy, medium or hard")
	depthFlag   = flag.Int("depth", 0, "override the computer's search depth")
	workersFlag = flag.Int("workers", envInt("CHESSPLAY_WORKERS", 1), "goroutines used for legality checks")
	noColorFlag = flag.Bool("no-color", false, "disable colored output")
	logFlag     = flag.String("log", "", "append a per-move log to this file")
)

func main() {
	log.SetFlags(0)
	flag.Parse()

	if *noColorFlag || !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	logger := log.New(io.Discard, "", 0)
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatalf("failed to open log: %s", err)
		}
		defer f.Close()
		logger = log.New(f, "", log.LstdFlags)
	}

	store, err := openStore(*dbFlag)
	if err != nil {
		log.Fatalf("failed to open database: %s", err)
	}
	if store != nil {
		defer store.Close()
		applyPreferences(store)
	}

	opts := []game.Option{game.WithLogger(logger), game.WithWorkers(*workersFlag)}
	g, err := newGame(store, opts)
	if err != nil {
		log.Fatal(err)
	}

	cfg := cli.Config{Store: store, Workers: *workersFlag, Logger: logger}
	switch strings.ToLower(*vsFlag) {
	case "computer":
		human, err := parseColor(*colorFlag)
		if err != nil {
			log.Fatal(err)
		}
		level, err := engine.ParseDifficulty(*levelFlag)
		if err != nil {
			log.Fatal(err)
		}
		eng := engine.NewEngine(16)
		eng.SetDifficulty(level)
		eng.SetDepth(*depthFlag)
		eng.SetLogger(logger)
		cfg.Engine = eng
		cfg.Computer = human.Other()
	case "human":
	default:
		log.Fatalf("unknown opponent %q", *vsFlag)
	}

	if store != nil {
		if err := store.SavePreferences(preferences(cfg)); err != nil {
			logger.Printf("save preferences: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("%s (%s) - type \"help\" for commands\n", g.Name, g.ID)
	session := cli.NewSession(g, os.Stdout, cfg)
	if err := session.Run(ctx, os.Stdin); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println()
			return
		}
		log.Fatal(err)
	}
}

func openStore(dir string) (*storage.Storage, error) {
	switch dir {
	case "none":
		return nil, nil
	case "":
		return storage.NewStorage()
	default:
		return storage.Open(dir)
	}
}

func newGame(store *storage.Storage, opts []game.Option) (*game.Game, error) {
	if *loadFlag != "" {
		if store == nil {
			return nil, fmt.Errorf("-load needs a database")
		}
		rec, err := store.LoadGame(*loadFlag)
		if err != nil {
			return nil, err
		}
		return cli.Resume(rec, opts...)
	}
	if *fenFlag != "" {
		return game.FromFEN(*fenFlag, opts...)
	}
	return game.New(opts...), nil
}

// applyPreferences fills flags the user did not set from saved preferences.
func applyPreferences(store *storage.Storage) {
	prefs, err := store.LoadPreferences()
	if err != nil {
		return
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["level"] && prefs.Difficulty != "" {
		*levelFlag = prefs.Difficulty
	}
	if !set["vs"] && prefs.GameMode == storage.ModeHumanVsHuman {
		*vsFlag = "human"
	}
	if !set["color"] && prefs.PlayerColor == storage.ColorBlack {
		*colorFlag = "black"
	}
	if !set["workers"] && prefs.Workers > 0 {
		*workersFlag = prefs.Workers
	}
	if !set["no-color"] && !prefs.Colors {
		*noColorFlag = true
		color.NoColor = true
	}
}

func preferences(cfg cli.Config) *storage.UserPreferences {
	prefs := storage.DefaultPreferences()
	prefs.Difficulty = strings.ToLower(*levelFlag)
	prefs.Workers = *workersFlag
	prefs.Colors = !*noColorFlag
	if cfg.Engine == nil {
		prefs.GameMode = storage.ModeHumanVsHuman
	}
	if cfg.Computer == board.White {
		prefs.PlayerColor = storage.ColorBlack
	}
	return prefs
}

func parseColor(s string) (board.Color, error) {
	switch strings.ToLower(s) {
	case "white", "w":
		return board.White, nil
	case "black", "b":
		return board.Black, nil
	}
	return board.NoColor, fmt.Errorf("unknown color %q", s)
}

func envInt(name string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return v
	}
	return def
}
