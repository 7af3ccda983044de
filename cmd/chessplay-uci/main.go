package main

import (
	"flag"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"strconv"

	"github.com/NikoM94/JSChess/internal/engine"
	"github.com/NikoM94/JSChess/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	workers    = flag.Int("workers", envInt("CHESSPLAY_WORKERS", 1), "goroutines used for legality checks")
	hashMB     = flag.Int("hash", 16, "transposition table size in MB")
	logPath    = flag.String("log", "", "append protocol log to file")
)

func main() {
	flag.Parse()

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	// stdout carries the protocol, so the log goes to a file or nowhere.
	logger := log.New(io.Discard, "", 0)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			log.Fatal("could not open log: ", err)
		}
		defer f.Close()
		logger = log.New(f, "uci ", log.LstdFlags|log.Lmicroseconds)
	}

	eng := engine.NewEngine(*hashMB)
	eng.SetLogger(logger)

	protocol := uci.New(eng, os.Stdout, uci.WithWorkers(*workers), uci.WithLogger(logger))
	if err := protocol.Run(os.Stdin); err != nil {
		logger.Printf("input: %v", err)
	}
}

// envInt reads an integer default from the environment.
func envInt(name string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return v
	}
	return def
}
