package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrg/xdg"

	"tetrawell/internal/config"
	"tetrawell/internal/game"
)

func main() {
	cfgPath := flag.String("config", "", "Path to the YAML config (default: $TETRAWELL_CONFIG or the XDG config dir)")
	writeConfig := flag.Bool("write-config", false, "Write the effective config to the XDG config dir and exit")
	debug := flag.Bool("debug", false, "Log at debug level")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *writeConfig {
		path, err := cfg.Save()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(path)
		return
	}

	// The terminal belongs to the game, so logs go to a file.
	logger, closeLog, err := openLog(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	g, err := game.Open(*cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()
	g.Run(ctx)
}

// openLog opens $XDG_STATE_HOME/tetrawell/tetrawell.log for appending.
func openLog(debug bool) (*slog.Logger, func(), error) {
	path, err := xdg.StateFile("tetrawell/tetrawell.log")
	if err != nil {
		return nil, nil, fmt.Errorf("locate log file: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { _ = f.Close() }, nil
}
