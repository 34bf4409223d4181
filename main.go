package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bookingdesk/payperiod/internal/api"
	"github.com/bookingdesk/payperiod/internal/config"
	"github.com/bookingdesk/payperiod/internal/workperiods"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	log, closeLog, err := newLogger(cfg.Debug.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "log error:", err)
		os.Exit(1)
	}
	defer closeLog()

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Token,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second, log)

	var program *tea.Program
	store := workperiods.NewStore(workperiods.Options{
		Service:  client,
		PageSize: cfg.UI.PageSize,
		Logger:   log,
		Sink: func(e workperiods.Event) {
			if program != nil {
				program.Send(coreEventMsg{event: e})
			}
		},
	})

	program = tea.NewProgram(newModel(store, cfg.UI.DateFormat), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newLogger opens a file-backed debug logger; an empty path discards logs.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	handler := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), func() { _ = f.Close() }, nil
}
