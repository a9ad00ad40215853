package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/bit-badger/BitBadger.Documents-sub001/internal/app"
	"github.com/bit-badger/BitBadger.Documents-sub001/internal/config"
	"github.com/bit-badger/BitBadger.Documents-sub001/internal/profiles"
)

// newLogger writes structured logs to a file in the config directory.
// Stdout belongs to the TUI, so logging there is not an option.
func newLogger(cfg *config.Config, configDir string) (zerolog.Logger, io.Closer) {
	if !cfg.Logging.Enabled {
		return zerolog.Nop(), nil
	}

	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return zerolog.Nop(), nil
	}
	file, err := os.OpenFile(filepath.Join(configDir, "docbrowse.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return zerolog.Nop(), nil
	}

	return zerolog.New(file).Level(level).With().Timestamp().Logger(), file
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	configDir, err := config.GetConfigPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error resolving config directory: %v\n", err)
		os.Exit(1)
	}

	log, logFile := newLogger(cfg, configDir)
	if logFile != nil {
		defer logFile.Close()
	}

	manager, err := profiles.NewManager(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading profiles: %v\n", err)
		os.Exit(1)
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		opts = append(opts, tea.WithMouseCellMotion())
	}

	log.Info().Msg("docbrowse starting")
	p := tea.NewProgram(app.New(cfg, manager, log), opts...)
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("program exited with error")
		fmt.Printf("Error running program: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("docbrowse exiting")
}
