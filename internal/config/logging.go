package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// LogPath returns $XDG_STATE_HOME/budgetree/budgetree.log
func LogPath() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, _ := os.UserHomeDir()
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, "budgetree", "budgetree.log")
}

// SetupLogging installs a text slog handler writing to w as the default logger
func SetupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// SetupFileLogging logs to LogPath so that a full-screen UI stays clean.
// The returned function closes the file.
func SetupFileLogging(verbose bool) (func() error, error) {
	path := LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return f.Close, nil
}
