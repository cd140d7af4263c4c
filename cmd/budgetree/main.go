package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"budgetree/internal/adapters/claudecli"
	"budgetree/internal/adapters/editor"
	"budgetree/internal/adapters/tui"
	"budgetree/internal/config"
	"budgetree/internal/ports"
)

func main() {
	dbFlag := flag.String("db", config.DBPath(), "path to the budget database")
	modelFlag := flag.String("model", config.SearchModel(), "claude model used for catalog search")
	verbose := flag.Bool("verbose", false, "log debug output")
	flag.Parse()

	// The alternate screen owns the terminal, so logs go to a file
	closeLog, err := config.SetupFileLogging(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	} else {
		defer closeLog()
	}

	store, err := config.OpenStore(*dbFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var searcher ports.CatalogSearcher
	if s := claudecli.NewSearcher(claudecli.WithModel(*modelFlag)); s.IsAvailable() {
		searcher = s
	} else {
		slog.Info("claude CLI not found, searching local catalogs only")
	}

	app := tui.NewApp(store, searcher, editor.NewOpener())
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		store.Close()
		os.Exit(1)
	}
}
