package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budgetree/internal/adapters/claudecli"
	"budgetree/internal/adapters/filesystem"
	"budgetree/internal/application"
	"budgetree/internal/config"
	"budgetree/internal/ports"
)

var (
	dbPath     string
	onConflict string
	verbose    bool

	repo     ports.BudgetRepository
	searcher ports.CatalogSearcher
	docs     ports.DocumentStore
)

var rootCmd = &cobra.Command{
	Use:   "budgetree-cli",
	Short: "CLI for editing hierarchical construction budgets",
	Long: `budgetree-cli is a command-line interface for construction budgets
organized as a tree of stages and items.

Nodes are addressed by their dotted path (1, 1.2, 1.2.3) or by their id.
Paths are renumbered after every change; ids never change.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		config.SetupLogging(os.Stderr, verbose)

		store, err := config.OpenStore(dbPath)
		if err != nil {
			return err
		}
		repo = store
		searcher = claudecli.NewSearcher(claudecli.WithModel(config.SearchModel()))
		docs = filesystem.NewDocumentStore()
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			return repo.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", config.DBPath(), "path to the budget database")
	rootCmd.PersistentFlags().StringVar(&onConflict, "on-conflict", "ask", "when a catalog price is newer than the reference date: use, keep or ask")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
}

// GetRepo returns the initialized repository
func GetRepo() ports.BudgetRepository {
	return repo
}

// conflictResolver builds the resolver selected by --on-conflict
func conflictResolver() (ports.ConflictResolver, error) {
	if onConflict == "ask" {
		return newPromptResolver(os.Stdin, os.Stderr), nil
	}
	decision, err := application.ParseConflictDecision(onConflict)
	if err != nil {
		return nil, err
	}
	return application.StaticResolver{Decision: decision}, nil
}
