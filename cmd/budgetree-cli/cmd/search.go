package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the price catalog",
	Long: `Search the user catalog and the SINAPI/SICRO price books. When the
remote search is unavailable the built-in reference entries are searched.

Example:
  budgetree-cli search tapume metálico`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		result, err := commands.NewSearchCatalogCommand(GetRepo(), searcher, query).Execute(context.Background())
		if err != nil {
			return err
		}

		if len(result.Entries) == 0 {
			fmt.Println("No results found.")
			return nil
		}
		for _, e := range result.Entries {
			fmt.Println(formatEntry(e))
		}
		return nil
	},
}

func formatEntry(e domain.CatalogEntry) string {
	date := "undated"
	if !e.Date.IsZero() {
		date = e.Date.Format(domain.DateLayout)
	}
	return fmt.Sprintf("%-8s %-10s %10s/%-3s  %s  %s", e.Source, e.Code, e.Price.StringFixed(2), e.Unit, date, e.Description)
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
