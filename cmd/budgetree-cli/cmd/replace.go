package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetree/internal/application/commands"
)

var replaceCmd = &cobra.Command{
	Use:   "replace <item> <code>",
	Short: "Re-price an item from a catalog entry",
	Long: `Replace an item's label, unit, unit price and catalog reference with a
catalog entry. The item keeps its id, position, quantity and memory.

Examples:
  budgetree-cli replace 1.1 98569
  budgetree-cli replace 1.1 98568 --on-conflict use`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		node := args[0]
		if err := commands.ResolveRefs(ctx, GetRepo(), &node); err != nil {
			return err
		}

		resolver, err := conflictResolver()
		if err != nil {
			return err
		}
		entry, err := commands.NewLookupEntryCommand(GetRepo(), searcher, args[1]).Execute(ctx)
		if err != nil {
			return err
		}
		result, err := commands.NewReplaceItemCommand(GetRepo(), resolver, node, entry).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(replaceCmd)
}
