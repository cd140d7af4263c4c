package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetree/internal/application/commands"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage your own catalog entries",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your catalog entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := commands.NewListCatalogCommand(GetRepo()).Execute(context.Background())
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("Catalog is empty.")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s  %s\n", e.ID, formatEntry(e))
		}
		return nil
	},
}

var catalogSaveCmd = &cobra.Command{
	Use:   "save <item>",
	Short: "Save an item's pricing to your catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		node := args[0]
		if err := commands.ResolveRefs(ctx, GetRepo(), &node); err != nil {
			return err
		}
		result, err := commands.NewSaveToCatalogCommand(GetRepo(), node).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var catalogDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete an entry from your catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewDeleteCatalogEntryCommand(GetRepo(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd, catalogSaveCmd, catalogDeleteCmd)
	rootCmd.AddCommand(catalogCmd)
}
