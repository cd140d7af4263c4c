package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budgetree/internal/application/commands"
)

var deleteYes bool

var deleteCmd = &cobra.Command{
	Use:   "delete <node>",
	Short: "Delete a node and everything below it",
	Long: `Delete a node together with all of its descendants. The remaining
nodes are renumbered.

Examples:
  budgetree-cli delete 1.2
  budgetree-cli delete 3 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		node := args[0]
		if err := commands.ResolveRefs(ctx, GetRepo(), &node); err != nil {
			return err
		}

		deleteCmd := commands.NewDeleteCommand(GetRepo(), node)
		if !deleteYes {
			n, nested, err := deleteCmd.Preview(ctx)
			if err != nil {
				return err
			}
			question := fmt.Sprintf("Delete %s %s?", n.Path, n.Label)
			if nested > 0 {
				question = fmt.Sprintf("Delete %s %s and %d nested nodes?", n.Path, n.Label, nested)
			}
			if !confirm(os.Stdin, os.Stderr, question) {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		result, err := deleteCmd.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}
