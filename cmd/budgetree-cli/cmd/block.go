package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetree/internal/application/commands"
)

var (
	blockName   string
	blockFilter string
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Manage the block library (reusable stage templates)",
}

var blockSaveCmd = &cobra.Command{
	Use:   "save <stage>",
	Short: "Save a stage and its subtree as a block",
	Long: `Save a stage and everything below it as a block. Values are zeroed and
item quantities reset to 1.

Example:
  budgetree-cli block save 1 --name "Canteiro padrão"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		node := args[0]
		if err := commands.ResolveRefs(ctx, GetRepo(), &node); err != nil {
			return err
		}
		result, err := commands.NewSaveBlockCommand(GetRepo(), node, blockName).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var blockInsertCmd = &cobra.Command{
	Use:   "insert <block-id> <stage>",
	Short: "Insert a copy of a block inside a stage",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		target := args[1]
		if err := commands.ResolveRefs(ctx, GetRepo(), &target); err != nil {
			return err
		}
		result, err := commands.NewInsertBlockCommand(GetRepo(), args[0], target).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var blockListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved blocks, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		blocks, err := commands.NewListBlocksCommand(GetRepo(), blockFilter).Execute(context.Background())
		if err != nil {
			return err
		}
		if len(blocks) == 0 {
			fmt.Println("No blocks.")
			return nil
		}
		for _, b := range blocks {
			fmt.Printf("%s  %s  (%d nodes, %s)\n", b.ID, b.Name, b.ItemCount(), b.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var blockDeleteCmd = &cobra.Command{
	Use:   "delete <block-id>",
	Short: "Delete a block from the library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewDeleteBlockCommand(GetRepo(), args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	blockSaveCmd.Flags().StringVarP(&blockName, "name", "n", "", "block name (defaults to the stage label)")
	blockListCmd.Flags().StringVarP(&blockFilter, "filter", "f", "", "only blocks whose name contains this text")

	blockCmd.AddCommand(blockSaveCmd, blockInsertCmd, blockListCmd, blockDeleteCmd)
	rootCmd.AddCommand(blockCmd)
}
