package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetree/internal/application"
	"budgetree/internal/application/commands"
)

var (
	moveMode   string
	moveOffset float64
)

var moveCmd = &cobra.Command{
	Use:   "move <node> <target>",
	Short: "Move a node and its subtree",
	Long: `Move a node, with everything below it, before, after or inside a target.

Rules:
- A node cannot be moved into itself or its descendants
- Only stages can contain other nodes

--offset simulates a drop at a vertical position within the target row
(0 = top, 1 = bottom): stages split at 0.25/0.75, items at 0.5.

Examples:
  budgetree-cli move 2.1 1 --mode inside
  budgetree-cli move 1.3 1.1 --mode before
  budgetree-cli move 3 1 --offset 0.9`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		node, target := args[0], args[1]
		if err := commands.ResolveRefs(ctx, GetRepo(), &node, &target); err != nil {
			return err
		}

		var moveCmd *commands.MoveNodeCommand
		if cmd.Flags().Changed("offset") {
			moveCmd = commands.NewDropCommand(GetRepo(), node, target, moveOffset)
		} else {
			mode, err := application.ParseInsertMode(moveMode)
			if err != nil {
				return err
			}
			moveCmd = commands.NewMoveNodeCommand(GetRepo(), node, target, mode)
		}

		result, err := moveCmd.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	moveCmd.Flags().StringVarP(&moveMode, "mode", "m", "inside", "before, after or inside")
	moveCmd.Flags().Float64Var(&moveOffset, "offset", 0, "drop position within the target row (0-1), overrides --mode")
	rootCmd.AddCommand(moveCmd)
}
