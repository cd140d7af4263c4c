package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetree/internal/adapters/editor"
	"budgetree/internal/application"
	"budgetree/internal/application/commands"
)

var updateFlags struct {
	label, quantity, unit, price, memory string
	material, labor, others              string
	editMemory                           bool
}

var updateCmd = &cobra.Command{
	Use:   "update <node>",
	Short: "Edit a node's fields",
	Long: `Edit a node. Stages only accept --label. Only the flags given are changed.

Examples:
  budgetree-cli update 1 --label "Serviços preliminares"
  budgetree-cli update 1.2 --quantity 12,5 --price 40
  budgetree-cli update 1.2 --material 60 --labor 35 --others 5
  budgetree-cli update 1.2 --edit-memory`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		node := args[0]
		if err := commands.ResolveRefs(ctx, GetRepo(), &node); err != nil {
			return err
		}

		updateCmd := commands.NewUpdateNodeCommand(GetRepo(), node)
		flags := cmd.Flags()
		changed := func(name string, value *string) *string {
			if flags.Changed(name) {
				return value
			}
			return nil
		}
		updateCmd.Label = changed("label", &updateFlags.label)
		updateCmd.Quantity = changed("quantity", &updateFlags.quantity)
		updateCmd.Unit = changed("unit", &updateFlags.unit)
		updateCmd.UnitPrice = changed("price", &updateFlags.price)
		updateCmd.Memory = changed("memory", &updateFlags.memory)

		breakdown, err := application.ParseBreakdown(updateFlags.material, updateFlags.labor, updateFlags.others)
		if err != nil {
			return err
		}
		updateCmd.Breakdown = breakdown

		if updateFlags.editMemory {
			n, err := commands.NewGetNodeCommand(GetRepo(), node).Execute(ctx)
			if err != nil {
				return err
			}
			memory, err := editor.NewOpener().Run(n.Memory)
			if err != nil {
				return err
			}
			updateCmd.Memory = &memory
		}

		result, err := updateCmd.Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	f := updateCmd.Flags()
	f.StringVar(&updateFlags.label, "label", "", "new label")
	f.StringVar(&updateFlags.quantity, "quantity", "", "quantity (comma or dot decimal)")
	f.StringVar(&updateFlags.unit, "unit", "", "unit of measure")
	f.StringVar(&updateFlags.price, "price", "", "unit price")
	f.StringVar(&updateFlags.memory, "memory", "", "calculation memory text")
	f.StringVar(&updateFlags.material, "material", "", "material share of the cost, in percent")
	f.StringVar(&updateFlags.labor, "labor", "", "labor share of the cost, in percent")
	f.StringVar(&updateFlags.others, "others", "", "other costs share, in percent")
	f.BoolVarP(&updateFlags.editMemory, "edit-memory", "e", false, "edit the calculation memory in $EDITOR")
	rootCmd.AddCommand(updateCmd)
}
