package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
)

var (
	treeIDs      bool
	treeCollapse []string
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the budget tree",
	Long: `Display the budget as an indented tree. Stage values are the sum of
the items below them.

Examples:
  budgetree-cli tree
  budgetree-cli tree --ids
  budgetree-cli tree --collapse 1 --collapse 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		refs := make([]*string, len(treeCollapse))
		for i := range treeCollapse {
			refs[i] = &treeCollapse[i]
		}
		if err := commands.ResolveRefs(ctx, GetRepo(), refs...); err != nil {
			return err
		}

		result, err := commands.NewShowTreeCommand(GetRepo(), domain.NewCollapseSet(treeCollapse...)).Execute(ctx)
		if err != nil {
			return err
		}

		if result.Project.Name != "" {
			fmt.Printf("%s (reference %s)\n\n", result.Project.Name, result.Project.ReferenceDate.Format(domain.DateLayout))
		}
		if len(result.Nodes) == 0 {
			fmt.Println("Budget is empty.")
			return nil
		}

		for _, n := range result.Nodes {
			fmt.Println(formatTreeLine(n, result.All, treeIDs))
		}
		fmt.Printf("\nTotal: %s\n", result.Total.StringFixed(2))
		return nil
	},
}

func formatTreeLine(n domain.Node, all []domain.Node, withID bool) string {
	indent := strings.Repeat("  ", domain.Depth(n.Path))

	var line string
	if n.IsStage() {
		marker := "▾"
		if len(domain.Children(all, n.ID)) == 0 {
			marker = "▪"
		}
		line = fmt.Sprintf("%s%s %s %s  %s", indent, marker, n.Path, n.Label, n.Value.StringFixed(2))
	} else {
		line = fmt.Sprintf("%s  %s %s  %s %s x %s = %s",
			indent, n.Path, n.Label, n.Quantity, n.Unit, n.UnitPrice.StringFixed(2), n.Value.StringFixed(2))
	}
	if withID {
		line += "  [" + n.ID + "]"
	}
	return line
}

func init() {
	treeCmd.Flags().BoolVar(&treeIDs, "ids", false, "show node ids")
	treeCmd.Flags().StringSliceVar(&treeCollapse, "collapse", nil, "stages (id or path) whose children are hidden")
	rootCmd.AddCommand(treeCmd)
}
