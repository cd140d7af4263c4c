package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetree/internal/application"
	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
)

var (
	addRelation string
	addTarget   string
	addCode     string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a stage or an item",
}

var addStageCmd = &cobra.Command{
	Use:   "stage <label>",
	Short: "Add a stage",
	Long: `Add a stage (grouping node).

Examples:
  budgetree-cli add stage "Fundação"                          # new last root
  budgetree-cli add stage "Sapatas" --relation child --target 1
  budgetree-cli add stage "Pilares" --relation sibling --target 1.1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rel, target, err := relationFlags(ctx)
		if err != nil {
			return err
		}
		result, err := commands.NewCreateStageCommand(GetRepo(), target, rel, args[0]).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var addItemCmd = &cobra.Command{
	Use:   "item [label]",
	Short: "Add an item, manually or from the catalog",
	Long: `Add an item. With --code the item is priced from the catalog (user
entries, the built-in reference entries, then the remote search). Without it
a manual item with quantity 1 and price 0 is created.

Examples:
  budgetree-cli add item "Limpeza do terreno" --relation child --target 1
  budgetree-cli add item --code 98567 --relation child --target 1
  budgetree-cli add item --code 98568 --target 1 --relation child --on-conflict use`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rel, target, err := relationFlags(ctx)
		if err != nil {
			return err
		}

		if addCode == "" {
			label := ""
			if len(args) == 1 {
				label = args[0]
			}
			result, err := commands.NewCreateItemCommand(GetRepo(), target, rel, label).Execute(ctx)
			if err != nil {
				return err
			}
			fmt.Println(result.Message)
			return nil
		}

		resolver, err := conflictResolver()
		if err != nil {
			return err
		}
		entry, err := commands.NewLookupEntryCommand(GetRepo(), searcher, addCode).Execute(ctx)
		if err != nil {
			return err
		}
		result, err := commands.NewCreateCatalogItemCommand(GetRepo(), resolver, target, rel, entry).Execute(ctx)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

// relationFlags parses --relation and resolves --target to a node id
func relationFlags(ctx context.Context) (domain.Relation, string, error) {
	rel, err := application.ParseRelation(addRelation)
	if err != nil {
		return rel, "", err
	}
	if rel == domain.RelationRoot {
		return rel, "", nil
	}
	target := addTarget
	if err := commands.ResolveRefs(ctx, GetRepo(), &target); err != nil {
		return rel, "", err
	}
	return rel, target, nil
}

func init() {
	for _, c := range []*cobra.Command{addStageCmd, addItemCmd} {
		c.Flags().StringVarP(&addRelation, "relation", "r", "root", "root, sibling or child")
		c.Flags().StringVarP(&addTarget, "target", "t", "", "target node (id or path) for sibling and child")
	}
	addItemCmd.Flags().StringVarP(&addCode, "code", "c", "", "catalog entry code or id")

	addCmd.AddCommand(addStageCmd, addItemCmd)
	rootCmd.AddCommand(addCmd)
}
