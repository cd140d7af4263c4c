package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"budgetree/internal/application/commands"
)

var importYes bool

var exportCmd = &cobra.Command{
	Use:   "export <file.json>",
	Short: "Export the whole budget to JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewExportCommand(GetRepo(), docs, args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Replace the budget with an exported JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !importYes && !confirm(os.Stdin, os.Stderr, "Importing replaces the current budget. Continue?") {
			fmt.Println("Cancelled.")
			return nil
		}
		result, err := commands.NewImportCommand(GetRepo(), docs, args[0]).Execute(context.Background())
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVarP(&importYes, "yes", "y", false, "skip the confirmation prompt")
	rootCmd.AddCommand(exportCmd, importCmd)
}
