package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"budgetree/internal/application/commands"
	"budgetree/internal/domain"
)

var projectFlags struct {
	name, area, status, version, referenceDate string
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Show or edit the project metadata",
	Long: `Show the project metadata, or change it with flags. The reference date
decides which catalog prices need confirmation.

Examples:
  budgetree-cli project
  budgetree-cli project --name "Residencial Aurora" --reference-date 2023-03-01`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		update := commands.NewUpdateProjectCommand(GetRepo())
		flags := cmd.Flags()
		changed := func(name string, value *string) *string {
			if flags.Changed(name) {
				return value
			}
			return nil
		}
		update.Name = changed("name", &projectFlags.name)
		update.Area = changed("area", &projectFlags.area)
		update.Status = changed("status", &projectFlags.status)
		update.Version = changed("version", &projectFlags.version)
		update.ReferenceDate = changed("reference-date", &projectFlags.referenceDate)

		var p domain.Project
		if update.Name == nil && update.Area == nil && update.Status == nil && update.Version == nil && update.ReferenceDate == nil {
			loaded, err := GetRepo().LoadProject(ctx)
			if err != nil {
				return err
			}
			p = loaded
		} else {
			saved, err := update.Execute(ctx)
			if err != nil {
				return err
			}
			p = *saved
		}

		fmt.Printf("Name:           %s\nArea:           %s\nStatus:         %s\nVersion:        %s\nReference date: %s\n",
			p.Name, p.Area, p.Status, p.Version, p.ReferenceDate.Format(domain.DateLayout))
		return nil
	},
}

func init() {
	f := projectCmd.Flags()
	f.StringVar(&projectFlags.name, "name", "", "project name")
	f.StringVar(&projectFlags.area, "area", "", "built area")
	f.StringVar(&projectFlags.status, "status", "", "project status")
	f.StringVar(&projectFlags.version, "version", "", "budget version")
	f.StringVar(&projectFlags.referenceDate, "reference-date", "", "price reference date (YYYY-MM-DD)")
	rootCmd.AddCommand(projectCmd)
}
