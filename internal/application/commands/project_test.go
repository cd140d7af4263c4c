package commands

import (
	"context"
	"testing"
)

func TestUpdateProjectCommand(t *testing.T) {
	ctx := context.Background()
	name, ref, bad, empty := "Residencial Aurora", "2024-01-01", "01/01/2024", "  "

	tests := []struct {
		name    string
		setup   func(c *UpdateProjectCommand)
		wantErr bool
		check   func(t *testing.T, r *memRepo)
	}{
		{
			name:  "rename keeps the reference date",
			setup: func(c *UpdateProjectCommand) { c.Name = &name },
			check: func(t *testing.T, r *memRepo) {
				if r.project.Name != name || r.project.ReferenceDate.Format("2006-01-02") != "2019-06-01" {
					t.Errorf("unexpected project %+v", r.project)
				}
			},
		},
		{
			name:  "reference date",
			setup: func(c *UpdateProjectCommand) { c.ReferenceDate = &ref },
			check: func(t *testing.T, r *memRepo) {
				if r.project.ReferenceDate.Format("2006-01-02") != ref {
					t.Errorf("reference date not updated: %v", r.project.ReferenceDate)
				}
			},
		},
		{
			name:    "invalid date",
			setup:   func(c *UpdateProjectCommand) { c.ReferenceDate = &bad },
			wantErr: true,
		},
		{
			name:    "blank name",
			setup:   func(c *UpdateProjectCommand) { c.Name = &empty },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemRepo()
			cmd := NewUpdateProjectCommand(repo)
			tt.setup(cmd)

			_, err := cmd.Execute(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, repo)
			}
		})
	}
}
