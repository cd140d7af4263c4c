package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"budgetree/internal/application"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// UpdateProjectCommand edits the project metadata. Nil fields are kept.
type UpdateProjectCommand struct {
	repo          ports.BudgetRepository
	Name          *string
	Area          *string
	Status        *string
	Version       *string
	ReferenceDate *string // YYYY-MM-DD
}

// NewUpdateProjectCommand creates a new UpdateProjectCommand
func NewUpdateProjectCommand(repo ports.BudgetRepository) *UpdateProjectCommand {
	return &UpdateProjectCommand{repo: repo}
}

// Validate checks if the update is valid
func (c *UpdateProjectCommand) Validate() error {
	if c.Name != nil {
		if err := application.ValidateRequired("name", *c.Name); err != nil {
			return err
		}
	}
	if c.ReferenceDate != nil {
		if _, err := time.Parse(domain.DateLayout, strings.TrimSpace(*c.ReferenceDate)); err != nil {
			return &application.ValidationError{
				Field:   "referenceDate",
				Message: fmt.Sprintf("expected YYYY-MM-DD, got: %s", *c.ReferenceDate),
			}
		}
	}
	return nil
}

// Execute runs the update project command
func (c *UpdateProjectCommand) Execute(ctx context.Context) (*domain.Project, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	p, err := c.repo.LoadProject(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}

	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Name, c.Name)
	set(&p.Area, c.Area)
	set(&p.Status, c.Status)
	set(&p.Version, c.Version)
	if c.ReferenceDate != nil {
		p.ReferenceDate, _ = time.Parse(domain.DateLayout, strings.TrimSpace(*c.ReferenceDate))
	}

	if err := c.repo.SaveProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	return &p, nil
}
