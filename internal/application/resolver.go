package application

import (
	"context"
	"fmt"

	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// StaticResolver answers every version conflict with the same decision.
// The CLI builds one from --on-conflict; the TUI builds one after its modal.
type StaticResolver struct {
	Decision ports.ConflictDecision
}

var _ ports.ConflictResolver = StaticResolver{}

// Resolve returns the configured decision
func (r StaticResolver) Resolve(ctx context.Context, candidate domain.CatalogEntry, project domain.Project) (ports.ConflictDecision, error) {
	if err := ctx.Err(); err != nil {
		return ports.DecisionKeepPrior, err
	}
	return r.Decision, nil
}

// ParseConflictDecision parses "use" or "keep"
func ParseConflictDecision(s string) (ports.ConflictDecision, error) {
	switch s {
	case "use":
		return ports.DecisionUseCandidate, nil
	case "keep":
		return ports.DecisionKeepPrior, nil
	default:
		return ports.DecisionKeepPrior, &ValidationError{
			Field:   "onConflict",
			Message: fmt.Sprintf("expected use or keep, got: %s", s),
		}
	}
}

// CheckVersion runs the version-conflict rule for a candidate entry. A nil
// resolver turns every conflict into a ConflictError.
func CheckVersion(ctx context.Context, resolver ports.ConflictResolver, entry domain.CatalogEntry, project domain.Project) error {
	if !domain.NeedsVersionConfirmation(entry, project) {
		return nil
	}

	conflict := &ConflictError{
		Code:          entry.Code,
		EntryDate:     entry.Date.Format(domain.DateLayout),
		ReferenceDate: project.ReferenceDate.Format(domain.DateLayout),
	}
	if resolver == nil {
		return conflict
	}

	decision, err := resolver.Resolve(ctx, entry, project)
	if err != nil {
		return fmt.Errorf("failed to resolve version conflict: %w", err)
	}
	if decision == ports.DecisionKeepPrior {
		return conflict
	}
	return nil
}
