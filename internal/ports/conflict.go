package ports

import (
	"context"

	"budgetree/internal/domain"
)

// ConflictDecision is the answer to a version conflict
type ConflictDecision int

const (
	DecisionUseCandidate ConflictDecision = iota // insert the newer entry anyway
	DecisionKeepPrior                            // abandon the insertion
)

func (d ConflictDecision) String() string {
	if d == DecisionKeepPrior {
		return "keep"
	}
	return "use"
}

// ConflictResolver decides what to do with a catalog entry priced after the
// project's reference date
type ConflictResolver interface {
	Resolve(ctx context.Context, candidate domain.CatalogEntry, project domain.Project) (ConflictDecision, error)
}
