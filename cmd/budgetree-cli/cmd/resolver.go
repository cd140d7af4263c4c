package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// promptResolver asks on the terminal whether to accept a newer price
type promptResolver struct {
	in  *bufio.Reader
	out io.Writer
}

func newPromptResolver(in io.Reader, out io.Writer) *promptResolver {
	return &promptResolver{in: bufio.NewReader(in), out: out}
}

func (r *promptResolver) Resolve(ctx context.Context, candidate domain.CatalogEntry, project domain.Project) (ports.ConflictDecision, error) {
	if err := ctx.Err(); err != nil {
		return ports.DecisionKeepPrior, err
	}
	fmt.Fprintf(r.out, "%s %s is priced at %s, after the project reference date %s.\nUse this price anyway? [y/N] ",
		candidate.Source, candidate.Code,
		candidate.Date.Format(domain.DateLayout), project.ReferenceDate.Format(domain.DateLayout))

	answer, err := r.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return ports.DecisionKeepPrior, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "s", "sim":
		return ports.DecisionUseCandidate, nil
	default:
		return ports.DecisionKeepPrior, nil
	}
}

// confirm asks a yes/no question, defaulting to no
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
