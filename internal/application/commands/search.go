package commands

import (
	"context"
	"fmt"
	"log/slog"

	"budgetree/internal/application"
	"budgetree/internal/application/search"
	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// SearchResult is a catalog search outcome
type SearchResult struct {
	Entries []domain.CatalogEntry
	Remote  bool // at least one entry came from the remote searcher
}

// SearchCatalogCommand searches the user catalog, the remote catalog and,
// when the remote side yields nothing, the built-in reference entries
type SearchCatalogCommand struct {
	repo     ports.BudgetRepository
	searcher ports.CatalogSearcher
	Query    string
}

// NewSearchCatalogCommand creates a new SearchCatalogCommand. searcher may be nil.
func NewSearchCatalogCommand(repo ports.BudgetRepository, searcher ports.CatalogSearcher, query string) *SearchCatalogCommand {
	return &SearchCatalogCommand{
		repo:     repo,
		searcher: searcher,
		Query:    query,
	}
}

// Validate checks if the search is valid
func (c *SearchCatalogCommand) Validate() error {
	if !search.IsSearchable(c.Query) {
		return fmt.Errorf("%w: need at least %d characters", application.ErrQueryTooShort, search.MinQueryLength)
	}
	return nil
}

// Execute runs the search. A failing remote searcher is logged and never
// fails the command.
func (c *SearchCatalogCommand) Execute(ctx context.Context) (*SearchResult, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	var user []domain.CatalogEntry
	if c.repo != nil {
		entries, err := c.repo.ListUserEntries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load user catalog: %w", err)
		}
		user = domain.FilterCatalog(entries, c.Query)
	}

	var remote []domain.CatalogEntry
	if c.searcher != nil && c.searcher.IsAvailable() {
		entries, err := c.searcher.Search(ctx, c.Query)
		switch {
		case ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil:
			slog.Warn("catalog search failed, using local entries", "query", c.Query, "error", err)
		default:
			remote = entries
		}
	}

	result := &SearchResult{Remote: len(remote) > 0}
	result.Entries = mergeEntries(user, remote)
	if len(remote) == 0 {
		result.Entries = mergeEntries(result.Entries, domain.FilterCatalog(domain.ReferenceCatalog(), c.Query))
	}
	return result, nil
}

// mergeEntries concatenates entry lists, dropping repeated source+code pairs
func mergeEntries(lists ...[]domain.CatalogEntry) []domain.CatalogEntry {
	seen := make(map[string]bool)
	var out []domain.CatalogEntry
	for _, list := range lists {
		for _, e := range list {
			key := e.Source + "/" + e.Code
			if e.Code != "" && seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, e)
		}
	}
	return out
}

// LookupEntryCommand finds one catalog entry by id or code, looking at the
// user catalog, the built-in reference entries and then the remote searcher
type LookupEntryCommand struct {
	repo     ports.BudgetRepository
	searcher ports.CatalogSearcher
	Ref      string
}

// NewLookupEntryCommand creates a new LookupEntryCommand. searcher may be nil.
func NewLookupEntryCommand(repo ports.BudgetRepository, searcher ports.CatalogSearcher, ref string) *LookupEntryCommand {
	return &LookupEntryCommand{
		repo:     repo,
		searcher: searcher,
		Ref:      ref,
	}
}

// Execute runs the lookup
func (c *LookupEntryCommand) Execute(ctx context.Context) (domain.CatalogEntry, error) {
	if err := application.ValidateRequired("entryID", c.Ref); err != nil {
		return domain.CatalogEntry{}, err
	}

	user, err := c.repo.ListUserEntries(ctx)
	if err != nil {
		return domain.CatalogEntry{}, fmt.Errorf("failed to load user catalog: %w", err)
	}
	if e, ok := findEntry(mergeEntries(user, domain.ReferenceCatalog()), c.Ref); ok {
		return e, nil
	}

	if c.searcher != nil && c.searcher.IsAvailable() {
		remote, err := c.searcher.Search(ctx, c.Ref)
		if err != nil {
			return domain.CatalogEntry{}, fmt.Errorf("catalog search failed: %w", err)
		}
		if e, ok := findEntry(remote, c.Ref); ok {
			return e, nil
		}
	}
	return domain.CatalogEntry{}, fmt.Errorf("%w: catalog entry %s", application.ErrNotFound, c.Ref)
}

func findEntry(entries []domain.CatalogEntry, ref string) (domain.CatalogEntry, bool) {
	for _, e := range entries {
		if e.ID == ref || e.Code == ref {
			return e, true
		}
	}
	return domain.CatalogEntry{}, false
}
