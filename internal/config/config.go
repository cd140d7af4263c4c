package config

import (
	"fmt"
	"os"
	"time"

	"budgetree/internal/adapters/sqlite"
	"budgetree/internal/domain"
)

const (
	DefaultReferenceDate = "2019-06-01"
	DefaultSearchModel   = "haiku"
	DefaultProjectName   = "Novo orçamento"
)

// DBPath returns the database path from BUDGETREE_DB env var,
// falling back to sqlite.DefaultPath.
func DBPath() string {
	if env := os.Getenv("BUDGETREE_DB"); env != "" {
		return env
	}
	return sqlite.DefaultPath()
}

// SearchModel returns the Claude model used for catalog search from
// BUDGETREE_SEARCH_MODEL, falling back to DefaultSearchModel.
func SearchModel() string {
	if env := os.Getenv("BUDGETREE_SEARCH_MODEL"); env != "" {
		return env
	}
	return DefaultSearchModel
}

// ReferenceDate returns the default project reference date from
// BUDGETREE_REFERENCE_DATE (YYYY-MM-DD), falling back to DefaultReferenceDate.
func ReferenceDate() (time.Time, error) {
	value := DefaultReferenceDate
	if env := os.Getenv("BUDGETREE_REFERENCE_DATE"); env != "" {
		value = env
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid BUDGETREE_REFERENCE_DATE %q: expected YYYY-MM-DD", value)
	}
	return t, nil
}

// DefaultProject is the project used until one is saved
func DefaultProject() (domain.Project, error) {
	ref, err := ReferenceDate()
	if err != nil {
		return domain.Project{}, err
	}
	return domain.Project{
		Name:          DefaultProjectName,
		Status:        "draft",
		Version:       "1",
		ReferenceDate: ref,
	}, nil
}

// OpenStore opens the budget database with the configured default project
func OpenStore(dbPath string) (*sqlite.Store, error) {
	project, err := DefaultProject()
	if err != nil {
		return nil, err
	}
	if dbPath == "" {
		dbPath = DBPath()
	}
	return sqlite.Open(dbPath, sqlite.WithDefaultProject(project))
}
