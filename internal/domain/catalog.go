package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/shopspring/decimal"
)

// Catalog sources
const (
	SourceSINAPI = "SINAPI"
	SourceSICRO  = "SICRO"
	SourceUser   = "PRÓPRIA" // private entries saved by the user
)

// Catalog entry types
const (
	TypeInput       = "INSUMO"
	TypeComposition = "COMPOSICAO"
)

// DateLayout is the day-precision layout used for catalog dates
const DateLayout = "2006-01-02"

// CatalogEntry is a reference price-book entry an item can be linked to
type CatalogEntry struct {
	ID          string
	Code        string
	Source      string
	Description string
	Unit        string
	Price       decimal.Decimal
	Type        string
	Date        time.Time // effective date
}

// Title returns "SOURCE CODE - description"
func (e CatalogEntry) Title() string {
	return fmt.Sprintf("%s %s - %s", e.Source, e.Code, e.Description)
}

// IsUserEntry reports whether the entry lives in the user's private catalog
func (e CatalogEntry) IsUserEntry() bool {
	return e.Source == SourceUser
}

func mustDate(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// ReferenceCatalog returns the built-in entries used when remote search is
// unavailable
func ReferenceCatalog() []CatalogEntry {
	return []CatalogEntry{
		{
			ID:          "m1",
			Code:        "98567",
			Source:      SourceSINAPI,
			Description: "Tapume de madeira com altura de 2,00 m, executado com tábuas de pinus ou similar, incluindo instalação, escoramento, pintura de identificação e posterior retirada.",
			Unit:        "m²",
			Price:       decimal.RequireFromString("240.00"),
			Type:        TypeInput,
			Date:        mustDate("2019-06-01"),
		},
		{
			ID:          "m2",
			Code:        "98568",
			Source:      SourceSINAPI,
			Description: "Tapume metálico modular com painéis de chapa galvanizada e estrutura em tubos de aço galvanizado, fixação por sapatas metálicas, incluindo montagem e desmontagem.",
			Unit:        "m²",
			Price:       decimal.RequireFromString("285.50"),
			Type:        TypeInput,
			Date:        mustDate("2024-01-01"),
		},
		{
			ID:          "m3",
			Code:        "98569",
			Source:      SourceSINAPI,
			Description: "Tapume em painel OSB de 15 mm com estrutura em madeira de reflorestamento, pintura externa de cor padrão e letreiro \"OBRA EM EXECUÇÃO\", incluindo montagem e retirada.",
			Unit:        "m²",
			Price:       decimal.RequireFromString("190.20"),
			Type:        TypeInput,
			Date:        mustDate("2019-06-01"),
		},
	}
}

// catalogSource adapts entries to fuzzy.Source
type catalogSource []CatalogEntry

func (s catalogSource) String(i int) string {
	return s[i].Code + " " + s[i].Description
}

func (s catalogSource) Len() int {
	return len(s)
}

// FilterCatalog returns the entries matching query over code and description,
// best match first. An empty query returns every entry.
func FilterCatalog(entries []CatalogEntry, query string) []CatalogEntry {
	query = strings.TrimSpace(query)
	if query == "" {
		return append([]CatalogEntry(nil), entries...)
	}
	matches := fuzzy.FindFrom(query, catalogSource(entries))
	out := make([]CatalogEntry, len(matches))
	for i, m := range matches {
		out[i] = entries[m.Index]
	}
	return out
}

// NeedsVersionConfirmation reports whether an entry is priced after the
// project's reference date
func NeedsVersionConfirmation(entry CatalogEntry, project Project) bool {
	if entry.Date.IsZero() || project.ReferenceDate.IsZero() {
		return false
	}
	return entry.Date.After(project.ReferenceDate)
}

// UserEntryFromNode builds a private catalog entry from an item
func UserEntryFromNode(n Node, now time.Time) (CatalogEntry, error) {
	if n.Kind != KindItem {
		return CatalogEntry{}, fmt.Errorf("%w: only items can be saved to the catalog", ErrNotItem)
	}

	var code string
	if n.Ref != nil && n.Ref.Code != "" {
		code = "P-" + n.Ref.Code
	} else {
		code = "P-" + strings.ToUpper(NewID()[:8])
	}
	entryType := TypeComposition
	if n.Ref != nil && n.Ref.Type != "" {
		entryType = n.Ref.Type
	}
	unit := n.Unit
	if unit == "" {
		unit = DefaultUnit
	}

	return CatalogEntry{
		ID:          NewID(),
		Code:        code,
		Source:      SourceUser,
		Description: n.Label,
		Unit:        unit,
		Price:       n.UnitPrice,
		Type:        entryType,
		Date:        now.Truncate(24 * time.Hour),
	}, nil
}
