package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budgetree/internal/domain"
	"budgetree/internal/ports"
)

// formatVersion is bumped whenever the document layout changes
const formatVersion = 1

// DocumentStore implements ports.DocumentStore with indented JSON files.
// Decimals are written as strings so amounts survive the round trip exactly.
type DocumentStore struct{}

// Ensure DocumentStore implements ports.DocumentStore
var _ ports.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore creates a JSON document store
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{}
}

type documentJSON struct {
	Version     int         `json:"version"`
	Project     projectJSON `json:"project"`
	Nodes       []nodeJSON  `json:"nodes"`
	Blocks      []blockJSON `json:"blocks,omitempty"`
	UserCatalog []entryJSON `json:"user_catalog,omitempty"`
}

type projectJSON struct {
	Name          string `json:"name"`
	Area          string `json:"area,omitempty"`
	Status        string `json:"status,omitempty"`
	Version       string `json:"version,omitempty"`
	ReferenceDate string `json:"reference_date,omitempty"`
}

type nodeJSON struct {
	ID        string           `json:"id"`
	Path      string           `json:"path"`
	Kind      string           `json:"kind"`
	Label     string           `json:"label"`
	Value     decimal.Decimal  `json:"value"`
	Quantity  *decimal.Decimal `json:"quantity,omitempty"`
	Unit      string           `json:"unit,omitempty"`
	UnitPrice *decimal.Decimal `json:"unit_price,omitempty"`
	Memory    string           `json:"memory,omitempty"`
	Ref       *entryJSON       `json:"ref,omitempty"`
	Breakdown *breakdownJSON   `json:"breakdown,omitempty"`
}

type breakdownJSON struct {
	Material decimal.Decimal `json:"material"`
	Labor    decimal.Decimal `json:"labor"`
	Others   decimal.Decimal `json:"others"`
}

type entryJSON struct {
	ID          string          `json:"id,omitempty"`
	Code        string          `json:"code"`
	Source      string          `json:"source"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Price       decimal.Decimal `json:"price"`
	Type        string          `json:"type,omitempty"`
	Date        string          `json:"date,omitempty"`
}

type blockJSON struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	Nodes     []nodeJSON `json:"nodes"`
}

// Export writes doc to path, creating parent directories as needed
func (s *DocumentStore) Export(path string, doc ports.Document) error {
	path = expandHome(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	data, err := json.MarshalIndent(toDocumentJSON(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	data = append(data, '\n')

	// Write next to the target and rename so a failed export never leaves a
	// truncated file behind
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

// Import reads a document written by Export
func (s *DocumentStore) Import(path string) (*ports.Document, error) {
	data, err := os.ReadFile(expandHome(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	var dj documentJSON
	if err := json.Unmarshal(data, &dj); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	if dj.Version > formatVersion {
		return nil, fmt.Errorf("unsupported document version %d (max %d)", dj.Version, formatVersion)
	}
	return fromDocumentJSON(dj)
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[1:])
	}
	return path
}

func toDocumentJSON(doc ports.Document) documentJSON {
	dj := documentJSON{
		Version: formatVersion,
		Project: projectJSON{
			Name:          doc.Project.Name,
			Area:          doc.Project.Area,
			Status:        doc.Project.Status,
			Version:       doc.Project.Version,
			ReferenceDate: formatDate(doc.Project.ReferenceDate),
		},
		Nodes: toNodesJSON(doc.Nodes),
	}
	for _, b := range doc.Blocks {
		dj.Blocks = append(dj.Blocks, blockJSON{
			ID:        b.ID,
			Name:      b.Name,
			CreatedAt: b.CreatedAt,
			Nodes:     toNodesJSON(b.Nodes),
		})
	}
	for _, e := range doc.UserCatalog {
		dj.UserCatalog = append(dj.UserCatalog, toEntryJSON(e))
	}
	return dj
}

func toNodesJSON(nodes []domain.Node) []nodeJSON {
	out := make([]nodeJSON, 0, len(nodes))
	for _, n := range nodes {
		nj := nodeJSON{
			ID:    n.ID,
			Path:  n.Path,
			Kind:  n.Kind.String(),
			Label: n.Label,
			Value: n.Value,
		}
		if n.IsItem() {
			q, p := n.Quantity, n.UnitPrice
			nj.Quantity = &q
			nj.UnitPrice = &p
			nj.Unit = n.Unit
			nj.Memory = n.Memory
		}
		if n.Ref != nil {
			ref := toEntryJSON(*n.Ref)
			nj.Ref = &ref
		}
		if b := n.Breakdown; b != nil {
			nj.Breakdown = &breakdownJSON{Material: b.Material, Labor: b.Labor, Others: b.Others}
		}
		out = append(out, nj)
	}
	return out
}

func toEntryJSON(e domain.CatalogEntry) entryJSON {
	return entryJSON{
		ID:          e.ID,
		Code:        e.Code,
		Source:      e.Source,
		Description: e.Description,
		Unit:        e.Unit,
		Price:       e.Price,
		Type:        e.Type,
		Date:        formatDate(e.Date),
	}
}

func fromDocumentJSON(dj documentJSON) (*ports.Document, error) {
	refDate, err := parseDate(dj.Project.ReferenceDate)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	doc := &ports.Document{
		Project: domain.Project{
			Name:          dj.Project.Name,
			Area:          dj.Project.Area,
			Status:        dj.Project.Status,
			Version:       dj.Project.Version,
			ReferenceDate: refDate,
		},
	}

	if doc.Nodes, err = fromNodesJSON(dj.Nodes); err != nil {
		return nil, err
	}
	for _, bj := range dj.Blocks {
		nodes, err := fromNodesJSON(bj.Nodes)
		if err != nil {
			return nil, fmt.Errorf("block %s: %w", bj.Name, err)
		}
		doc.Blocks = append(doc.Blocks, domain.Block{
			ID:        bj.ID,
			Name:      bj.Name,
			CreatedAt: bj.CreatedAt,
			Nodes:     nodes,
		})
	}
	for _, ej := range dj.UserCatalog {
		e, err := fromEntryJSON(ej)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %s: %w", ej.Code, err)
		}
		doc.UserCatalog = append(doc.UserCatalog, e)
	}
	return doc, nil
}

func fromNodesJSON(in []nodeJSON) ([]domain.Node, error) {
	nodes := make([]domain.Node, 0, len(in))
	for _, nj := range in {
		kind := domain.ParseKind(nj.Kind)
		if kind == domain.KindUnknown {
			return nil, fmt.Errorf("node %s: unknown kind %q", nj.ID, nj.Kind)
		}
		n := domain.Node{
			ID:     nj.ID,
			Path:   nj.Path,
			Kind:   kind,
			Label:  nj.Label,
			Value:  nj.Value,
			Unit:   nj.Unit,
			Memory: nj.Memory,
		}
		if nj.Quantity != nil {
			n.Quantity = *nj.Quantity
		}
		if nj.UnitPrice != nil {
			n.UnitPrice = *nj.UnitPrice
		}
		if nj.Ref != nil {
			ref, err := fromEntryJSON(*nj.Ref)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", nj.ID, err)
			}
			n.Ref = &ref
		}
		if b := nj.Breakdown; b != nil {
			n.Breakdown = &domain.CostBreakdown{Material: b.Material, Labor: b.Labor, Others: b.Others}
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func fromEntryJSON(ej entryJSON) (domain.CatalogEntry, error) {
	date, err := parseDate(ej.Date)
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	return domain.CatalogEntry{
		ID:          ej.ID,
		Code:        ej.Code,
		Source:      ej.Source,
		Description: ej.Description,
		Unit:        ej.Unit,
		Price:       ej.Price,
		Type:        ej.Type,
		Date:        date,
	}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
