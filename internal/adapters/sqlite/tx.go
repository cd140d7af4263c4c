package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budgetree/internal/domain"
)

// budgetTx groups the writes that must land together
type budgetTx struct {
	tx *sql.Tx
}

// DeleteAllNodes clears the flat list
func (t *budgetTx) DeleteAllNodes(ctx context.Context) error {
	_, err := t.tx.ExecContext(ctx, `DELETE FROM nodes`)
	return err
}

// InsertNode adds one node to the flat list
func (t *budgetTx) InsertNode(ctx context.Context, n domain.Node) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO nodes (`+nodeColumns+`)
		VALUES (`+nodePlaceholders+`)
	`, nodeArgs(n)...)
	return err
}

// ReplaceNodes clears the flat list and inserts nodes
func (t *budgetTx) ReplaceNodes(ctx context.Context, nodes []domain.Node) error {
	if err := t.DeleteAllNodes(ctx); err != nil {
		return fmt.Errorf("failed to clear nodes: %w", err)
	}
	for _, n := range nodes {
		if err := t.InsertNode(ctx, n); err != nil {
			return fmt.Errorf("failed to store node %s (%s): %w", n.ID, n.Path, err)
		}
	}
	return nil
}

// InsertBlock adds a block header and its nodes in block order
func (t *budgetTx) InsertBlock(ctx context.Context, b domain.Block) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO blocks (id, name, created_at) VALUES (?, ?, ?)
	`, b.ID, b.Name, b.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return err
	}

	for i, n := range b.Nodes {
		args := append([]any{b.ID, i}, nodeArgs(n)...)
		_, err := t.tx.ExecContext(ctx, `
			INSERT INTO block_nodes (block_id, position, `+nodeColumns+`)
			VALUES (?, ?, `+nodePlaceholders+`)
		`, args...)
		if err != nil {
			return fmt.Errorf("node %d: %w", i, err)
		}
	}
	return nil
}

// DeleteBlock removes a block if present
func (t *budgetTx) DeleteBlock(ctx context.Context, id string) error {
	_, err := t.DeleteBlockRows(ctx, id)
	return err
}

// DeleteBlockRows removes a block and returns how many headers were deleted
func (t *budgetTx) DeleteBlockRows(ctx context.Context, id string) (int64, error) {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM block_nodes WHERE block_id = ?`, id); err != nil {
		return 0, err
	}
	res, err := t.tx.ExecContext(ctx, `DELETE FROM blocks WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SetMeta stores a metadata key
func (t *budgetTx) SetMeta(ctx context.Context, key, value string) error {
	_, err := t.tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// SetProject stores the project metadata keys
func (t *budgetTx) SetProject(ctx context.Context, p domain.Project) error {
	values := map[string]string{
		"project_name":    p.Name,
		"project_area":    p.Area,
		"project_status":  p.Status,
		"project_version": p.Version,
	}
	if !p.ReferenceDate.IsZero() {
		values["project_reference_date"] = p.ReferenceDate.Format(domain.DateLayout)
	}
	for k, v := range values {
		if err := t.SetMeta(ctx, k, v); err != nil {
			return fmt.Errorf("failed to store %s: %w", k, err)
		}
	}
	return nil
}

// PutUserEntry inserts or replaces a catalog entry
func (t *budgetTx) PutUserEntry(ctx context.Context, e domain.CatalogEntry) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO catalog (id, code, source, description, unit, price, type, date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Code, e.Source, e.Description, e.Unit, e.Price, e.Type, formatDate(e.Date))
	return err
}

// Commit commits the transaction
func (t *budgetTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *budgetTx) Rollback() error {
	return t.tx.Rollback()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func nodeArgs(n domain.Node) []any {
	args := []any{
		n.ID, n.Path, n.Kind.String(), n.Label,
		n.Value, n.Quantity, n.Unit, n.UnitPrice, n.Memory,
	}

	if r := n.Ref; r != nil {
		args = append(args, r.ID, r.Code, r.Source, r.Description, r.Unit, r.Price, r.Type, formatDate(r.Date))
	} else {
		args = append(args, nil, nil, nil, nil, nil, nil, nil, nil)
	}

	if b := n.Breakdown; b != nil {
		args = append(args, b.Material, b.Labor, b.Others)
	} else {
		args = append(args, nil, nil, nil)
	}
	return args
}

func scanNode(s rowScanner) (domain.Node, error) {
	var n domain.Node
	var kind string
	var refID, refCode, refSource, refDesc, refUnit, refType, refDate sql.NullString
	var refPrice, material, labor, others decimal.NullDecimal

	err := s.Scan(
		&n.ID, &n.Path, &kind, &n.Label,
		&n.Value, &n.Quantity, &n.Unit, &n.UnitPrice, &n.Memory,
		&refID, &refCode, &refSource, &refDesc, &refUnit, &refPrice, &refType, &refDate,
		&material, &labor, &others,
	)
	if err != nil {
		return n, err
	}
	n.Kind = domain.ParseKind(kind)

	if refID.Valid || refCode.Valid {
		ref := domain.CatalogEntry{
			ID:          refID.String,
			Code:        refCode.String,
			Source:      refSource.String,
			Description: refDesc.String,
			Unit:        refUnit.String,
			Price:       refPrice.Decimal,
			Type:        refType.String,
		}
		if ref.Date, err = parseDate(refDate.String); err != nil {
			return n, err
		}
		n.Ref = &ref
	}

	if material.Valid || labor.Valid || others.Valid {
		n.Breakdown = &domain.CostBreakdown{
			Material: material.Decimal,
			Labor:    labor.Decimal,
			Others:   others.Decimal,
		}
	}
	return n, nil
}

func scanBlock(s rowScanner) (domain.Block, error) {
	var b domain.Block
	var created string
	if err := s.Scan(&b.ID, &b.Name, &created); err != nil {
		return b, err
	}
	t, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return b, fmt.Errorf("invalid block timestamp %q: %w", created, err)
	}
	b.CreatedAt = t
	return b, nil
}

// formatDate stores catalog dates at day precision; the zero date is ""
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
