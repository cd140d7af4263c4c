package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"budgetree/internal/domain"
	"budgetree/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// nodeFields is shared by the nodes and block_nodes tables.
// Decimals are stored as TEXT so that they round-trip exactly.
const nodeFields = `
	id TEXT NOT NULL,
	path TEXT NOT NULL,
	kind TEXT NOT NULL,
	label TEXT NOT NULL,
	value TEXT NOT NULL,
	quantity TEXT NOT NULL,
	unit TEXT NOT NULL,
	unit_price TEXT NOT NULL,
	memory TEXT NOT NULL,
	ref_id TEXT,
	ref_code TEXT,
	ref_source TEXT,
	ref_description TEXT,
	ref_unit TEXT,
	ref_price TEXT,
	ref_type TEXT,
	ref_date TEXT,
	bd_material TEXT,
	bd_labor TEXT,
	bd_others TEXT`

const nodeColumns = `id, path, kind, label, value, quantity, unit, unit_price, memory,
	ref_id, ref_code, ref_source, ref_description, ref_unit, ref_price, ref_type, ref_date,
	bd_material, bd_labor, bd_others`

const nodePlaceholders = `?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?`

// Store implements ports.BudgetRepository using SQLite
type Store struct {
	db             *sql.DB
	dbPath         string
	defaultProject domain.Project
}

// Ensure Store implements BudgetRepository
var _ ports.BudgetRepository = (*Store)(nil)

// Option configures the Store
type Option func(*Store)

// WithDefaultProject sets the metadata returned before any project is saved
func WithDefaultProject(p domain.Project) Option {
	return func(s *Store) {
		s.defaultProject = p
	}
}

// Open opens (and creates if needed) the budget database at dbPath.
// An empty dbPath selects DefaultPath().
func Open(dbPath string, opts ...Option) (*Store, error) {
	if dbPath == "" {
		dbPath = DefaultPath()
	}
	// Expand ~ in path
	if len(dbPath) > 0 && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	s := &Store{dbPath: dbPath}
	for _, opt := range opts {
		opt(s)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db

	// Pragmas + schema in single batch
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS nodes (` + nodeFields + `,
			PRIMARY KEY (id),
			UNIQUE (path)
		);
		CREATE TABLE IF NOT EXISTS blocks (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS block_nodes (
			block_id TEXT NOT NULL REFERENCES blocks(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,` + nodeFields + `,
			PRIMARY KEY (block_id, position)
		);
		CREATE TABLE IF NOT EXISTS catalog (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			source TEXT NOT NULL,
			description TEXT NOT NULL,
			unit TEXT NOT NULL,
			price TEXT NOT NULL,
			type TEXT NOT NULL,
			date TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}

	return s, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database file location
func (s *Store) Path() string {
	return s.dbPath
}

// DefaultPath returns $XDG_DATA_HOME/budgetree/budget.db
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "budgetree", "budget.db")
}

// beginTx starts a transaction; callers must Commit or Rollback
func (s *Store) beginTx(ctx context.Context) (*budgetTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &budgetTx{tx: tx}, nil
}

// withTx runs fn inside a transaction, rolling back on error
func (s *Store) withTx(ctx context.Context, fn func(*budgetTx) error) error {
	tx, err := s.beginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// --- nodes ---

// LoadNodes returns the flat list in path order
func (s *Store) LoadNodes(ctx context.Context) ([]domain.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM nodes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	domain.SortByPath(nodes)
	return nodes, nil
}

// ReplaceNodes swaps the stored list for nodes in one transaction
func (s *Store) ReplaceNodes(ctx context.Context, nodes []domain.Node) error {
	return s.withTx(ctx, func(tx *budgetTx) error {
		return tx.ReplaceNodes(ctx, nodes)
	})
}

// ImportDocument writes a whole snapshot in one transaction: the project,
// the flat list, and blocks and catalog entries replacing those with the same id
func (s *Store) ImportDocument(ctx context.Context, doc ports.Document) error {
	return s.withTx(ctx, func(tx *budgetTx) error {
		if err := tx.SetProject(ctx, doc.Project); err != nil {
			return err
		}
		if err := tx.ReplaceNodes(ctx, doc.Nodes); err != nil {
			return err
		}
		for _, b := range doc.Blocks {
			if err := tx.DeleteBlock(ctx, b.ID); err != nil {
				return err
			}
			if err := tx.InsertBlock(ctx, b); err != nil {
				return fmt.Errorf("failed to store block %s: %w", b.Name, err)
			}
		}
		for _, e := range doc.UserCatalog {
			if err := tx.PutUserEntry(ctx, e); err != nil {
				return fmt.Errorf("failed to store catalog entry %s: %w", e.Code, err)
			}
		}
		return nil
	})
}

// --- project ---

// LoadProject returns the stored project metadata, falling back to the
// default project for unset keys
func (s *Store) LoadProject(ctx context.Context) (domain.Project, error) {
	p := s.defaultProject

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta WHERE key LIKE 'project_%'`)
	if err != nil {
		return p, err
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return p, err
		}
		switch key {
		case "project_name":
			p.Name = value
		case "project_area":
			p.Area = value
		case "project_status":
			p.Status = value
		case "project_version":
			p.Version = value
		case "project_reference_date":
			d, err := time.Parse(domain.DateLayout, value)
			if err != nil {
				return p, fmt.Errorf("invalid stored reference date %q: %w", value, err)
			}
			p.ReferenceDate = d
		}
	}
	return p, rows.Err()
}

// SaveProject stores the project metadata. A zero reference date is not stored.
func (s *Store) SaveProject(ctx context.Context, p domain.Project) error {
	return s.withTx(ctx, func(tx *budgetTx) error {
		return tx.SetProject(ctx, p)
	})
}

// --- blocks ---

// ListBlocks returns every saved block, newest first
func (s *Store) ListBlocks(ctx context.Context) ([]domain.Block, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, created_at FROM blocks ORDER BY created_at DESC, name`)
	if err != nil {
		return nil, err
	}

	var blocks []domain.Block
	for rows.Next() {
		b, err := scanBlock(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		blocks = append(blocks, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range blocks {
		nodes, err := s.blockNodes(ctx, blocks[i].ID)
		if err != nil {
			return nil, err
		}
		blocks[i].Nodes = nodes
	}
	return blocks, nil
}

// GetBlock returns one block with its nodes
func (s *Store) GetBlock(ctx context.Context, id string) (*domain.Block, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM blocks WHERE id = ?`, id)
	b, err := scanBlock(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: block %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	if b.Nodes, err = s.blockNodes(ctx, id); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) blockNodes(ctx context.Context, blockID string) ([]domain.Node, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+nodeColumns+` FROM block_nodes WHERE block_id = ? ORDER BY position`, blockID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var nodes []domain.Node
	for rows.Next() {
		n, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, rows.Err()
}

// SaveBlock stores a block, replacing any block with the same id
func (s *Store) SaveBlock(ctx context.Context, b domain.Block) error {
	return s.withTx(ctx, func(tx *budgetTx) error {
		if err := tx.DeleteBlock(ctx, b.ID); err != nil {
			return err
		}
		if err := tx.InsertBlock(ctx, b); err != nil {
			return fmt.Errorf("failed to store block %s: %w", b.Name, err)
		}
		return nil
	})
}

// DeleteBlock removes a block and its nodes
func (s *Store) DeleteBlock(ctx context.Context, id string) error {
	return s.withTx(ctx, func(tx *budgetTx) error {
		n, err := tx.DeleteBlockRows(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: block %s", domain.ErrNotFound, id)
		}
		return nil
	})
}

// --- user catalog ---

// ListUserEntries returns the user's private catalog ordered by code
func (s *Store) ListUserEntries(ctx context.Context) ([]domain.CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, code, source, description, unit, price, type, date
		FROM catalog ORDER BY code
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.CatalogEntry
	for rows.Next() {
		var e domain.CatalogEntry
		var date string
		if err := rows.Scan(&e.ID, &e.Code, &e.Source, &e.Description, &e.Unit, &e.Price, &e.Type, &date); err != nil {
			return nil, err
		}
		if e.Date, err = parseDate(date); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// SaveUserEntry inserts or replaces a catalog entry
func (s *Store) SaveUserEntry(ctx context.Context, e domain.CatalogEntry) error {
	return s.withTx(ctx, func(tx *budgetTx) error {
		return tx.PutUserEntry(ctx, e)
	})
}

// DeleteUserEntry removes a catalog entry
func (s *Store) DeleteUserEntry(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM catalog WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: catalog entry %s", domain.ErrNotFound, id)
	}
	return nil
}
