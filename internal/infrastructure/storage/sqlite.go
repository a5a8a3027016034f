package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/eshaffer321/realestate-detective-backend/internal/domain/parcel"
)

// Storage provides SQLite access to the region directory.
// It implements the Repository interface.
type Storage struct {
	db     *sql.DB
	logger *slog.Logger
}

// Compile-time check that Storage implements Repository
var _ Repository = (*Storage)(nil)

// NewStorage opens the SQLite database at dbPath and applies migrations.
// ":memory:" gives a private seeded in-memory directory.
func NewStorage(dbPath string, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Every pooled connection to :memory: is its own database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign key constraints (SQLite-specific)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(context.Background(), db, logger); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Storage{db: db, logger: logger}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// ListProvinces returns all provinces ordered by code
func (s *Storage) ListProvinces(ctx context.Context) ([]Province, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, name FROM provinces ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list provinces: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var provinces []Province
	for rows.Next() {
		var p Province
		if err := rows.Scan(&p.Code, &p.Name); err != nil {
			return nil, err
		}
		provinces = append(provinces, p)
	}
	return provinces, rows.Err()
}

const municipalityColumns = `
	SELECT m.code, m.province_code, p.name, m.name
	FROM municipalities m
	JOIN provinces p ON p.code = m.province_code`

// ListMunicipalities returns the municipalities of a province ordered by code
func (s *Storage) ListMunicipalities(ctx context.Context, provinceCode string) ([]Municipality, error) {
	query := municipalityColumns
	var args []any
	if provinceCode != "" {
		query += ` WHERE m.province_code = ?`
		args = append(args, provinceCode)
	}
	query += ` ORDER BY m.code`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list municipalities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Municipality
	for rows.Next() {
		var m Municipality
		if err := rows.Scan(&m.Code, &m.ProvinceCode, &m.ProvinceName, &m.Name); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMunicipality returns one municipality or ErrNotFound
func (s *Storage) GetMunicipality(ctx context.Context, code string) (*Municipality, error) {
	var m Municipality
	err := s.db.QueryRowContext(ctx, municipalityColumns+` WHERE m.code = ?`, code).
		Scan(&m.Code, &m.ProvinceCode, &m.ProvinceName, &m.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: municipality %s", ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get municipality: %w", err)
	}
	return &m, nil
}

// ListSubdivisions returns the subdivisions of a municipality ordered by code
func (s *Storage) ListSubdivisions(ctx context.Context, municipalityCode string) ([]Subdivision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT municipality_code, code, name
		FROM subdivisions
		WHERE municipality_code = ?
		ORDER BY code`, municipalityCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list subdivisions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Subdivision
	for rows.Next() {
		var sub Subdivision
		if err := rows.Scan(&sub.MunicipalityCode, &sub.Code, &sub.Name); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// UpsertSubdivision adds or renames a subdivision
func (s *Storage) UpsertSubdivision(ctx context.Context, sub Subdivision) error {
	if _, err := s.GetMunicipality(ctx, sub.MunicipalityCode); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subdivisions (municipality_code, code, name)
		VALUES (?, ?, ?)
		ON CONFLICT(municipality_code, code) DO UPDATE SET name = excluded.name`,
		sub.MunicipalityCode, sub.Code, parcel.NormalizeName(sub.Name))
	if err != nil {
		return fmt.Errorf("failed to upsert subdivision: %w", err)
	}

	s.logger.Debug("upserted subdivision",
		"municipality_code", sub.MunicipalityCode,
		"code", sub.Code,
		"name", sub.Name,
	)
	return nil
}

// RegionTree returns the full directory as a tree
func (s *Storage) RegionTree(ctx context.Context) ([]RegionTree, error) {
	provinces, err := s.ListProvinces(ctx)
	if err != nil {
		return nil, err
	}

	tree := make([]RegionTree, 0, len(provinces))
	for _, p := range provinces {
		municipalities, err := s.ListMunicipalities(ctx, p.Code)
		if err != nil {
			return nil, err
		}

		node := RegionTree{Province: p, Municipalities: make([]MunicipalityNode, 0, len(municipalities))}
		for _, m := range municipalities {
			subs, err := s.ListSubdivisions(ctx, m.Code)
			if err != nil {
				return nil, err
			}
			node.Municipalities = append(node.Municipalities, MunicipalityNode{Municipality: m, Subdivisions: subs})
		}
		tree = append(tree, node)
	}
	return tree, nil
}

// LookupFor builds the subdivision lookup for a municipality
func (s *Storage) LookupFor(ctx context.Context, municipalityCode string) (parcel.Lookup, error) {
	m, err := s.GetMunicipality(ctx, municipalityCode)
	if err != nil {
		return nil, err
	}

	subs, err := s.ListSubdivisions(ctx, municipalityCode)
	if err != nil {
		return nil, err
	}

	return lookupFrom(*m, subs), nil
}

func lookupFrom(m Municipality, subs []Subdivision) *parcel.StaticLookup {
	codes := make(map[string]string, len(subs))
	for _, sub := range subs {
		codes[sub.Name] = sub.Code
	}
	return parcel.NewStaticLookup(m.FullName(), codes)
}
