// Package celldb is the persistent catalog of unit-cell definitions. It lets
// bond lengths and atom templates be curated outside code and referenced from
// construction requests by name.
package celldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	_ "modernc.org/sqlite"

	"latgen/internal/lattice"
)

// ErrNotFound is returned when a named cell is not in the catalog.
var ErrNotFound = errors.New("celldb: cell not found")

const schema = `
CREATE TABLE IF NOT EXISTS cells (
	name  TEXT PRIMARY KEY,
	kind  TEXT NOT NULL,
	a     REAL NOT NULL,
	b     REAL NOT NULL,
	gamma REAL NOT NULL
);
CREATE TABLE IF NOT EXISTS templates (
	cell    TEXT NOT NULL REFERENCES cells(name) ON DELETE CASCADE,
	ord     INTEGER NOT NULL,
	name    TEXT NOT NULL,
	element TEXT NOT NULL,
	u       REAL NOT NULL,
	v       REAL NOT NULL,
	z       REAL NOT NULL,
	PRIMARY KEY (cell, ord)
);
`

// Def is one catalog entry. Lengths are in nm and Gamma in degrees, the unit
// users enter; conversion to radians happens in UnitCell.
type Def struct {
	Name      string
	Kind      lattice.Kind
	A, B      float64
	Gamma     float64
	Templates []lattice.AtomTemplate
}

// UnitCell converts the definition into a validated lattice.UnitCell.
func (d Def) UnitCell() (lattice.UnitCell, error) {
	switch d.Kind {
	case lattice.Hexagonal:
		return lattice.NewHexagonal(d.A, d.Templates...)
	case lattice.Triclinic:
		return lattice.NewTriclinic(d.A, d.B, d.Gamma*math.Pi/180, d.Templates...)
	default:
		return lattice.UnitCell{}, fmt.Errorf("celldb: unknown lattice kind %q", d.Kind)
	}
}

// Defaults are the built-in definitions seeded into a fresh catalog:
// graphene (honeycomb carbon, bond 0.142 nm) and silica (three-atom
// O-Si-O columns on a 60 degree triclinic base).
func Defaults() []Def {
	return []Def{
		{
			Name: "graphene",
			Kind: lattice.Hexagonal,
			A:    0.142,
			B:    0.142,
			Templates: []lattice.AtomTemplate{
				{Name: "C", Element: "C", Z: 0.071},
			},
		},
		{
			Name:  "silica",
			Kind:  lattice.Triclinic,
			A:     0.45,
			B:     0.45,
			Gamma: 60,
			Templates: []lattice.AtomTemplate{
				{Name: "O1", Element: "O", U: 0.25, V: 0.25, Z: 0.451},
				{Name: "SI", Element: "Si", U: 0.25, V: 0.25, Z: 0.300},
				{Name: "O2", Element: "O", U: 0.25, V: 0.25, Z: 0.149},
			},
		},
	}
}

// Store is a catalog backed by a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog at path and seeds the built-in
// definitions into an empty catalog.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("celldb: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("celldb: init schema: %w", err)
	}

	store := &Store{db: db}
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cells`).Scan(&count); err != nil {
		db.Close()
		return nil, fmt.Errorf("celldb: %w", err)
	}
	if count == 0 {
		for _, def := range Defaults() {
			if err := store.Put(ctx, def); err != nil {
				db.Close()
				return nil, err
			}
		}
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

// List returns every definition ordered by name.
func (s *Store) List(ctx context.Context) ([]Def, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM cells ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("celldb: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("celldb: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("celldb: %w", err)
	}

	defs := make([]Def, 0, len(names))
	for _, name := range names {
		def, err := s.Get(ctx, name)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Get returns the named definition or ErrNotFound.
func (s *Store) Get(ctx context.Context, name string) (Def, error) {
	var def Def
	err := s.db.QueryRowContext(ctx,
		`SELECT name, kind, a, b, gamma FROM cells WHERE name = ?`, name).
		Scan(&def.Name, (*string)(&def.Kind), &def.A, &def.B, &def.Gamma)
	if errors.Is(err, sql.ErrNoRows) {
		return Def{}, fmt.Errorf("celldb: %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Def{}, fmt.Errorf("celldb: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, element, u, v, z FROM templates WHERE cell = ? ORDER BY ord`, name)
	if err != nil {
		return Def{}, fmt.Errorf("celldb: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t lattice.AtomTemplate
		if err := rows.Scan(&t.Name, &t.Element, &t.U, &t.V, &t.Z); err != nil {
			return Def{}, fmt.Errorf("celldb: %w", err)
		}
		def.Templates = append(def.Templates, t)
	}
	if err := rows.Err(); err != nil {
		return Def{}, fmt.Errorf("celldb: %w", err)
	}
	return def, nil
}

// Put inserts or replaces a definition. The definition is validated by
// constructing its unit cell first, so the catalog never holds a degenerate
// basis.
func (s *Store) Put(ctx context.Context, def Def) error {
	if _, err := def.UnitCell(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("celldb: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM templates WHERE cell = ?`, def.Name); err != nil {
		return fmt.Errorf("celldb: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO cells (name, kind, a, b, gamma) VALUES (?, ?, ?, ?, ?)`,
		def.Name, string(def.Kind), def.A, def.B, def.Gamma)
	if err != nil {
		return fmt.Errorf("celldb: %w", err)
	}
	for i, t := range def.Templates {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO templates (cell, ord, name, element, u, v, z) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			def.Name, i, t.Name, t.Element, t.U, t.V, t.Z)
		if err != nil {
			return fmt.Errorf("celldb: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("celldb: %w", err)
	}
	return nil
}

// Delete removes the named definition. Deleting an absent cell returns
// ErrNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE cell = ?`, name); err != nil {
		return fmt.Errorf("celldb: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM cells WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("celldb: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("celldb: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("celldb: %q: %w", name, ErrNotFound)
	}
	return nil
}
