package db

import (
	"database/sql"
	"errors"
	"fmt"
)

// PokemonSummary is one row of the stored pokemon listing.
type PokemonSummary struct {
	ID    int
	Name  string
	Types string // comma-joined type names in slot order
}

// PokemonDetail bundles everything stored for one pokemon.
type PokemonDetail struct {
	ID               int
	Name             string
	Height           int
	Weight           int
	BaseExperience   *int
	EvolutionChainID *int

	Types      []NamedSlot
	Abilities  []AbilityDetail
	Stats      []StatDetail
	Evolutions []EvolutionDetail
}

type NamedSlot struct {
	Name string
	Slot int
}

type AbilityDetail struct {
	Name     string
	Slot     int
	IsHidden bool
}

type StatDetail struct {
	Name     string
	BaseStat int
	Effort   int
}

// EvolutionDetail is one stored edge of the pokemon's chain.
type EvolutionDetail struct {
	FromID int
	ToID   int
}

// ListPokemon returns all stored pokemon ordered by id.
func (db *DB) ListPokemon() ([]PokemonSummary, error) {
	rows, err := db.Query(`
		SELECT p.id, p.name,
		       COALESCE(GROUP_CONCAT(t.name, ', '), '')
		FROM pokemon p
		LEFT JOIN pokemon_types pt ON pt.pokemon_id = p.id
		LEFT JOIN types t ON t.id = pt.type_id
		GROUP BY p.id
		ORDER BY p.id
	`)
	if err != nil {
		return nil, &StorageError{Op: "list pokemon", Err: err}
	}
	defer rows.Close()

	var out []PokemonSummary
	for rows.Next() {
		var s PokemonSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Types); err != nil {
			return nil, &StorageError{Op: "scan pokemon", Err: err}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetPokemonDetail loads one pokemon with its joins, stats and chain
// edges. Returns sql.ErrNoRows (wrapped) when the id is not stored.
func (db *DB) GetPokemonDetail(id int) (*PokemonDetail, error) {
	d := &PokemonDetail{}
	var baseExp, chainID sql.NullInt64
	err := db.QueryRow(`
		SELECT id, name, height, weight, base_experience, evolution_chain_id
		FROM pokemon WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &d.Height, &d.Weight, &baseExp, &chainID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pokemon %d not stored: %w", id, err)
	}
	if err != nil {
		return nil, &StorageError{Op: fmt.Sprintf("get pokemon %d", id), Err: err}
	}
	if baseExp.Valid {
		v := int(baseExp.Int64)
		d.BaseExperience = &v
	}
	if chainID.Valid {
		v := int(chainID.Int64)
		d.EvolutionChainID = &v
	}

	if err := db.loadTypeRows(d); err != nil {
		return nil, err
	}
	if err := db.loadAbilityRows(d); err != nil {
		return nil, err
	}
	if err := db.loadStatRows(d); err != nil {
		return nil, err
	}
	if d.EvolutionChainID != nil {
		if err := db.loadEvolutionRows(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (db *DB) loadTypeRows(d *PokemonDetail) error {
	rows, err := db.Query(`
		SELECT t.name, pt.slot
		FROM pokemon_types pt
		JOIN types t ON t.id = pt.type_id
		WHERE pt.pokemon_id = ?
		ORDER BY pt.slot
	`, d.ID)
	if err != nil {
		return &StorageError{Op: "get pokemon types", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var ns NamedSlot
		if err := rows.Scan(&ns.Name, &ns.Slot); err != nil {
			return &StorageError{Op: "scan pokemon type", Err: err}
		}
		d.Types = append(d.Types, ns)
	}
	return rows.Err()
}

func (db *DB) loadAbilityRows(d *PokemonDetail) error {
	rows, err := db.Query(`
		SELECT a.name, pa.slot, pa.is_hidden
		FROM pokemon_abilities pa
		JOIN abilities a ON a.id = pa.ability_id
		WHERE pa.pokemon_id = ?
		ORDER BY pa.slot
	`, d.ID)
	if err != nil {
		return &StorageError{Op: "get pokemon abilities", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var ad AbilityDetail
		if err := rows.Scan(&ad.Name, &ad.Slot, &ad.IsHidden); err != nil {
			return &StorageError{Op: "scan pokemon ability", Err: err}
		}
		d.Abilities = append(d.Abilities, ad)
	}
	return rows.Err()
}

func (db *DB) loadStatRows(d *PokemonDetail) error {
	rows, err := db.Query(`
		SELECT stat_name, base_stat, effort
		FROM stats
		WHERE pokemon_id = ?
		ORDER BY stat_name
	`, d.ID)
	if err != nil {
		return &StorageError{Op: "get pokemon stats", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var sd StatDetail
		if err := rows.Scan(&sd.Name, &sd.BaseStat, &sd.Effort); err != nil {
			return &StorageError{Op: "scan pokemon stat", Err: err}
		}
		d.Stats = append(d.Stats, sd)
	}
	return rows.Err()
}

func (db *DB) loadEvolutionRows(d *PokemonDetail) error {
	rows, err := db.Query(`
		SELECT from_pokemon_id, to_pokemon_id
		FROM evolutions
		WHERE chain_id = ?
		ORDER BY rowid
	`, *d.EvolutionChainID)
	if err != nil {
		return &StorageError{Op: "get evolutions", Err: err}
	}
	defer rows.Close()
	for rows.Next() {
		var ed EvolutionDetail
		if err := rows.Scan(&ed.FromID, &ed.ToID); err != nil {
			return &StorageError{Op: "scan evolution", Err: err}
		}
		d.Evolutions = append(d.Evolutions, ed)
	}
	return rows.Err()
}

// CountRows returns the row count of a table. Used by the summary and
// by idempotency checks.
func (db *DB) CountRows(table string) (int, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		return 0, &StorageError{Op: "count " + table, Err: err}
	}
	return n, nil
}
