package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/pokedata/pokepipeline/models"
)

// getOrCreateLookup implements get-or-create over a {id, name UNIQUE}
// lookup table. When the caller knows the API's own id for the name it
// is inserted under that id; otherwise the row id is assigned by
// SQLite. Repeated calls with the same name always return the same id.
func (db *DB) getOrCreateLookup(table string, externalID int, name string) (int64, error) {
	if externalID > 0 {
		_, err := db.Exec(
			fmt.Sprintf("INSERT OR IGNORE INTO %s (id, name) VALUES (?, ?)", table),
			externalID, name,
		)
		if err != nil {
			return 0, &StorageError{Op: "insert " + table, Err: err}
		}
		return int64(externalID), nil
	}

	var existingID int64
	err := db.QueryRow(
		fmt.Sprintf("SELECT id FROM %s WHERE name = ?", table), name,
	).Scan(&existingID)
	if err == nil {
		return existingID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, &StorageError{Op: "lookup " + table, Err: err}
	}

	result, err := db.Exec(
		fmt.Sprintf("INSERT INTO %s (name) VALUES (?)", table), name,
	)
	if err != nil {
		return 0, &StorageError{Op: "insert " + table, Err: err}
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, &StorageError{Op: "insert " + table, Err: err}
	}
	return id, nil
}

// GetOrCreateType returns the types row id for a name, creating the
// row on first encounter.
func (db *DB) GetOrCreateType(externalID int, name string) (int64, error) {
	return db.getOrCreateLookup("types", externalID, name)
}

// GetOrCreateAbility returns the abilities row id for a name, creating
// the row on first encounter.
func (db *DB) GetOrCreateAbility(externalID int, name string) (int64, error) {
	return db.getOrCreateLookup("abilities", externalID, name)
}

// LoadRecord writes one pokemon's base row, join rows and stat rows.
// chainID is nil when evolution resolution was skipped or failed.
// Re-loading the same pokemon replaces its rows without duplicating
// lookup entries.
func (db *DB) LoadRecord(rec *models.NormalizedRecord, chainID *int) error {
	var chain sql.NullInt64
	if chainID != nil {
		chain = sql.NullInt64{Int64: int64(*chainID), Valid: true}
	}
	var baseExp sql.NullInt64
	if rec.BaseExperience != nil {
		baseExp = sql.NullInt64{Int64: int64(*rec.BaseExperience), Valid: true}
	}

	_, err := db.Exec(`
		INSERT OR REPLACE INTO pokemon (id, name, height, weight, base_experience, species_url, evolution_chain_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Name, rec.Height, rec.Weight, baseExp, rec.SpeciesURL, chain)
	if err != nil {
		return &StorageError{Op: fmt.Sprintf("insert pokemon %d", rec.ID), Err: err}
	}

	for _, t := range rec.Types {
		typeID, err := db.GetOrCreateType(t.ExternalID, t.Name)
		if err != nil {
			return err
		}
		_, err = db.Exec(`
			INSERT OR REPLACE INTO pokemon_types (pokemon_id, type_id, slot)
			VALUES (?, ?, ?)
		`, rec.ID, typeID, t.Slot)
		if err != nil {
			return &StorageError{Op: fmt.Sprintf("insert pokemon_types for %d", rec.ID), Err: err}
		}
	}

	for _, a := range rec.Abilities {
		abilityID, err := db.GetOrCreateAbility(a.ExternalID, a.Name)
		if err != nil {
			return err
		}
		_, err = db.Exec(`
			INSERT OR REPLACE INTO pokemon_abilities (pokemon_id, ability_id, slot, is_hidden)
			VALUES (?, ?, ?, ?)
		`, rec.ID, abilityID, a.Slot, a.IsHidden)
		if err != nil {
			return &StorageError{Op: fmt.Sprintf("insert pokemon_abilities for %d", rec.ID), Err: err}
		}
	}

	for _, s := range rec.Stats {
		_, err = db.Exec(`
			INSERT OR REPLACE INTO stats (pokemon_id, stat_name, base_stat, effort)
			VALUES (?, ?, ?, ?)
		`, rec.ID, s.Name, s.BaseStat, s.Effort)
		if err != nil {
			return &StorageError{Op: fmt.Sprintf("insert stats for %d", rec.ID), Err: err}
		}
	}

	return nil
}

// InsertEvolutions stores the flattened edges of one chain. Edges are
// stored unconditionally; endpoints need not be loaded pokemon.
func (db *DB) InsertEvolutions(chainID int, edges []models.EvolutionEdge) error {
	for _, e := range edges {
		_, err := db.Exec(`
			INSERT OR REPLACE INTO evolutions (chain_id, from_pokemon_id, to_pokemon_id)
			VALUES (?, ?, ?)
		`, chainID, e.FromID, e.ToID)
		if err != nil {
			return &StorageError{Op: fmt.Sprintf("insert evolutions for chain %d", chainID), Err: err}
		}
	}
	return nil
}
