package db

const schema = `
-- Performance and reliability settings
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Pokemon: one row per fetched pokemon, keyed by the API's own id
CREATE TABLE IF NOT EXISTS pokemon (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    height INTEGER,
    weight INTEGER,
    base_experience INTEGER,
    species_url TEXT,
    evolution_chain_id INTEGER
);

CREATE INDEX IF NOT EXISTS idx_pokemon_name ON pokemon(name);
CREATE INDEX IF NOT EXISTS idx_pokemon_chain ON pokemon(evolution_chain_id);

-- Lookup tables: rows created lazily the first time a name is seen
CREATE TABLE IF NOT EXISTS types (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS abilities (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL UNIQUE
);

-- Join tables
CREATE TABLE IF NOT EXISTS pokemon_types (
    pokemon_id INTEGER NOT NULL,
    type_id INTEGER NOT NULL,
    slot INTEGER,
    PRIMARY KEY (pokemon_id, type_id),
    FOREIGN KEY (pokemon_id) REFERENCES pokemon(id) ON DELETE CASCADE,
    FOREIGN KEY (type_id) REFERENCES types(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS pokemon_abilities (
    pokemon_id INTEGER NOT NULL,
    ability_id INTEGER NOT NULL,
    slot INTEGER,
    is_hidden BOOLEAN DEFAULT 0,
    PRIMARY KEY (pokemon_id, ability_id),
    FOREIGN KEY (pokemon_id) REFERENCES pokemon(id) ON DELETE CASCADE,
    FOREIGN KEY (ability_id) REFERENCES abilities(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS stats (
    pokemon_id INTEGER NOT NULL,
    stat_name TEXT NOT NULL,
    base_stat INTEGER,
    effort INTEGER,
    PRIMARY KEY (pokemon_id, stat_name),
    FOREIGN KEY (pokemon_id) REFERENCES pokemon(id) ON DELETE CASCADE
);

-- Evolution edges: directed species graph flattened from chain trees.
-- Endpoints may reference pokemon that were never fetched, so no
-- foreign keys on the id columns.
CREATE TABLE IF NOT EXISTS evolutions (
    chain_id INTEGER NOT NULL,
    from_pokemon_id INTEGER NOT NULL,
    to_pokemon_id INTEGER NOT NULL,
    PRIMARY KEY (chain_id, from_pokemon_id, to_pokemon_id)
);

CREATE INDEX IF NOT EXISTS idx_evolutions_from ON evolutions(from_pokemon_id);
CREATE INDEX IF NOT EXISTS idx_evolutions_to ON evolutions(to_pokemon_id);

-- Runs: bookkeeping for each pipeline invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    total INTEGER NOT NULL,
    succeeded INTEGER DEFAULT 0,
    failed INTEGER DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);

-- Run results: per-pokemon outcome within a run
CREATE TABLE IF NOT EXISTS run_results (
    result_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    pokemon_id INTEGER NOT NULL,
    status TEXT NOT NULL,
    stage TEXT,
    error_message TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
    UNIQUE(run_id, pokemon_id)
);

CREATE INDEX IF NOT EXISTS idx_run_results_run ON run_results(run_id);
`
