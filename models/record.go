package models

// NormalizedRecord bundles the relational rows extracted from one
// pokemon document. Slices preserve the source document order.
type NormalizedRecord struct {
	ID             int
	Name           string
	Height         int
	Weight         int
	BaseExperience *int
	SpeciesURL     string

	Types     []TypeRow
	Abilities []AbilityRow
	Stats     []StatRow
}

// TypeRow is one (type, slot) pair for a pokemon. ExternalID is the id
// parsed from the type resource URL, or 0 when the URL was unparseable.
type TypeRow struct {
	ExternalID int
	Name       string
	Slot       int
}

// AbilityRow is one (ability, slot, hidden) triple for a pokemon.
type AbilityRow struct {
	ExternalID int
	Name       string
	Slot       int
	IsHidden   bool
}

// StatRow is one named stat line for a pokemon.
type StatRow struct {
	Name     string
	BaseStat int
	Effort   int
}

// EvolutionEdge is one directed parent->child edge of a flattened
// evolution chain, keyed by species ids.
type EvolutionEdge struct {
	FromID int
	ToID   int
}
