// Package transform converts raw pokemon documents into normalized
// relational rows. It is a pure mapping with no I/O.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pokedata/pokepipeline/models"
)

// TransformError reports a document whose shape does not match the
// expected contract. It is not retryable.
type TransformError struct {
	PokemonID int
	Field     string
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform pokemon %d: missing or malformed field %q", e.PokemonID, e.Field)
}

// Record maps one pokemon document to its normalized rows. Optional
// fields (base_experience) pass through as nil; a missing id or name is
// a shape defect and fails the whole record.
func Record(p *models.Pokemon) (*models.NormalizedRecord, error) {
	if p.ID <= 0 {
		return nil, &TransformError{PokemonID: p.ID, Field: "id"}
	}
	if p.Name == "" {
		return nil, &TransformError{PokemonID: p.ID, Field: "name"}
	}

	rec := &models.NormalizedRecord{
		ID:             p.ID,
		Name:           p.Name,
		Height:         p.Height,
		Weight:         p.Weight,
		BaseExperience: p.BaseExperience,
		SpeciesURL:     p.Species.URL,
	}

	for _, t := range p.Types {
		if t.Type.Name == "" {
			return nil, &TransformError{PokemonID: p.ID, Field: "types.type.name"}
		}
		rec.Types = append(rec.Types, models.TypeRow{
			ExternalID: IDFromURL(t.Type.URL),
			Name:       t.Type.Name,
			Slot:       t.Slot,
		})
	}

	for _, a := range p.Abilities {
		if a.Ability.Name == "" {
			return nil, &TransformError{PokemonID: p.ID, Field: "abilities.ability.name"}
		}
		rec.Abilities = append(rec.Abilities, models.AbilityRow{
			ExternalID: IDFromURL(a.Ability.URL),
			Name:       a.Ability.Name,
			Slot:       a.Slot,
			IsHidden:   a.IsHidden,
		})
	}

	for _, s := range p.Stats {
		if s.Stat.Name == "" {
			return nil, &TransformError{PokemonID: p.ID, Field: "stats.stat.name"}
		}
		rec.Stats = append(rec.Stats, models.StatRow{
			Name:     s.Stat.Name,
			BaseStat: s.BaseStat,
			Effort:   s.Effort,
		})
	}

	return rec, nil
}

// IDFromURL extracts the numeric id embedded as the final path segment
// of an API resource URL (".../type/12/" -> 12). Returns 0 when the
// segment is not numeric or the URL is empty.
func IDFromURL(rawURL string) int {
	trimmed := strings.TrimRight(rawURL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 0
	}
	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id <= 0 {
		return 0
	}
	return id
}
