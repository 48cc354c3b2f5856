package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pokedata/pokepipeline/models"
)

func intPtr(v int) *int { return &v }

func samplePokemon() *models.Pokemon {
	return &models.Pokemon{
		ID:             6,
		Name:           "charizard",
		Height:         17,
		Weight:         905,
		BaseExperience: intPtr(267),
		Species: models.NamedResource{
			Name: "charizard",
			URL:  "https://pokeapi.co/api/v2/pokemon-species/6/",
		},
		Types: []models.TypeSlot{
			{Slot: 1, Type: models.NamedResource{Name: "fire", URL: "https://pokeapi.co/api/v2/type/10/"}},
			{Slot: 2, Type: models.NamedResource{Name: "flying", URL: "https://pokeapi.co/api/v2/type/3/"}},
		},
		Abilities: []models.AbilitySlot{
			{Slot: 1, Ability: models.NamedResource{Name: "blaze", URL: "https://pokeapi.co/api/v2/ability/66/"}},
			{Slot: 3, IsHidden: true, Ability: models.NamedResource{Name: "solar-power", URL: "https://pokeapi.co/api/v2/ability/94/"}},
		},
		Stats: []models.StatValue{
			{BaseStat: 78, Effort: 0, Stat: models.NamedResource{Name: "hp"}},
			{BaseStat: 84, Effort: 0, Stat: models.NamedResource{Name: "attack"}},
			{BaseStat: 100, Effort: 3, Stat: models.NamedResource{Name: "speed"}},
		},
	}
}

func TestRecord_MapsAllRows(t *testing.T) {
	rec, err := Record(samplePokemon())
	require.NoError(t, err)

	assert.Equal(t, 6, rec.ID)
	assert.Equal(t, "charizard", rec.Name)
	require.NotNil(t, rec.BaseExperience)
	assert.Equal(t, 267, *rec.BaseExperience)
	assert.Equal(t, "https://pokeapi.co/api/v2/pokemon-species/6/", rec.SpeciesURL)

	require.Len(t, rec.Types, 2)
	assert.Equal(t, models.TypeRow{ExternalID: 10, Name: "fire", Slot: 1}, rec.Types[0])
	assert.Equal(t, models.TypeRow{ExternalID: 3, Name: "flying", Slot: 2}, rec.Types[1])

	require.Len(t, rec.Abilities, 2)
	assert.Equal(t, "blaze", rec.Abilities[0].Name)
	assert.False(t, rec.Abilities[0].IsHidden)
	assert.Equal(t, "solar-power", rec.Abilities[1].Name)
	assert.True(t, rec.Abilities[1].IsHidden)
	assert.Equal(t, 3, rec.Abilities[1].Slot)

	require.Len(t, rec.Stats, 3)
	assert.Equal(t, models.StatRow{Name: "speed", BaseStat: 100, Effort: 3}, rec.Stats[2])
}

func TestRecord_PreservesSourceOrder(t *testing.T) {
	rec, err := Record(samplePokemon())
	require.NoError(t, err)

	gotTypes := []string{rec.Types[0].Name, rec.Types[1].Name}
	assert.Equal(t, []string{"fire", "flying"}, gotTypes)

	gotStats := make([]string, 0, len(rec.Stats))
	for _, s := range rec.Stats {
		gotStats = append(gotStats, s.Name)
	}
	assert.Equal(t, []string{"hp", "attack", "speed"}, gotStats)
}

func TestRecord_OptionalBaseExperience(t *testing.T) {
	p := samplePokemon()
	p.BaseExperience = nil

	rec, err := Record(p)
	require.NoError(t, err)
	assert.Nil(t, rec.BaseExperience)
}

func TestRecord_ShapeDefects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.Pokemon)
		field  string
	}{
		{
			name:   "missing id",
			mutate: func(p *models.Pokemon) { p.ID = 0 },
			field:  "id",
		},
		{
			name:   "missing name",
			mutate: func(p *models.Pokemon) { p.Name = "" },
			field:  "name",
		},
		{
			name:   "unnamed type",
			mutate: func(p *models.Pokemon) { p.Types[0].Type.Name = "" },
			field:  "types.type.name",
		},
		{
			name:   "unnamed ability",
			mutate: func(p *models.Pokemon) { p.Abilities[1].Ability.Name = "" },
			field:  "abilities.ability.name",
		},
		{
			name:   "unnamed stat",
			mutate: func(p *models.Pokemon) { p.Stats[0].Stat.Name = "" },
			field:  "stats.stat.name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := samplePokemon()
			tt.mutate(p)

			_, err := Record(p)
			var terr *TransformError
			require.ErrorAs(t, err, &terr)
			assert.Equal(t, tt.field, terr.Field)
		})
	}
}

func TestIDFromURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{"trailing slash", "https://pokeapi.co/api/v2/type/12/", 12},
		{"no trailing slash", "https://pokeapi.co/api/v2/type/12", 12},
		{"chain url", "https://pokeapi.co/api/v2/evolution-chain/67/", 67},
		{"non-numeric segment", "https://pokeapi.co/api/v2/type/fire/", 0},
		{"empty", "", 0},
		{"negative", "https://pokeapi.co/api/v2/type/-3/", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IDFromURL(tt.url))
		})
	}
}
