package domain

// Species identifies one of the fixed set of adoptable animals.
type Species string

const (
	SpeciesDog      Species = "dog"
	SpeciesCat      Species = "cat"
	SpeciesParrot   Species = "parrot"
	SpeciesFox      Species = "fox"
	SpeciesPenguin  Species = "penguin"
	SpeciesBear     Species = "bear"
	SpeciesKangaroo Species = "kangaroo"
	SpeciesPanda    Species = "panda"
	SpeciesBunny    Species = "bunny"
	SpeciesHedgehog Species = "hedgehog"
	SpeciesDragon   Species = "dragon"
	SpeciesPony     Species = "pony"
	SpeciesOwl      Species = "owl"
	SpeciesHamster  Species = "hamster"
)

// AllSpecies lists every species in display order.
var AllSpecies = []Species{
	SpeciesDog, SpeciesCat, SpeciesParrot, SpeciesFox, SpeciesPenguin,
	SpeciesBear, SpeciesKangaroo, SpeciesPanda, SpeciesBunny, SpeciesHedgehog,
	SpeciesDragon, SpeciesPony, SpeciesOwl, SpeciesHamster,
}

var speciesNames = map[Species]string{
	SpeciesDog:      "Dog",
	SpeciesCat:      "Cat",
	SpeciesParrot:   "Parrot",
	SpeciesFox:      "Fox",
	SpeciesPenguin:  "Penguin",
	SpeciesBear:     "Bear",
	SpeciesKangaroo: "Kangaroo",
	SpeciesPanda:    "Panda",
	SpeciesBunny:    "Bunny",
	SpeciesHedgehog: "Hedgehog",
	SpeciesDragon:   "Dragon",
	SpeciesPony:     "Pony",
	SpeciesOwl:      "Owl",
	SpeciesHamster:  "Hamster",
}

// Valid reports whether s is one of the known species.
func (s Species) Valid() bool {
	_, ok := speciesNames[s]
	return ok
}

// DisplayName returns the human-readable species name, or the raw value
// for unknown species.
func (s Species) DisplayName() string {
	if n, ok := speciesNames[s]; ok {
		return n
	}
	return string(s)
}
