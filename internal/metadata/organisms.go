package metadata

import (
	"encoding/json"
	"fmt"
	"os"
)

// Organism is one genus/species pair from the hand-maintained organisms
// list.
type Organism struct {
	Genus   string
	Species string
}

func (o Organism) String() string {
	return o.Genus + " " + o.Species
}

// IsDmel reports whether the organism is Drosophila melanogaster, which is
// served from FlyBase's own archive instead of NCBI.
func (o Organism) IsDmel() bool {
	return o.Genus == "Drosophila" && o.Species == "melanogaster"
}

// LoadOrganisms reads the organisms file: a JSON array of [genus, species]
// pairs.
func LoadOrganisms(path string) ([]Organism, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read organisms file: %w", err)
	}

	var pairs [][]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse organisms file: %w", err)
	}

	organisms := make([]Organism, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return nil, fmt.Errorf("organisms entry %d has %d elements, want [genus, species]", i, len(pair))
		}
		organisms = append(organisms, Organism{Genus: pair[0], Species: pair[1]})
	}
	return organisms, nil
}
