package genomes

import (
	"testing"

	"github.com/FlyBase/blast-db-configuration/pkg/errors"
)

func TestParseOrganismGroup(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    OrganismGroup
		wantErr bool
	}{
		{"exact match", "invertebrate", GroupInvertebrate, false},
		{"mixed case", "Vertebrate_Mammalian", GroupVertebrateMammalian, false},
		{"surrounding whitespace", "  fungi ", GroupFungi, false},
		{"vertebrate other", "vertebrate_other", GroupVertebrateOther, false},
		{"unknown text", "dinosaurs", "", true},
		{"empty", "", "", true},
		{"near miss", "invertebrates", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOrganismGroup(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOrganismGroup(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOrganismGroup(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if tt.wantErr && !errors.IsCode(err, errors.ErrCodeInvalidOrganismGroup) {
				t.Errorf("error code = %v, want INVALID_ORGANISM_GROUP", errors.GetCode(err))
			}
		})
	}
}

func TestGroupsIsClosed(t *testing.T) {
	groups := Groups()
	if len(groups) != 13 {
		t.Fatalf("len(Groups()) = %d, want 13", len(groups))
	}
	seen := make(map[OrganismGroup]bool)
	for _, g := range groups {
		if seen[g] {
			t.Errorf("duplicate group %v", g)
		}
		seen[g] = true

		parsed, err := ParseOrganismGroup(string(g))
		if err != nil || parsed != g {
			t.Errorf("round trip failed for %v: %v, %v", g, parsed, err)
		}
	}
}
