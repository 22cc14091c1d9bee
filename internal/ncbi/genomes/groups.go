package genomes

import (
	"strings"

	"github.com/FlyBase/blast-db-configuration/pkg/errors"
)

// OrganismGroup is a RefSeq top-level taxonomic partition. It appears only
// as a path segment under /genomes/refseq/.
// See https://ftp.ncbi.nlm.nih.gov/genomes/refseq/.
type OrganismGroup string

const (
	GroupArchaea             OrganismGroup = "archaea"
	GroupBacteria            OrganismGroup = "bacteria"
	GroupFungi               OrganismGroup = "fungi"
	GroupInvertebrate        OrganismGroup = "invertebrate"
	GroupMetagenomes         OrganismGroup = "metagenomes"
	GroupMitochondria        OrganismGroup = "mitochondria"
	GroupPlant               OrganismGroup = "plant"
	GroupPlasmid             OrganismGroup = "plasmid"
	GroupPlastid             OrganismGroup = "plastid"
	GroupProtozoa            OrganismGroup = "protozoa"
	GroupVertebrateMammalian OrganismGroup = "vertebrate_mammalian"
	GroupVertebrateOther     OrganismGroup = "vertebrate_other"
	GroupViral               OrganismGroup = "viral"
)

// Groups lists every valid organism group in archive order.
func Groups() []OrganismGroup {
	return []OrganismGroup{
		GroupArchaea,
		GroupBacteria,
		GroupFungi,
		GroupInvertebrate,
		GroupMetagenomes,
		GroupMitochondria,
		GroupPlant,
		GroupPlasmid,
		GroupPlastid,
		GroupProtozoa,
		GroupVertebrateMammalian,
		GroupVertebrateOther,
		GroupViral,
	}
}

// ParseOrganismGroup validates raw text against the closed enumeration.
// Unknown text fails loudly instead of producing a path segment that can
// never exist on the archive.
func ParseOrganismGroup(s string) (OrganismGroup, error) {
	candidate := OrganismGroup(strings.ToLower(strings.TrimSpace(s)))
	for _, g := range Groups() {
		if candidate == g {
			return g, nil
		}
	}
	return "", errors.Newf(errors.ErrCodeInvalidOrganismGroup, "unknown organism group %q", s).
		WithComponent("genomes")
}

func (g OrganismGroup) String() string { return string(g) }
