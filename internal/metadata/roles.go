package metadata

import (
	"fmt"
	"regexp"

	"github.com/FlyBase/blast-db-configuration/internal/ncbi/genomes"
)

// Role binds one sequence class to its filename pattern and presentation
// templates. The patterns are part of the bit-exact contract with the
// archive's file naming.
type Role struct {
	Name        string
	Pattern     genomes.Matcher
	title       string
	description string
	SeqType     SeqType
}

// BlastTitle renders the display title, abbreviating the genus to its
// initial ("D. melanogaster Genome Assembly (GCF_...)").
func (r Role) BlastTitle(genus, species, version string) string {
	return fmt.Sprintf(r.title, genus[:1], species, version)
}

// Description renders the long description with the full genus.
func (r Role) Description(genus, species string) string {
	return fmt.Sprintf(r.description, genus, species)
}

// AssemblyRoles lists the sequence classes resolved per organism, in
// output order: genome assembly, RNA set, protein set.
func AssemblyRoles() []Role {
	return []Role{
		{
			Name: "genome",
			Pattern: genomes.ExcludingMatcher{
				// The *_from_genomic files are derived CDS/RNA extractions,
				// not the assembly itself.
				Include: regexp.MustCompile(`_genomic\.fna\.gz$`),
				Exclude: regexp.MustCompile(`_from_genomic\.fna\.gz$`),
			},
			title:       "%s. %s Genome Assembly (%s)",
			description: "%s %s genome assembly",
			SeqType:     SeqTypeNucleotide,
		},
		{
			Name:        "rna",
			Pattern:     regexp.MustCompile(`_rna\.fna\.gz$`),
			title:       "%s. %s RNA Sequences (%s)",
			description: "%s %s RNA sequences",
			SeqType:     SeqTypeNucleotide,
		},
		{
			Name:        "protein",
			Pattern:     regexp.MustCompile(`_protein\.faa\.gz$`),
			title:       "%s. %s Protein Sequences (%s)",
			description: "%s %s protein sequences",
			SeqType:     SeqTypeProtein,
		},
	}
}
