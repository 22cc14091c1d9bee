package metadata

import "fmt"

// dmelTaxonID is fixed; D. melanogaster is never looked up remotely.
const dmelTaxonID = "NCBITaxon:7227"

// DmelDatabases returns the hand-maintained D. melanogaster databases,
// served from the FlyBase archive rather than NCBI. annotation is the
// FlyBase annotation release (e.g. "6.54"), release the FlyBase site
// release (e.g. "FB2025_03").
//
// TODO: fetch the md5sums from the release MD5SUM file instead of keeping
// them pinned here.
func DmelDatabases(annotation, release string) []SequenceMetadata {
	base := fmt.Sprintf("ftp://ftp.flybase.org/genomes/Drosophila_melanogaster/dmel_r%s_%s/fasta", annotation, release)
	return []SequenceMetadata{
		{
			Version:     annotation,
			URI:         fmt.Sprintf("%s/dmel-all-chromosome-r%s.fasta.gz", base, annotation),
			MD5Sum:      "b7bc17acfd655914c68326df8599a9ca",
			Genus:       "Drosophila",
			Species:     "melanogaster",
			BlastTitle:  fmt.Sprintf("D. melanogaster Genome Assembly (%s)", annotation),
			Description: "Drosophila melanogaster genome assembly",
			TaxonID:     dmelTaxonID,
			SeqType:     SeqTypeNucleotide,
		},
		{
			Version:     annotation,
			URI:         fmt.Sprintf("%s/dmel-all-translation-r%s.fasta.gz", base, annotation),
			MD5Sum:      "e3f959ab0e1026de56e1bd00490450e5",
			Genus:       "Drosophila",
			Species:     "melanogaster",
			BlastTitle:  fmt.Sprintf("D. melanogaster Protein Sequences (%s)", annotation),
			Description: "Drosophila melanogaster protein sequences",
			TaxonID:     dmelTaxonID,
			SeqType:     SeqTypeProtein,
		},
	}
}
