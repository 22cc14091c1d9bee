package metadata

import (
	"strings"
	"testing"
)

func TestDmelDatabases(t *testing.T) {
	dbs := DmelDatabases("6.54", "FB2025_03")
	if len(dbs) != 2 {
		t.Fatalf("len = %d, want genome and protein entries", len(dbs))
	}

	genome, protein := dbs[0], dbs[1]

	wantBase := "ftp://ftp.flybase.org/genomes/Drosophila_melanogaster/dmel_r6.54_FB2025_03/fasta/"
	if !strings.HasPrefix(genome.URI, wantBase) || !strings.HasPrefix(protein.URI, wantBase) {
		t.Errorf("URIs not under release archive path: %q, %q", genome.URI, protein.URI)
	}
	if !strings.HasSuffix(genome.URI, "dmel-all-chromosome-r6.54.fasta.gz") {
		t.Errorf("genome URI = %q", genome.URI)
	}
	if !strings.HasSuffix(protein.URI, "dmel-all-translation-r6.54.fasta.gz") {
		t.Errorf("protein URI = %q", protein.URI)
	}

	if genome.SeqType != SeqTypeNucleotide || protein.SeqType != SeqTypeProtein {
		t.Errorf("seq types = %s, %s", genome.SeqType, protein.SeqType)
	}
	for _, db := range dbs {
		if db.TaxonID != "NCBITaxon:7227" {
			t.Errorf("TaxonID = %q, want NCBITaxon:7227", db.TaxonID)
		}
		if db.Version != "6.54" {
			t.Errorf("Version = %q, want annotation release", db.Version)
		}
		if db.MD5Sum == "" {
			t.Error("MD5Sum must be pinned")
		}
	}
}
