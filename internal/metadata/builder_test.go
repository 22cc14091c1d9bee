package metadata

import (
	"context"
	"io"
	"log/slog"
	"net/textproto"
	"strings"
	"testing"

	"github.com/jlaffaye/ftp"

	"github.com/FlyBase/blast-db-configuration/internal/ncbi/genomes"
	pkgerrors "github.com/FlyBase/blast-db-configuration/pkg/errors"
)

// fakeArchive simulates an archive connection from a static directory tree
// and manifest content.
type fakeArchive struct {
	dirs  map[string][]*ftp.Entry
	files map[string]string
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		dirs:  make(map[string][]*ftp.Entry),
		files: make(map[string]string),
	}
}

func (f *fakeArchive) addDir(path string, names ...string) {
	for _, name := range names {
		f.dirs[path] = append(f.dirs[path], &ftp.Entry{Name: name, Type: ftp.EntryTypeFolder})
	}
}

func (f *fakeArchive) addFiles(path string, names ...string) {
	for _, name := range names {
		f.dirs[path] = append(f.dirs[path], &ftp.Entry{Name: name, Type: ftp.EntryTypeFile})
	}
}

func (f *fakeArchive) List(path string) ([]*ftp.Entry, error) {
	entries, ok := f.dirs[path]
	if !ok {
		cause := &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "No such file or directory"}
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodePathNotFound, "remote path does not exist", cause)
	}
	return entries, nil
}

func (f *fakeArchive) Retrieve(path string) (io.ReadCloser, error) {
	content, ok := f.files[path]
	if !ok {
		cause := &textproto.Error{Code: ftp.StatusFileUnavailable, Msg: "No such file or directory"}
		return nil, pkgerrors.Wrap(pkgerrors.ErrCodePathNotFound, "remote path does not exist", cause)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func (f *fakeArchive) Host() string { return "ftp.ncbi.nlm.nih.gov" }

// fakeDialer hands the same fake connection to every scoped run, or fails
// every dial with dialErr.
type fakeDialer struct {
	conn    genomes.ArchiveConn
	dialErr error
	dials   int
}

func (d *fakeDialer) WithConn(_ context.Context, fn func(genomes.ArchiveConn) error) error {
	d.dials++
	if d.dialErr != nil {
		return d.dialErr
	}
	return fn(d.conn)
}

type fakeTaxonomy struct {
	id    int
	found bool
	err   error
	calls int
}

func (f *fakeTaxonomy) TaxonomyID(context.Context, string, string) (int, bool, error) {
	f.calls++
	return f.id, f.found, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const apisBase = "/genomes/refseq/invertebrate/Apis_mellifera/latest_assembly_versions"

// populateApis registers a complete Apis mellifera assembly with all three
// role files and a full manifest.
func populateApis(archive *fakeArchive) string {
	const acc = "GCF_003254395.2"
	archive.addDir(apisBase, acc)
	dir := apisBase + "/" + acc
	archive.addFiles(dir,
		acc+"_Amel_HAv3.1_genomic.fna.gz",
		acc+"_Amel_HAv3.1_cds_from_genomic.fna.gz",
		acc+"_Amel_HAv3.1_rna.fna.gz",
		acc+"_Amel_HAv3.1_protein.faa.gz",
		"md5checksums.txt",
	)
	archive.files[dir+"/md5checksums.txt"] = strings.Join([]string{
		"aaa111  ./" + acc + "_Amel_HAv3.1_genomic.fna.gz",
		"bbb222  ./" + acc + "_Amel_HAv3.1_rna.fna.gz",
		"ccc333  ./" + acc + "_Amel_HAv3.1_protein.faa.gz",
		"",
	}, "\n")
	return dir
}

func newTestBuilder(dialer ArchiveDialer, taxonomy TaxonomyResolver) *Builder {
	return NewBuilder(dialer, genomes.GroupInvertebrate, taxonomy, genomes.NewListingCache(), nil, quietLogger())
}

func TestOrganismDatabasesAllRoles(t *testing.T) {
	archive := newFakeArchive()
	populateApis(archive)
	tax := &fakeTaxonomy{id: 7460, found: true}
	b := newTestBuilder(&fakeDialer{conn: archive}, tax)

	records, err := b.OrganismDatabases(context.Background(), Organism{"Apis", "mellifera"})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}

	genome := records[0]
	if genome.Version != "GCF_003254395.2" {
		t.Errorf("Version = %q", genome.Version)
	}
	if genome.MD5Sum != "aaa111" {
		t.Errorf("MD5Sum = %q, want manifest checksum", genome.MD5Sum)
	}
	if genome.BlastTitle != "A. mellifera Genome Assembly (GCF_003254395.2)" {
		t.Errorf("BlastTitle = %q", genome.BlastTitle)
	}
	if !strings.HasSuffix(genome.URI, "_genomic.fna.gz") || strings.Contains(genome.URI, "_from_genomic") {
		t.Errorf("URI = %q, want the assembly file, not a derived one", genome.URI)
	}
	for _, rec := range records {
		if rec.TaxonID != "NCBITaxon:7460" {
			t.Errorf("TaxonID = %q, want NCBITaxon:7460", rec.TaxonID)
		}
	}
	if records[2].SeqType != SeqTypeProtein {
		t.Errorf("protein SeqType = %q", records[2].SeqType)
	}
	if tax.calls != 1 {
		t.Errorf("taxonomy looked up %d times, want once per organism", tax.calls)
	}
}

func TestOrganismDatabasesAbsentOrganism(t *testing.T) {
	// Empty archive: every listing answers 550.
	b := newTestBuilder(&fakeDialer{conn: newFakeArchive()}, &fakeTaxonomy{id: 1, found: true})

	records, err := b.OrganismDatabases(context.Background(), Organism{"Vanessa", "cardui"})
	if err != nil {
		t.Fatalf("absent organism must not be an error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("records = %+v, want none", records)
	}
}

func TestOrganismDatabasesTransportFailureAborts(t *testing.T) {
	dialErr := pkgerrors.New(pkgerrors.ErrCodeConnectionFailed, "cannot reach archive")
	b := newTestBuilder(&fakeDialer{dialErr: dialErr}, nil)

	_, err := b.OrganismDatabases(context.Background(), Organism{"Apis", "mellifera"})
	if err == nil {
		t.Fatal("dial failure must abort the organism")
	}
	if !pkgerrors.IsTransport(err) {
		t.Errorf("error should keep its transport classification, got %v", err)
	}
}

func TestOrganismDatabasesPartialManifest(t *testing.T) {
	archive := newFakeArchive()
	const acc = "GCF_000001.1"
	archive.addDir(apisBase, acc)
	dir := apisBase + "/" + acc
	archive.addFiles(dir, acc+"_genomic.fna.gz", acc+"_rna.fna.gz", "md5checksums.txt")
	// Manifest covers only the genome file; the rna role resolves to nothing.
	archive.files[dir+"/md5checksums.txt"] = "aaa111  " + acc + "_genomic.fna.gz\n"
	b := newTestBuilder(&fakeDialer{conn: archive}, nil)

	records, err := b.OrganismDatabases(context.Background(), Organism{"Apis", "mellifera"})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want only the checksummed genome", len(records))
	}
	if records[0].MD5Sum != "aaa111" {
		t.Errorf("MD5Sum = %q", records[0].MD5Sum)
	}
}

func TestOrganismDatabasesTaxonomyAmbiguity(t *testing.T) {
	archive := newFakeArchive()
	populateApis(archive)
	tax := &fakeTaxonomy{err: pkgerrors.New(pkgerrors.ErrCodeTaxonomyAmbiguous, "2 records")}
	b := newTestBuilder(&fakeDialer{conn: archive}, tax)

	records, err := b.OrganismDatabases(context.Background(), Organism{"Apis", "mellifera"})
	if err != nil {
		t.Fatalf("taxonomy ambiguity must not abort the organism, got %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want all roles emitted", len(records))
	}
	for _, rec := range records {
		if rec.TaxonID != "" {
			t.Errorf("TaxonID = %q, want empty on ambiguity", rec.TaxonID)
		}
	}
}

func TestOrganismDatabasesNoTaxonomyRecord(t *testing.T) {
	archive := newFakeArchive()
	populateApis(archive)
	b := newTestBuilder(&fakeDialer{conn: archive}, &fakeTaxonomy{found: false})

	records, err := b.OrganismDatabases(context.Background(), Organism{"Apis", "mellifera"})
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range records {
		if rec.TaxonID != "" {
			t.Errorf("TaxonID = %q, want empty when the name has no record", rec.TaxonID)
		}
	}
}

func TestOrganismDatabasesOneSessionPerRole(t *testing.T) {
	archive := newFakeArchive()
	populateApis(archive)
	dialer := &fakeDialer{conn: archive}
	b := newTestBuilder(dialer, nil)

	if _, err := b.OrganismDatabases(context.Background(), Organism{"Apis", "mellifera"}); err != nil {
		t.Fatal(err)
	}
	if dialer.dials != len(AssemblyRoles()) {
		t.Errorf("dials = %d, want one scoped session per role", dialer.dials)
	}
}
