package genomes

import (
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/FlyBase/blast-db-configuration/pkg/errors"
)

// refseqRoot anchors the published-assembly directory tree on the archive.
const refseqRoot = "/genomes/refseq"

// accessionPattern recognizes versioned GenBank (GCA_) and RefSeq (GCF_)
// assembly accessions among directory children.
var accessionPattern = regexp.MustCompile(`^GC[AF]_`)

// Lister lists the immediate children of a remote directory.
type Lister interface {
	List(path string) ([]*ftp.Entry, error)
}

// Retriever opens a download stream for a remote file.
type Retriever interface {
	Retrieve(path string) (io.ReadCloser, error)
}

// ArchiveConn is the session surface the resolver needs.
type ArchiveConn interface {
	Lister
	Retriever
	Host() string
}

// Descriptor is the resolved output for one organism and one sequence role:
// the assembly accession, the absolute remote URI of the matched file, and
// its manifest checksum. At most one Descriptor exists per request; absence
// is a valid outcome, not an error.
type Descriptor struct {
	Version  string
	URI      string
	Checksum string
}

// MetricsRecorder receives resolution outcomes. Implementations must be
// safe for concurrent use.
type MetricsRecorder interface {
	RecordResolution(outcome string, duration time.Duration)
	RecordManifestFailure()
}

// Resolution outcomes reported to the MetricsRecorder.
const (
	OutcomeResolved   = "resolved"
	OutcomeNoAssembly = "no_assembly"
	OutcomeNoChecksum = "no_checksum"
	OutcomeError      = "error"
)

// Resolver locates the current genome assembly for an organism on the
// archive and reconciles its files against the checksum manifest.
//
// A Resolver is scoped to one session; the listing cache it shares may
// outlive it and span many sessions.
type Resolver struct {
	conn    ArchiveConn
	cache   *ListingCache
	logger  *slog.Logger
	metrics MetricsRecorder
}

// NewResolver creates a resolver over an open archive session. cache may be
// shared across resolvers; metrics may be nil.
func NewResolver(conn ArchiveConn, cache *ListingCache, logger *slog.Logger, metrics MetricsRecorder) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if cache == nil {
		cache = NewListingCache()
	}
	return &Resolver{conn: conn, cache: cache, logger: logger, metrics: metrics}
}

// AssemblyBasePath composes the canonical archive path holding the current
// assembly versions for an organism. The scheme is a bit-exact contract
// with the live archive.
func AssemblyBasePath(group OrganismGroup, genus, species string) string {
	return fmt.Sprintf("%s/%s/%s_%s/latest_assembly_versions",
		refseqRoot, group, genus, strings.ReplaceAll(species, " ", "_"))
}

// ResolveAssemblyDirectory finds the accession directory holding the
// organism's current assembly. An empty accession with a nil error means
// the organism has no published assembly, which is an expected per-organism
// outcome. A non-nil error means the listing itself failed.
func (r *Resolver) ResolveAssemblyDirectory(group OrganismGroup, genus, species string) (string, error) {
	base := AssemblyBasePath(group, genus, species)

	listing, err := r.conn.List(base)
	if err != nil {
		if errors.IsNotFound(err) {
			r.logger.Info("no assembly directory on archive",
				"genus", genus, "species", species, "path", base)
			return "", nil
		}
		return "", errors.Wrap(errors.ErrCodeListingFailed, "cannot list assembly versions", err).
			WithComponent("genomes").
			WithOperation("resolve").
			WithContext("path", base)
	}

	accessions := FilterEntries(listing, accessionPattern)
	if len(accessions) == 0 {
		r.logger.Error("no genome assembly directory found",
			"genus", genus, "species", species, "path", base)
		return "", nil
	}
	if len(accessions) > 1 {
		r.logger.Warn("multiple assemblies under latest_assembly_versions, using the first one",
			"genus", genus, "species", species,
			"candidates", strings.Join(accessions, ", "))
	}
	return pickFirst(accessions), nil
}

// pickFirst is the documented tie-break for ambiguous candidate lists: the
// first entry in listing order, with no attempt to compare versions. Kept
// as an explicit policy function so the behavior survives reimplementation.
func pickFirst(candidates []string) string {
	return candidates[0]
}

// CurrentAssemblyFiles resolves the organism's current assembly and returns
// the descriptor for the single pattern-matched file carrying a manifest
// checksum, or nil when the organism has no matching file. Transport
// failures below the session level are returned for the caller to absorb at
// the organism boundary.
func (r *Resolver) CurrentAssemblyFiles(group OrganismGroup, genus, species string, pattern Matcher) (*Descriptor, error) {
	start := time.Now()
	desc, outcome, err := r.currentAssemblyFiles(group, genus, species, pattern)
	if r.metrics != nil {
		r.metrics.RecordResolution(outcome, time.Since(start))
	}
	return desc, err
}

func (r *Resolver) currentAssemblyFiles(group OrganismGroup, genus, species string, pattern Matcher) (*Descriptor, string, error) {
	accession, err := r.ResolveAssemblyDirectory(group, genus, species)
	if err != nil {
		return nil, OutcomeError, err
	}
	if accession == "" {
		return nil, OutcomeNoAssembly, nil
	}

	assemblyPath := AssemblyBasePath(group, genus, species) + "/" + accession

	listing, err := r.cache.GetOrFetch(assemblyPath, func() ([]*ftp.Entry, error) {
		return r.conn.List(assemblyPath)
	})
	if err != nil {
		return nil, OutcomeError, errors.Wrap(errors.ErrCodeListingFailed, "cannot list assembly directory", err).
			WithComponent("genomes").
			WithOperation("list-assembly").
			WithContext("path", assemblyPath)
	}

	files := FilterEntries(listing, pattern)

	checksums, err := FetchChecksums(r.conn, assemblyPath, r.logger)
	if err != nil {
		// Degrades to an empty table: every lookup below misses and the
		// builder reports absence instead of aborting the organism.
		r.logger.Error("failed to get md5 checksums", "error", err, "path", assemblyPath)
		if r.metrics != nil {
			r.metrics.RecordManifestFailure()
		}
	}

	desc := r.buildDescriptor(accession, assemblyPath, files, checksums)
	if desc == nil {
		if len(files) > 0 {
			return nil, OutcomeNoChecksum, nil
		}
		return nil, OutcomeNoAssembly, nil
	}
	return desc, OutcomeResolved, nil
}

// buildDescriptor joins classified filenames with their manifest checksums
// and applies the at-most-one policy: zero checksum-bearing candidates is
// absence, more than one keeps the first in listing order. The checksum
// always comes from the manifest in the same assembly directory as the
// file.
func (r *Resolver) buildDescriptor(accession, assemblyPath string, files []string, checksums ChecksumTable) *Descriptor {
	var candidates []Descriptor
	for _, file := range files {
		checksum, ok := checksums[file]
		if !ok {
			continue
		}
		candidates = append(candidates, Descriptor{
			Version:  accession,
			URI:      fmt.Sprintf("ftp://%s%s/%s", r.conn.Host(), assemblyPath, file),
			Checksum: checksum,
		})
	}

	switch {
	case len(candidates) == 0:
		if len(files) > 0 {
			r.logger.Warn("no md5 checksum found for matched file",
				"path", assemblyPath, "files", strings.Join(files, ", "))
		}
		return nil
	case len(candidates) > 1:
		r.logger.Warn("multiple files with md5 checksums matched, using the first one",
			"path", assemblyPath)
	}

	first := candidates[0]
	return &first
}
