package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FlyBase/blast-db-configuration/internal/ncbi/ftpclient"
	"github.com/FlyBase/blast-db-configuration/internal/ncbi/genomes"
	"github.com/FlyBase/blast-db-configuration/pkg/errors"
)

// TaxonomyResolver looks up the NCBI taxonomy id for a scientific name.
// found is false when the name has no record.
type TaxonomyResolver interface {
	TaxonomyID(ctx context.Context, genus, species string) (id int, found bool, err error)
}

// ArchiveDialer opens a scoped archive connection and runs fn on it,
// tearing the connection down on every exit path.
type ArchiveDialer interface {
	WithConn(ctx context.Context, fn func(genomes.ArchiveConn) error) error
}

type ftpDialer struct {
	cfg    ftpclient.Config
	logger *slog.Logger
}

func (d ftpDialer) WithConn(ctx context.Context, fn func(genomes.ArchiveConn) error) error {
	return ftpclient.WithSession(ctx, d.cfg, d.logger, func(s *ftpclient.Session) error {
		return fn(s)
	})
}

// NCBIDialer returns an ArchiveDialer backed by anonymous FTP sessions
// against the configured archive.
func NCBIDialer(cfg ftpclient.Config, logger *slog.Logger) ArchiveDialer {
	return ftpDialer{cfg: cfg, logger: logger}
}

// Builder assembles SequenceMetadata records for organisms by resolving
// their current assemblies on the archive. One scoped connection is opened
// per sequence role; the listing cache and taxonomy client are shared across
// all organisms so concurrent builds never duplicate remote work.
type Builder struct {
	dialer   ArchiveDialer
	group    genomes.OrganismGroup
	taxonomy TaxonomyResolver
	cache    *genomes.ListingCache
	metrics  genomes.MetricsRecorder
	logger   *slog.Logger
}

// NewBuilder creates a builder. taxonomy may be nil to skip taxon ids
// entirely; metrics may be nil.
func NewBuilder(dialer ArchiveDialer, group genomes.OrganismGroup, taxonomy TaxonomyResolver, cache *genomes.ListingCache, metrics genomes.MetricsRecorder, logger *slog.Logger) *Builder {
	if cache == nil {
		cache = genomes.NewListingCache()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		dialer:   dialer,
		group:    group,
		taxonomy: taxonomy,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// OrganismDatabases resolves every sequence role for one organism and
// returns the records that exist. Missing assemblies, missing role files,
// and missing checksums produce fewer records, not errors. A returned error
// means a session-level transport failure and the organism should be
// considered unprocessed; the caller may retry it.
func (b *Builder) OrganismDatabases(ctx context.Context, org Organism) ([]SequenceMetadata, error) {
	logger := b.logger.With("genus", org.Genus, "species", org.Species)
	logger.Info("processing organism")

	taxonID := b.lookupTaxonID(ctx, org, logger)

	var records []SequenceMetadata
	for _, role := range AssemblyRoles() {
		desc, err := b.resolveRole(ctx, org, role)
		if err != nil {
			if errors.IsTransport(err) {
				return nil, err
			}
			// Listing failures below the session level cost this role only.
			logger.Error("resolution failed, skipping",
				"role", role.Name, "error", err)
			continue
		}
		if desc == nil {
			logger.Info("no database for role", "role", role.Name)
			continue
		}

		records = append(records, SequenceMetadata{
			Version:     desc.Version,
			URI:         desc.URI,
			MD5Sum:      desc.Checksum,
			Genus:       org.Genus,
			Species:     org.Species,
			BlastTitle:  role.BlastTitle(org.Genus, org.Species, desc.Version),
			Description: role.Description(org.Genus, org.Species),
			TaxonID:     taxonID,
			SeqType:     role.SeqType,
		})
	}
	return records, nil
}

// resolveRole runs one resolution inside its own scoped connection,
// mirroring how the archive expects short-lived anonymous sessions.
func (b *Builder) resolveRole(ctx context.Context, org Organism, role Role) (*genomes.Descriptor, error) {
	var desc *genomes.Descriptor
	err := b.dialer.WithConn(ctx, func(conn genomes.ArchiveConn) error {
		resolver := genomes.NewResolver(conn, b.cache, b.logger, b.metrics)
		d, err := resolver.CurrentAssemblyFiles(b.group, org.Genus, org.Species, role.Pattern)
		if err != nil {
			return err
		}
		desc = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return desc, nil
}

// lookupTaxonID resolves the curie-form taxon id ("NCBITaxon:7227"). Every
// failure mode, including an ambiguous scientific name, degrades to an
// empty id so the organism's records are still emitted.
func (b *Builder) lookupTaxonID(ctx context.Context, org Organism, logger *slog.Logger) string {
	if b.taxonomy == nil {
		return ""
	}
	id, found, err := b.taxonomy.TaxonomyID(ctx, org.Genus, org.Species)
	if err != nil {
		if errors.IsCode(err, errors.ErrCodeTaxonomyAmbiguous) {
			logger.Error("ambiguous taxonomy record, leaving taxon id empty", "error", err)
		} else {
			logger.Error("taxonomy lookup failed, leaving taxon id empty", "error", err)
		}
		return ""
	}
	if !found {
		logger.Warn("no taxonomy record for organism")
		return ""
	}
	return fmt.Sprintf("NCBITaxon:%d", id)
}
