package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/FlyBase/blast-db-configuration/internal/metadata"
	"github.com/FlyBase/blast-db-configuration/internal/metrics"
	"github.com/FlyBase/blast-db-configuration/internal/ncbi/ftpclient"
	"github.com/FlyBase/blast-db-configuration/internal/ncbi/genomes"
	"github.com/FlyBase/blast-db-configuration/internal/ncbi/taxonomy"
	"github.com/FlyBase/blast-db-configuration/internal/publish"
	"github.com/FlyBase/blast-db-configuration/pkg/errors"
	"github.com/FlyBase/blast-db-configuration/pkg/retry"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Resolve assemblies and write the configuration document",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.String("release", "", "release tag for the document header, e.g. FB2025_03")
	f.String("contact", "", "contact email for the document header")
	f.String("data-provider", "", "data provider code, e.g. FB")
	f.String("homepage-url", "", "provider homepage URL")
	f.String("logo-url", "", "provider logo URL")
	f.Bool("public", true, "mark the databases as public")
	f.String("date-produced", "", "production date for the document header (RFC 3339), default now")
	f.String("organisms", "", "path to the organisms JSON file")
	f.String("dmel-annotation", "", "FlyBase D. melanogaster annotation release, e.g. 6.54")
	f.String("ncbi-host", "", "NCBI FTP host")
	f.String("ncbi-email", "", "contact email sent to NCBI services")
	f.String("organism-group", "", "RefSeq organism group, e.g. invertebrate")
	f.StringP("output", "o", "", "output path (local file or s3://bucket/key)")
	f.String("s3-region", "", "AWS region for s3:// outputs")
	f.Int("concurrency", 0, "organisms resolved in parallel")
	f.Int("retry-attempts", 0, "attempts per organism on transport failures")
	f.String("log-level", "", "log level: DEBUG, INFO, WARN, ERROR")
	f.String("log-format", "", "log format: text or json")
	f.Bool("metrics", false, "serve Prometheus metrics during the run")
	f.String("metrics-listen", "", "metrics listen address")

	rootCmd.AddCommand(generateCmd)
}

// applyGenerateFlags lets explicitly set flags win over file and environment
// configuration.
func applyGenerateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	if f.Changed("release") {
		cfg.Generator.Release, _ = f.GetString("release")
	}
	if f.Changed("contact") {
		cfg.Generator.Contact, _ = f.GetString("contact")
	}
	if f.Changed("data-provider") {
		cfg.Generator.DataProvider, _ = f.GetString("data-provider")
	}
	if f.Changed("homepage-url") {
		cfg.Generator.HomepageURL, _ = f.GetString("homepage-url")
	}
	if f.Changed("logo-url") {
		cfg.Generator.LogoURL, _ = f.GetString("logo-url")
	}
	if f.Changed("public") {
		cfg.Generator.Public, _ = f.GetBool("public")
	}
	if f.Changed("organisms") {
		cfg.Generator.OrganismsFile, _ = f.GetString("organisms")
	}
	if f.Changed("dmel-annotation") {
		cfg.Generator.DmelAnnotation, _ = f.GetString("dmel-annotation")
	}
	if f.Changed("ncbi-host") {
		cfg.NCBI.FTPHost, _ = f.GetString("ncbi-host")
	}
	if f.Changed("ncbi-email") {
		cfg.NCBI.Email, _ = f.GetString("ncbi-email")
	}
	if f.Changed("organism-group") {
		cfg.NCBI.OrganismGroup, _ = f.GetString("organism-group")
	}
	if f.Changed("output") {
		cfg.Output.Path, _ = f.GetString("output")
	}
	if f.Changed("s3-region") {
		cfg.Output.S3Region, _ = f.GetString("s3-region")
	}
	if f.Changed("concurrency") {
		cfg.Batch.Concurrency, _ = f.GetInt("concurrency")
	}
	if f.Changed("retry-attempts") {
		cfg.Batch.RetryAttempts, _ = f.GetInt("retry-attempts")
	}
	if f.Changed("log-level") {
		cfg.Logging.Level, _ = f.GetString("log-level")
	}
	if f.Changed("log-format") {
		cfg.Logging.Format, _ = f.GetString("log-format")
	}
	if f.Changed("metrics") {
		cfg.Metrics.Enabled, _ = f.GetBool("metrics")
	}
	if f.Changed("metrics-listen") {
		cfg.Metrics.Listen, _ = f.GetString("metrics-listen")
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	applyGenerateFlags(cmd)
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, "invalid configuration", err)
	}

	logger := newLogger(cfg.Logging)
	ctx := cmd.Context()

	group, err := genomes.ParseOrganismGroup(cfg.NCBI.OrganismGroup)
	if err != nil {
		return err
	}

	// Validate before the batch runs; a bad date should not cost a full run.
	produced := time.Now().UTC()
	if raw, _ := cmd.Flags().GetString("date-produced"); raw != "" {
		produced, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, "invalid date-produced", err)
		}
	}

	organisms, err := metadata.LoadOrganisms(cfg.Generator.OrganismsFile)
	if err != nil {
		return err
	}
	logger.Info("starting generation",
		"release", cfg.Generator.Release,
		"organisms", len(organisms),
		"group", group,
		"concurrency", cfg.Batch.Concurrency)

	var recorder *metrics.Recorder
	var metricsRec genomes.MetricsRecorder
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
		metricsRec = recorder
		recorder.Start(cfg.Metrics.Listen, cfg.Metrics.Path, nil)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = recorder.Stop(shutdownCtx)
		}()
		logger.Info("metrics endpoint up", "listen", cfg.Metrics.Listen, "path", cfg.Metrics.Path)
	}

	cache := genomes.NewListingCache()
	tax := taxonomy.NewClient(cfg.NCBI.EutilsBaseURL, cfg.NCBI.Email, logger)
	dialer := metadata.NCBIDialer(ftpclient.Config{
		Host:           cfg.NCBI.FTPHost,
		Identity:       cfg.NCBI.Email,
		ConnectTimeout: cfg.NCBI.ConnectTimeout,
	}, logger)
	builder := metadata.NewBuilder(dialer, group, tax, cache, metricsRec, logger)

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.Batch.RetryAttempts
	retryCfg.InitialDelay = cfg.Batch.RetryInitialDelay
	retryCfg.MaxDelay = cfg.Batch.RetryMaxDelay
	retryCfg.OnRetry = func(attempt int, err error, delay time.Duration) {
		logger.Warn("retrying organism after transport failure",
			"attempt", attempt, "delay", delay, "error", err)
	}
	retryer := retry.New(retryCfg)

	// Results keep the organisms-file order regardless of completion order.
	results := make([][]metadata.SequenceMetadata, len(organisms))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Batch.Concurrency)
	for i, org := range organisms {
		i, org := i, org
		g.Go(func() error {
			if org.IsDmel() {
				if cfg.Generator.DmelAnnotation == "" {
					logger.Warn("no dmel annotation release configured, skipping", "organism", org)
					return nil
				}
				results[i] = metadata.DmelDatabases(cfg.Generator.DmelAnnotation, cfg.Generator.Release)
				return nil
			}

			err := retryer.DoWithContext(gctx, func(ctx context.Context) error {
				records, err := builder.OrganismDatabases(ctx, org)
				if err != nil {
					return err
				}
				results[i] = records
				return nil
			})
			switch {
			case err != nil:
				// One failing organism leaves a gap in the document, not a
				// failed run.
				logger.Error("organism failed after all attempts, continuing",
					"organism", org, "error", err)
				if recorder != nil {
					recorder.RecordOrganism("failed")
				}
			case len(results[i]) == 0:
				if recorder != nil {
					recorder.RecordOrganism("empty")
				}
			default:
				if recorder != nil {
					recorder.RecordOrganism("ok")
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var data []metadata.SequenceMetadata
	for _, records := range results {
		data = append(data, records...)
	}

	stats := cache.Stats()
	if recorder != nil {
		recorder.SetCacheStats(stats)
	}
	logger.Info("generation finished",
		"databases", len(data),
		"cache_hits", stats.Hits,
		"cache_misses", stats.Misses)

	doc := metadata.Document{
		Metadata: metadata.NewMetadata(
			cfg.Generator.Release,
			cfg.Generator.Contact,
			cfg.Generator.DataProvider,
			cfg.Generator.HomepageURL,
			cfg.Generator.LogoURL,
			cfg.Generator.Public,
			produced,
		),
		Data: data,
	}
	out, err := doc.MarshalIndent()
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, "cannot serialize document", err)
	}

	dest := cfg.Output.Path
	if dest == "" {
		dest = publish.DefaultOutputPath(cfg.Generator.DataProvider, cfg.Generator.Release)
	}
	return publish.NewPublisher(logger).Publish(ctx, dest, out, cfg.Output.S3Region)
}
