// Package publish writes the generated configuration document to its
// destination: a local file path or an s3://bucket/key URI.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/FlyBase/blast-db-configuration/pkg/errors"
)

const jsonContentType = "application/json"

// ObjectPutter is the S3 surface the publisher needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Publisher routes document bytes to a local file or an S3 object.
type Publisher struct {
	logger *slog.Logger

	// newS3 is swapped by tests; the default builds a client from the
	// ambient AWS credential chain.
	newS3 func(ctx context.Context, region string) (ObjectPutter, error)
}

// NewPublisher creates a publisher using the default AWS credential chain
// for s3:// destinations.
func NewPublisher(logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{logger: logger, newS3: defaultS3Client}
}

func defaultS3Client(ctx context.Context, region string) (ObjectPutter, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg), nil
}

// Publish writes data to dest. A dest with an s3:// scheme uploads to the
// named bucket and key; anything else is treated as a local file path and
// parent directories are created as needed.
func (p *Publisher) Publish(ctx context.Context, dest string, data []byte, region string) error {
	if strings.HasPrefix(dest, "s3://") {
		return p.publishS3(ctx, dest, data, region)
	}
	return p.publishFile(dest, data)
}

func (p *Publisher) publishFile(dest string, data []byte) error {
	if dir := filepath.Dir(dest); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeOutputWrite, "cannot create output directory", err).
				WithComponent("publish").
				WithContext("path", dest)
		}
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, "cannot write output file", err).
			WithComponent("publish").
			WithContext("path", dest)
	}
	p.logger.Info("configuration written", "path", dest, "bytes", len(data))
	return nil
}

func (p *Publisher) publishS3(ctx context.Context, dest string, data []byte, region string) error {
	bucket, key, err := splitS3URI(dest)
	if err != nil {
		return err
	}

	client, err := p.newS3(ctx, region)
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, "cannot build S3 client", err).
			WithComponent("publish")
	}

	_, err = client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(jsonContentType),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeOutputWrite, "S3 upload failed", err).
			WithComponent("publish").
			WithContext("bucket", bucket).
			WithContext("key", key)
	}
	p.logger.Info("configuration uploaded", "bucket", bucket, "key", key, "bytes", len(data))
	return nil
}

// splitS3URI parses s3://bucket/key into its parts.
func splitS3URI(dest string) (bucket, key string, err error) {
	u, err := url.Parse(dest)
	if err != nil || u.Scheme != "s3" || u.Host == "" || len(u.Path) <= 1 {
		return "", "", errors.Newf(errors.ErrCodeInvalidConfig,
			"invalid S3 destination %q, want s3://bucket/key", dest)
	}
	return u.Host, strings.TrimPrefix(u.Path, "/"), nil
}

// DefaultOutputPath composes the conventional output file name.
func DefaultOutputPath(provider, release string) string {
	return filepath.Join("conf", fmt.Sprintf("databases.%s.%s.json", provider, release))
}
