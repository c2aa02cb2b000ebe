package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/de-tools/sales-atlas/pkg/models/api"
	"github.com/rs/zerolog"
)

const DefaultRegion = "us-east-1"

// ObjectPutter is the subset of the S3 client used by the exporter.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Settings struct {
	Bucket string
	Prefix string
}

type S3Exporter struct {
	client ObjectPutter
	bucket string
	prefix string
}

// LoadAWSConfig resolves credentials from the shared AWS config, optionally for a named profile.
func LoadAWSConfig(ctx context.Context, region, profile string) (aws.Config, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithDefaultRegion(DefaultRegion),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if profile != "" {
		opts = append(opts, config.WithSharedConfigProfile(profile))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return cfg, nil
}

func NewS3Client(cfg aws.Config) *s3.Client {
	return s3.NewFromConfig(cfg)
}

func NewS3Exporter(client ObjectPutter, settings S3Settings) (*S3Exporter, error) {
	if client == nil {
		return nil, fmt.Errorf("s3 client is nil")
	}
	if settings.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	return &S3Exporter{
		client: client,
		bucket: settings.Bucket,
		prefix: strings.Trim(settings.Prefix, "/"),
	}, nil
}

// ObjectKey is the key under which a report is stored:
// <prefix>/store-<id>/<current>-vs-<previous>/<response id>.json
func (e *S3Exporter) ObjectKey(storeID int64, report api.AnalysisResponse) string {
	return path.Join(
		e.prefix,
		fmt.Sprintf("store-%d", storeID),
		fmt.Sprintf("%d-vs-%d", report.Summary.CurrentYear, report.Summary.PreviousYear),
		report.Metadata.ResponseID+".json",
	)
}

// Export uploads the report as JSON and returns its object key.
func (e *S3Exporter) Export(ctx context.Context, storeID int64, report api.AnalysisResponse) (string, error) {
	body, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	key := e.ObjectKey(storeID, report)
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload report to s3://%s/%s: %w", e.bucket, key, err)
	}

	zerolog.Ctx(ctx).Info().
		Str("bucket", e.bucket).
		Str("key", key).
		Int("bytes", len(body)).
		Msg("report exported")
	return key, nil
}
