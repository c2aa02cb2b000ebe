package commands

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/export"
	"github.com/spf13/cobra"
)

type ExportCmd struct {
	flags   requestFlags
	bucket  string
	prefix  string
	region  string
	profile string
	factory AppFactory
	// newPutter is replaced in tests.
	newPutter func(cmd *cobra.Command, region, profile string) (export.ObjectPutter, error)
}

func NewExportCmd(factory AppFactory) *cobra.Command {
	return newExportCmd(factory, defaultPutter)
}

func defaultPutter(cmd *cobra.Command, region, profile string) (export.ObjectPutter, error) {
	cfg, err := export.LoadAWSConfig(cmd.Context(), region, profile)
	if err != nil {
		return nil, err
	}
	return export.NewS3Client(cfg), nil
}

func newExportCmd(
	factory AppFactory,
	newPutter func(cmd *cobra.Command, region, profile string) (export.ObjectPutter, error),
) *cobra.Command {
	ec := &ExportCmd{factory: factory, newPutter: newPutter}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run an analysis and upload the JSON report to S3",
		RunE:  ec.run,
	}

	ec.flags.bind(cmd)
	cmd.Flags().StringVar(&ec.bucket, "bucket", "", "Target bucket, defaults to export.s3_bucket")
	cmd.Flags().StringVar(&ec.prefix, "prefix", "", "Key prefix, defaults to export.s3_prefix")
	cmd.Flags().StringVar(&ec.region, "region", "", "AWS region, defaults to export.region")
	cmd.Flags().StringVar(&ec.profile, "aws-profile", "", "Shared config profile")

	return cmd
}

func (ec *ExportCmd) run(cmd *cobra.Command, _ []string) error {
	req, err := ec.flags.request()
	if err != nil {
		return err
	}

	a, err := ec.factory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	settings := export.S3Settings{
		Bucket: firstNonEmpty(ec.bucket, a.Config.Export.S3Bucket),
		Prefix: firstNonEmpty(ec.prefix, a.Config.Export.S3Prefix),
	}
	region := firstNonEmpty(ec.region, a.Config.Export.Region)

	putter, err := ec.newPutter(cmd, region, ec.profile)
	if err != nil {
		return fmt.Errorf("failed to configure S3 client: %w", err)
	}
	exporter, err := export.NewS3Exporter(putter, settings)
	if err != nil {
		return err
	}

	resp, err := a.Analysis.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	key, err := exporter.Export(cmd.Context(), req.StoreID, adapters.MapAnalysisResponseDomainToApi(resp))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Uploaded s3://%s/%s\n", settings.Bucket, key)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
