package commands

import (
	"encoding/json"
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/adapters"
	"github.com/de-tools/sales-atlas/pkg/export"
	"github.com/spf13/cobra"
)

type AnalyzeCmd struct {
	flags    requestFlags
	asJSON   bool
	factory  AppFactory
	reporter *export.Reporter
}

func NewAnalyzeCmd(factory AppFactory, reporter *export.Reporter) *cobra.Command {
	ac := &AnalyzeCmd{factory: factory, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compare product sales between two years",
		RunE:  ac.run,
	}

	ac.flags.bind(cmd)
	cmd.Flags().BoolVar(&ac.asJSON, "json", false, "Print the API response as JSON")

	return cmd
}

func (ac *AnalyzeCmd) run(cmd *cobra.Command, _ []string) error {
	req, err := ac.flags.request()
	if err != nil {
		return err
	}

	a, err := ac.factory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Analysis.Analyze(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if ac.asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(adapters.MapAnalysisResponseDomainToApi(resp))
	}
	return ac.reporter.Handle(resp)
}
