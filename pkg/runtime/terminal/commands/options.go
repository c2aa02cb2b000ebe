package commands

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/export"
	"github.com/spf13/cobra"
)

type OptionsCmd struct {
	storeID  int64
	factory  AppFactory
	reporter *export.Reporter
}

func NewOptionsCmd(factory AppFactory, reporter *export.Reporter) *cobra.Command {
	oc := &OptionsCmd{factory: factory, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "options",
		Short: "List product types, vendors and the year range of a store",
		RunE:  oc.run,
	}

	cmd.Flags().Int64Var(&oc.storeID, "store", 0, "Store to inspect")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}

func (oc *OptionsCmd) run(cmd *cobra.Command, _ []string) error {
	a, err := oc.factory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	opts, err := a.Analysis.FilterOptions(cmd.Context(), oc.storeID)
	if err != nil {
		return fmt.Errorf("failed to load filter options: %w", err)
	}

	return oc.reporter.HandleFilterOptions(opts)
}
