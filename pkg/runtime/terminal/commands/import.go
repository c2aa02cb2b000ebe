package commands

import (
	"fmt"
	"os"

	"github.com/de-tools/sales-atlas/pkg/services/ingest"
	"github.com/spf13/cobra"
)

type ImportCmd struct {
	storeID int64
	file    string
	factory AppFactory
}

func NewImportCmd(factory AppFactory) *cobra.Command {
	ic := &ImportCmd{factory: factory}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load order line items from a CSV export",
		RunE:  ic.run,
	}

	cmd.Flags().Int64Var(&ic.storeID, "store", 0, "Store the orders belong to")
	cmd.Flags().StringVar(&ic.file, "file", "", "Path to the CSV file")
	_ = cmd.MarkFlagRequired("store")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ic *ImportCmd) run(cmd *cobra.Command, _ []string) error {
	if ic.storeID <= 0 {
		return fmt.Errorf("--store must be positive")
	}

	f, err := os.Open(ic.file)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", ic.file, err)
	}
	defer f.Close()

	items, err := ingest.ReadOrderItems(f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", ic.file, err)
	}

	a, err := ic.factory(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := ingest.Import(cmd.Context(), a.DB, a.Orders, ic.storeID, items); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d order items into store %d\n", len(items), ic.storeID)
	return nil
}
