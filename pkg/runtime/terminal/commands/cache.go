package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewClearCacheCmd(factory AppFactory) *cobra.Command {
	var storeID int64
	cmd := &cobra.Command{
		Use:   "clear-cache",
		Short: "Drop the cached filter options of a store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := factory(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Analysis.ClearCache(cmd.Context(), storeID) {
				return fmt.Errorf("failed to clear cache for store %d", storeID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cache cleared for store %d\n", storeID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&storeID, "store", 0, "Store whose cache is cleared")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}
