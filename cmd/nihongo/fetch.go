package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/nihongo-dict/internal/adapter/provider/edrdg"
)

func newFetchCmd(e *env) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:       "fetch [dataset...]",
		Short:     "Download and decompress datasets into the data directory",
		ValidArgs: []string{"jmdict", "kanjidic", "kradfile", "radkfile"},
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			datasets, err := edrdg.Select(edrdg.FromConfig(e.cfg.Datasets), args)
			if err != nil {
				return err
			}
			if force {
				e.cfg.Datasets.Force = true
			}

			paths, err := e.fetcher().FetchAll(cmd.Context(), datasets)
			if err != nil {
				return err
			}
			for _, ds := range datasets {
				fmt.Fprintf(cmd.OutOrStdout(), "%-9s %s\n", ds.Name, paths[ds.Name])
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "re-download files that already exist")
	return cmd
}
