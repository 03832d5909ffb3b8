package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"staffhub/seeders"
)

func newSeedCmd() *cobra.Command {
	var opts seeders.Options
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Наполнить базу демонстрационными компаниями и сотрудниками",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := connectData(cmd.Context())
			if err != nil {
				return err
			}
			defer data.Close()

			res, err := seeders.SeedDemo(cmd.Context(), data, opts, logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Создано компаний: %d, обновлено: %d, сотрудников: %d\n",
				res.Companies, res.Updated, res.Employees)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.UpdateExisting, "update", false, "обновить существующие демо-компании")
	return cmd
}
