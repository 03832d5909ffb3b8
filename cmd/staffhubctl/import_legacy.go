package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"staffhub/internal/repositories"
	"staffhub/internal/services"
	"staffhub/pkg/phone"
)

func newImportLegacyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-legacy",
		Short: "Перенести устаревший JSON атрибутов сотрудников в отдельные поля",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := connectData(cmd.Context())
			if err != nil {
				return err
			}
			defer data.Close()

			employees := services.NewEmployeeService(
				repositories.NewEmployeeRepository(data, logger),
				repositories.NewCompanyRepository(data, logger),
				data,
				phone.NewNormalizer(cfg.Phone.DefaultRegion),
				logger,
			)
			res, err := employees.ImportLegacyAttributes(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Обработано: %d, обновлено: %d, ошибок: %d\n", res.Processed, res.Updated, len(res.Failed))
			for _, f := range res.Failed {
				fmt.Fprintf(out, "  сотрудник %d: %s\n", f.EmployeeID, f.Error)
			}
			return nil
		},
	}
}
