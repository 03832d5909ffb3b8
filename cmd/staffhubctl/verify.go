package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"staffhub/internal/repositories"
	"staffhub/internal/services"
)

func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Показать сотрудников, сообщения и вовлечённость по компаниям",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := connectData(cmd.Context())
			if err != nil {
				return err
			}
			defer data.Close()

			dashboard := services.NewDashboardService(
				repositories.NewCompanyRepository(data, logger),
				repositories.NewEmployeeRepository(data, logger),
				repositories.NewCommunicationRepository(data, logger),
				nil, 0, logger,
			)
			stats, err := dashboard.CompanyStats(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tКОМПАНИЯ\tСТАТУС\tСОТРУДНИКИ\tОТПРАВЛЕНО\tПРОЧИТАНО\tОЦЕНКА\tУРОВЕНЬ")
			for _, s := range stats {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%d\t%.1f\t%s\n",
					s.CompanyID, s.CompanyName, s.Status, s.Employees,
					s.Messages.Sent, s.Messages.Read, s.Engagement.Score, s.Engagement.Band)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			overview := services.Summarize(stats, time.Now())
			fmt.Fprintf(cmd.OutOrStdout(), "\nВсего: компаний %d (активных %d), сотрудников %d, вовлечённость %.1f (%s)\n",
				overview.Companies, overview.ActiveCompanies, overview.Employees, overview.Engagement.Score, overview.Engagement.Band)
			return nil
		},
	}
}
