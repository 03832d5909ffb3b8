package main

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"staffhub/migrations"
	"staffhub/pkg/config"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Миграции схемы базы данных",
	}

	run := func(apply func(cmd *cobra.Command, db *sql.DB) error) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(config.ContextScript); err != nil {
				return err
			}
			db, err := sql.Open("pgx", cfg.Backend.DatabaseURL)
			if err != nil {
				return fmt.Errorf("не удалось открыть соединение: %w", err)
			}
			defer db.Close()
			return apply(cmd, db)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Применить все новые миграции",
			RunE: run(func(cmd *cobra.Command, db *sql.DB) error {
				if err := migrations.Up(cmd.Context(), db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Миграции применены")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Откатить последнюю миграцию",
			RunE: run(func(cmd *cobra.Command, db *sql.DB) error {
				if err := migrations.Down(cmd.Context(), db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Последняя миграция откачена")
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Показать состояние миграций",
			RunE: run(func(cmd *cobra.Command, db *sql.DB) error {
				return migrations.Status(cmd.Context(), db)
			}),
		},
	)
	return cmd
}
