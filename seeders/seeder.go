// Package seeders наполняет базу демонстрационными компаниями и сотрудниками.
package seeders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staffhub/internal/backend"
)

// Options - UpdateExisting: обновлять совпавшие по имени компании, иначе пропускать.
type Options struct {
	UpdateExisting bool
}

type Result struct {
	Companies int
	Updated   int
	Employees int
}

// SeedDemo создаёт демо-данные в одной транзакции. Повторный запуск ничего не дублирует.
func SeedDemo(ctx context.Context, db backend.DB, opts Options, logger *zap.Logger) (*Result, error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	companyIDs, created, updated, err := seedCompanies(ctx, tx, opts, logger)
	if err != nil {
		return nil, err
	}
	employees, err := seedEmployees(ctx, tx, companyIDs, logger)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка при коммите демо-данных: %w", err)
	}
	return &Result{Companies: created, Updated: updated, Employees: employees}, nil
}

func seedCompanies(ctx context.Context, tx pgx.Tx, opts Options, logger *zap.Logger) (map[string]uint64, int, int, error) {
	logger.Info("Наполнение таблицы companies", zap.Bool("update_existing", opts.UpdateExisting))

	ids := make(map[string]uint64, len(companiesData))
	created, updated := 0, 0
	for _, c := range companiesData {
		var id uint64
		err := tx.QueryRow(ctx, `SELECT id FROM companies WHERE LOWER(name) = LOWER($1)`, c.Name).Scan(&id)
		switch {
		case err == nil:
			if opts.UpdateExisting {
				if _, err := tx.Exec(ctx,
					`UPDATE companies SET industry = $2, status = $3, fallback_order = $4, updated_at = NOW() WHERE id = $1`,
					id, c.Industry, c.Status, orEmpty(c.FallbackOrder)); err != nil {
					return nil, 0, 0, fmt.Errorf("компания %q: %w", c.Name, err)
				}
				updated++
			}
		case errors.Is(err, pgx.ErrNoRows):
			if err := tx.QueryRow(ctx,
				`INSERT INTO companies (name, industry, status, fallback_order) VALUES ($1, $2, $3, $4) RETURNING id`,
				c.Name, c.Industry, c.Status, orEmpty(c.FallbackOrder)).Scan(&id); err != nil {
				return nil, 0, 0, fmt.Errorf("компания %q: %w", c.Name, err)
			}
			created++
		default:
			return nil, 0, 0, fmt.Errorf("компания %q: %w", c.Name, err)
		}
		ids[c.Name] = id
	}
	return ids, created, updated, nil
}

func seedEmployees(ctx context.Context, tx pgx.Tx, companyIDs map[string]uint64, logger *zap.Logger) (int, error) {
	logger.Info("Наполнение таблицы employees")

	created := 0
	for _, e := range employeesData {
		companyID, ok := companyIDs[e.Company]
		if !ok {
			return 0, fmt.Errorf("сотрудник %q: компания %q не найдена", e.FullName, e.Company)
		}
		tag, err := tx.Exec(ctx,
			`INSERT INTO employees (company_id, full_name, email, department, position, phone, telegram_handle, email_subscribed)
			 SELECT $1, $2, $3, $4, $5, $6, $7, $8
			 WHERE NOT EXISTS (SELECT 1 FROM employees WHERE company_id = $1 AND full_name = $2)`,
			companyID, e.FullName, nullable(e.Email), nullable(e.Department), nullable(e.Position),
			nullable(e.Phone), nullable(e.TelegramHandle), e.EmailSubscribed)
		if err != nil {
			return 0, fmt.Errorf("сотрудник %q: %w", e.FullName, err)
		}
		created += int(tag.RowsAffected())
	}
	return created, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func orEmpty(order []string) []string {
	if order == nil {
		return []string{}
	}
	return order
}
