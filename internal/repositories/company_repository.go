package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staffhub/internal/backend"
	"staffhub/internal/entities"
	db "staffhub/internal/infrastructure/bd"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/types"
)

const companyTable = "companies"

var companyMap = map[string]string{
	"id":         "c.id",
	"name":       "c.name",
	"industry":   "c.industry",
	"status":     "c.status",
	"created_at": "c.created_at",
	"updated_at": "c.updated_at",
}

const companyColumns = "c.id, c.name, c.industry, c.status, c.fallback_order, c.created_at, c.updated_at"

type CompanyRepositoryInterface interface {
	GetCompanies(ctx context.Context, filter types.Filter) ([]entities.CompanyWithCount, uint64, error)
	ListAll(ctx context.Context) ([]entities.Company, error)
	FindCompany(ctx context.Context, id uint64) (*entities.Company, error)
	CreateCompany(ctx context.Context, tx pgx.Tx, company entities.Company) (uint64, error)
	UpdateCompany(ctx context.Context, tx pgx.Tx, id uint64, changes map[string]interface{}) error
	UpdateFallbackOrder(ctx context.Context, id uint64, order []string) error
	ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error)
}

type CompanyRepository struct {
	storage backend.DB
	logger  *zap.Logger
}

func NewCompanyRepository(storage backend.DB, logger *zap.Logger) CompanyRepositoryInterface {
	return &CompanyRepository{storage: storage, logger: logger}
}

func scanCompany(row pgx.Row, extra ...any) (*entities.Company, error) {
	var c entities.Company
	var industry sql.NullString

	dest := []any{&c.ID, &c.Name, &industry, &c.Status, &c.FallbackOrder, &c.CreatedAt, &c.UpdatedAt}
	err := row.Scan(append(dest, extra...)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования company: %w", err)
	}
	if industry.Valid {
		c.Industry = &industry.String
	}
	return &c, nil
}

// GetCompanies возвращает компании вместе с числом активных сотрудников.
func (r *CompanyRepository) GetCompanies(ctx context.Context, filter types.Filter) ([]entities.CompanyWithCount, uint64, error) {
	countBuilder := psql.Select("COUNT(c.id)").From("companies AS c")
	countBuilder = db.ApplyFilters(countBuilder, filter, companyMap, "c.name", "c.industry")

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта компаний: %w", err)
	}
	if total == 0 {
		return []entities.CompanyWithCount{}, 0, nil
	}

	builder := psql.Select(companyColumns, "COUNT(e.id) FILTER (WHERE e.is_active) AS employee_count").
		From("companies AS c").
		LeftJoin("employees AS e ON e.company_id = c.id").
		GroupBy("c.id")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("c.name ASC")
	}
	builder = db.ApplyListParams(builder, filter, companyMap, "c.name", "c.industry")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения компаний: %w", err)
	}
	defer rows.Close()

	companies := make([]entities.CompanyWithCount, 0)
	for rows.Next() {
		var count int64
		c, err := scanCompany(rows, &count)
		if err != nil {
			return nil, 0, err
		}
		companies = append(companies, entities.CompanyWithCount{Company: *c, EmployeeCount: count})
	}
	return companies, total, rows.Err()
}

func (r *CompanyRepository) ListAll(ctx context.Context) ([]entities.Company, error) {
	query, args, err := psql.Select(companyColumns).From("companies AS c").OrderBy("c.id").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения компаний: %w", err)
	}
	defer rows.Close()

	companies := make([]entities.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

func (r *CompanyRepository) FindCompany(ctx context.Context, id uint64) (*entities.Company, error) {
	query, args, err := psql.Select(companyColumns).From("companies AS c").Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanCompany(r.storage.QueryRow(ctx, query, args...))
}

func (r *CompanyRepository) CreateCompany(ctx context.Context, tx pgx.Tx, company entities.Company) (uint64, error) {
	values := map[string]interface{}{
		"name":     company.Name,
		"industry": company.Industry,
		"status":   company.Status,
	}
	if len(company.FallbackOrder) > 0 {
		values["fallback_order"] = company.FallbackOrder
	}
	id, err := backend.InsertRow(ctx, r.querier(tx), companyTable, values)
	if err != nil {
		if backend.IsUniqueViolation(err) {
			return 0, apperrors.NewConflictError("Компания с таким названием уже существует", err)
		}
		return 0, fmt.Errorf("ошибка создания компании: %w", err)
	}
	return id, nil
}

func (r *CompanyRepository) UpdateCompany(ctx context.Context, tx pgx.Tx, id uint64, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	changes["updated_at"] = time.Now()
	err := backend.UpdateRow(ctx, r.querier(tx), companyTable, id, changes)
	if backend.IsUniqueViolation(err) {
		return apperrors.NewConflictError("Компания с таким названием уже существует", err)
	}
	return err
}

// UpdateFallbackOrder сохраняет порядок каналов; пустой порядок сбрасывает его в NULL.
func (r *CompanyRepository) UpdateFallbackOrder(ctx context.Context, id uint64, order []string) error {
	var value interface{}
	if len(order) > 0 {
		value = order
	}
	return backend.UpdateRow(ctx, r.storage, companyTable, id, map[string]interface{}{
		"fallback_order": value,
		"updated_at":     time.Now(),
	})
}

func (r *CompanyRepository) ExistsByName(ctx context.Context, name string, excludeID uint64) (bool, error) {
	builder := psql.Select("1").From(companyTable).Where("lower(name) = lower(?)", name)
	if excludeID > 0 {
		builder = builder.Where(sq.NotEq{"id": excludeID})
	}
	query, args, err := builder.Prefix("SELECT EXISTS(").Suffix(")").ToSql()
	if err != nil {
		return false, err
	}
	var exists bool
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("ошибка проверки названия компании: %w", err)
	}
	return exists, nil
}

func (r *CompanyRepository) querier(tx pgx.Tx) backend.Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}
