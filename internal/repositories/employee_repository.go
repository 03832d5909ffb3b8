package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staffhub/internal/backend"
	"staffhub/internal/entities"
	db "staffhub/internal/infrastructure/bd"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/types"
)

const employeeTable = "employees"

var employeeMap = map[string]string{
	"id":               "e.id",
	"company_id":       "e.company_id",
	"full_name":        "e.full_name",
	"email":            "e.email",
	"department":       "e.department",
	"position":         "e.position",
	"is_active":        "e.is_active",
	"email_subscribed": "e.email_subscribed",
	"created_at":       "e.created_at",
	"updated_at":       "e.updated_at",
}

const employeeColumns = `e.id, e.company_id, e.auth_user_id, e.full_name, e.email, e.department, e.position,
	e.phone, e.telegram_handle, e.email_subscribed, e.is_active, e.legacy_attributes, c.name,
	e.created_at, e.updated_at`

var employeeSearch = []string{"e.full_name", "e.email", "e.department", "e.position"}

type EmployeeRepositoryInterface interface {
	GetEmployees(ctx context.Context, filter types.Filter) ([]entities.Employee, uint64, error)
	FindEmployee(ctx context.Context, id uint64) (*entities.Employee, error)
	FindByAuthUserID(ctx context.Context, authUserID uuid.UUID) (*entities.Employee, error)
	CreateEmployee(ctx context.Context, tx pgx.Tx, employee entities.Employee) (uint64, error)
	UpdateEmployee(ctx context.Context, tx pgx.Tx, id uint64, changes map[string]interface{}) error
	SetActive(ctx context.Context, id uint64, active bool) error
	CountByCompany(ctx context.Context, activeOnly bool) (map[uint64]int64, error)
	CountForCompany(ctx context.Context, companyID uint64, activeOnly bool) (int64, error)
	ListWithLegacyAttributes(ctx context.Context, limit uint64) ([]entities.Employee, error)
}

type EmployeeRepository struct {
	storage backend.DB
	logger  *zap.Logger
}

func NewEmployeeRepository(storage backend.DB, logger *zap.Logger) EmployeeRepositoryInterface {
	return &EmployeeRepository{storage: storage, logger: logger}
}

func scanEmployee(row pgx.Row) (*entities.Employee, error) {
	var e entities.Employee
	var authUserID uuid.NullUUID
	var email, department, position, phone, telegram, legacy, companyName sql.NullString

	err := row.Scan(
		&e.ID, &e.CompanyID, &authUserID, &e.FullName, &email, &department, &position,
		&phone, &telegram, &e.EmailSubscribed, &e.IsActive, &legacy, &companyName,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования employee: %w", err)
	}

	if authUserID.Valid {
		e.AuthUserID = &authUserID.UUID
	}
	e.Email = nullString(email)
	e.Department = nullString(department)
	e.Position = nullString(position)
	e.Phone = nullString(phone)
	e.TelegramHandle = nullString(telegram)
	e.LegacyAttributes = nullString(legacy)
	e.CompanyName = nullString(companyName)
	return &e, nil
}

func (r *EmployeeRepository) selectEmployees() sq.SelectBuilder {
	return psql.Select(employeeColumns).
		From("employees AS e").
		LeftJoin("companies AS c ON c.id = e.company_id")
}

func (r *EmployeeRepository) GetEmployees(ctx context.Context, filter types.Filter) ([]entities.Employee, uint64, error) {
	countBuilder := psql.Select("COUNT(e.id)").From("employees AS e")
	countBuilder = db.ApplyFilters(countBuilder, filter, employeeMap, employeeSearch...)

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта сотрудников: %w", err)
	}
	if total == 0 {
		return []entities.Employee{}, 0, nil
	}

	builder := r.selectEmployees()
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("e.full_name ASC")
	}
	builder = db.ApplyListParams(builder, filter, employeeMap, employeeSearch...)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	employees, err := r.collect(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

func (r *EmployeeRepository) collect(ctx context.Context, query string, args ...interface{}) ([]entities.Employee, error) {
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения сотрудников: %w", err)
	}
	defer rows.Close()

	employees := make([]entities.Employee, 0)
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepository) FindEmployee(ctx context.Context, id uint64) (*entities.Employee, error) {
	query, args, err := r.selectEmployees().Where(sq.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanEmployee(r.storage.QueryRow(ctx, query, args...))
}

func (r *EmployeeRepository) FindByAuthUserID(ctx context.Context, authUserID uuid.UUID) (*entities.Employee, error) {
	query, args, err := r.selectEmployees().Where(sq.Eq{"e.auth_user_id": authUserID}).Limit(1).ToSql()
	if err != nil {
		return nil, err
	}
	return scanEmployee(r.storage.QueryRow(ctx, query, args...))
}

func (r *EmployeeRepository) CreateEmployee(ctx context.Context, tx pgx.Tx, e entities.Employee) (uint64, error) {
	values := map[string]interface{}{
		"company_id":       e.CompanyID,
		"auth_user_id":     e.AuthUserID,
		"full_name":        e.FullName,
		"email":            e.Email,
		"department":       e.Department,
		"position":         e.Position,
		"phone":            e.Phone,
		"telegram_handle":  e.TelegramHandle,
		"email_subscribed": e.EmailSubscribed,
		"is_active":        e.IsActive,
	}
	id, err := backend.InsertRow(ctx, r.querier(tx), employeeTable, values)
	if err != nil {
		return 0, translateEmployeeError(err)
	}
	return id, nil
}

func (r *EmployeeRepository) UpdateEmployee(ctx context.Context, tx pgx.Tx, id uint64, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	changes["updated_at"] = time.Now()
	if err := backend.UpdateRow(ctx, r.querier(tx), employeeTable, id, changes); err != nil {
		return translateEmployeeError(err)
	}
	return nil
}

func (r *EmployeeRepository) SetActive(ctx context.Context, id uint64, active bool) error {
	return backend.UpdateRow(ctx, r.storage, employeeTable, id, map[string]interface{}{
		"is_active":  active,
		"updated_at": time.Now(),
	})
}

// CountByCompany возвращает число сотрудников по каждой компании. Компании без
// сотрудников в результат не попадают.
func (r *EmployeeRepository) CountByCompany(ctx context.Context, activeOnly bool) (map[uint64]int64, error) {
	builder := psql.Select("company_id", "COUNT(*)").From(employeeTable).GroupBy("company_id")
	if activeOnly {
		builder = builder.Where(sq.Eq{"is_active": true})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта сотрудников по компаниям: %w", err)
	}
	defer rows.Close()

	counts := make(map[uint64]int64)
	for rows.Next() {
		var companyID uint64
		var count int64
		if err := rows.Scan(&companyID, &count); err != nil {
			return nil, err
		}
		counts[companyID] = count
	}
	return counts, rows.Err()
}

func (r *EmployeeRepository) CountForCompany(ctx context.Context, companyID uint64, activeOnly bool) (int64, error) {
	where := sq.Eq{"company_id": companyID}
	if activeOnly {
		where["is_active"] = true
	}
	total, err := backend.CountRows(ctx, r.storage, employeeTable, where)
	return int64(total), err
}

func (r *EmployeeRepository) ListWithLegacyAttributes(ctx context.Context, limit uint64) ([]entities.Employee, error) {
	query, args, err := r.selectEmployees().
		Where(sq.NotEq{"e.legacy_attributes": nil}).
		OrderBy("e.id").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}
	return r.collect(ctx, query, args...)
}

func (r *EmployeeRepository) querier(tx pgx.Tx) backend.Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func translateEmployeeError(err error) error {
	switch {
	case backend.IsForeignKeyViolation(err):
		return apperrors.NewNotFoundError("Компания не найдена")
	case backend.IsUniqueViolation(err):
		return apperrors.NewConflictError("Сотрудник с таким email или пользователем уже существует", err)
	}
	return err
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}
