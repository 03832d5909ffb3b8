package backend

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	apperrors "staffhub/pkg/errors"
)

// Querier - общий интерфейс пула, транзакции и pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type DB interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Таблицы, к которым разрешены обобщённые операции.
var AllowedTables = map[string]bool{
	"companies":          true,
	"employees":          true,
	"communication_logs": true,
	"message_analyses":   true,
	"user_credentials":   true,
}

var functionName = regexp.MustCompile(`^[a-z_][a-z0-9_]*(\.[a-z_][a-z0-9_]*)?$`)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// DataAPI - доступ к таблицам размещённой базы. Если строка подключения не
// задана, каждый вызов возвращает ErrBackendUnavailable.
type DataAPI struct {
	db     DB
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewDataAPI(db DB, logger *zap.Logger) *DataAPI {
	return &DataAPI{db: db, logger: logger}
}

// ConnectData открывает пул и проверяет соединение.
func ConnectData(ctx context.Context, dsn string, logger *zap.Logger) (*DataAPI, error) {
	if dsn == "" {
		logger.Warn("DATABASE_URL не задан, сервис данных работает в деградированном режиме")
		return &DataAPI{logger: logger}, nil
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания пула соединений к БД: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("не удалось пинговать БД: %w", err)
	}
	logger.Info("Подключено к PostgreSQL")
	return &DataAPI{db: pool, pool: pool, logger: logger}, nil
}

func (d *DataAPI) Available() bool { return d != nil && d.db != nil }

func (d *DataAPI) Close() {
	if d.pool != nil {
		d.pool.Close()
	}
}

func (d *DataAPI) Ping(ctx context.Context) error {
	if !d.Available() {
		return apperrors.ErrBackendUnavailable
	}
	if d.pool != nil {
		return d.pool.Ping(ctx)
	}
	_, err := d.db.Exec(ctx, "SELECT 1")
	return err
}

func (d *DataAPI) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if !d.Available() {
		return pgconn.CommandTag{}, apperrors.ErrBackendUnavailable
	}
	return d.db.Exec(ctx, sql, arguments...)
}

func (d *DataAPI) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if !d.Available() {
		return nil, apperrors.ErrBackendUnavailable
	}
	return d.db.Query(ctx, sql, args...)
}

func (d *DataAPI) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if !d.Available() {
		return errRow{err: apperrors.ErrBackendUnavailable}
	}
	return d.db.QueryRow(ctx, sql, args...)
}

func (d *DataAPI) Begin(ctx context.Context) (pgx.Tx, error) {
	if !d.Available() {
		return nil, apperrors.ErrBackendUnavailable
	}
	return d.db.Begin(ctx)
}

// RunInTransaction выполняет fn в одной транзакции.
func (d *DataAPI) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := d.Begin(ctx)
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
			if err != nil {
				err = fmt.Errorf("ошибка при коммите транзакции: %w", err)
			}
		}
	}()

	err = fn(tx)
	return err
}

// Обобщённые операции над таблицами.

func (d *DataAPI) Count(ctx context.Context, table string, where sq.Sqlizer) (uint64, error) {
	return CountRows(ctx, d, table, where)
}

func (d *DataAPI) Insert(ctx context.Context, table string, values map[string]any) (uint64, error) {
	return InsertRow(ctx, d, table, values)
}

func (d *DataAPI) Update(ctx context.Context, table string, id uint64, values map[string]any) error {
	return UpdateRow(ctx, d, table, id, values)
}

func (d *DataAPI) Delete(ctx context.Context, table string, where sq.Sqlizer) (int64, error) {
	return DeleteRows(ctx, d, table, where)
}

func (d *DataAPI) Select(ctx context.Context, table string, columns []string, where sq.Sqlizer, orderBy string, limit uint64) ([]map[string]any, error) {
	return SelectRows(ctx, d, table, columns, where, orderBy, limit)
}

// RPC вызывает функцию базы данных, открытую платформой: SELECT * FROM fn($1, ...).
func (d *DataAPI) RPC(ctx context.Context, fn string, args ...any) ([]map[string]any, error) {
	if !functionName.MatchString(fn) {
		return nil, apperrors.NewValidationError("недопустимое имя функции: %q", fn)
	}
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("SELECT * FROM %s(%s)", fn, strings.Join(placeholders, ", "))

	rows, err := d.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", fn, err)
	}
	result, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("rpc %s: %w", fn, err)
	}
	return result, nil
}

func CountRows(ctx context.Context, q Querier, table string, where sq.Sqlizer) (uint64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	builder := psql.Select("COUNT(*)").From(table)
	if where != nil {
		builder = builder.Where(where)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return 0, err
	}
	var total uint64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func InsertRow(ctx context.Context, q Querier, table string, values map[string]any) (uint64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	query, args, err := psql.Insert(table).SetMap(values).Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, err
	}
	var id uint64
	if err := q.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func UpdateRow(ctx context.Context, q Querier, table string, id uint64, values map[string]any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	query, args, err := psql.Update(table).SetMap(values).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func DeleteRows(ctx context.Context, q Querier, table string, where sq.Sqlizer) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if where == nil {
		return 0, apperrors.NewValidationError("удаление без условия запрещено")
	}
	query, args, err := psql.Delete(table).Where(where).ToSql()
	if err != nil {
		return 0, err
	}
	result, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func SelectRows(ctx context.Context, q Querier, table string, columns []string, where sq.Sqlizer, orderBy string, limit uint64) ([]map[string]any, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		columns = []string{"*"}
	}
	builder := psql.Select(columns...).From(table)
	if where != nil {
		builder = builder.Where(where)
	}
	if orderBy != "" {
		builder = builder.OrderBy(orderBy)
	}
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}

// IsUniqueViolation - нарушение уникального ограничения (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsForeignKeyViolation - ссылка на несуществующую запись (23503).
func IsForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func checkTable(table string) error {
	if !AllowedTables[table] {
		return apperrors.NewValidationError("таблица %q недоступна", table)
	}
	return nil
}

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
