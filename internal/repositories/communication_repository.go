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

const communicationTable = "communication_logs"

var communicationMap = map[string]string{
	"id":          "l.id",
	"company_id":  "l.company_id",
	"employee_id": "l.employee_id",
	"channel":     "l.channel",
	"status":      "l.status",
	"fallback":    "l.fallback",
	"sent_at":     "l.sent_at",
	"read_at":     "l.read_at",
	"created_at":  "l.created_at",
}

const communicationColumns = `l.id, l.message_id, l.company_id, l.employee_id, l.sender_id, l.channel, l.address,
	l.fallback, l.status, l.subject, l.body, l.scheduled_at, l.sent_at, l.read_at, l.created_at`

type CommunicationRepositoryInterface interface {
	Create(ctx context.Context, log entities.CommunicationLog) (uint64, error)
	Find(ctx context.Context, id uint64) (*entities.CommunicationLog, error)
	UpdateStatus(ctx context.Context, id uint64, status string, at time.Time, scheduledAt *time.Time) error
	List(ctx context.Context, filter types.Filter) ([]entities.CommunicationLog, uint64, error)
	StatusCounts(ctx context.Context, companyID *uint64) ([]entities.StatusCounts, error)
}

type CommunicationRepository struct {
	storage backend.DB
	logger  *zap.Logger
}

func NewCommunicationRepository(storage backend.DB, logger *zap.Logger) CommunicationRepositoryInterface {
	return &CommunicationRepository{storage: storage, logger: logger}
}

func scanCommunication(row pgx.Row) (*entities.CommunicationLog, error) {
	var l entities.CommunicationLog
	var senderID uuid.NullUUID
	var subject sql.NullString
	var scheduledAt, sentAt, readAt sql.NullTime

	err := row.Scan(
		&l.ID, &l.MessageID, &l.CompanyID, &l.EmployeeID, &senderID, &l.Channel, &l.Address,
		&l.Fallback, &l.Status, &subject, &l.Body, &scheduledAt, &sentAt, &readAt, &l.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка сканирования communication_log: %w", err)
	}
	if senderID.Valid {
		l.SenderID = &senderID.UUID
	}
	l.Subject = nullString(subject)
	l.ScheduledAt = nullTime(scheduledAt)
	l.SentAt = nullTime(sentAt)
	l.ReadAt = nullTime(readAt)
	return &l, nil
}

func (r *CommunicationRepository) Create(ctx context.Context, l entities.CommunicationLog) (uint64, error) {
	values := map[string]interface{}{
		"message_id":   l.MessageID,
		"company_id":   l.CompanyID,
		"employee_id":  l.EmployeeID,
		"sender_id":    l.SenderID,
		"channel":      l.Channel,
		"address":      l.Address,
		"fallback":     l.Fallback,
		"status":       l.Status,
		"subject":      l.Subject,
		"body":         l.Body,
		"scheduled_at": l.ScheduledAt,
		"sent_at":      l.SentAt,
	}
	id, err := backend.InsertRow(ctx, r.storage, communicationTable, values)
	if err != nil {
		if backend.IsForeignKeyViolation(err) {
			return 0, apperrors.NewNotFoundError("Сотрудник или компания не найдены")
		}
		return 0, fmt.Errorf("ошибка записи сообщения: %w", err)
	}
	return id, nil
}

func (r *CommunicationRepository) Find(ctx context.Context, id uint64) (*entities.CommunicationLog, error) {
	query, args, err := psql.Select(communicationColumns).
		From("communication_logs AS l").
		Where(sq.Eq{"l.id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}
	return scanCommunication(r.storage.QueryRow(ctx, query, args...))
}

// UpdateStatus меняет статус и проставляет соответствующую отметку времени.
// UpdateStatus меняет статус и связанные отметки времени. scheduledAt
// учитывается только для scheduled; черновик сбрасывает время отправки по плану.
func (r *CommunicationRepository) UpdateStatus(ctx context.Context, id uint64, status string, at time.Time, scheduledAt *time.Time) error {
	changes := map[string]interface{}{"status": status}
	switch status {
	case entities.MessageStatusRead:
		changes["read_at"] = at
		changes["sent_at"] = sq.Expr("COALESCE(sent_at, ?)", at)
	case entities.MessageStatusSent:
		changes["sent_at"] = at
		changes["read_at"] = nil
	case entities.MessageStatusScheduled:
		if scheduledAt == nil {
			return apperrors.NewValidationError("для статуса scheduled нужно время отправки")
		}
		changes["scheduled_at"] = *scheduledAt
		changes["sent_at"] = nil
		changes["read_at"] = nil
	case entities.MessageStatusDraft:
		changes["scheduled_at"] = nil
		changes["sent_at"] = nil
		changes["read_at"] = nil
	}
	return backend.UpdateRow(ctx, r.storage, communicationTable, id, changes)
}

func (r *CommunicationRepository) List(ctx context.Context, filter types.Filter) ([]entities.CommunicationLog, uint64, error) {
	countBuilder := psql.Select("COUNT(l.id)").From("communication_logs AS l")
	countBuilder = db.ApplyFilters(countBuilder, filter, communicationMap, "l.subject", "l.body")

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта сообщений: %w", err)
	}
	if total == 0 {
		return []entities.CommunicationLog{}, 0, nil
	}

	builder := psql.Select(communicationColumns).From("communication_logs AS l")
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("l.created_at DESC")
	}
	builder = db.ApplyListParams(builder, filter, communicationMap, "l.subject", "l.body")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения сообщений: %w", err)
	}
	defer rows.Close()

	logs := make([]entities.CommunicationLog, 0)
	for rows.Next() {
		l, err := scanCommunication(rows)
		if err != nil {
			return nil, 0, err
		}
		logs = append(logs, *l)
	}
	return logs, total, rows.Err()
}

// StatusCounts считает сообщения по статусам для каждой компании.
// Прочитанные сообщения учитываются и как отправленные.
func (r *CommunicationRepository) StatusCounts(ctx context.Context, companyID *uint64) ([]entities.StatusCounts, error) {
	builder := psql.Select(
		"company_id",
		"COUNT(*) FILTER (WHERE status IN ('sent', 'read')) AS sent",
		"COUNT(*) FILTER (WHERE status = 'read') AS read",
		"COUNT(*) FILTER (WHERE status = 'scheduled') AS scheduled",
		"COUNT(*) FILTER (WHERE status = 'draft') AS draft",
	).From(communicationTable).GroupBy("company_id").OrderBy("company_id")
	if companyID != nil {
		builder = builder.Where(sq.Eq{"company_id": *companyID})
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта статусов сообщений: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[entities.StatusCounts])
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	return &t.Time
}
