package repositories

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"

	"staffhub/internal/backend"
	"staffhub/internal/entities"
	db "staffhub/internal/infrastructure/bd"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/types"
)

var analysisMap = map[string]string{
	"id":         "a.id",
	"category":   "a.category",
	"sentiment":  "a.sentiment",
	"created_at": "a.created_at",
}

type AnalysisRepositoryInterface interface {
	Save(ctx context.Context, analysis *entities.MessageAnalysis) error
	ListByCompany(ctx context.Context, companyID uint64, filter types.Filter) ([]entities.MessageAnalysis, uint64, error)
}

type AnalysisRepository struct {
	storage backend.DB
	logger  *zap.Logger
}

func NewAnalysisRepository(storage backend.DB, logger *zap.Logger) AnalysisRepositoryInterface {
	return &AnalysisRepository{storage: storage, logger: logger}
}

// Save записывает анализ и заполняет ID и CreatedAt.
func (r *AnalysisRepository) Save(ctx context.Context, a *entities.MessageAnalysis) error {
	keywords := a.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	query, args, err := psql.Insert("message_analyses").
		Columns("company_id", "communication_id", "sentiment", "category", "summary", "keywords").
		Values(a.CompanyID, a.CommunicationID, a.Sentiment, a.Category, a.Summary, keywords).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return err
	}
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&a.ID, &a.CreatedAt); err != nil {
		if backend.IsForeignKeyViolation(err) {
			return apperrors.NewNotFoundError("Компания или сообщение не найдены")
		}
		return fmt.Errorf("ошибка сохранения анализа: %w", err)
	}
	a.Keywords = keywords
	return nil
}

func (r *AnalysisRepository) ListByCompany(ctx context.Context, companyID uint64, filter types.Filter) ([]entities.MessageAnalysis, uint64, error) {
	where := sq.Eq{"a.company_id": companyID}

	countBuilder := psql.Select("COUNT(a.id)").From("message_analyses AS a").Where(where)
	countBuilder = db.ApplyFilters(countBuilder, filter, analysisMap, "a.summary", "a.category")
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчёта анализов: %w", err)
	}
	if total == 0 {
		return []entities.MessageAnalysis{}, 0, nil
	}

	builder := psql.Select("a.id", "a.company_id", "a.communication_id", "a.sentiment", "a.category", "a.summary", "a.keywords", "a.created_at").
		From("message_analyses AS a").
		Where(where)
	if len(filter.Sort) == 0 {
		builder = builder.OrderBy("a.created_at DESC")
	}
	builder = db.ApplyListParams(builder, filter, analysisMap, "a.summary", "a.category")

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка получения анализов: %w", err)
	}
	defer rows.Close()

	list := make([]entities.MessageAnalysis, 0)
	for rows.Next() {
		var a entities.MessageAnalysis
		var communicationID sql.NullInt64
		var category, summary sql.NullString
		if err := rows.Scan(&a.ID, &a.CompanyID, &communicationID, &a.Sentiment, &category, &summary, &a.Keywords, &a.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования анализа: %w", err)
		}
		if communicationID.Valid {
			id := uint64(communicationID.Int64)
			a.CommunicationID = &id
		}
		a.Category = nullString(category)
		a.Summary = nullString(summary)
		list = append(list, a)
	}
	return list, total, rows.Err()
}
