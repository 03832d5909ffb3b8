package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	"staffhub/internal/repositories"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/types"
	"staffhub/pkg/utils"
)

type AnalysisServiceInterface interface {
	SaveMessageAnalysis(ctx context.Context, payload dto.CreateAnalysisDTO) (*dto.AnalysisDTO, error)
	GetAnalyses(ctx context.Context, companyID uint64, filter types.Filter) ([]dto.AnalysisDTO, uint64, error)
}

type AnalysisService struct {
	analysisRepo repositories.AnalysisRepositoryInterface
	companyRepo  repositories.CompanyRepositoryInterface
	logger       *zap.Logger
}

func NewAnalysisService(
	analysisRepo repositories.AnalysisRepositoryInterface,
	companyRepo repositories.CompanyRepositoryInterface,
	logger *zap.Logger,
) AnalysisServiceInterface {
	return &AnalysisService{analysisRepo: analysisRepo, companyRepo: companyRepo, logger: logger}
}

func analysisToDTO(a *entities.MessageAnalysis) *dto.AnalysisDTO {
	keywords := a.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	return &dto.AnalysisDTO{
		ID:              a.ID,
		CompanyID:       a.CompanyID,
		CommunicationID: a.CommunicationID,
		Sentiment:       a.Sentiment,
		Category:        a.Category,
		Summary:         a.Summary,
		Keywords:        keywords,
		CreatedAt:       a.CreatedAt,
	}
}

func (s *AnalysisService) SaveMessageAnalysis(ctx context.Context, payload dto.CreateAnalysisDTO) (*dto.AnalysisDTO, error) {
	keywords := make([]string, 0, len(payload.Keywords))
	seen := make(map[string]bool, len(payload.Keywords))
	for _, k := range payload.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
	}

	a := &entities.MessageAnalysis{
		CompanyID:       payload.CompanyID,
		CommunicationID: payload.CommunicationID,
		Sentiment:       payload.Sentiment,
		Category:        utils.NilIfBlank(utils.SafeDeref(payload.Category)),
		Summary:         utils.NilIfBlank(utils.SafeDeref(payload.Summary)),
		Keywords:        keywords,
	}
	if err := s.analysisRepo.Save(ctx, a); err != nil {
		s.logger.Error("Ошибка при сохранении анализа сообщения", zap.Uint64("company_id", payload.CompanyID), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Анализ сообщения сохранён", zap.Uint64("id", a.ID), zap.Uint64("company_id", a.CompanyID))
	return analysisToDTO(a), nil
}

func (s *AnalysisService) GetAnalyses(ctx context.Context, companyID uint64, filter types.Filter) ([]dto.AnalysisDTO, uint64, error) {
	if _, err := s.companyRepo.FindCompany(ctx, companyID); err != nil {
		if apperrors.KindOf(err) == apperrors.KindNotFound {
			return nil, 0, apperrors.NewNotFoundError("Компания не найдена")
		}
		return nil, 0, err
	}
	list, total, err := s.analysisRepo.ListByCompany(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("Ошибка при получении анализов", zap.Uint64("company_id", companyID), zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.AnalysisDTO, 0, len(list))
	for i := range list {
		result = append(result, *analysisToDTO(&list[i]))
	}
	return result, total, nil
}
