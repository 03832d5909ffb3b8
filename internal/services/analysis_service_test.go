package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/types"
)

type fakeAnalysisRepo struct {
	saved []entities.MessageAnalysis
}

func (r *fakeAnalysisRepo) Save(_ context.Context, a *entities.MessageAnalysis) error {
	a.ID = uint64(len(r.saved) + 1)
	a.CreatedAt = testNow
	r.saved = append(r.saved, *a)
	return nil
}

func (r *fakeAnalysisRepo) ListByCompany(_ context.Context, companyID uint64, _ types.Filter) ([]entities.MessageAnalysis, uint64, error) {
	var out []entities.MessageAnalysis
	for _, a := range r.saved {
		if a.CompanyID == companyID {
			out = append(out, a)
		}
	}
	return out, uint64(len(out)), nil
}

func TestAnalysisService_SaveNormalizesKeywords(t *testing.T) {
	repo := &fakeAnalysisRepo{}
	svc := NewAnalysisService(repo, newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme"}), zap.NewNop())

	blank := "  "
	res, err := svc.SaveMessageAnalysis(context.Background(), dto.CreateAnalysisDTO{
		CompanyID: 1,
		Sentiment: 0.4,
		Summary:   &blank,
		Keywords:  []string{" Bono ", "bono", "", "Vacaciones"},
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), res.ID)
	assert.Equal(t, []string{"bono", "vacaciones"}, res.Keywords)
	assert.Nil(t, res.Summary)
	require.Len(t, repo.saved, 1)
}

func TestAnalysisService_GetAnalyses(t *testing.T) {
	repo := &fakeAnalysisRepo{saved: []entities.MessageAnalysis{
		{ID: 1, CompanyID: 1, Sentiment: 0.2},
		{ID: 2, CompanyID: 2, Sentiment: -0.3},
	}}
	svc := NewAnalysisService(repo, newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme"}), zap.NewNop())

	list, total, err := svc.GetAnalyses(context.Background(), 1, types.Filter{})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, []string{}, list[0].Keywords)

	_, _, err = svc.GetAnalyses(context.Background(), 42, types.Filter{})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}
