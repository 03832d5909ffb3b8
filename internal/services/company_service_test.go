package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	apperrors "staffhub/pkg/errors"
)

func industry(s string) *string { return &s }

func newCompanyService(companies *fakeCompanyRepo, employees *fakeEmployeeRepo) (CompanyServiceInterface, *fakeTx) {
	tx := &fakeTx{}
	return NewCompanyService(companies, employees, tx, zap.NewNop()), tx
}

func TestCompanyService_CreateCompany(t *testing.T) {
	companies := newFakeCompanyRepo()
	svc, tx := newCompanyService(companies, newFakeEmployeeRepo())

	got, err := svc.CreateCompany(context.Background(), dto.CreateCompanyDTO{
		Name:          "  Acme Chile ",
		Industry:      industry("Retail"),
		FallbackOrder: []string{"Telegram", "email", "telegram"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)

	zero := int64(0)
	want := &dto.CompanyDTO{
		ID:            101,
		Name:          "Acme Chile",
		Industry:      industry("Retail"),
		Status:        entities.CompanyStatusActive,
		FallbackOrder: []string{"telegram", "email"},
		EmployeeCount: &zero,
		CreatedAt:     testNow,
		UpdatedAt:     testNow,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("CreateCompany() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompanyService_CreateCompanyDuplicateName(t *testing.T) {
	companies := newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme", Status: "active"})
	svc, _ := newCompanyService(companies, newFakeEmployeeRepo())

	_, err := svc.CreateCompany(context.Background(), dto.CreateCompanyDTO{Name: "ACME"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
}

func TestCompanyService_CreateCompanyUnknownChannel(t *testing.T) {
	svc, tx := newCompanyService(newFakeCompanyRepo(), newFakeEmployeeRepo())

	_, err := svc.CreateCompany(context.Background(), dto.CreateCompanyDTO{Name: "Acme", FallbackOrder: []string{"fax"}})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Zero(t, tx.calls)
}

func TestCompanyService_UpdateCompanyClearsIndustry(t *testing.T) {
	companies := newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme", Industry: industry("Retail"), Status: "active"})
	svc, _ := newCompanyService(companies, newFakeEmployeeRepo())

	raw := []byte(`{"industry": null, "status": "inactive"}`)
	got, err := svc.UpdateCompany(context.Background(), 1, dto.UpdateCompanyDTO{Status: null.StringFrom("inactive")}, raw)
	require.NoError(t, err)
	assert.Nil(t, got.Industry)
	assert.Equal(t, "inactive", got.Status)
	assert.Equal(t, "Acme", got.Name)
}

func TestCompanyService_UpdateCompanyRejectsNullName(t *testing.T) {
	companies := newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme", Status: "active"})
	svc, _ := newCompanyService(companies, newFakeEmployeeRepo())

	_, err := svc.UpdateCompany(context.Background(), 1, dto.UpdateCompanyDTO{}, []byte(`{"name": null}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestCompanyService_UpdateUnknownCompany(t *testing.T) {
	svc, _ := newCompanyService(newFakeCompanyRepo(), newFakeEmployeeRepo())

	_, err := svc.UpdateCompany(context.Background(), 9, dto.UpdateCompanyDTO{}, []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCompanyService_FallbackOrder(t *testing.T) {
	companies := newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme", Status: "active"})
	svc, _ := newCompanyService(companies, newFakeEmployeeRepo())
	ctx := context.Background()

	got, err := svc.GetFallbackOrder(ctx, 1)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)
	assert.Empty(t, got.Order)
	assert.Equal(t, []string{"whatsapp", "telegram", "sms", "email"}, got.Effective)

	got, err = svc.SetFallbackOrder(ctx, 1, dto.FallbackOrderDTO{Order: []string{"sms", "whatsapp"}})
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
	assert.Equal(t, []string{"sms", "whatsapp"}, got.Order)
	assert.Equal(t, got.Order, got.Effective)

	got, err = svc.SetFallbackOrder(ctx, 1, dto.FallbackOrderDTO{})
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	_, err = svc.SetFallbackOrder(ctx, 2, dto.FallbackOrderDTO{Order: []string{"sms"}})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestCompanyService_EmployeeCountsIncludeEmptyCompanies(t *testing.T) {
	companies := newFakeCompanyRepo(
		entities.Company{ID: 1, Name: "Acme", Status: "active"},
		entities.Company{ID: 2, Name: "Globex", Status: "active"},
	)
	employees := newFakeEmployeeRepo(
		entities.Employee{ID: 1, CompanyID: 1, IsActive: true},
		entities.Employee{ID: 2, CompanyID: 1, IsActive: true},
		entities.Employee{ID: 3, CompanyID: 1, IsActive: false},
	)
	svc, _ := newCompanyService(companies, employees)

	got, err := svc.EmployeeCounts(context.Background())
	require.NoError(t, err)
	want := []dto.CompanyEmployeeCountDTO{
		{CompanyID: 1, CompanyName: "Acme", Employees: 2},
		{CompanyID: 2, CompanyName: "Globex", Employees: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("EmployeeCounts() mismatch (-want +got):\n%s", diff)
	}
}
