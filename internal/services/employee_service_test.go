package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staffhub/internal/dto"
	"staffhub/internal/entities"
	apperrors "staffhub/pkg/errors"
	"staffhub/pkg/phone"
	"staffhub/pkg/utils"
)

func newEmployeeService(employees *fakeEmployeeRepo, companies *fakeCompanyRepo) EmployeeServiceInterface {
	return NewEmployeeService(employees, companies, &fakeTx{}, phone.NewNormalizer(phone.DefaultRegion), zap.NewNop())
}

func TestEmployeeService_CreateEmployeeNormalizesContacts(t *testing.T) {
	companies := newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme", Status: "active"})
	employees := newFakeEmployeeRepo()
	svc := newEmployeeService(employees, companies)

	got, err := svc.CreateEmployee(context.Background(), dto.CreateEmployeeDTO{
		CompanyID:      1,
		FullName:       " Ana Pérez ",
		Email:          utils.ToPtr("Ana@Acme.CL"),
		Phone:          utils.ToPtr("9 6123 4567"),
		TelegramHandle: utils.ToPtr("@ana_rrhh"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", got.FullName)
	assert.Equal(t, "ana@acme.cl", *got.Email)
	assert.Equal(t, "+56961234567", *got.Phone)
	assert.Equal(t, "ana_rrhh", *got.TelegramHandle)
	assert.True(t, got.EmailSubscribed)
	assert.True(t, got.IsActive)
}

func TestEmployeeService_CreateEmployeeUnknownCompany(t *testing.T) {
	svc := newEmployeeService(newFakeEmployeeRepo(), newFakeCompanyRepo())

	_, err := svc.CreateEmployee(context.Background(), dto.CreateEmployeeDTO{CompanyID: 7, FullName: "Luis"})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestEmployeeService_CreateEmployeeRejectsBadPhone(t *testing.T) {
	employees := newFakeEmployeeRepo()
	svc := newEmployeeService(employees, newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme"}))

	_, err := svc.CreateEmployee(context.Background(), dto.CreateEmployeeDTO{
		CompanyID: 1,
		FullName:  "Luis",
		Phone:     utils.ToPtr("12345"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Empty(t, employees.employees)
}

func TestEmployeeService_UpdateEmployeePhone(t *testing.T) {
	employees := newFakeEmployeeRepo(entities.Employee{ID: 5, CompanyID: 1, FullName: "Luis"})
	svc := newEmployeeService(employees, newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme"}))

	got, err := svc.UpdateEmployee(context.Background(), 5,
		dto.UpdateEmployeeDTO{Phone: null.StringFrom("2 2123 4567")}, []byte(`{"phone": "2 2123 4567"}`))
	require.NoError(t, err)
	assert.Equal(t, "+56221234567", *got.Phone)

	_, err = svc.UpdateEmployee(context.Background(), 5,
		dto.UpdateEmployeeDTO{Phone: null.StringFrom("12")}, []byte(`{"phone": "12"}`))
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.Equal(t, "+56221234567", *employees.employees[5].Phone)
}

func TestEmployeeService_ForeignRegion(t *testing.T) {
	companies := newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme"})
	svc := NewEmployeeService(newFakeEmployeeRepo(), companies, &fakeTx{}, phone.NewNormalizer("ES"), zap.NewNop())

	got, err := svc.ImportRows(context.Background(), 1, []EmployeeRow{{Line: 2, FullName: "Lucía", Phone: "600 111 222"}})
	require.NoError(t, err)
	assert.Equal(t, 1, got.Created)
	assert.Empty(t, got.Failed)
}

func TestEmployeeService_UpdateEmployeeNullClearsField(t *testing.T) {
	employees := newFakeEmployeeRepo(entities.Employee{
		ID: 5, CompanyID: 1, FullName: "Luis", Phone: utils.ToPtr("+56961234567"), Department: utils.ToPtr("Ventas"),
	})
	svc := newEmployeeService(employees, newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme"}))

	raw := []byte(`{"phone": null, "position": "Jefe"}`)
	got, err := svc.UpdateEmployee(context.Background(), 5, dto.UpdateEmployeeDTO{Position: null.StringFrom("Jefe")}, raw)
	require.NoError(t, err)
	assert.Nil(t, got.Phone)
	assert.Equal(t, "Jefe", *got.Position)
	assert.Equal(t, "Ventas", *got.Department, "fields not sent stay untouched")
}

func TestEmployeeService_SetActive(t *testing.T) {
	employees := newFakeEmployeeRepo(entities.Employee{ID: 5, CompanyID: 1, FullName: "Luis", IsActive: true})
	svc := newEmployeeService(employees, newFakeCompanyRepo())

	got, err := svc.SetActive(context.Background(), 5, false)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	_, err = svc.SetActive(context.Background(), 6, true)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestParseLegacyAttributes(t *testing.T) {
	tests := []struct {
		name     string
		employee entities.Employee
		want     map[string]interface{}
		wantErr  bool
	}{
		{
			name:     "empty blob only clears column",
			employee: entities.Employee{LegacyAttributes: utils.ToPtr("{}")},
			want:     map[string]interface{}{"legacy_attributes": nil},
		},
		{
			name: "aliases map to typed columns",
			employee: entities.Employee{LegacyAttributes: utils.ToPtr(
				`{"mobile": "961234567", "telegram": "@pedro", "area": "RRHH", "cargo": "Analista", "subscribed": false}`,
			)},
			want: map[string]interface{}{
				"legacy_attributes": nil,
				"phone":             "+56961234567",
				"telegram_handle":   "pedro",
				"department":        "RRHH",
				"position":          "Analista",
				"email_subscribed":  false,
			},
		},
		{
			name: "typed fields win over blob",
			employee: entities.Employee{
				Phone:            utils.ToPtr("+56221234567"),
				LegacyAttributes: utils.ToPtr(`{"phone": "+56227654321", "department": "TI"}`),
			},
			want: map[string]interface{}{"legacy_attributes": nil, "department": "TI"},
		},
		{
			name:     "broken json",
			employee: entities.Employee{LegacyAttributes: utils.ToPtr(`{"phone": `)},
			wantErr:  true,
		},
		{
			name:     "bad phone",
			employee: entities.Employee{LegacyAttributes: utils.ToPtr(`{"phone": "12"}`)},
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLegacyAttributes(tt.employee, phone.NewNormalizer(phone.DefaultRegion))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmployeeService_ImportLegacyAttributes(t *testing.T) {
	employees := newFakeEmployeeRepo(
		entities.Employee{ID: 1, CompanyID: 1, FullName: "A", LegacyAttributes: utils.ToPtr(`{"phone": "+56 9 6123 4567"}`)},
		entities.Employee{ID: 2, CompanyID: 1, FullName: "B", LegacyAttributes: utils.ToPtr(`not json`)},
		entities.Employee{ID: 3, CompanyID: 1, FullName: "C", LegacyAttributes: utils.ToPtr(`{"position": "Chofer"}`)},
		entities.Employee{ID: 4, CompanyID: 1, FullName: "D", LegacyAttributes: utils.ToPtr(`{"department": "TI"}`)},
		entities.Employee{ID: 5, CompanyID: 1, FullName: "E"},
	)
	employees.failOn[4] = errors.New("db down")
	svc := newEmployeeService(employees, newFakeCompanyRepo())

	got, err := svc.ImportLegacyAttributes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, got.Processed)
	assert.Equal(t, 2, got.Updated)
	require.Len(t, got.Failed, 2)
	assert.Equal(t, uint64(2), got.Failed[0].EmployeeID)
	assert.Equal(t, uint64(4), got.Failed[1].EmployeeID)

	assert.Equal(t, "+56961234567", *employees.employees[1].Phone)
	assert.Nil(t, employees.employees[1].LegacyAttributes)
	assert.Equal(t, "Chofer", *employees.employees[3].Position)
	assert.NotNil(t, employees.employees[2].LegacyAttributes, "failed rows keep the blob for a later run")

	again, err := svc.ImportLegacyAttributes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, again.Processed)
	assert.Zero(t, again.Updated)
}

func TestEmployeeService_ImportRows(t *testing.T) {
	companies := newFakeCompanyRepo(entities.Company{ID: 1, Name: "Acme"})
	employees := newFakeEmployeeRepo()
	svc := newEmployeeService(employees, companies)

	got, err := svc.ImportRows(context.Background(), 1, []EmployeeRow{
		{Line: 2, FullName: "Ana", Phone: "961234567"},
		{Line: 3, FullName: " "},
		{Line: 4, FullName: "Luis", Phone: "12"},
		{Line: 5, FullName: "Marta"},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, got.Processed)
	assert.Equal(t, 2, got.Created)
	assert.Equal(t, []dto.ImportRowFailure{
		{Line: 3, Error: "пустое ФИО"},
		{Line: 4, Error: "неверный формат телефона"},
	}, got.Failed)
	assert.Len(t, employees.employees, 2)
}
