package repositories

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var employeeCols = []string{
	"id", "company_id", "auth_user_id", "full_name", "email", "department", "position",
	"phone", "telegram_handle", "email_subscribed", "is_active", "legacy_attributes", "company_name",
	"created_at", "updated_at",
}

func TestEmployeeRepository_FindEmployee(t *testing.T) {
	mock := newMock(t)
	repo := NewEmployeeRepository(mock, zap.NewNop())

	mock.ExpectQuery(`FROM employees AS e LEFT JOIN companies AS c ON c.id = e.company_id WHERE e.id = \$1`).
		WithArgs(uint64(5)).
		WillReturnRows(pgxmock.NewRows(employeeCols).AddRow(
			uint64(5), uint64(1), "8c3b6a52-8f3e-4a43-9a57-3c1e9b0b7f10", "Ana Pérez", "ana@acme.cl", "RRHH", nil,
			nil, "ana_rrhh", true, true, nil, "Acme", testTime, testTime,
		))

	e, err := repo.FindEmployee(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Ana Pérez", e.FullName)
	require.NotNil(t, e.AuthUserID)
	assert.Equal(t, "8c3b6a52-8f3e-4a43-9a57-3c1e9b0b7f10", e.AuthUserID.String())
	assert.Nil(t, e.Phone)
	assert.Equal(t, "ana_rrhh", *e.TelegramHandle)
	assert.Equal(t, "Acme", *e.CompanyName)
}

func TestEmployeeRepository_CountByCompany(t *testing.T) {
	mock := newMock(t)
	repo := NewEmployeeRepository(mock, zap.NewNop())

	mock.ExpectQuery(`SELECT company_id, COUNT\(\*\) FROM employees WHERE is_active = \$1 GROUP BY company_id`).
		WithArgs(true).
		WillReturnRows(pgxmock.NewRows([]string{"company_id", "count"}).
			AddRow(uint64(1), int64(40)).
			AddRow(uint64(2), int64(15)))

	counts, err := repo.CountByCompany(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, map[uint64]int64{1: 40, 2: 15}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmployeeRepository_UpdateEmployeeClearsField(t *testing.T) {
	mock := newMock(t)
	repo := NewEmployeeRepository(mock, zap.NewNop())

	mock.ExpectExec(`UPDATE employees SET phone = \$1, updated_at = \$2 WHERE id = \$3`).
		WithArgs(nil, pgxmock.AnyArg(), uint64(5)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateEmployee(context.Background(), nil, 5, map[string]interface{}{"phone": nil})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
