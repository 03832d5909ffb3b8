package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"staffhub/internal/entities"
	apperrors "staffhub/pkg/errors"
)

func TestCommunicationRepository_StatusCounts(t *testing.T) {
	mock := newMock(t)
	repo := NewCommunicationRepository(mock, zap.NewNop())

	companyID := uint64(7)
	mock.ExpectQuery(`SELECT company_id, (.+) FROM communication_logs WHERE company_id = \$1 GROUP BY company_id`).
		WithArgs(companyID).
		WillReturnRows(pgxmock.NewRows([]string{"company_id", "sent", "read", "scheduled", "draft"}).
			AddRow(uint64(7), int64(100), int64(90), int64(3), int64(1)))

	counts, err := repo.StatusCounts(context.Background(), &companyID)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, entities.StatusCounts{CompanyID: 7, Sent: 100, Read: 90, Scheduled: 3, Draft: 1}, counts[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunicationRepository_Find(t *testing.T) {
	mock := newMock(t)
	repo := NewCommunicationRepository(mock, zap.NewNop())

	msgID := uuid.New()
	mock.ExpectQuery(`FROM communication_logs AS l WHERE l.id = \$1`).
		WithArgs(uint64(11)).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "message_id", "company_id", "employee_id", "sender_id", "channel", "address",
			"fallback", "status", "subject", "body", "scheduled_at", "sent_at", "read_at", "created_at",
		}).AddRow(uint64(11), msgID, uint64(1), uint64(2), nil, "telegram", "@ana",
			false, "scheduled", "Bienvenida", "Hola", nil, nil, nil, testTime))

	log, err := repo.Find(context.Background(), 11)
	require.NoError(t, err)
	assert.Equal(t, msgID, log.MessageID)
	assert.Equal(t, "Bienvenida", *log.Subject)
	assert.Equal(t, entities.MessageStatusScheduled, log.Status)
	assert.Nil(t, log.SentAt)
	assert.Nil(t, log.ReadAt)
	assert.Nil(t, log.SenderID)
}

func TestCommunicationRepository_MarkReadKeepsSentAt(t *testing.T) {
	mock := newMock(t)
	repo := NewCommunicationRepository(mock, zap.NewNop())

	mock.ExpectExec(`UPDATE communication_logs SET read_at = \$1, sent_at = COALESCE\(sent_at, \$2\), status = \$3 WHERE id = \$4`).
		WithArgs(testTime, testTime, "read", uint64(11)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 11, entities.MessageStatusRead, testTime, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunicationRepository_UpdateStatusMissing(t *testing.T) {
	mock := newMock(t)
	repo := NewCommunicationRepository(mock, zap.NewNop())

	mock.ExpectExec(`UPDATE communication_logs SET read_at = \$1, scheduled_at = \$2, sent_at = \$3, status = \$4 WHERE id = \$5`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "draft", uint64(99)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateStatus(context.Background(), 99, entities.MessageStatusDraft, testTime, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunicationRepository_ScheduleWritesScheduledAt(t *testing.T) {
	mock := newMock(t)
	repo := NewCommunicationRepository(mock, zap.NewNop())
	when := testTime.Add(48 * time.Hour)

	mock.ExpectExec(`UPDATE communication_logs SET read_at = \$1, scheduled_at = \$2, sent_at = \$3, status = \$4 WHERE id = \$5`).
		WithArgs(pgxmock.AnyArg(), when, pgxmock.AnyArg(), "scheduled", uint64(12)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 12, entities.MessageStatusScheduled, testTime, &when))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunicationRepository_ScheduleWithoutTime(t *testing.T) {
	mock := newMock(t)
	repo := NewCommunicationRepository(mock, zap.NewNop())

	err := repo.UpdateStatus(context.Background(), 12, entities.MessageStatusScheduled, testTime, nil)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
