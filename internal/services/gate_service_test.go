package services

import (
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/database"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGateServiceForTest(t *testing.T) (*GateService, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mockDB := &mockDatabase{db: db}
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	alertService := NewAlertService(
		database.NewAlertRepository(mockDB),
		database.NewPassRepository(mockDB),
		logger,
		15,
	)

	return NewGateService(database.NewPassRepository(mockDB), alertService), mock
}

func TestGateService_CheckInByOTP(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	passID := uuid.New()
	clientID := uuid.New()
	scheduled := testPass{
		id: passID, clientID: clientID, name: "Jane Perera", phone: "0771234567",
		status: "SCHEDULED", byEndUser: true, approvalType: "BOTH",
		gateCode: "482913", gateExpiresAt: now.Add(8 * time.Hour),
		revision: 1,
	}

	t.Run("matching code checks in", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)
		service.now = func() time.Time { return now }

		checkedIn := scheduled
		checkedIn.status = "CHECKED_IN"
		checkedIn.revision = 2

		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnRows(scheduled.rows())

		mock.ExpectQuery("vehicle_image = COALESCE").
			WithArgs(passID, now, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(checkedIn.rows())

		mock.ExpectQuery("INSERT INTO alerts").
			WithArgs(sqlmock.AnyArg(), passID, "CHECKED_IN", "Jane Perera validated at gate").
			WillReturnRows(sqlmock.NewRows([]string{"triggered_at"}).AddRow(now))

		pass, err := service.CheckInByOTP(passID, "482913", GateMetadata{})
		require.NoError(t, err)
		assert.Equal(t, models.PassStatusCheckedIn, pass.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong code is rejected", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)
		service.now = func() time.Time { return now }

		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnRows(scheduled.rows())

		_, err := service.CheckInByOTP(passID, "000000", GateMetadata{})
		assert.ErrorIs(t, err, ErrInvalidGateCode)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("expired code is rejected", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)
		service.now = func() time.Time { return now.Add(9 * time.Hour) }

		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnRows(scheduled.rows())

		_, err := service.CheckInByOTP(passID, "482913", GateMetadata{})
		assert.ErrorIs(t, err, ErrGateCodeExpired)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGateService_CheckInByQR(t *testing.T) {
	passID := uuid.New()
	clientID := uuid.New()

	t.Run("checked-out pass is no longer valid", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)

		checkedOut := testPass{
			id: passID, clientID: clientID, name: "Jane Perera",
			status: "CHECKED_OUT", byEndUser: true, approvalType: "BOTH", revision: 3,
		}

		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnRows(checkedOut.rows())

		_, err := service.CheckInByQR(passID, GateMetadata{})
		assert.ErrorIs(t, err, ErrPassExpired)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("denied pass is rejected", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)

		denied := testPass{
			id: passID, clientID: clientID, name: "Jane Perera",
			status: "DENIED", byEndUser: true, approvalType: "BOTH", revision: 1,
		}

		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnRows(denied.rows())

		_, err := service.CheckInByQR(passID, GateMetadata{})
		assert.ErrorIs(t, err, ErrPassDenied)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate submission loses the race", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)

		stillScheduled := testPass{
			id: passID, clientID: clientID, name: "Jane Perera",
			status: "SCHEDULED", byEndUser: true, approvalType: "BOTH", revision: 1,
		}

		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnRows(stillScheduled.rows())

		// A concurrent submission flipped the status between the read and
		// the conditional update.
		mock.ExpectQuery("vehicle_image = COALESCE").
			WithArgs(passID, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		_, err := service.CheckInByQR(passID, GateMetadata{})
		assert.ErrorIs(t, err, ErrAlreadyCheckedIn)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGateService_CheckOut(t *testing.T) {
	passID := uuid.New()
	clientID := uuid.New()

	t.Run("checked-in pass checks out", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)

		checkedOut := testPass{
			id: passID, clientID: clientID, name: "Jane Perera",
			status: "CHECKED_OUT", byGuard: true, approvalType: "CLIENT_ONLY", revision: 2,
		}

		mock.ExpectQuery("SET status = 'CHECKED_OUT'").
			WithArgs(passID, sqlmock.AnyArg()).
			WillReturnRows(checkedOut.rows())

		mock.ExpectQuery("INSERT INTO alerts").
			WithArgs(sqlmock.AnyArg(), passID, "EXIT", "Jane Perera checked out").
			WillReturnRows(sqlmock.NewRows([]string{"triggered_at"}).AddRow(time.Now()))

		pass, err := service.CheckOut(passID)
		require.NoError(t, err)
		assert.Equal(t, models.PassStatusCheckedOut, pass.Status)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("pass not on site", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)

		pending := testPass{
			id: passID, clientID: clientID, name: "Jane Perera",
			status: "PENDING", byGuard: true, approvalType: "CLIENT_ONLY",
		}

		mock.ExpectQuery("SET status = 'CHECKED_OUT'").
			WithArgs(passID, sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnRows(pending.rows())

		_, err := service.CheckOut(passID)
		assert.ErrorIs(t, err, ErrNotCheckedIn)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown pass", func(t *testing.T) {
		service, mock := newGateServiceForTest(t)

		mock.ExpectQuery("SET status = 'CHECKED_OUT'").
			WithArgs(passID, sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnError(sql.ErrNoRows)

		_, err := service.CheckOut(passID)
		assert.ErrorIs(t, err, ErrPassNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGenerateGateCode(t *testing.T) {
	for _, length := range []int{4, 6, 8} {
		code, err := generateGateCode(length)
		require.NoError(t, err)
		assert.Len(t, code, length)
		assert.Regexp(t, "^[0-9]+$", code)
	}
}

func TestGenerateGateCode_Uniqueness(t *testing.T) {
	codes := make(map[string]bool)

	for i := 0; i < 100; i++ {
		code, err := generateGateCode(6)
		require.NoError(t, err)
		codes[code] = true
	}

	// Should generate different codes (at least 80% unique)
	assert.Greater(t, len(codes), 80)
}
