package database

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAlertRepository(&mockDatabase{db: db})

	alert := &models.Alert{
		PassID:  uuid.New(),
		Type:    models.AlertTypeRequested,
		Message: "Jane Perera visit requested",
	}

	rows := sqlmock.NewRows([]string{"triggered_at"}).AddRow(time.Now())

	mock.ExpectQuery("INSERT INTO alerts").
		WithArgs(sqlmock.AnyArg(), alert.PassID, alert.Type, alert.Message).
		WillReturnRows(rows)

	err = repo.Create(alert)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, alert.ID)
	assert.False(t, alert.TriggeredAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_ExistsForPass(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAlertRepository(&mockDatabase{db: db})

	passID := uuid.New()

	t.Run("alert exists", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(passID, models.AlertTypeTimeout).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsForPass(passID, models.AlertTypeTimeout)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("no alert yet", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(passID, models.AlertTypeTimeout).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.ExistsForPass(passID, models.AlertTypeTimeout)
		require.NoError(t, err)
		assert.False(t, exists)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_GetByClientID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAlertRepository(&mockDatabase{db: db})

	clientID := uuid.New()
	passID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "pass_id", "type", "message", "triggered_at", "pass_name"}).
		AddRow(uuid.New().String(), passID.String(), "CHECKED_IN", "Jane Perera checked in", time.Now(), "Jane Perera").
		AddRow(uuid.New().String(), passID.String(), "REQUESTED", "Jane Perera visit requested", time.Now().Add(-time.Hour), "Jane Perera")

	mock.ExpectQuery("JOIN passes").
		WithArgs(clientID, 15).
		WillReturnRows(rows)

	alerts, err := repo.GetByClientID(clientID, 15)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, models.AlertTypeCheckedIn, alerts[0].Type)
	assert.Equal(t, "Jane Perera", alerts[0].PassName)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAlertRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewAlertRepository(&mockDatabase{db: db})

	alertID := uuid.New()

	t.Run("deletes existing alert", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM alerts").
			WithArgs(alertID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(alertID)
		assert.NoError(t, err)
	})

	t.Run("unknown alert", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM alerts").
			WithArgs(alertID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(alertID)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
