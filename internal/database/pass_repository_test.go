package database

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var passTestColumns = []string{
	"id", "client_id", "kind", "name", "phone", "purpose", "material_type",
	"department", "end_user_id", "end_user_name",
	"requested_by_guard", "requested_by_end_user", "approval_type", "approved_by_client",
	"status", "scheduled_entry", "scheduled_exit", "check_in_time", "check_out_time",
	"vehicle_image", "material_image", "gate_code", "gate_code_expires_at",
	"revision", "created_at",
}

// passTestRow builds a single-row result in the passes column shape
func passTestRow(id, clientID uuid.UUID, status string, revision int) *sqlmock.Rows {
	return sqlmock.NewRows(passTestColumns).AddRow(
		id.String(), clientID.String(), "visitor", "Jane Perera", "0771234567",
		"Quarterly audit", nil,
		"Finance", nil, nil,
		true, false, "CLIENT_ONLY", nil,
		status, nil, nil, nil, nil,
		nil, nil, nil, nil,
		revision, time.Now(),
	)
}

func TestPassRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	pass := &models.Pass{
		ClientID:         uuid.New(),
		Kind:             models.PassKindVisitor,
		Name:             "Jane Perera",
		RequestedByGuard: true,
		ApprovalType:     models.ApprovalTypeClientOnly,
		Status:           models.PassStatusPending,
	}

	rows := sqlmock.NewRows([]string{"revision", "created_at"}).
		AddRow(0, time.Now())

	mock.ExpectQuery("INSERT INTO passes").
		WillReturnRows(rows)

	err = repo.Create(pass)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, pass.ID)
	assert.False(t, pass.CreatedAt.IsZero())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	passID := uuid.New()
	clientID := uuid.New()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnRows(passTestRow(passID, clientID, "PENDING", 0))

		pass, err := repo.GetByID(passID)
		require.NoError(t, err)
		assert.Equal(t, passID, pass.ID)
		assert.Equal(t, models.PassStatusPending, pass.Status)
		assert.True(t, pass.RequestedByGuard)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("FROM passes WHERE id").
			WithArgs(passID).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(passID)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_ApproveCheckIn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	passID := uuid.New()
	clientID := uuid.New()
	now := time.Now()
	exit := now.Add(2 * time.Hour)

	t.Run("pending pass is checked in", func(t *testing.T) {
		mock.ExpectQuery("scheduled_entry = ").
			WithArgs(passID, now, exit, true).
			WillReturnRows(passTestRow(passID, clientID, "CHECKED_IN", 1))

		pass, err := repo.ApproveCheckIn(passID, now, exit, true)
		require.NoError(t, err)
		assert.Equal(t, models.PassStatusCheckedIn, pass.Status)
		assert.Equal(t, 1, pass.Revision)
	})

	t.Run("already decided pass loses the race", func(t *testing.T) {
		mock.ExpectQuery("scheduled_entry = ").
			WithArgs(passID, now, exit, true).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.ApproveCheckIn(passID, now, exit, true)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_ApproveSchedule(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	passID := uuid.New()
	clientID := uuid.New()
	expiresAt := time.Now().Add(24 * time.Hour)

	mock.ExpectQuery("SET status = 'SCHEDULED'").
		WithArgs(passID, false, "482913", expiresAt).
		WillReturnRows(passTestRow(passID, clientID, "SCHEDULED", 1))

	pass, err := repo.ApproveSchedule(passID, false, "482913", expiresAt)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusScheduled, pass.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_Deny(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	passID := uuid.New()
	clientID := uuid.New()

	mock.ExpectQuery("SET status = 'DENIED'").
		WithArgs(passID).
		WillReturnRows(passTestRow(passID, clientID, "DENIED", 1))

	pass, err := repo.Deny(passID)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusDenied, pass.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_CheckIn(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	passID := uuid.New()
	clientID := uuid.New()
	now := time.Now()

	t.Run("scheduled pass checks in", func(t *testing.T) {
		mock.ExpectQuery("vehicle_image = COALESCE").
			WithArgs(passID, now, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnRows(passTestRow(passID, clientID, "CHECKED_IN", 2))

		pass, err := repo.CheckIn(passID, now, models.NullString{}, models.NullString{})
		require.NoError(t, err)
		assert.Equal(t, models.PassStatusCheckedIn, pass.Status)
	})

	t.Run("duplicate submission loses the race", func(t *testing.T) {
		mock.ExpectQuery("vehicle_image = COALESCE").
			WithArgs(passID, now, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.CheckIn(passID, now, models.NullString{}, models.NullString{})
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_CheckOut(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	passID := uuid.New()
	clientID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("SET status = 'CHECKED_OUT'").
		WithArgs(passID, now).
		WillReturnRows(passTestRow(passID, clientID, "CHECKED_OUT", 3))

	pass, err := repo.CheckOut(passID, now)
	require.NoError(t, err)
	assert.Equal(t, models.PassStatusCheckedOut, pass.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_MarkOverstayed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	passID := uuid.New()

	t.Run("checked-in pass is flagged", func(t *testing.T) {
		mock.ExpectExec("SET status = 'OVERSTAYED'").
			WithArgs(passID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkOverstayed(passID)
		assert.NoError(t, err)
	})

	t.Run("concurrent checkout wins", func(t *testing.T) {
		mock.ExpectExec("SET status = 'OVERSTAYED'").
			WithArgs(passID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.MarkOverstayed(passID)
		assert.ErrorIs(t, err, sql.ErrNoRows)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_GetClientQueue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	clientID := uuid.New()
	first := uuid.New()
	second := uuid.New()

	rows := passTestRow(first, clientID, "PENDING", 0).AddRow(
		second.String(), clientID.String(), "visitor", "Nimal Silva", nil,
		"Maintenance", nil,
		"IT", nil, nil,
		false, true, "BOTH", nil,
		"PENDING", nil, nil, nil, nil,
		nil, nil, nil, nil,
		0, time.Now(),
	)

	mock.ExpectQuery("requested_by_end_user = true").
		WithArgs(clientID).
		WillReturnRows(rows)

	passes, err := repo.GetClientQueue(clientID)
	require.NoError(t, err)
	require.Len(t, passes, 2)
	assert.Equal(t, first, passes[0].ID)
	assert.Equal(t, "Nimal Silva", passes[1].Name)
	assert.True(t, passes[1].RequestedByEndUser)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_GetEndUserQueue(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	endUserID := uuid.New()
	passID := uuid.New()
	clientID := uuid.New()

	rows := sqlmock.NewRows(passTestColumns).AddRow(
		passID.String(), clientID.String(), "visitor", "Jane Perera", "0771234567",
		"Quarterly audit", nil,
		"Finance", endUserID.String(), "Kasun Fernando",
		true, false, "BOTH", nil,
		"PENDING", nil, nil, nil, nil,
		nil, nil, nil, nil,
		0, time.Now(),
	)

	mock.ExpectQuery("requested_by_end_user = false").
		WithArgs(endUserID).
		WillReturnRows(rows)

	passes, err := repo.GetEndUserQueue(endUserID)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, passID, passes[0].ID)
	assert.Equal(t, endUserID, passes[0].EndUserID.UUID)
	assert.True(t, passes[0].RequestedByGuard)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPassRepository_FindOverstayed(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewPassRepository(&mockDatabase{db: db})

	now := time.Now()
	passID := uuid.New()
	clientID := uuid.New()

	mock.ExpectQuery("scheduled_exit < ").
		WithArgs(now).
		WillReturnRows(passTestRow(passID, clientID, "CHECKED_IN", 2))

	passes, err := repo.FindOverstayed(now)
	require.NoError(t, err)
	require.Len(t, passes, 1)
	assert.Equal(t, passID, passes[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// mockDatabase implements the DB interface for testing
type mockDatabase struct {
	db *sql.DB
}

func (m *mockDatabase) Get(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Get not implemented in mock")
}

func (m *mockDatabase) Select(dest interface{}, query string, args ...interface{}) error {
	return fmt.Errorf("Select not implemented in mock")
}

func (m *mockDatabase) Exec(query string, args ...interface{}) (sql.Result, error) {
	return m.db.Exec(query, args...)
}

func (m *mockDatabase) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return m.db.Query(query, args...)
}

func (m *mockDatabase) QueryRow(query string, args ...interface{}) *sql.Row {
	return m.db.QueryRow(query, args...)
}

func (m *mockDatabase) Close() error {
	return m.db.Close()
}

func (m *mockDatabase) Ping() error {
	return m.db.Ping()
}
