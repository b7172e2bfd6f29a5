package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/config"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/database"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/internal/services"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/jwt"
	"github.com/oshanpanditcommando360/Visitor-Management-Systm/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func setupAuthTestHandler(t *testing.T) (*AuthHandler, *jwt.Service, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := &database.PostgresDB{DB: sqlx.NewDb(mockDB, "sqlmock")}

	jwtService := jwt.NewService("test-secret-key-123456789", time.Hour)
	accountService := services.NewAccountService(
		database.NewClientRepository(db),
		database.NewEndUserRepository(db),
		bcrypt.MinCost,
	)
	auditService := services.NewAuditService(db)

	cfg := &config.Config{
		Gate: config.GateConfig{
			StationKey: "station-key-for-tests",
		},
		Tenant: config.TenantConfig{
			DefaultClientID: uuid.New().String(),
		},
	}

	handler := NewAuthHandler(accountService, auditService, jwtService, validator.NewPhoneValidator(), cfg)
	return handler, jwtService, mock
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)
	return w
}

func TestGuardSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, jwtService, _ := setupAuthTestHandler(t)
	router := gin.New()
	router.POST("/auth/guard/session", handler.GuardSession)

	t.Run("valid station key issues a guard token", func(t *testing.T) {
		w := postJSON(t, router, "/auth/guard/session", gin.H{
			"station_key": "station-key-for-tests",
			"station_id":  "main-gate",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, jwt.RoleGuard, resp.Role)

		claims, err := jwtService.ValidateSessionToken(resp.Token)
		require.NoError(t, err)
		assert.Equal(t, jwt.RoleGuard, claims.Role)
		assert.Equal(t, "main-gate", claims.Name)
		assert.NotEqual(t, uuid.Nil, claims.ClientID)
	})

	t.Run("wrong station key is rejected", func(t *testing.T) {
		w := postJSON(t, router, "/auth/guard/session", gin.H{
			"station_key": "wrong-key",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid station key")
	})

	t.Run("missing station key fails validation", func(t *testing.T) {
		w := postJSON(t, router, "/auth/guard/session", gin.H{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSignInClient(t *testing.T) {
	gin.SetMode(gin.TestMode)

	handler, _, mock := setupAuthTestHandler(t)
	router := gin.New()
	router.POST("/auth/client/sign-in", handler.SignInClient)

	clientID := uuid.New()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)

	clientRows := func() *sqlmock.Rows {
		return sqlmock.NewRows([]string{
			"id", "name", "email", "password_hash", "phone", "department", "created_at",
		}).AddRow(
			clientID.String(), "Acme Holdings", "admin@acme.lk", string(hash),
			"0112345678", "ADMIN", time.Now(),
		)
	}

	t.Run("valid credentials issue a client token", func(t *testing.T) {
		mock.ExpectQuery("FROM clients").
			WithArgs("admin@acme.lk").
			WillReturnRows(clientRows())

		w := postJSON(t, router, "/auth/client/sign-in", gin.H{
			"email":    "admin@acme.lk",
			"password": "correct-horse",
		})

		assert.Equal(t, http.StatusOK, w.Code)

		var resp SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, jwt.RoleClient, resp.Role)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		mock.ExpectQuery("FROM clients").
			WithArgs("admin@acme.lk").
			WillReturnRows(clientRows())

		w := postJSON(t, router, "/auth/client/sign-in", gin.H{
			"email":    "admin@acme.lk",
			"password": "wrong-password",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		mock.ExpectQuery("FROM clients").
			WithArgs("nobody@acme.lk").
			WillReturnError(sql.ErrNoRows)

		w := postJSON(t, router, "/auth/client/sign-in", gin.H{
			"email":    "nobody@acme.lk",
			"password": "whatever",
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
