package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/school-records/internal/model"
	"github.com/iliyamo/school-records/internal/repository"
	"github.com/iliyamo/school-records/internal/service"
)

// memAccounts is an in-memory service.AccountStore for handler tests.
type memAccounts struct {
	accounts map[uint64]model.Account
	nextID   uint64
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: map[uint64]model.Account{}}
}

func (m *memAccounts) Count(ctx context.Context) (int64, error) {
	return int64(len(m.accounts)), nil
}

func (m *memAccounts) GetByID(ctx context.Context, id uint64) (model.Account, error) {
	a, ok := m.accounts[id]
	if !ok {
		return model.Account{}, repository.ErrNotFound
	}
	return a, nil
}

func (m *memAccounts) UsernameTaken(ctx context.Context, username string) (bool, error) {
	for _, a := range m.accounts {
		if a.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) EmailTaken(ctx context.Context, email string) (bool, error) {
	for _, a := range m.accounts {
		if a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *memAccounts) Create(ctx context.Context, a model.Account, profile *model.StudentProfile, guardian *model.Account) (uint64, uint64, error) {
	m.nextID++
	a.ID = m.nextID
	m.accounts[a.ID] = a
	var parentID uint64
	if guardian != nil {
		g := *guardian
		m.nextID++
		g.ID = m.nextID
		g.ParentOf = &a.ID
		m.accounts[g.ID] = g
		parentID = g.ID
	}
	return a.ID, parentID, nil
}

// memAudit collects audit entries in memory.
type memAudit struct{ entries []model.AuditLog }

func (m *memAudit) Append(ctx context.Context, actorID uint64, action, detail string) error {
	m.entries = append(m.entries, model.AuditLog{ActorID: actorID, Action: action, Detail: detail})
	return nil
}

func (m *memAudit) List(ctx context.Context) ([]model.AuditLog, error) {
	return m.entries, nil
}

func postJSON(e *echo.Echo, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func newSignupServer(store *memAccounts, audit *memAudit) *echo.Echo {
	e := echo.New()
	h := NewAccountHandler(service.NewProvisioner(store, bcrypt.MinCost), audit)
	e.POST("/v1/auth/signup", h.Signup)
	return e
}

func TestSignup_BootstrapAdmin(t *testing.T) {
	t.Parallel()

	store := newMemAccounts()
	audit := &memAudit{}
	e := newSignupServer(store, audit)

	rec := postJSON(e, "/v1/auth/signup",
		`{"name":"Root","email":"root@x.com","password":"p","role":"admin","username":"root"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, "User created successfully", body["message"])
	assert.Equal(t, float64(1), body["user_id"])
	assert.Equal(t, "admin", body["role"])
	assert.NotContains(t, body, "parent_id")
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "user.create", audit.entries[0].Action)
}

func TestSignup_BootstrapNonAdminRejected(t *testing.T) {
	t.Parallel()

	e := newSignupServer(newMemAccounts(), &memAudit{})
	rec := postJSON(e, "/v1/auth/signup",
		`{"name":"A","email":"a@x.com","password":"p","role":"student","username":"a"}`)

	// Business failures keep the legacy 200-with-error shape.
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "First user must be admin", body["message"])
	assert.NotContains(t, body, "user_id")
}

func TestSignup_TeacherStudentCascadeResponse(t *testing.T) {
	t.Parallel()

	store := newMemAccounts()
	e := newSignupServer(store, &memAudit{})

	rec := postJSON(e, "/v1/auth/signup",
		`{"name":"Root","email":"root@x.com","password":"p","role":"admin","username":"root"}`)
	require.Equal(t, "success", decode(t, rec)["status"])

	rec = postJSON(e, "/v1/auth/signup",
		`{"name":"T","email":"t@x.com","password":"p","role":"teacher","username":"teach1","creator_id":1}`)
	body := decode(t, rec)
	require.Equal(t, "success", body["status"])
	teacherID := uint64(body["user_id"].(float64))

	rec = postJSON(e, "/v1/auth/signup",
		`{"name":"A","email":"a@x.com","password":"p","role":"student","username":"stu1","creator_id":2}`)
	body = decode(t, rec)
	require.Equal(t, "success", body["status"])

	studentID := uint64(body["user_id"].(float64))
	parentID := uint64(body["parent_id"].(float64))
	guardian := store.accounts[parentID]
	assert.Equal(t, "Pstu1", guardian.Username)
	assert.Equal(t, model.RoleParent, guardian.Role)
	require.NotNil(t, guardian.ParentOf)
	assert.Equal(t, studentID, *guardian.ParentOf)
	require.NotNil(t, store.accounts[studentID].CreatorID)
	assert.Equal(t, teacherID, *store.accounts[studentID].CreatorID)
}
