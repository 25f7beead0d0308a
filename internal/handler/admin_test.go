package handler

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-records/internal/model"
	"github.com/iliyamo/school-records/internal/repository"
	"github.com/iliyamo/school-records/internal/service"
)

type memStudents struct{ byRoll map[string]model.StudentProfile }

func (m *memStudents) GetByRoll(ctx context.Context, roll string) (model.StudentProfile, error) {
	p, ok := m.byRoll[roll]
	if !ok {
		return model.StudentProfile{}, repository.ErrNotFound
	}
	return p, nil
}

type memSubjects struct {
	ids  map[string]uint64
	next uint64
}

func (m *memSubjects) GetOrCreate(ctx context.Context, name string) (uint64, error) {
	if id, ok := m.ids[name]; ok {
		return id, nil
	}
	m.next++
	m.ids[name] = m.next
	return m.next, nil
}

type memResults struct{ rows map[[3]uint64]float64 }

func (m *memResults) Upsert(ctx context.Context, examID, studentID, subjectID uint64, marks float64) error {
	m.rows[[3]uint64{examID, studentID, subjectID}] = marks
	return nil
}

func uploadRequest(t *testing.T, filename, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/admin/results/upload", &buf)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	return req
}

func newUploadServer(t *testing.T) (*echo.Echo, *memResults, *memAudit) {
	t.Helper()
	students := &memStudents{byRoll: map[string]model.StudentProfile{
		"R100": {ID: 11, RollNumber: "R100"},
	}}
	subjects := &memSubjects{ids: map[string]uint64{}}
	results := &memResults{rows: map[[3]uint64]float64{}}
	audit := &memAudit{}

	h := &AdminHandler{
		Ingestor: service.NewIngestor(students, subjects, results, 0),
		Audit:    audit,
	}
	e := echo.New()
	e.POST("/v1/admin/results/upload", h.UploadResults)
	return e, results, audit
}

func TestUploadResults_CSV(t *testing.T) {
	t.Parallel()

	e, results, audit := newUploadServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "marks.csv", "roll,subject,marks\nR100,Math,88\nR999,Math,50\n,,\n"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "success", body["status"])
	assert.Equal(t, float64(1), body["processed"])
	assert.Equal(t, float64(2), body["errors"])
	assert.NotContains(t, body, "truncated")
	assert.Len(t, results.rows, 1)
	require.Len(t, audit.entries, 1)
	assert.Equal(t, "results.upload", audit.entries[0].Action)
}

func TestUploadResults_RejectsUnknownExtension(t *testing.T) {
	t.Parallel()

	e, results, _ := newUploadServer(t)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, uploadRequest(t, "marks.pdf", "whatever"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Only CSV or XLSX allowed", body["message"])
	assert.Empty(t, results.rows, "rejected uploads must not touch the store")
}

func TestUploadResults_MissingFile(t *testing.T) {
	t.Parallel()

	e, _, _ := newUploadServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/results/upload", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "File missing or upload error", body["message"])
}
