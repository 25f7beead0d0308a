package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-records/internal/middleware"
	"github.com/iliyamo/school-records/internal/model"
	"github.com/iliyamo/school-records/internal/queue"
	"github.com/iliyamo/school-records/internal/repository"
	"github.com/iliyamo/school-records/internal/service"
	"github.com/iliyamo/school-records/internal/upload"
)

// AdminHandler bundles the admin-gated operations: bulk result upload,
// student listing, analytics, audit log listing and report export.
type AdminHandler struct {
	Ingestor *service.Ingestor
	Students *repository.StudentRepo
	Accounts *repository.AccountRepo
	Results  *repository.ResultRepo
	Audit    AuditLog
}

func NewAdminHandler(ing *service.Ingestor, students *repository.StudentRepo, accounts *repository.AccountRepo, results *repository.ResultRepo, audit AuditLog) *AdminHandler {
	if ing == nil || students == nil || accounts == nil || results == nil || audit == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Ingestor: ing, Students: students, Accounts: accounts, Results: results, Audit: audit}
}

// UploadResults ingests a CSV or XLSX result sheet. The file extension is
// checked before any parsing; row-level problems are counted per row and
// never abort the batch. The response reports processed and errored row
// counts plus a truncated flag when the batch exceeded the row cap.
func (h *AdminHandler) UploadResults(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errorMessage(c, "File missing or upload error")
	}

	examID := uint64(1) // the legacy sheets all target exam 1
	if v := c.FormValue("exam_id"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil || n == 0 {
			return errorMessage(c, "Valid exam_id required")
		}
		examID = n
	}

	src, err := fh.Open()
	if err != nil {
		return errorMessage(c, "File missing or upload error")
	}
	defer src.Close()

	rows, err := upload.Rows(fh.Filename, src)
	if err != nil {
		if errors.Is(err, upload.ErrUnsupportedType) {
			return errorMessage(c, upload.ErrUnsupportedType.Error())
		}
		return errorMessage(c, "Could not parse file")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 60*time.Second)
	defer cancel()

	sum, err := h.Ingestor.Ingest(ctx, rows, examID)
	if err != nil {
		return errorMessage(c, "upload interrupted")
	}

	actorID := uint64(0)
	if id, ok := middleware.CallerIdentity(c); ok {
		actorID = id.ID
	}
	detail := fmt.Sprintf("file=%q exam_id=%d processed=%d errors=%d", fh.Filename, examID, sum.Processed, sum.Errors)
	if err := h.Audit.Append(ctx, actorID, "results.upload", detail); err != nil {
		log.Printf("audit: append failed: %v", err)
	}

	// Broker outages must never fail an upload; the publisher logs its own errors.
	ev := queue.IngestCompletedEvent{
		ExamID:      examID,
		ActorID:     actorID,
		Filename:    fh.Filename,
		Processed:   sum.Processed,
		Errors:      sum.Errors,
		Truncated:   sum.Truncated,
		CompletedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() { _ = queue.PublishIngestCompleted(context.Background(), ev) }()

	resp := echo.Map{
		"status":    "success",
		"processed": sum.Processed,
		"errors":    sum.Errors,
	}
	if sum.Truncated {
		resp["truncated"] = true
	}
	return c.JSON(http.StatusOK, resp)
}

// ListStudents returns every student account with its profile, newest first.
func (h *AdminHandler) ListStudents(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	students, err := h.Students.List(ctx)
	if err != nil {
		return errorMessage(c, "query failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "students": students})
}

// Analytics returns the student head count and the average of all marks,
// rounded to two decimals.
func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	total, err := h.Accounts.CountByRole(ctx, model.RoleStudent)
	if err != nil {
		return errorMessage(c, "query failed")
	}
	avg, err := h.Results.AverageMarks(ctx)
	if err != nil {
		return errorMessage(c, "query failed")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"analytics": echo.Map{
			"total_students": total,
			"average_marks":  math.Round(avg*100) / 100,
		},
	})
}

// ListLogs returns the audit trail, newest first.
func (h *AdminHandler) ListLogs(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	logs, err := h.Audit.List(ctx)
	if err != nil {
		return errorMessage(c, "query failed")
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "success", "logs": logs})
}

// StudentReport exports one student's per-subject marks as a CSV attachment.
// Rendering to PDF is a front-end concern; this endpoint serves the same
// rows the rendered report is built from.
func (h *AdminHandler) StudentReport(c echo.Context) error {
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || studentID == 0 {
		return errorMessage(c, "Valid student_id required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	account, err := h.Accounts.GetByID(ctx, studentID)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && account.Role != model.RoleStudent) {
		return errorMessage(c, "Student not found")
	}
	if err != nil {
		return errorMessage(c, "query failed")
	}

	results, err := h.Results.ListForStudent(ctx, studentID)
	if err != nil {
		return errorMessage(c, "query failed")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"subject", "marks"})
	for _, r := range results {
		_ = w.Write([]string{r.Subject, strconv.FormatFloat(r.Marks, 'f', -1, 64)})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errorMessage(c, "build report failed")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=Result_%s.csv", account.Name))
	return c.Blob(http.StatusOK, "text/csv", buf.Bytes())
}
