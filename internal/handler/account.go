package handler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-records/internal/middleware"
	"github.com/iliyamo/school-records/internal/model"
	"github.com/iliyamo/school-records/internal/service"
)

// AuditLog records and lists who did what. Writes are best-effort: failures
// are logged, never propagated to the client.
type AuditLog interface {
	Append(ctx context.Context, actorID uint64, action, detail string) error
	List(ctx context.Context) ([]model.AuditLog, error)
}

// AccountHandler exposes the provisioning endpoint.
type AccountHandler struct {
	Provisioner *service.Provisioner
	Audit       AuditLog
}

func NewAccountHandler(p *service.Provisioner, audit AuditLog) *AccountHandler {
	if p == nil || audit == nil {
		panic("nil dependency passed to NewAccountHandler")
	}
	return &AccountHandler{Provisioner: p, Audit: audit}
}

type signupReq struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Password   string  `json:"password"`
	Role       string  `json:"role"`
	Username   string  `json:"username"`
	CreatorID  *uint64 `json:"creator_id"`
	RollNumber string  `json:"roll_number"`
	Class      string  `json:"class"`
	Section    string  `json:"section"`
}

// Signup provisions an account under the role-hierarchy rules. The route is
// reachable without a token so the bootstrap admin can be created on an
// empty store; afterwards every request must name a valid creator_id. All
// validation, permission and conflict failures use the message-only error
// shape on HTTP 200.
func (h *AccountHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return errorMessage(c, "Invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Provisioner.Provision(ctx, service.ProvisionInput{
		Name:       req.Name,
		Email:      req.Email,
		Password:   req.Password,
		Role:       req.Role,
		Username:   req.Username,
		CreatorID:  req.CreatorID,
		RollNumber: req.RollNumber,
		Class:      req.Class,
		Section:    req.Section,
	})
	if err != nil {
		var se *service.Error
		if errors.As(err, &se) {
			return errorMessage(c, se.Message)
		}
		return errorMessage(c, "create user failed")
	}

	// Audit the creation under the token's identity when one was presented,
	// otherwise under the claimed creator.
	actorID := uint64(0)
	if id, ok := middleware.CallerIdentity(c); ok {
		actorID = id.ID
	} else if req.CreatorID != nil {
		actorID = *req.CreatorID
	}
	detail := fmt.Sprintf("user_id=%d role=%s", res.UserID, res.Role)
	if res.ParentID != 0 {
		detail += fmt.Sprintf(" parent_id=%d", res.ParentID)
	}
	if err := h.Audit.Append(ctx, actorID, "user.create", detail); err != nil {
		log.Printf("audit: append failed: %v", err)
	}

	resp := echo.Map{
		"status":  "success",
		"message": "User created successfully",
		"user_id": res.UserID,
		"role":    res.Role,
	}
	if res.ParentID != 0 {
		resp["parent_id"] = res.ParentID
	}
	return c.JSON(http.StatusOK, resp)
}
