package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/school-records/internal/auth"
	"github.com/iliyamo/school-records/internal/config"
	"github.com/iliyamo/school-records/internal/model"
	"github.com/iliyamo/school-records/internal/repository"
)

// AccountReader is the slice of the account repository the login endpoint needs.
type AccountReader interface {
	GetByEmail(ctx context.Context, email string) (model.Account, error)
}

// AuthHandler bundles dependencies for the token issuance endpoint.
type AuthHandler struct {
	Cfg      config.Config
	Accounts AccountReader
}

func NewAuthHandler(cfg config.Config, accounts AccountReader) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Accounts: accounts}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID   uint64     `json:"id"`
	Name string     `json:"name"`
	Role model.Role `json:"role"`
}

// Login verifies credentials and issues a signed 24h bearer token embedding
// the caller's identity snapshot. Credential failures follow the existing
// wire convention: HTTP 200 with an embedded error status, so legacy clients
// keep working. Only the authorization gate itself uses 401/403.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return errorMessage(c, "Invalid request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return errorMessage(c, "Email and password are required")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Accounts.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return errorMessage(c, "User not found")
	}
	if err != nil {
		return errorMessage(c, "query failed")
	}
	if !auth.VerifyPassword(u.PasswordHash, req.Password) {
		return errorMessage(c, "Incorrect password")
	}

	id := auth.Identity{ID: u.ID, Name: u.Name, Role: u.Role}
	token, _, err := auth.IssueToken(h.Cfg.JWTSecret, id, time.Duration(h.Cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		return errorMessage(c, "issue token failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status":  "success",
		"message": "Login successful",
		"token":   token,
		"user":    userPart{ID: u.ID, Name: u.Name, Role: u.Role},
	})
}

// errorMessage writes the legacy message-only error shape.
func errorMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "error", "message": msg})
}
