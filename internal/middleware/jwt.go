package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/school-records/internal/auth" // token verification lives in the auth package
)

// identityKey is the context key under which the verified identity snapshot
// is stored for downstream middleware and handlers.
const identityKey = "identity"

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the embedded identity snapshot into the request context. The
// actual verification is a side-effect-free call into auth.VerifyToken; this
// layer only decides how a failure is rendered. It must wrap every gated
// route so unauthorized calls never reach business logic.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            header := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(header, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "status":  "error",
                    "message": "Authorization header missing",
                })
            }
            raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))

            id, err := auth.VerifyToken(secret, raw)
            if err != nil {
                // Covers bad signature, malformed payload and expiry alike.
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "status":  "error",
                    "message": "Invalid or expired token",
                })
            }

            // Store the snapshot for RequireRole and the handlers.
            c.Set(identityKey, id)
            return next(c)
        }
    }
}

// OptionalJWT parses the Authorization header when one is present but never
// rejects the request. The signup route uses it so the bootstrap admin can
// be created without a token while authenticated callers are still
// identified for the audit trail.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            header := c.Request().Header.Get("Authorization")
            if strings.HasPrefix(header, "Bearer ") {
                raw := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
                if id, err := auth.VerifyToken(secret, raw); err == nil {
                    c.Set(identityKey, id)
                }
            }
            return next(c)
        }
    }
}

// CallerIdentity extracts the identity stored by JWTAuth or OptionalJWT.
// The second return value is false when the request is unauthenticated.
func CallerIdentity(c echo.Context) (auth.Identity, bool) {
    id, ok := c.Get(identityKey).(auth.Identity)
    return id, ok
}
