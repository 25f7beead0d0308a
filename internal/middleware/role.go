package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context

    "github.com/iliyamo/school-records/internal/model"
)

// RequireRole returns a middleware that enforces that the authenticated
// caller holds one of the listed roles. An empty list admits any
// authenticated caller. The role checked is the one embedded in the token
// at issuance; it assumes JWTAuth already ran and stored the identity in
// the context. Requests outside the allow-list are rejected with 403.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
    allowed := make(map[model.Role]bool, len(roles))
    for _, r := range roles {
        allowed[r] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, ok := CallerIdentity(c)
            if !ok {
                // JWTAuth did not run or rejected silently; treat as unauthenticated.
                return c.JSON(http.StatusUnauthorized, echo.Map{
                    "status":  "error",
                    "message": "Authorization header missing",
                })
            }
            if len(allowed) > 0 && !allowed[id.Role] {
                return c.JSON(http.StatusForbidden, echo.Map{
                    "status":  "error",
                    "message": "Access denied: Insufficient permissions",
                })
            }
            return next(c)
        }
    }
}
