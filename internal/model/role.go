package model

import "strings"

// Role is the closed set of account roles. The value is stored verbatim in
// the users.role column and embedded in access tokens.
type Role string

const (
    RoleAdmin   Role = "admin"
    RoleTeacher Role = "teacher"
    RoleStudent Role = "student"
    RoleParent  Role = "parent"
)

// ParseRole normalizes a user-supplied role string. The second return value
// is false when the string names no known role.
func ParseRole(s string) (Role, bool) {
    switch Role(strings.ToLower(strings.TrimSpace(s))) {
    case RoleAdmin:
        return RoleAdmin, true
    case RoleTeacher:
        return RoleTeacher, true
    case RoleStudent:
        return RoleStudent, true
    case RoleParent:
        return RoleParent, true
    }
    return "", false
}

// creationMatrix is the total creator-role x requested-role permission table.
// Adding a role means adding one row here.
var creationMatrix = map[Role]map[Role]bool{
    RoleAdmin: {
        RoleAdmin:   true,
        RoleTeacher: true,
        RoleStudent: true,
        RoleParent:  true,
    },
    RoleTeacher: {
        RoleStudent: true,
    },
    RoleStudent: {},
    RoleParent:  {},
}

// CanCreate reports whether an account with role r may provision an account
// with the requested role.
func (r Role) CanCreate(requested Role) bool {
    return creationMatrix[r][requested]
}
