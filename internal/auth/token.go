package auth // package auth issues and verifies the bearer tokens used on every gated request

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens

    "github.com/iliyamo/school-records/internal/model"
)

// Issuer is the fixed iss claim stamped into every token.
const Issuer = "school-records"

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, malformed payload or an expired token. Callers only need to
// know the token cannot be trusted, not why.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the snapshot embedded in a token at issuance. The role is the
// role the account had when the token was minted; later role changes do not
// retroactively alter outstanding tokens.
type Identity struct {
    ID   uint64
    Name string
    Role model.Role
}

// IssueToken builds and signs an HS256 JWT for an account. The payload
// carries iss, iat, exp and a nested "user" claim holding the identity
// snapshot. It returns the serialized token and its expiration time.
func IssueToken(secret string, id Identity, ttl time.Duration) (string, time.Time, error) {
    now := time.Now().UTC()
    exp := now.Add(ttl)
    claims := jwt.MapClaims{
        "iss": Issuer,
        "iat": now.Unix(),
        "exp": exp.Unix(),
        "user": map[string]interface{}{
            "id":   id.ID,
            "name": id.Name,
            "role": string(id.Role),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return "", time.Time{}, err
    }
    return signed, exp, nil
}

// VerifyToken parses and validates a presented token and returns the
// embedded identity snapshot. It is side-effect free; deciding how to render
// a failure into an HTTP response is the caller's job.
func VerifyToken(secret, raw string) (Identity, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Identity{}, ErrInvalidToken
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Identity{}, ErrInvalidToken
    }
    user, ok := claims["user"].(map[string]interface{})
    if !ok {
        return Identity{}, ErrInvalidToken
    }
    // JSON numbers decode as float64.
    idVal, ok := user["id"].(float64)
    if !ok || idVal <= 0 {
        return Identity{}, ErrInvalidToken
    }
    name, _ := user["name"].(string)
    roleStr, _ := user["role"].(string)
    role, ok := model.ParseRole(roleStr)
    if !ok {
        return Identity{}, ErrInvalidToken
    }
    return Identity{ID: uint64(idVal), Name: name, Role: role}, nil
}
