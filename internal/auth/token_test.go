package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/school-records/internal/model"
)

const testSecret = "test-jwt-secret"

func TestIssueAndVerifyToken(t *testing.T) {
	t.Parallel()

	id := Identity{ID: 42, Name: "Ada", Role: model.RoleTeacher}
	token, exp, err := IssueToken(testSecret, id, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), exp, 5*time.Second)

	got, err := VerifyToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, id, got)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	t.Parallel()

	token, _, err := IssueToken(testSecret, Identity{ID: 1, Name: "x", Role: model.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken("other-secret", token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	token, _, err := IssueToken(testSecret, Identity{ID: 1, Name: "x", Role: model.RoleAdmin}, -time.Minute)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := VerifyToken(testSecret, raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "raw=%q", raw)
	}
}

func TestVerifyToken_UnknownRole(t *testing.T) {
	t.Parallel()

	// A token minted with a role outside the closed set must not verify.
	token, _, err := IssueToken(testSecret, Identity{ID: 7, Name: "x", Role: model.Role("superuser")}, time.Hour)
	require.NoError(t, err)

	_, err = VerifyToken(testSecret, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
