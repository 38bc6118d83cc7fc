package jwt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "access-secret")
	t.Setenv("REFRESH_SECRET", "refresh-secret")

	access, refresh, err := GenerateTokens(42, "customer")
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	claims, err := ValidateToken(access, false)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
	require.Equal(t, "customer", claims.Role)

	claims, err = ValidateToken(refresh, true)
	require.NoError(t, err)
	require.Equal(t, int64(42), claims.UserID)
}

func TestValidateRejectsWrongKind(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "access-secret")
	t.Setenv("REFRESH_SECRET", "refresh-secret")

	access, _, err := GenerateTokens(7, "admin")
	require.NoError(t, err)

	// An access token must not validate against the refresh secret.
	_, err = ValidateToken(access, true)
	require.Error(t, err)
}

func TestGenerateRequiresSecrets(t *testing.T) {
	t.Setenv("ACCESS_SECRET", "")
	t.Setenv("REFRESH_SECRET", "")

	_, _, err := GenerateTokens(1, "customer")
	require.Error(t, err)
}
