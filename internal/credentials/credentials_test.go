package credentials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraconstructs/iamcore/internal/apierr"
)

func TestIssuer_IssueAndParseAccessToken(t *testing.T) {
	iss := NewIssuer("top-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := iss.IssueAccessToken("user1", "acct1", "alice", false, "sess1", "role1")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := iss.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user1", claims.UserID)
	assert.Equal(t, "acct1", claims.AccountID)
	assert.Equal(t, "alice", claims.Username)
	assert.False(t, claims.IsRoot)
	assert.Equal(t, "sess1", claims.SessionID)
	assert.Equal(t, "role1", claims.RoleID)
}

func TestIssuer_IssueAndParseRefreshToken(t *testing.T) {
	iss := NewIssuer("top-secret", 15*time.Minute, 7*24*time.Hour)

	token, err := iss.IssueRefreshToken("user1", "acct1", "sess1", "family1")
	require.NoError(t, err)

	claims, err := iss.ParseRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, "family1", claims.TokenFamily)
	assert.Equal(t, "sess1", claims.SessionID)
}

func TestIssuer_ExpiredTokenRejected(t *testing.T) {
	iss := NewIssuer("top-secret", -time.Minute, time.Hour)

	token, err := iss.IssueAccessToken("user1", "acct1", "alice", false, "", "")
	require.NoError(t, err)

	_, err = iss.ParseAccessToken(token)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindAuthentication))
}

func TestIssuer_WrongSecretRejected(t *testing.T) {
	iss := NewIssuer("secret-a", 15*time.Minute, time.Hour)
	other := NewIssuer("secret-b", 15*time.Minute, time.Hour)

	token, err := iss.IssueAccessToken("user1", "acct1", "alice", false, "", "")
	require.NoError(t, err)

	_, err = other.ParseAccessToken(token)
	require.Error(t, err)
	assert.True(t, apierr.Is(err, apierr.KindAuthentication))
}

func TestIssuer_RootClaimRoundTrips(t *testing.T) {
	iss := NewIssuer("top-secret", 15*time.Minute, time.Hour)

	token, err := iss.IssueAccessToken("root-user", "acct1", "root", true, "", "")
	require.NoError(t, err)

	claims, err := iss.ParseAccessToken(token)
	require.NoError(t, err)
	assert.True(t, claims.IsRoot)
}

func TestHashToken_Deterministic(t *testing.T) {
	h1 := HashToken("abc123")
	h2 := HashToken("abc123")
	h3 := HashToken("different")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}
