// Package credentials implements the Credential Issuer (C7): it mints,
// signs, and parses access and refresh tokens.
package credentials

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/terraconstructs/iamcore/internal/apierr"
)

// AccessClaims is the claim set carried by a short-lived access token,
// per §4.8.
type AccessClaims struct {
	UserID    string `json:"userId"`
	AccountID string `json:"accountId"`
	Username  string `json:"username"`
	IsRoot    bool   `json:"isRoot"`
	SessionID string `json:"sessionId,omitempty"`
	RoleID    string `json:"roleId,omitempty"`
	jwt.RegisteredClaims
}

// RefreshClaims is the claim set carried by a longer-lived refresh token,
// per §4.8. TokenFamily is carried as the caller passes it (STSService
// passes the session ID, empty for a plain login). Revocation works per
// token hash: revoking one refresh token does not revoke others that share
// its TokenFamily. Each refresh token carries a random ID (jti), so two
// tokens minted in the same second with the same claims still differ.
type RefreshClaims struct {
	UserID      string `json:"userId"`
	AccountID   string `json:"accountId"`
	SessionID   string `json:"sessionId,omitempty"`
	TokenFamily string `json:"tokenFamily"`
	jwt.RegisteredClaims
}

// Issuer mints and parses HMAC-signed access/refresh tokens.
type Issuer struct {
	secret          []byte
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
}

// NewIssuer builds an Issuer. secret must be non-empty; key rotation is a
// non-goal, matching a single signing secret for the process lifetime.
func NewIssuer(secret string, accessTokenTTL, refreshTokenTTL time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), accessTokenTTL: accessTokenTTL, refreshTokenTTL: refreshTokenTTL}
}

// IssueAccessToken mints a signed access token for the given principal.
func (iss *Issuer) IssueAccessToken(userID, accountID, username string, isRoot bool, sessionID, roleID string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		UserID:    userID,
		AccountID: accountID,
		Username:  username,
		IsRoot:    isRoot,
		SessionID: sessionID,
		RoleID:    roleID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(iss.accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(iss.secret)
	if err != nil {
		return "", apierr.Internalf(err, "sign access token")
	}
	return signed, nil
}

// IssueRefreshToken mints a signed refresh token for the given principal.
func (iss *Issuer) IssueRefreshToken(userID, accountID, sessionID, tokenFamily string) (string, error) {
	now := time.Now()
	jti := make([]byte, 16)
	if _, err := rand.Read(jti); err != nil {
		return "", apierr.Internalf(err, "generate refresh token id")
	}
	claims := RefreshClaims{
		UserID:      userID,
		AccountID:   accountID,
		SessionID:   sessionID,
		TokenFamily: tokenFamily,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        hex.EncodeToString(jti),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(iss.refreshTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(iss.secret)
	if err != nil {
		return "", apierr.Internalf(err, "sign refresh token")
	}
	return signed, nil
}

// ParseAccessToken verifies signature and expiry and returns the claims.
func (iss *Issuer) ParseAccessToken(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := iss.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseRefreshToken verifies signature and expiry and returns the claims.
func (iss *Issuer) ParseRefreshToken(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := iss.parse(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (iss *Issuer) parse(tokenString string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apierr.Authenticationf("unexpected signing method %v", t.Header["alg"])
		}
		return iss.secret, nil
	})
	if err != nil {
		return apierr.Authenticationf("invalid token: %v", err)
	}
	return nil
}

// HashToken returns the SHA-256 hex digest of a token string, the key used
// by the Revocation Store and Session Store lookups.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
