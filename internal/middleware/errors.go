package middleware

import "github.com/terraconstructs/iamcore/internal/apierr"

var (
	errMissingToken = apierr.Authenticationf("missing bearer token")
	errTokenRevoked = apierr.Authenticationf("token revoked")
)
