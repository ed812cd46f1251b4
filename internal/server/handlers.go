package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/decision"
	"github.com/terraconstructs/iamcore/internal/gate"
	iammiddleware "github.com/terraconstructs/iamcore/internal/middleware"
	"github.com/terraconstructs/iamcore/internal/service"
)

type loginRequest struct {
	AccountID string `json:"accountId"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

type credentialResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func handleLogin(sts *service.STSService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apierr.Validationf("", "malformed request body"))
			return
		}
		cred, err := sts.Login(r.Context(), req.AccountID, req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, credentialResponse{cred.AccessToken, cred.RefreshToken, cred.ExpiresAt})
	}
}

type assumeRoleRequest struct {
	PrincipalUserID string `json:"principalUserId"`
	RoleID          string `json:"roleId"`
	SessionName     string `json:"sessionName"`
	ExternalID      string `json:"externalId"`
	DurationSeconds int    `json:"durationSeconds"`
}

func handleAssumeRole(sts *service.STSService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req assumeRoleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apierr.Validationf("", "malformed request body"))
			return
		}
		cred, err := sts.AssumeRole(r.Context(), service.AssumeRoleParams{
			PrincipalUserID: req.PrincipalUserID,
			RoleID:          req.RoleID,
			SessionName:     req.SessionName,
			ExternalID:      req.ExternalID,
			Duration:        time.Duration(req.DurationSeconds) * time.Second,
			SourceIP:        clientIP(r),
			UserAgent:       r.UserAgent(),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, credentialResponse{cred.AccessToken, cred.RefreshToken, cred.ExpiresAt})
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func handleRefresh(sts *service.STSService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apierr.Validationf("", "malformed request body"))
			return
		}
		cred, err := sts.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, credentialResponse{cred.AccessToken, cred.RefreshToken, cred.ExpiresAt})
	}
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func handleLogout(sts *service.STSService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logoutRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		accessToken := bearerToken(r)
		if err := sts.Logout(r.Context(), accessToken, req.RefreshToken); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type authorizeRequest struct {
	Action          string            `json:"action"`
	Resource        string            `json:"resource"`
	RequestedRegion string            `json:"requestedRegion"`
	Context         map[string]string `json:"context"`
}

type authorizeResponse struct {
	Decision string `json:"decision"`
	Reason   string `json:"reason"`
}

// handleAuthorize calls straight into internal/gate.Gate.Authorize per §6,
// mapping DENY to 403 and ALLOW to 200.
func handleAuthorize(g *gate.Gate) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := iammiddleware.ClaimsFromContext(r.Context())
		if !ok {
			writeError(w, apierr.Authenticationf("no authenticated principal"))
			return
		}
		tokenHash, _ := iammiddleware.TokenHashFromContext(r.Context())

		var req authorizeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, apierr.Validationf("", "malformed request body"))
			return
		}

		outcome, err := g.Authorize(r.Context(), gate.Request{
			TokenHash:       tokenHash,
			PrincipalID:     claims.UserID,
			AccountID:       claims.AccountID,
			Action:          req.Action,
			Resource:        req.Resource,
			IssuedAt:        claims.IssuedAt.Time,
			SessionRoleID:   claims.RoleID,
			SourceIP:        clientIP(r),
			UserAgent:       r.UserAgent(),
			RequestedRegion: req.RequestedRegion,
			ExtraContext:    req.Context,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		status := http.StatusOK
		if outcome.Decision == decision.Deny {
			status = http.StatusForbidden
		}
		writeJSON(w, status, authorizeResponse{Decision: string(outcome.Decision), Reason: outcome.Reason})
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return strings.TrimSpace(strings.Split(ip, ",")[0])
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	kind := apierr.KindInternal
	if apierr.Is(err, apierr.KindValidation) {
		status, kind = http.StatusBadRequest, apierr.KindValidation
	} else if apierr.Is(err, apierr.KindNotFound) {
		status, kind = http.StatusNotFound, apierr.KindNotFound
	} else if apierr.Is(err, apierr.KindConflict) {
		status, kind = http.StatusConflict, apierr.KindConflict
	} else if apierr.Is(err, apierr.KindAuthentication) {
		status, kind = http.StatusUnauthorized, apierr.KindAuthentication
	} else if apierr.Is(err, apierr.KindAuthorization) {
		status, kind = http.StatusForbidden, apierr.KindAuthorization
	} else if apierr.Is(err, apierr.KindResourceInUse) {
		status, kind = http.StatusConflict, apierr.KindResourceInUse
	} else if apierr.Is(err, apierr.KindTransient) {
		status, kind = http.StatusServiceUnavailable, apierr.KindTransient
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "kind": string(kind)})
}
