package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"order-ledger/internal/core"

	"github.com/golang-jwt/jwt/v5"
)

const authCookie = "auth_token"

type authClaimsKey struct{}

// AuthClaims holds the authenticated user's identity extracted from the JWT.
type AuthClaims struct {
	UserID int
	Role   string
}

// Capability converts the verified claims into the write authorization the core expects.
func (c *AuthClaims) Capability() *core.Capability {
	if c == nil {
		return nil
	}
	return &core.Capability{UserID: c.UserID, Role: c.Role}
}

// authFromContext returns the auth claims stored in ctx, or nil.
func authFromContext(ctx context.Context) *AuthClaims {
	v, _ := ctx.Value(authClaimsKey{}).(*AuthClaims)
	return v
}

// jwtClaims is the JWT payload struct used for signing and parsing.
type jwtClaims struct {
	UserID int    `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) signToken(userID int, role string, now time.Time) (string, time.Time, error) {
	expires := now.Add(h.jwtTTL)
	claims := &jwtClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtSecret)
	return signed, expires, err
}

func (h *Handler) parseToken(raw string) (*AuthClaims, error) {
	claims := &jwtClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, errors.New("invalid token")
	}
	return &AuthClaims{UserID: claims.UserID, Role: claims.Role}, nil
}

// tokenFromRequest reads the auth_token cookie, then an Authorization: Bearer header,
// then (only when allowQuery is set) a token query parameter.
func tokenFromRequest(r *http.Request, allowQuery bool) string {
	if c, err := r.Cookie(authCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if allowQuery {
		return r.URL.Query().Get("token")
	}
	return ""
}

func (h *Handler) authenticate(allowQuery bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r, allowQuery)
			if raw == "" {
				writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
				return
			}
			claims, err := h.parseToken(raw)
			if err != nil {
				writeError(w, r, "invalid or expired token", "UNAUTHORIZED", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), authClaimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth is chi middleware that validates the session token and injects
// AuthClaims into the request context. Returns 401 if the token is absent or invalid.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return h.authenticate(false)(next)
}

// RequireActiveUser re-reads the signed-in user on every write so a deactivated
// account or a changed role takes effect before the token expires.
// Must run after RequireAuth.
func (h *Handler) RequireActiveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		claims := authFromContext(r.Context())
		if claims == nil {
			writeError(w, r, "authentication required", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		user, err := h.svc.GetUser(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				writeError(w, r, "account no longer exists", "UNAUTHORIZED", http.StatusUnauthorized)
				return
			}
			writeDomainError(w, r, err)
			return
		}
		if !user.IsActive {
			writeError(w, r, "account is disabled", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		current := &AuthClaims{UserID: claims.UserID, Role: user.Role}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), authClaimsKey{}, current)))
	})
}

// login handles POST /api/auth/login.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	session, err := h.svc.AuthenticateUser(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, core.ErrUnauthorized) {
			writeError(w, r, "invalid username or password", "UNAUTHORIZED", http.StatusUnauthorized)
			return
		}
		writeDomainError(w, r, err)
		return
	}

	signed, expires, err := h.signToken(session.UserID, session.Role, time.Now())
	if err != nil {
		writeError(w, r, "token generation failed", "INTERNAL_ERROR", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   int(h.jwtTTL.Seconds()),
	})

	type loginResponse struct {
		UserID    int       `json:"user_id"`
		Username  string    `json:"username"`
		Role      string    `json:"role"`
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
	writeJSON(w, loginResponse{
		UserID:    session.UserID,
		Username:  session.Username,
		Role:      session.Role,
		Token:     signed,
		ExpiresAt: expires,
	})
}

// logout handles POST /api/auth/logout and clears the auth cookie.
func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}

// me handles GET /api/auth/me and returns the current user's profile.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims := authFromContext(r.Context())
	if claims == nil {
		writeError(w, r, "not authenticated", "UNAUTHORIZED", http.StatusUnauthorized)
		return
	}

	user, err := h.svc.GetUser(r.Context(), claims.UserID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, user)
}
