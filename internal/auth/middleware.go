package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hackreg/registration-api/internal/account"
	"github.com/hackreg/registration-api/internal/httputil"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	AccountIDContextKey    ContextKey = "account_id"
	AccountEmailContextKey ContextKey = "account_email"
)

// Middleware authenticates requests to protected routes. A token is valid
// only while its subject still resolves to an existing account; there is no
// revocation list.
type Middleware struct {
	tokens TokenService
	store  account.Store
}

func NewMiddleware(tokens TokenService, store account.Store) *Middleware {
	return &Middleware{tokens: tokens, store: store}
}

// RequireAuth validates the bearer token and stashes the subject identity in
// the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokens.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		accountID, err := uuid.Parse(claims.AccountID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid subject in token", httputil.CodeInvalidTokenSubject, http.StatusUnauthorized)
			return
		}

		// Signature and expiry hold; the subject must also still exist.
		if _, err := m.store.FindByID(r.Context(), accountID); err != nil {
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), AccountIDContextKey, accountID)
		ctx = context.WithValue(ctx, AccountEmailContextKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireVerified gates routes that only verified registrants may use.
// Must run after RequireAuth.
func (m *Middleware) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID, ok := GetAccountIDFromContext(r.Context())
		if !ok {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		acct, err := m.store.FindByID(r.Context(), accountID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		if !acct.Verified {
			httputil.RespondErrorWithCode(w, "email not verified", httputil.CodeEmailNotVerified, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// GetAccountIDFromContext extracts the account ID from the request context
func GetAccountIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	accountID, ok := ctx.Value(AccountIDContextKey).(uuid.UUID)
	return accountID, ok
}

// GetAccountEmailFromContext extracts the account email from the request context
func GetAccountEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(AccountEmailContextKey).(string)
	return email, ok
}
