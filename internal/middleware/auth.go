package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const (
	uidKey   contextKey = "uid"
	emailKey contextKey = "email"
)

// AdminDirectory answers whether an email belongs to a moderator.
type AdminDirectory interface {
	IsAdmin(ctx context.Context, email string) (bool, error)
}

// AuthMiddleware validates bearer tokens and stashes the caller identity
// in the request context.
type AuthMiddleware struct {
	secret []byte
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(jwtSecret)}
}

// Authenticate rejects requests without a valid HS256 bearer token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}

		uid, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		if uid == "" {
			http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), uidKey, uid)
		ctx = context.WithValue(ctx, emailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin gates a handler on membership in the admin directory.
// Runs after Authenticate, so the identity is already in the context.
func RequireAdmin(admins AdminDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			email, ok := GetEmailFromContext(r.Context())
			if !ok || email == "" {
				http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
				return
			}
			isAdmin, err := admins.IsAdmin(r.Context(), email)
			if err != nil {
				log.Printf("[Auth] Admin lookup failed for %s: %v", email, err)
				http.Error(w, `{"error":"authorization check failed"}`, http.StatusInternalServerError)
				return
			}
			if !isAdmin {
				http.Error(w, `{"error":"admin access required"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetUIDFromContext returns the authenticated user id.
func GetUIDFromContext(ctx context.Context) (string, bool) {
	uid, ok := ctx.Value(uidKey).(string)
	return uid, ok
}

// GetEmailFromContext returns the authenticated user's email.
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(emailKey).(string)
	return email, ok
}
