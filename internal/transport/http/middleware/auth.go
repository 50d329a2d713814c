package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// identityKey is the context key for the resolved viewer identity
	identityKey contextKey = "identity"
)

// Identity is the resolved viewer attached to the request context.
type Identity struct {
	UserID   int64
	Username string
}

// ResolveIdentity attaches the viewer's identity to the request context
// when a valid access token is present. It never rejects the request:
// missing, malformed or expired tokens simply leave the request
// anonymous, and each handler decides whether authentication is
// required. Checks the Authorization header first (mobile), then the
// access_token cookie (web).
func ResolveIdentity(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				next.ServeHTTP(w, r)
				return
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			userIDFloat, ok := claims["user_id"].(float64)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			identity := Identity{UserID: int64(userIDFloat)}
			if username, ok := claims["username"].(string); ok {
				identity.Username = username
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	cookie, err := r.Cookie("access_token")
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return ""
}

// GetIdentity extracts the resolved viewer from the request context.
// Returns false for anonymous requests.
func GetIdentity(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// ViewerID returns a pointer to the viewer's user ID, or nil for
// anonymous requests. Convenient for services that enrich responses
// with viewer-specific flags.
func ViewerID(ctx context.Context) *int64 {
	identity, ok := GetIdentity(ctx)
	if !ok {
		return nil
	}
	return &identity.UserID
}
