// file: internal/middleware/auth.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"merithub/internal/config"
	"merithub/internal/contextutils"
	"merithub/internal/response"
	"merithub/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// AuthContext holds authentication context for requests
type AuthContext struct {
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Role       string    `json:"role"`
	AuthMethod string    `json:"auth_method"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type authContextKey struct{}

// Claims carried in access tokens issued by the identity service.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates bearer tokens on protected routes
type AuthMiddleware struct {
	config  *config.AuthConfig
	builder *response.Builder
	logger  *zap.Logger
}

// NewAuthMiddleware creates JWT authentication middleware
func NewAuthMiddleware(cfg *config.AuthConfig, builder *response.Builder, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		config:  cfg,
		builder: builder,
		logger:  logger,
	}
}

// RequireAuth rejects requests without a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestLogger := GetRequestLogger(r.Context())

		token := extractBearerToken(r)
		if token == "" {
			m.writeUnauthorized(w, r, "missing bearer token")
			return
		}

		authCtx, err := m.validateToken(token)
		if err != nil {
			requestLogger.Warn("Token validation failed", zap.Error(err))
			m.writeUnauthorized(w, r, "invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authContextKey{}, authCtx)
		ctx = contextutils.WithUserID(ctx, authCtx.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole layers a role check on top of RequireAuth
func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r.Context())
			if authCtx == nil || authCtx.Role != role {
				resp := m.builder.Error(r.Context(), services.NewValidationError("insufficient permissions", nil))
				m.builder.WriteJSON(w, r, resp, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// GetAuthContext retrieves the authenticated principal, or nil
func GetAuthContext(ctx context.Context) *AuthContext {
	if ac, ok := ctx.Value(authContextKey{}).(*AuthContext); ok {
		return ac
	}
	return nil
}

func (m *AuthMiddleware) validateToken(tokenString string) (*AuthContext, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(m.config.JWTSecret), nil
	}, jwt.WithIssuer(m.config.JWTIssuer))
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return nil, fmt.Errorf("invalid subject claim: %q", claims.Subject)
	}

	authCtx := &AuthContext{
		UserID:     userID,
		Username:   claims.Username,
		Role:       claims.Role,
		AuthMethod: "jwt",
	}
	if claims.ExpiresAt != nil {
		authCtx.ExpiresAt = claims.ExpiresAt.Time
	}
	return authCtx, nil
}

func (m *AuthMiddleware) writeUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	resp := m.builder.Error(r.Context(), &services.ServiceError{
		Type:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	})
	m.builder.WriteJSON(w, r, resp, http.StatusUnauthorized)
}

func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
