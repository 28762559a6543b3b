package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/services"
	"github.com/nivobank/backoffice/pkg/auth"
	"github.com/nivobank/backoffice/pkg/logger"
)

// JWTAuth is a middleware that validates JWT tokens
func JWTAuth(authService *services.AuthService, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract token from Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing authorization header")
				return
			}

			// Check Bearer token format
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			tokenString := parts[1]

			// Validate token
			claims, err := authService.ValidateAccessToken(tokenString)
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims, "jwt")))
		})
	}
}

// APIKeyAuth is a middleware that validates API keys
func APIKeyAuth(authService *services.AuthService, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Extract API key from X-API-Key header
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				respondError(w, http.StatusUnauthorized, "Missing API key")
				return
			}

			// Validate API key; the key authenticates as its owning user
			user, err := authService.ValidateAPIKey(r.Context(), apiKey)
			if err != nil {
				log.Warn("Invalid API key", zap.Error(err))
				respondError(w, http.StatusUnauthorized, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claimsForUser(user), "api_key")))
		})
	}
}

// OptionalAuth allows both JWT and API key authentication
func OptionalAuth(authService *services.AuthService, log *logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Try JWT first
			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) == 2 && parts[0] == "Bearer" {
					claims, err := authService.ValidateAccessToken(parts[1])
					if err == nil {
						next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claims, "jwt")))
						return
					}
				}
			}

			// Try API key
			apiKey := r.Header.Get("X-API-Key")
			if apiKey != "" {
				user, err := authService.ValidateAPIKey(r.Context(), apiKey)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(contextWithClaims(r.Context(), claimsForUser(user), "api_key")))
					return
				}
			}

			// No valid auth provided
			respondError(w, http.StatusUnauthorized, "Authentication required")
		})
	}
}

// contextWithClaims stores the authenticated descriptor under the keys the
// rest of the stack reads.
func contextWithClaims(ctx context.Context, claims *auth.JWTClaims, authType string) context.Context {
	ctx = context.WithValue(ctx, "claims", claims)
	ctx = context.WithValue(ctx, "user_id", claims.UserID)
	ctx = context.WithValue(ctx, "username", claims.Username)
	ctx = context.WithValue(ctx, "auth_type", authType)
	return ctx
}

// claimsForUser builds a claims descriptor for non-token authentication
func claimsForUser(user *models.User) *auth.JWTClaims {
	claims := &auth.JWTClaims{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		BankID:   user.BankID,
		AgencyID: user.AgencyID,
	}
	if user.Role != nil {
		claims.Role = user.Role.Name
		for _, p := range user.Role.Permissions {
			claims.Permissions = append(claims.Permissions, p.Name)
		}
	}
	return claims
}

// respondError sends an error response with proper JSON encoding
func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	// Use proper JSON encoding to prevent injection attacks
	response := map[string]string{"error": message}
	json.NewEncoder(w).Encode(response)
}

// GetUserID extracts user ID from request context
// Returns uuid.Nil if not found
func GetUserID(ctx context.Context) uuid.UUID {
	if userID, ok := ctx.Value("user_id").(uuid.UUID); ok {
		return userID
	}
	return uuid.Nil
}

// GetClaims extracts JWT claims from request context
func GetClaims(ctx context.Context) *auth.JWTClaims {
	if claims, ok := ctx.Value("claims").(*auth.JWTClaims); ok {
		return claims
	}
	return nil
}

// GetActor builds the lifecycle actor descriptor from the authenticated
// claims. The second return is false when the request carries no valid auth.
func GetActor(ctx context.Context) (models.Actor, bool) {
	claims := GetClaims(ctx)
	if claims == nil || claims.UserID == uuid.Nil {
		return models.Actor{}, false
	}
	return models.Actor{
		UserID:   claims.UserID,
		Role:     claims.Role,
		BankID:   claims.BankID,
		AgencyID: claims.AgencyID,
	}, true
}
