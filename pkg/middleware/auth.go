package middleware

import (
	"errors"
	"net/http"
	"strings"

	"event-registration/internal/data/entity"
	"event-registration/pkg/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Claims is the token payload issued by the auth service.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HMAC-signed access tokens minted by the auth service.
type TokenVerifier struct {
	secret []byte
	issuer string
}

func NewTokenVerifier(config utils.AuthConfig) *TokenVerifier {
	return &TokenVerifier{secret: []byte(config.JWTSecret), issuer: config.Issuer}
}

// Verify returns the caller encoded in raw.
func (v *TokenVerifier) Verify(raw string) (entity.Caller, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return entity.Caller{}, err
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return entity.Caller{}, errors.New("subject is not a user id")
	}
	role := entity.UserRole(claims.Role)
	if !role.Valid() {
		return entity.Caller{}, errors.New("unknown role")
	}

	return entity.Caller{ID: userID, Role: role}, nil
}

// Authenticate requires a valid Bearer token and stores the caller in the request context.
func Authenticate(verifier *TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			caller, err := verifier.Verify(raw)
			if err != nil {
				logger.Warn("Rejected access token",
					zap.Error(err),
					zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), caller.ID, caller.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth identifies the caller when a token is sent and lets anonymous requests through.
// A token that is sent but invalid is still rejected.
func OptionalAuth(verifier *TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	required := Authenticate(verifier, logger)
	return func(next http.Handler) http.Handler {
		withAuth := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}
			withAuth.ServeHTTP(w, r)
		})
	}
}

// RequireRole lets the request through when the caller's role passes allowed.
func RequireRole(allowed func(entity.UserRole) bool, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			role, _ := utils.GetRoleFromContext(r.Context())
			if !allowed(role) {
				logger.Warn("Role check failed",
					zap.String("user_id", userID.String()),
					zap.String("role", string(role)),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Insufficient role for this action")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Organizer - middleware cek organizer capability
func Organizer(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(entity.UserRole.CanOrganize, logger)
}

// Staff - middleware cek staff or organizer capability
func Staff(logger *zap.Logger) func(http.Handler) http.Handler {
	return RequireRole(entity.UserRole.CanCheckIn, logger)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
