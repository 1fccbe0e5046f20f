package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/nctr-alliance/garden-backend/internal/reqctx"
)

const (
	RoleAdmin   = "admin"
	RoleService = "service_role"
	// RoleSystem marks callers authenticated by the admin API secret.
	RoleSystem = "system"
)

// Identity is the authenticated caller.
type Identity struct {
	UID   string
	Email string
	Role  string
}

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// SupabaseVerifier checks Supabase access tokens locally with the project's
// HS256 JWT secret.
type SupabaseVerifier struct {
	secret []byte
}

func NewSupabaseVerifier(secret string) (*SupabaseVerifier, error) {
	if secret == "" {
		return nil, errors.New("SUPABASE_JWT_SECRET is not set")
	}
	return &SupabaseVerifier{secret: []byte(secret)}, nil
}

func (v *SupabaseVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("jwt parse: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("jwt invalid")
	}
	id := &Identity{
		UID:   stringClaim(claims, "sub"),
		Email: stringClaim(claims, "email"),
		Role:  stringClaim(claims, "role"),
	}
	// app_metadata.role overrides the top-level role claim
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if r := stringClaim(meta, "role"); r != "" {
			id.Role = r
		}
	}
	if id.UID == "" {
		return nil, errors.New("jwt has no subject")
	}
	return id, nil
}

// FirebaseVerifier checks Firebase ID tokens.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(ctx context.Context, projectID string) (*FirebaseVerifier, error) {
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is not set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &FirebaseVerifier{client: client}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	t, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}
	id := &Identity{
		UID:   t.UID,
		Email: stringClaim(t.Claims, "email"),
		Role:  stringClaim(t.Claims, "role"),
	}
	if admin, _ := t.Claims["admin"].(bool); admin {
		id.Role = RoleAdmin
	}
	return id, nil
}

type AuthMiddleware struct {
	verifier    TokenVerifier
	adminSecret string
}

func NewAuthMiddleware(verifier TokenVerifier, adminSecret string) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, adminSecret: adminSecret}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := m.authenticate(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("unauthorized", err.Error()))
		}
		setIdentity(c, id)
		return next(c)
	}
}

// RequireAdmin accepts the x-api-secret header for schedulers, or a bearer
// token whose role is admin or service_role.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if secret := c.Request().Header.Get("x-api-secret"); secret != "" {
			if m.adminSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(m.adminSecret)) != 1 {
				return c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "invalid api secret"))
			}
			setIdentity(c, &Identity{UID: RoleSystem, Role: RoleSystem})
			return next(c)
		}
		id, err := m.authenticate(c)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorBody("unauthorized", err.Error()))
		}
		if id.Role != RoleAdmin && id.Role != RoleService {
			return c.JSON(http.StatusForbidden, errorBody("forbidden", "admin role required"))
		}
		setIdentity(c, id)
		return next(c)
	}
}

func (m *AuthMiddleware) authenticate(c echo.Context) (*Identity, error) {
	if m.verifier == nil {
		return nil, errors.New("auth is not configured")
	}
	authz := c.Request().Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return nil, errors.New("missing bearer token")
	}
	id, err := m.verifier.Verify(c.Request().Context(), strings.TrimPrefix(authz, "Bearer "))
	if err != nil {
		return nil, errors.New("invalid_token")
	}
	return id, nil
}

func setIdentity(c echo.Context, id *Identity) {
	c.Set("uid", id.UID)
	c.Set("role", id.Role)
	c.Set("email", id.Email)
	ctx := reqctx.WithUID(c.Request().Context(), id.UID)
	ctx = reqctx.WithRole(ctx, id.Role)
	c.SetRequest(c.Request().WithContext(ctx))
}

func stringClaim(claims map[string]interface{}, key string) string {
	v, _ := claims[key].(string)
	return v
}

// errorBody mirrors handler.NewErrorResponse without importing handler.
func errorBody(code, message string) map[string]map[string]string {
	return map[string]map[string]string{"error": {"code": code, "message": message}}
}
