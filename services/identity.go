package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/oneword-blog-backend/config"
	"github.com/rpupo63/oneword-blog-backend/errs"
)

// Identity is an authenticated caller.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// Authenticator resolves a bearer token to an Identity. Rejected tokens are
// reported with an errs.ErrUnauthorized family error.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Identity, error)
}

// NewAuthenticator picks the gate named by AUTH_PROVIDER.
func NewAuthenticator(cfg *config.Config) (Authenticator, error) {
	switch cfg.AuthProvider {
	case config.AuthProviderSupabase:
		return NewSupabaseGate(cfg.SupabaseURL, cfg.SupabaseAnonKey), nil
	case config.AuthProviderJWT:
		return NewJWTGate(cfg.SupabaseJWTSecret, cfg.SupabaseAudience), nil
	default:
		return nil, errs.NewConfigInvalidError("AUTH_PROVIDER", fmt.Sprintf("unsupported value %q", cfg.AuthProvider))
	}
}

// SupabaseGate asks the Supabase Auth service who owns a token.
type SupabaseGate struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewSupabaseGate(baseURL, anonKey string) *SupabaseGate {
	return &SupabaseGate{
		baseURL:    baseURL,
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     log.With().Str("service", "supabaseGate").Logger(),
	}
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (g *SupabaseGate) Authenticate(ctx context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, errs.NewMissingTokenError()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return Identity{}, errs.NewInternalErrorWithCause("failed to build identity request", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", g.anonKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		g.logger.Error().Err(err).Msg("Identity service unreachable")
		return Identity{}, errs.NewServiceUnreachableError("supabase auth", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		g.logger.Debug().Int("status", resp.StatusCode).Str("body", string(body)).Msg("Token rejected")
		return Identity{}, errs.NewInvalidTokenError(fmt.Errorf("identity service returned %d", resp.StatusCode))
	}

	var user supabaseUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return Identity{}, errs.NewInvalidTokenError(err)
	}
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return Identity{}, errs.NewInvalidTokenError(err)
	}
	return Identity{UserID: id, Email: user.Email}, nil
}

// JWTGate verifies Supabase access tokens locally with the project's JWT
// secret.
type JWTGate struct {
	secret   []byte
	audience string
}

func NewJWTGate(secret, audience string) *JWTGate {
	return &JWTGate{secret: []byte(secret), audience: audience}
}

type supabaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (g *JWTGate) Authenticate(_ context.Context, token string) (Identity, error) {
	if token == "" {
		return Identity{}, errs.NewMissingTokenError()
	}

	var claims supabaseClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return g.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(g.audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, errs.NewExpiredTokenError()
		}
		return Identity{}, errs.NewInvalidTokenError(err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Identity{}, errs.NewInvalidTokenError(fmt.Errorf("subject is not a user id: %w", err))
	}
	return Identity{UserID: id, Email: claims.Email}, nil
}
