package jwt

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTTL is used when neither the caller nor the constructor supply a lifetime.
const DefaultTTL = 10 * 24 * time.Hour

var (
	// ErrMissingSecret is returned when the signing secret is empty.
	ErrMissingSecret = errors.New("jwt signing secret is not configured")
	// ErrUnsupportedAlgorithm is returned for non-HMAC signing algorithms.
	ErrUnsupportedAlgorithm = errors.New("unsupported jwt signing algorithm")
)

// JWT issues and verifies HMAC-signed access tokens.
type JWT struct {
	secretKey []byte
	method    *jwt.SigningMethodHMAC
	ttl       time.Duration
	now       func() time.Time
}

// Opt configures a JWT instance.
type Opt func(*JWT)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Opt {
	return func(j *JWT) {
		j.now = now
	}
}

// New creates a JWT instance for the given secret, algorithm name (HS256, HS384, HS512)
// and default token lifetime.
func New(secretKey, algorithm string, ttl time.Duration, opts ...Opt) (*JWT, error) {
	if secretKey == "" {
		return nil, ErrMissingSecret
	}

	method, ok := jwt.GetSigningMethod(strings.ToUpper(algorithm)).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}

	j := &JWT{
		secretKey: []byte(secretKey),
		method:    method,
		ttl:       ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Issue signs the given claims together with exp, iat and a random jti.
// A non-positive ttl falls back to the configured lifetime.
func (j *JWT) Issue(ctx context.Context, claims map[string]any, ttl time.Duration) (string, time.Time, error) {
	if len(j.secretKey) == 0 {
		return "", time.Time{}, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = j.ttl
	}

	now := j.now().UTC()
	expiresAt := now.Add(ttl)

	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["exp"] = expiresAt.Unix()
	mc["iat"] = now.Unix()
	mc["jti"] = uuid.NewString()

	token, err := jwt.NewWithClaims(j.method, mc).SignedString(j.secretKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Parse verifies the token signature and expiry and returns its claims.
func (j *JWT) Parse(ctx context.Context, tokenString string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != j.method.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return j.secretKey, nil
	}, jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// GetTokenFromRequest extracts the token string from the Authorization header
func (j *JWT) GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("authorization header missing")
	}

	parts := strings.Fields(authHeader)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", errors.New("invalid authorization header format")
	}

	return parts[1], nil
}

type tokenKey struct{}

// WithToken stores a verified raw token in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by WithToken, or "".
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}
