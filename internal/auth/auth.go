// Package auth verifies admin bearer tokens. Tokens are HS256 signed with a
// shared secret, or verified against a remote JWKS when one is configured.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

var (
	ErrNotConfigured = errors.New("token verification is not configured")
	ErrInvalidToken  = errors.New("invalid or expired token")
)

// Claims is what admin routes learn about the caller. Any valid token with a
// subject is an admin.
type Claims struct {
	Subject string
}

type Verifier struct {
	issuer string

	secret []byte

	jwksCache *jwk.Cache
	jwksURL   string
}

// NewHMACVerifier accepts tokens signed with secret. An empty secret yields a
// verifier that rejects everything with ErrNotConfigured.
func NewHMACVerifier(secret, issuer string) *Verifier {
	v := &Verifier{issuer: issuer}
	if secret != "" {
		v.secret = []byte(secret)
	}
	return v
}

// NewJWKSVerifier registers jwksURL with a background refreshing cache.
func NewJWKSVerifier(ctx context.Context, jwksURL, issuer string) (*Verifier, error) {
	cache, err := jwk.NewCache(ctx, httprc.NewClient())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
	}

	if err := cache.Register(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("failed to register %s with jwk cache: %w", jwksURL, err)
	}

	return &Verifier{
		issuer:    issuer,
		jwksCache: cache,
		jwksURL:   jwksURL,
	}, nil
}

func (v *Verifier) Verify(ctx context.Context, raw string) (*Claims, error) {
	opts := []jwt.ParseOption{jwt.WithValidate(true)}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	switch {
	case v.jwksCache != nil:
		set, err := v.jwksCache.Lookup(ctx, v.jwksURL)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
		}
		opts = append(opts, jwt.WithKeySet(set))
	case v.secret != nil:
		opts = append(opts, jwt.WithKey(jwa.HS256(), v.secret))
	default:
		return nil, ErrNotConfigured
	}

	token, err := jwt.Parse([]byte(raw), opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, fmt.Errorf("%w: no subject claim", ErrInvalidToken)
	}

	return &Claims{Subject: subject}, nil
}

// Mint signs an HS256 token for subject valid for ttl.
func Mint(secret, issuer, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", ErrNotConfigured
	}

	now := time.Now()
	builder := jwt.NewBuilder().
		Subject(subject).
		IssuedAt(now).
		Expiration(now.Add(ttl))
	if issuer != "" {
		builder = builder.Issuer(issuer)
	}

	token, err := builder.Build()
	if err != nil {
		return "", fmt.Errorf("failed to build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), []byte(secret)))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return string(signed), nil
}
