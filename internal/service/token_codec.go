package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"notekeeper/internal/domain"
)

var (
	ErrMalformedToken = errors.New("malformed token")
	ErrBadSignature   = errors.New("bad token signature")
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenRevoked   = errors.New("token revoked")
)

// TokenConfig es la parte inmutable de un TokenCodec, tomada de config.Config.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// TokenCodec emite y verifica tokens de sesión HS256. La verificación depende
// solo del token, el secreto y el reloj, más la denylist si hay una.
type TokenCodec struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	now      func() time.Time
	denylist TokenDenylist
}

type TokenOption func(*TokenCodec)

// WithClock reemplaza time.Now al emitir y al chequear expiración.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

// WithDenylist hace que Verify rechace tokens revocados con Revoke.
func WithDenylist(d TokenDenylist) TokenOption {
	return func(c *TokenCodec) { c.denylist = d }
}

func NewTokenCodec(cfg TokenConfig, opts ...TokenOption) *TokenCodec {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = "notekeeper"
	}
	c := &TokenCodec{
		secret: []byte(cfg.Secret),
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Token es una credencial de sesión firmada.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Subject es lo que prueba un token verificado.
type Subject struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

func (c *TokenCodec) Issue(user domain.User) (Token, error) {
	if strings.TrimSpace(user.ID) == "" {
		return Token{}, errors.New("issue token: empty user id")
	}
	now := c.now().UTC()
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    c.issuer,
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{Value: signed, ID: claims.ID, ExpiresAt: claims.ExpiresAt.Time}, nil
}

func (c *TokenCodec) Verify(ctx context.Context, tokenString string) (Subject, error) {
	if strings.TrimSpace(tokenString) == "" {
		return Subject{}, ErrMalformedToken
	}
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return c.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenMalformed):
		return Subject{}, ErrMalformedToken
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return Subject{}, ErrBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return Subject{}, ErrTokenExpired
	default:
		return Subject{}, ErrMalformedToken
	}

	if strings.TrimSpace(claims.Subject) == "" || claims.Issuer != c.issuer {
		return Subject{}, ErrMalformedToken
	}
	subject := Subject{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if c.denylist != nil && subject.TokenID != "" {
		revoked, err := c.denylist.IsRevoked(ctx, subject.TokenID)
		if err != nil {
			return Subject{}, fmt.Errorf("check denylist: %w", err)
		}
		if revoked {
			return Subject{}, ErrTokenRevoked
		}
	}
	return subject, nil
}

// Revoke agrega el token a la denylist hasta su expiración.
func (c *TokenCodec) Revoke(ctx context.Context, subject Subject) error {
	if c.denylist == nil {
		return errors.New("token revocation not configured")
	}
	if subject.TokenID == "" {
		return ErrMalformedToken
	}
	return c.denylist.Revoke(ctx, subject.TokenID, subject.ExpiresAt)
}
