// Package auth holds the stateless credential primitives: bcrypt password
// hashing, the HS256 access token codec and refresh token generation.
package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/motek/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultAccessTokenTTL is the lifetime of an access token unless configured.
const DefaultAccessTokenTTL = 24 * time.Hour

// Claims are the access token claims. Subject carries the user ID; the
// email is never embedded.
type Claims struct {
	jwt.RegisteredClaims
	Platform string `json:"platform"`
}

// Codec issues and verifies HS256 access tokens with one shared secret.
type Codec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

type Option func(*Codec)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

func NewCodec(secret []byte, ttl time.Duration, opts ...Option) *Codec {
	if ttl <= 0 {
		ttl = DefaultAccessTokenTTL
	}

	c := &Codec{secret: secret, ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(c.now),
	)

	return c
}

// TTL is the lifetime given to issued tokens.
func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subject on platform, expiring TTL from now.
func (c *Codec) Issue(subject, platform string) (string, error) {
	now := c.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Platform: platform,
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}

	return signed, nil
}

// Verify checks signature, algorithm and expiry and returns the claims.
// Errors are common.ErrTokenExpired, common.ErrTokenSignatureInvalid or
// common.ErrTokenMalformed, all matching common.ErrInvalidToken.
//
// The MAC is checked before the header or claims are decoded, so a change
// to any byte of an issued token is a signature mismatch.
func (c *Codec) Verify(tokenString string) (*Claims, error) {
	if err := c.checkSignature(tokenString); err != nil {
		return nil, err
	}

	claims := &Claims{}

	_, err := c.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, common.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, common.ErrTokenSignatureInvalid
		default:
			return nil, fmt.Errorf("%w (%v)", common.ErrTokenMalformed, err)
		}
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w (missing subject)", common.ErrTokenMalformed)
	}

	return claims, nil
}

// checkSignature verifies the HS256 MAC over everything before the last dot.
func (c *Codec) checkSignature(tokenString string) error {
	dot := strings.LastIndexByte(tokenString, '.')
	if dot <= 0 {
		return fmt.Errorf("%w (not a signed token)", common.ErrTokenMalformed)
	}

	sig, err := base64.RawURLEncoding.Strict().DecodeString(tokenString[dot+1:])
	if err != nil {
		return common.ErrTokenSignatureInvalid
	}

	if err := jwt.SigningMethodHS256.Verify(tokenString[:dot], sig, c.secret); err != nil {
		return common.ErrTokenSignatureInvalid
	}
	return nil
}
