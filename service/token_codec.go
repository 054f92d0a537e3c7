// file: service/token_codec.go

package service

import (
	"errors"
	"fmt"
	"go-auth-api/config"
	"go-auth-api/logger"
	"go-auth-api/model"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token is a decoded, signature-verified credential.
type Token struct {
	Raw       string
	Subject   int
	Type      model.TokenType
	JTI       string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec signs and verifies access and refresh tokens. Key material is
// fixed at construction; a codec built from a public key alone can only verify.
type TokenCodec struct {
	method     jwt.SigningMethod
	signKey    interface{}
	verifyKey  interface{}
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenCodec loads the signing configuration once. HMAC algorithms use
// SecretKey; RSA algorithms read PEM files from PrivateKeyPath/PublicKeyPath.
func NewTokenCodec(cfg config.JWTConfig) (*TokenCodec, error) {
	method := jwt.GetSigningMethod(strings.ToUpper(cfg.Algorithm))
	if method == nil {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrEncoding, cfg.Algorithm)
	}

	c := &TokenCodec{
		method:     method,
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		now:        time.Now,
	}

	switch method.(type) {
	case *jwt.SigningMethodHMAC:
		if cfg.SecretKey == "" {
			return nil, fmt.Errorf("%w: jwt secret key is not configured", ErrEncoding)
		}
		c.signKey = []byte(cfg.SecretKey)
		c.verifyKey = c.signKey
	case *jwt.SigningMethodRSA:
		if err := c.loadRSAKeys(cfg.PrivateKeyPath, cfg.PublicKeyPath); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrEncoding, cfg.Algorithm)
	}

	return c, nil
}

func (c *TokenCodec) loadRSAKeys(privatePath, publicPath string) error {
	if privatePath == "" && publicPath == "" {
		return fmt.Errorf("%w: rsa key paths are not configured", ErrEncoding)
	}

	if privatePath != "" {
		pemBytes, err := os.ReadFile(privatePath)
		if err != nil {
			return fmt.Errorf("%w: read private key: %v", ErrEncoding, err)
		}
		key, err := jwt.ParseRSAPrivateKeyFromPEM(pemBytes)
		if err != nil {
			return fmt.Errorf("%w: parse private key: %v", ErrEncoding, err)
		}
		c.signKey = key
		c.verifyKey = &key.PublicKey
	}

	if publicPath != "" {
		pemBytes, err := os.ReadFile(publicPath)
		if err != nil {
			return fmt.Errorf("%w: read public key: %v", ErrEncoding, err)
		}
		key, err := jwt.ParseRSAPublicKeyFromPEM(pemBytes)
		if err != nil {
			return fmt.Errorf("%w: parse public key: %v", ErrEncoding, err)
		}
		c.verifyKey = key
	}

	return nil
}

// WithClock replaces the time source; used to pin time in tests.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	c.now = now
	return c
}

func (c *TokenCodec) RefreshTTL() time.Duration { return c.refreshTTL }

// expiryFor rounds a positive lifetime up to whole seconds, the resolution of
// the exp claim, so that a token is never born expired. Non-positive lifetimes
// produce a token that is already expired.
func expiryFor(now time.Time, ttl time.Duration) time.Time {
	exp := now.Add(ttl).Truncate(time.Second)
	if ttl > 0 && !exp.After(now) {
		exp = exp.Add(time.Second)
	}
	return exp
}

// Issue signs a new token for subject with a fresh jti.
func (c *TokenCodec) Issue(subject int, tokenType model.TokenType, ttl time.Duration) (*Token, error) {
	now := c.now()
	exp := expiryFor(now, ttl)
	jti := uuid.NewString()

	claims := model.AppClaims{
		UserID:    subject,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(subject),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        jti,
		},
	}

	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.signKey)
	if err != nil {
		logger.Log.WithError(err).WithField("user_id", subject).Error("Failed to sign JWT")
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	return &Token{
		Raw:       signed,
		Subject:   subject,
		Type:      tokenType,
		JTI:       jti,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssueAccess and IssueRefresh use the configured lifetimes.
func (c *TokenCodec) IssueAccess(subject int) (*Token, error) {
	return c.Issue(subject, model.TokenTypeAccess, c.accessTTL)
}

func (c *TokenCodec) IssueRefresh(subject int) (*Token, error) {
	return c.Issue(subject, model.TokenTypeRefresh, c.refreshTTL)
}

// IssuePair signs an access and a refresh token for subject.
func (c *TokenCodec) IssuePair(subject int) (access, refresh *Token, err error) {
	if access, err = c.IssueAccess(subject); err != nil {
		return nil, nil, err
	}
	if refresh, err = c.IssueRefresh(subject); err != nil {
		return nil, nil, err
	}
	return access, refresh, nil
}

// Decode verifies signature, algorithm, issuer and expiry. It returns
// ErrTokenExpired for an authentic but expired token and ErrTokenMalformed
// for anything else that fails verification.
func (c *TokenCodec) Decode(tokenString string) (*Token, error) {
	opts := []jwt.ParserOption{
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}
	return c.parse(tokenString, opts...)
}

// DecodeIgnoringExpiry verifies the signature but accepts expired tokens.
// Logout uses it to identify the token being revoked.
func (c *TokenCodec) DecodeIgnoringExpiry(tokenString string) (*Token, error) {
	return c.parse(tokenString, jwt.WithoutClaimsValidation())
}

func (c *TokenCodec) parse(tokenString string, opts ...jwt.ParserOption) (*Token, error) {
	if c.verifyKey == nil {
		return nil, fmt.Errorf("%w: no verification key", ErrEncoding)
	}

	claims := &model.AppClaims{}
	opts = append(opts, jwt.WithValidMethods([]string{c.method.Alg()}))

	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.verifyKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	return tokenFromClaims(tokenString, claims)
}

func tokenFromClaims(raw string, claims *model.AppClaims) (*Token, error) {
	if claims.TokenType != model.TokenTypeAccess && claims.TokenType != model.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: unknown token type %q", ErrTokenMalformed, claims.TokenType)
	}
	if claims.ID == "" {
		return nil, fmt.Errorf("%w: missing jti", ErrTokenMalformed)
	}
	if sub, err := strconv.Atoi(claims.Subject); err != nil || sub != claims.UserID {
		return nil, fmt.Errorf("%w: subject mismatch", ErrTokenMalformed)
	}

	t := &Token{
		Raw:     raw,
		Subject: claims.UserID,
		Type:    claims.TokenType,
		JTI:     claims.ID,
	}
	if claims.IssuedAt != nil {
		t.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		t.ExpiresAt = claims.ExpiresAt.Time
	}
	return t, nil
}
