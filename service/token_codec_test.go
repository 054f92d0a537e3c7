// file: service/token_codec_test.go

package service

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go-auth-api/config"
	"go-auth-api/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Algorithm:       "HS256",
		SecretKey:       "test-secret",
		Issuer:          "go-auth-api-test",
		AccessTokenTTL:  5 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func newTestCodec(t *testing.T) *TokenCodec {
	t.Helper()
	codec, err := NewTokenCodec(testJWTConfig())
	require.NoError(t, err)
	return codec
}

// fixedClock returns a clock whose time can be moved by the test.
func fixedClock(start time.Time) (func() time.Time, func(time.Duration)) {
	now := start
	return func() time.Time { return now }, func(d time.Duration) { now = now.Add(d) }
}

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := newTestCodec(t)

	cases := []struct {
		subject int
		typ     model.TokenType
		ttl     time.Duration
	}{
		{1, model.TokenTypeAccess, 5 * time.Minute},
		{42, model.TokenTypeRefresh, 24 * time.Hour},
		{7, model.TokenTypeAccess, time.Nanosecond},
		{1 << 30, model.TokenTypeRefresh, 1500 * time.Millisecond},
	}

	for _, tc := range cases {
		issued, err := codec.Issue(tc.subject, tc.typ, tc.ttl)
		require.NoError(t, err)
		assert.NotEmpty(t, issued.JTI)

		decoded, err := codec.Decode(issued.Raw)
		require.NoError(t, err, "ttl=%s", tc.ttl)
		assert.Equal(t, tc.subject, decoded.Subject)
		assert.Equal(t, tc.typ, decoded.Type)
		assert.Equal(t, issued.JTI, decoded.JTI)
		assert.Equal(t, issued.ExpiresAt, decoded.ExpiresAt)
	}
}

func TestTokenCodec_UniqueJTI(t *testing.T) {
	codec := newTestCodec(t)
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		tok, err := codec.IssueRefresh(1)
		require.NoError(t, err)
		assert.False(t, seen[tok.JTI])
		seen[tok.JTI] = true
	}
}

func TestTokenCodec_Expiry(t *testing.T) {
	codec := newTestCodec(t)

	for _, ttl := range []time.Duration{0, -time.Second, -time.Hour} {
		tok, err := codec.Issue(1, model.TokenTypeAccess, ttl)
		require.NoError(t, err)

		_, err = codec.Decode(tok.Raw)
		assert.ErrorIs(t, err, ErrTokenExpired, "ttl=%s", ttl)
	}

	t.Run("expires once the clock passes exp", func(t *testing.T) {
		now, advance := fixedClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
		codec := newTestCodec(t).WithClock(now)

		tok, err := codec.IssueAccess(3)
		require.NoError(t, err)

		advance(4 * time.Minute)
		_, err = codec.Decode(tok.Raw)
		assert.NoError(t, err)

		advance(time.Minute)
		_, err = codec.Decode(tok.Raw)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestTokenCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t)
	tok, err := codec.IssueRefresh(9)
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := codec.Decode("not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		parts := strings.Split(tok.Raw, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := codec.Decode(parts[0] + "." + parts[1] + "." + string(sig))
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("signed with another key", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.SecretKey = "someone-else"
		forger, err := NewTokenCodec(cfg)
		require.NoError(t, err)

		forged, err := forger.IssueRefresh(9)
		require.NoError(t, err)

		_, err = codec.Decode(forged.Raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired and forged is reported as invalid", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.SecretKey = "someone-else"
		forger, err := NewTokenCodec(cfg)
		require.NoError(t, err)

		forged, err := forger.Issue(9, model.TokenTypeRefresh, -time.Hour)
		require.NoError(t, err)

		_, err = codec.Decode(forged.Raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.NotErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.Issuer = "other-service"
		other, err := NewTokenCodec(cfg)
		require.NoError(t, err)

		foreign, err := other.IssueRefresh(9)
		require.NoError(t, err)

		_, err = codec.Decode(foreign.Raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unexpected algorithm", func(t *testing.T) {
		claims := model.AppClaims{
			UserID:    9,
			TokenType: model.TokenTypeRefresh,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "9",
				Issuer:    "go-auth-api-test",
				ID:        "jti",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = codec.Decode(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown token type", func(t *testing.T) {
		issued, err := codec.Issue(9, model.TokenType("session"), time.Hour)
		require.NoError(t, err)

		_, err = codec.Decode(issued.Raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestTokenCodec_DecodeIgnoringExpiry(t *testing.T) {
	codec := newTestCodec(t)

	expired, err := codec.Issue(5, model.TokenTypeRefresh, -time.Minute)
	require.NoError(t, err)

	tok, err := codec.DecodeIgnoringExpiry(expired.Raw)
	require.NoError(t, err)
	assert.Equal(t, expired.JTI, tok.JTI)
	assert.Equal(t, 5, tok.Subject)

	_, err = codec.DecodeIgnoringExpiry("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodec_EncodingErrors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.SecretKey = ""
		_, err := NewTokenCodec(cfg)
		assert.ErrorIs(t, err, ErrEncoding)
	})

	t.Run("unsupported algorithm", func(t *testing.T) {
		cfg := testJWTConfig()
		cfg.Algorithm = "none"
		_, err := NewTokenCodec(cfg)
		assert.ErrorIs(t, err, ErrEncoding)
	})

	t.Run("signing key unavailable", func(t *testing.T) {
		codec := &TokenCodec{method: jwt.SigningMethodHS256, now: time.Now}
		_, err := codec.IssueAccess(1)
		assert.ErrorIs(t, err, ErrEncoding)
	})
}

func writeRSAKeys(t *testing.T) (privatePath, publicPath string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath = filepath.Join(dir, "private.pem")
	publicPath = filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	require.NoError(t, os.WriteFile(privatePath, privPEM, 0o600))

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})
	require.NoError(t, os.WriteFile(publicPath, pubPEM, 0o600))

	return privatePath, publicPath
}

func TestTokenCodec_RSA(t *testing.T) {
	privatePath, publicPath := writeRSAKeys(t)

	cfg := testJWTConfig()
	cfg.Algorithm = "RS256"
	cfg.SecretKey = ""
	cfg.PrivateKeyPath = privatePath

	signer, err := NewTokenCodec(cfg)
	require.NoError(t, err)

	tok, err := signer.IssueRefresh(12)
	require.NoError(t, err)

	decoded, err := signer.Decode(tok.Raw)
	require.NoError(t, err)
	assert.Equal(t, 12, decoded.Subject)

	t.Run("verify-only codec", func(t *testing.T) {
		cfg := cfg
		cfg.PrivateKeyPath = ""
		cfg.PublicKeyPath = publicPath

		verifier, err := NewTokenCodec(cfg)
		require.NoError(t, err)

		decoded, err := verifier.Decode(tok.Raw)
		require.NoError(t, err)
		assert.Equal(t, tok.JTI, decoded.JTI)

		_, err = verifier.IssueAccess(12)
		assert.ErrorIs(t, err, ErrEncoding, "no private key means no signing")
	})

	t.Run("missing key files", func(t *testing.T) {
		cfg := cfg
		cfg.PrivateKeyPath = filepath.Join(t.TempDir(), "absent.pem")
		_, err := NewTokenCodec(cfg)
		assert.ErrorIs(t, err, ErrEncoding)

		cfg.PrivateKeyPath = ""
		_, err = NewTokenCodec(cfg)
		assert.ErrorIs(t, err, ErrEncoding)
	})
}

func TestTokenCodec_IssuePair(t *testing.T) {
	codec := newTestCodec(t)

	access, refresh, err := codec.IssuePair(3)
	require.NoError(t, err)
	assert.Equal(t, model.TokenTypeAccess, access.Type)
	assert.Equal(t, model.TokenTypeRefresh, refresh.Type)
	assert.NotEqual(t, access.JTI, refresh.JTI)
	assert.True(t, refresh.ExpiresAt.After(access.ExpiresAt))

	_, err = codec.Decode("a.b.c")
	assert.ErrorIs(t, err, ErrTokenMalformed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
