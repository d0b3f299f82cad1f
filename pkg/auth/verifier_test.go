package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jwksServer struct {
	*httptest.Server
	mu       sync.Mutex
	keys     map[string]*rsa.PrivateKey
	requests atomic.Int32
}

func newJWKSServer(t *testing.T) *jwksServer {
	t.Helper()
	s := &jwksServer{keys: map[string]*rsa.PrivateKey{}}
	s.Server = httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != jwksPath {
			http.NotFound(w, r)
			return
		}
		s.requests.Add(1)

		s.mu.Lock()
		set := jose.JSONWebKeySet{}
		for kid, key := range s.keys {
			set.Keys = append(set.Keys, jose.JSONWebKey{
				Key:       &key.PublicKey,
				KeyID:     kid,
				Algorithm: string(jose.RS256),
				Use:       "sig",
			})
		}
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) addKey(t *testing.T, kid string) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	s.mu.Lock()
	s.keys[kid] = key
	s.mu.Unlock()
	return key
}

func sign(t *testing.T, key *rsa.PrivateKey, kid string, claims ClerkClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tok.Header["kid"] = kid
	signed, err := tok.SignedString(key)
	require.NoError(t, err)
	return signed
}

func validClaims(issuer string) ClerkClaims {
	now := time.Now()
	return ClerkClaims{
		Email:     "ivan@acme.test",
		FirstName: "Ivan",
		LastName:  "Petrov",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "user_2abc",
			Audience:  jwt.ClaimStrings{"some-other-audience"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func newTestVerifier(t *testing.T, srv *jwksServer, cfg config.ClerkConfig) *Verifier {
	t.Helper()
	if cfg.SecretKey == "" {
		cfg.SecretKey = "sk_test"
	}
	if cfg.AllowedIssuers == nil {
		cfg.AllowedIssuers = []string{srv.URL}
	}
	v, err := NewVerifier(cfg, WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return v
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier(config.ClerkConfig{AllowedIssuers: []string{"https://clerk.acme.test"}})
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestNewVerifierRequiresIssuers(t *testing.T) {
	_, err := NewVerifier(config.ClerkConfig{SecretKey: "sk_test"})
	require.ErrorIs(t, err, ErrNoIssuers)

	_, err = NewVerifier(config.ClerkConfig{SecretKey: "sk_test", AllowedIssuers: []string{" ", ""}})
	require.ErrorIs(t, err, ErrNoIssuers)
}

func TestVerifyRejectsSelfHostedIssuer(t *testing.T) {
	trusted := newJWKSServer(t)
	trusted.addKey(t, "k1")
	forged := newJWKSServer(t)
	forgedKey := forged.addKey(t, "k1")

	v := newTestVerifier(t, trusted, config.ClerkConfig{})
	claims := validClaims(forged.URL)
	claims.Subject = "user_victim"

	_, err := v.Verify(context.Background(), sign(t, forgedKey, "k1", claims))
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.Zero(t, forged.requests.Load())
	assert.Zero(t, trusted.requests.Load())
}

func TestVerifyValidToken(t *testing.T) {
	srv := newJWKSServer(t)
	key := srv.addKey(t, "k1")
	v := newTestVerifier(t, srv, config.ClerkConfig{})

	p, err := v.Verify(context.Background(), sign(t, key, "k1", validClaims(srv.URL)))
	require.NoError(t, err)
	assert.Equal(t, Principal{Subject: "user_2abc", Email: "ivan@acme.test", FirstName: "Ivan", LastName: "Petrov"}, p)
}

func TestVerifyTrailingSlashIssuer(t *testing.T) {
	srv := newJWKSServer(t)
	key := srv.addKey(t, "k1")
	v := newTestVerifier(t, srv, config.ClerkConfig{})

	_, err := v.Verify(context.Background(), sign(t, key, "k1", validClaims(srv.URL+"/")))
	require.NoError(t, err)
}

func TestVerifyRejections(t *testing.T) {
	srv := newJWKSServer(t)
	key := srv.addKey(t, "k1")
	other, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	expired := validClaims(srv.URL)
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noExp := validClaims(srv.URL)
	noExp.ExpiresAt = nil

	noSub := validClaims(srv.URL)
	noSub.Subject = ""

	plainHTTP := validClaims("http://clerk.example.com")

	hs := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(srv.URL))
	hs.Header["kid"] = "k1"
	hsToken, err := hs.SignedString([]byte("secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"garbage":        "not-a-jwt",
		"expired":        sign(t, key, "k1", expired),
		"missing exp":    sign(t, key, "k1", noExp),
		"missing sub":    sign(t, key, "k1", noSub),
		"http issuer":    sign(t, key, "k1", plainHTTP),
		"wrong key":      sign(t, other, "k1", validClaims(srv.URL)),
		"unknown kid":    sign(t, other, "k9", validClaims(srv.URL)),
		"hs256 rejected": hsToken,
	}

	v := newTestVerifier(t, srv, config.ClerkConfig{})
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			require.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyIssuerAllowList(t *testing.T) {
	srv := newJWKSServer(t)
	key := srv.addKey(t, "k1")

	v := newTestVerifier(t, srv, config.ClerkConfig{AllowedIssuers: []string{"https://clerk.acme.test"}})
	_, err := v.Verify(context.Background(), sign(t, key, "k1", validClaims(srv.URL)))
	require.ErrorIs(t, err, ErrInvalidToken)
	assert.Zero(t, srv.requests.Load(), "jwks must not be fetched for a foreign issuer")

	v = newTestVerifier(t, srv, config.ClerkConfig{AllowedIssuers: []string{srv.URL + "/"}})
	_, err = v.Verify(context.Background(), sign(t, key, "k1", validClaims(srv.URL)))
	require.NoError(t, err)
}

func TestVerifyCachesKeySet(t *testing.T) {
	srv := newJWKSServer(t)
	key := srv.addKey(t, "k1")
	v := newTestVerifier(t, srv, config.ClerkConfig{})

	for i := 0; i < 3; i++ {
		_, err := v.Verify(context.Background(), sign(t, key, "k1", validClaims(srv.URL)))
		require.NoError(t, err)
	}
	assert.EqualValues(t, 1, srv.requests.Load())
}

func TestVerifyRefetchesOnUnknownKid(t *testing.T) {
	srv := newJWKSServer(t)
	first := srv.addKey(t, "k1")
	v := newTestVerifier(t, srv, config.ClerkConfig{})

	_, err := v.Verify(context.Background(), sign(t, first, "k1", validClaims(srv.URL)))
	require.NoError(t, err)

	rotated := srv.addKey(t, "k2")
	_, err = v.Verify(context.Background(), sign(t, rotated, "k2", validClaims(srv.URL)))
	require.NoError(t, err)
	assert.EqualValues(t, 2, srv.requests.Load())
}

func TestVerifyCacheExpires(t *testing.T) {
	srv := newJWKSServer(t)
	key := srv.addKey(t, "k1")

	now := time.Now()
	v, err := NewVerifier(
		config.ClerkConfig{SecretKey: "sk_test", AllowedIssuers: []string{srv.URL}, JWKSCacheTTL: time.Minute},
		WithHTTPClient(srv.Client()),
		WithClock(func() time.Time { return now }),
	)
	require.NoError(t, err)

	token := sign(t, key, "k1", validClaims(srv.URL))
	_, err = v.Verify(context.Background(), token)
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.EqualValues(t, 2, srv.requests.Load())
}
