package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/angelmondragon/pressreach-backend/pkg/config"
	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
)

const (
	jwksPath         = "/.well-known/jwks.json"
	maxJWKSBodyBytes = 1 << 20
	defaultCacheTTL  = time.Hour
)

var (
	// ErrInvalidToken is returned for every token that fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotConfigured is returned by NewVerifier when the Clerk secret is missing.
	ErrNotConfigured = errors.New("clerk secret key is not configured")
	// ErrNoIssuers is returned by NewVerifier when no trusted issuer is configured.
	ErrNoIssuers = errors.New("clerk allowed issuers are not configured")
)

var signingMethods = []string{jwt.SigningMethodRS256.Alg()}

// Verifier validates Clerk session tokens against the JWKS published by the
// token issuer.
type Verifier struct {
	allowed  map[string]struct{}
	cacheTTL time.Duration
	client   *http.Client
	now      func() time.Time

	mu   sync.RWMutex
	sets map[string]cachedSet
}

type cachedSet struct {
	keys      jose.JSONWebKeySet
	fetchedAt time.Time
}

// Option customises a Verifier.
type Option func(*Verifier)

// WithHTTPClient overrides the client used to fetch JWKS documents.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) {
		if c != nil {
			v.client = c
		}
	}
}

// WithClock overrides the time source used for cache expiry and exp checks.
func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

// NewVerifier builds a verifier from the Clerk configuration. Only tokens
// from the configured issuers are accepted, so at least one is required.
func NewVerifier(cfg config.ClerkConfig, opts ...Option) (*Verifier, error) {
	if strings.TrimSpace(cfg.SecretKey) == "" {
		return nil, ErrNotConfigured
	}

	v := &Verifier{
		allowed:  make(map[string]struct{}, len(cfg.AllowedIssuers)),
		cacheTTL: cfg.JWKSCacheTTL,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
		sets:     make(map[string]cachedSet),
	}
	if v.cacheTTL <= 0 {
		v.cacheTTL = defaultCacheTTL
	}
	for _, iss := range cfg.AllowedIssuers {
		iss = normalizeIssuer(iss)
		if iss != "" {
			v.allowed[iss] = struct{}{}
		}
	}
	if len(v.allowed) == 0 {
		return nil, ErrNoIssuers
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// Verify checks the RS256 signature and expiry of the token and returns the
// caller principal. The audience is not checked.
func (v *Verifier) Verify(ctx context.Context, token string) (Principal, error) {
	unverified := &ClerkClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, unverified); err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	issuer, err := v.checkIssuer(unverified.Issuer)
	if err != nil {
		return Principal{}, err
	}
	jwksURL := issuer + jwksPath

	claims := &ClerkClaims{}
	_, err = jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			kid, _ := t.Header["kid"].(string)
			return v.key(ctx, jwksURL, kid)
		},
		jwt.WithValidMethods(signingMethods),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(unverified.Issuer),
		jwt.WithTimeFunc(v.now),
	)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Principal{}, fmt.Errorf("%w: missing sub", ErrInvalidToken)
	}

	return principalFrom(claims), nil
}

func (v *Verifier) checkIssuer(raw string) (string, error) {
	issuer := normalizeIssuer(raw)
	if issuer == "" {
		return "", fmt.Errorf("%w: missing iss", ErrInvalidToken)
	}
	u, err := url.Parse(issuer)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: issuer must be an https url", ErrInvalidToken)
	}
	if _, ok := v.allowed[issuer]; !ok {
		return "", fmt.Errorf("%w: issuer %q not allowed", ErrInvalidToken, issuer)
	}
	return issuer, nil
}

// key resolves the signing key by kid, refetching the set once when the kid is
// unknown so rotated keys are picked up before the cache expires.
func (v *Verifier) key(ctx context.Context, jwksURL, kid string) (interface{}, error) {
	set, err := v.keySet(ctx, jwksURL, false)
	if err != nil {
		return nil, err
	}
	if k, ok := lookup(set, kid); ok {
		return k, nil
	}

	set, err = v.keySet(ctx, jwksURL, true)
	if err != nil {
		return nil, err
	}
	if k, ok := lookup(set, kid); ok {
		return k, nil
	}
	return nil, fmt.Errorf("signing key %q not found", kid)
}

func lookup(set jose.JSONWebKeySet, kid string) (interface{}, bool) {
	var keys []jose.JSONWebKey
	if kid == "" {
		keys = set.Keys
	} else {
		keys = set.Key(kid)
	}
	for _, k := range keys {
		if !k.Valid() || !k.IsPublic() {
			continue
		}
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		return k.Key, true
	}
	return nil, false
}

func (v *Verifier) keySet(ctx context.Context, jwksURL string, force bool) (jose.JSONWebKeySet, error) {
	if !force {
		v.mu.RLock()
		cached, ok := v.sets[jwksURL]
		v.mu.RUnlock()
		if ok && v.now().Sub(cached.fetchedAt) < v.cacheTTL {
			return cached.keys, nil
		}
	}

	set, err := v.fetch(ctx, jwksURL)
	if err != nil {
		return jose.JSONWebKeySet{}, err
	}

	v.mu.Lock()
	v.sets[jwksURL] = cachedSet{keys: set, fetchedAt: v.now()}
	v.mu.Unlock()
	return set, nil
}

func (v *Verifier) fetch(ctx context.Context, jwksURL string) (jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURL, nil)
	if err != nil {
		return jose.JSONWebKeySet{}, fmt.Errorf("build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return jose.JSONWebKeySet{}, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return jose.JSONWebKeySet{}, fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var set jose.JSONWebKeySet
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBodyBytes)).Decode(&set); err != nil {
		return jose.JSONWebKeySet{}, fmt.Errorf("decode jwks: %w", err)
	}
	return set, nil
}

func normalizeIssuer(iss string) string {
	return strings.TrimRight(strings.TrimSpace(iss), "/")
}
