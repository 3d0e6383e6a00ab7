// Package hotel – TokenSource
//
// This file implements the cached OAuth token source for the PMS API. Tokens
// are obtained through a client-credential exchange, cached in memory, and
// refreshed proactively before their declared expiry (a safety margin is
// subtracted so a token handed to a caller is never about to lapse mid-use).
//
// Refreshes are single-flight: when the cache is empty or stale, concurrent
// callers collapse into one login request and all observe the same token or
// the same error. The singleflight group forgets the key once the call
// resolves, so a failed login does not wedge subsequent attempts.
package hotel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/roseate/go-payments-backend/internal/config"
)

// tokenScope is the OPERA Cloud scope requested on every token exchange.
const tokenScope = "urn:opc:hgbu:ws:__myscopes__"

// TokenSource acquires and caches PMS access tokens. It is safe for
// concurrent use; the cache is the only mutable state shared across
// in-flight webhook requests.
type TokenSource struct {
	cfg  config.HotelConfig
	http *http.Client

	// now is a seam for expiry tests.
	now func() time.Time

	mu     sync.Mutex
	token  string
	expiry time.Time

	flight singleflight.Group
}

// NewTokenSource constructs a TokenSource. A nil client falls back to a
// default with a 30s timeout.
func NewTokenSource(cfg config.HotelConfig, client *http.Client) *TokenSource {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &TokenSource{cfg: cfg, http: client, now: time.Now}
}

// Token returns a valid access token, refreshing it when the cached one is
// absent or past its safety-adjusted expiry. Concurrent callers needing a
// refresh share a single login request.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := ts.cached(); ok {
		return tok, nil
	}
	v, err, _ := ts.flight.Do("login", func() (interface{}, error) {
		// A waiter that lost the race may find the cache already refreshed.
		if tok, ok := ts.cached(); ok {
			return tok, nil
		}
		// The exchange serves every coalesced waiter, so it must not die with
		// the one caller whose ctx happens to drive it. The HTTP client's own
		// timeout still bounds the request.
		return ts.login(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Clear forcibly invalidates the cached token. It is called after the PMS
// reports an authorization failure so the next Token call logs in afresh.
func (ts *TokenSource) Clear() {
	ts.mu.Lock()
	ts.token = ""
	ts.expiry = time.Time{}
	ts.mu.Unlock()
}

// cached returns the token when it is present and not yet expired.
func (ts *TokenSource) cached() (string, bool) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if ts.token != "" && ts.now().Before(ts.expiry) {
		return ts.token, true
	}
	return "", false
}

// tokenResponse is the subset of the OAuth response the cache needs.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"` // seconds
}

// login performs one client-credential exchange and stores the result.
func (ts *TokenSource) login(ctx context.Context) (string, error) {
	form := url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {tokenScope},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		ts.cfg.BaseURL+"/oauth/v1/tokens", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("x-app-key", ts.cfg.AppKey)
	req.Header.Set("enterpriseId", ts.cfg.EnterpriseID)
	req.SetBasicAuth(ts.cfg.ClientID, ts.cfg.ClientSecret)

	resp, err := ts.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Warn().Int("status", resp.StatusCode).Msg("hotel api login failed")
		return "", fmt.Errorf("%w: status %d", ErrAuthentication, resp.StatusCode)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil || tr.AccessToken == "" {
		return "", fmt.Errorf("%w: malformed token response", ErrAuthentication)
	}

	lifetime := time.Duration(tr.ExpiresIn) * time.Second
	ts.mu.Lock()
	ts.token = tr.AccessToken
	ts.expiry = ts.now().Add(lifetime - ts.cfg.TokenSafetyMargin)
	ts.mu.Unlock()

	log.Debug().Dur("lifetime", lifetime).Msg("hotel api login successful, token cached")
	return tr.AccessToken, nil
}
