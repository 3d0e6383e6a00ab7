package hotel

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/roseate/go-payments-backend/internal/config"
)

// newTokenServer returns a test OAuth endpoint counting login calls.
func newTokenServer(t *testing.T, expiresIn int64, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/v1/tokens" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-app-key") != "appkey" {
			t.Errorf("missing x-app-key header")
		}
		if r.Header.Get("enterpriseId") != "ENT1" {
			t.Errorf("missing enterpriseId header")
		}
		if user, pass, ok := r.BasicAuth(); !ok || user != "client" || pass != "secret" {
			t.Errorf("bad basic auth %q/%q", user, pass)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			t.Errorf("bad grant_type form body")
		}
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok-1","expires_in":` + strconv.FormatInt(expiresIn, 10) + `,"token_type":"Bearer"}`))
	}))
}

func testHotelConfig(baseURL string) config.HotelConfig {
	return config.HotelConfig{
		BaseURL:           baseURL,
		ClientID:          "client",
		ClientSecret:      "secret",
		AppKey:            "appkey",
		EnterpriseID:      "ENT1",
		TokenSafetyMargin: 60 * time.Second,
		CashierID:         "1",
	}
}

func TestToken_SingleFlight(t *testing.T) {
	var calls atomic.Int64
	srv := newTokenServer(t, 3600, &calls)
	defer srv.Close()

	ts := NewTokenSource(testHotelConfig(srv.URL), srv.Client())

	const n = 20
	var wg sync.WaitGroup
	tokens := make([]string, n)
	errs := make([]error, n)
	// Hold all goroutines at a gate so they contend for the first refresh.
	gate := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-gate
			tokens[i], errs[i] = ts.Token(context.Background())
		}(i)
	}
	close(gate)
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if tokens[i] != "tok-1" {
			t.Fatalf("caller %d got token %q; want tok-1", i, tokens[i])
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("login calls = %d; want exactly 1", got)
	}
}

func TestToken_ReuseWhileValid(t *testing.T) {
	var calls atomic.Int64
	srv := newTokenServer(t, 3600, &calls)
	defer srv.Close()

	ts := NewTokenSource(testHotelConfig(srv.URL), srv.Client())

	for i := 0; i < 5; i++ {
		if _, err := ts.Token(context.Background()); err != nil {
			t.Fatalf("Token: %v", err)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("login calls = %d; want 1 (cached reuse)", got)
	}
}

func TestToken_ExpirySafetyMargin(t *testing.T) {
	var calls atomic.Int64
	srv := newTokenServer(t, 3600, &calls)
	defer srv.Close()

	ts := NewTokenSource(testHotelConfig(srv.URL), srv.Client())

	base := time.Now()
	now := base
	ts.now = func() time.Time { return now }

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}

	// 3539s after issuance the token is still usable.
	now = base.Add(3539 * time.Second)
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token before margin: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("login calls = %d; want 1 before the margin", got)
	}

	// At 3540s (lifetime minus 60s margin) it must be treated as expired.
	now = base.Add(3540 * time.Second)
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token after margin: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("login calls = %d; want refresh at the margin boundary", got)
	}
}

func TestToken_Clear(t *testing.T) {
	var calls atomic.Int64
	srv := newTokenServer(t, 3600, &calls)
	defer srv.Close()

	ts := NewTokenSource(testHotelConfig(srv.URL), srv.Client())

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token: %v", err)
	}
	ts.Clear()
	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("Token after Clear: %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("login calls = %d; want 2 after Clear", got)
	}
}

func TestToken_LoginFailurePropagatesAndRetries(t *testing.T) {
	var calls atomic.Int64
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"access_token":"tok-2","expires_in":3600}`))
	}))
	defer srv.Close()

	ts := NewTokenSource(testHotelConfig(srv.URL), srv.Client())

	if _, err := ts.Token(context.Background()); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v; want ErrAuthentication", err)
	}

	// The failed flight must not be sticky: the next call retries.
	fail = false
	tok, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("Token after failure: %v", err)
	}
	if tok != "tok-2" {
		t.Fatalf("token = %q; want tok-2", tok)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("login calls = %d; want 2", got)
	}
}

func TestToken_CallerCancelMidExchangeStillResolves(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The caller driving the exchange gives up while the login is in
		// flight; the exchange must complete for the cohort regardless.
		cancel()
		w.Write([]byte(`{"access_token":"tok-3","expires_in":3600}`))
	}))
	defer srv.Close()

	ts := NewTokenSource(testHotelConfig(srv.URL), srv.Client())

	tok, err := ts.Token(ctx)
	if err != nil {
		t.Fatalf("Token with cancelled driver ctx: %v", err)
	}
	if tok != "tok-3" {
		t.Fatalf("token = %q; want tok-3", tok)
	}

	// The result was cached; a fresh caller reuses it without logging in.
	tok2, err := ts.Token(context.Background())
	if err != nil || tok2 != "tok-3" {
		t.Fatalf("cached reuse after detached exchange: tok=%q err=%v", tok2, err)
	}
}
