// Package api implements the HTTP client for the Caminho backend: auth,
// content records, and user push preferences.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/time/rate"

	"github.com/caminho-app/caminho/internal/common"
	"github.com/caminho-app/caminho/internal/logging"
)

// refreshLeeway triggers a proactive token refresh shortly before expiry so
// in-flight calls don't burn a round trip on a guaranteed 401.
const refreshLeeway = 30 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	log     logging.Logger

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func New(baseURL string, rps float64, log logging.Logger) *Client {
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)*2),
		log:     log,
	}
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Login authenticates and stores the token pair for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var tokens tokenPair
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", in, &tokens, false); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()
	return nil
}

func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	rt := c.refreshToken
	c.mu.Unlock()
	if rt == "" {
		// Nothing to refresh with; the session is simply over.
		return common.ErrTokenExpired
	}

	var tokens tokenPair
	in := map[string]string{"refreshToken": rt}
	if err := c.do(ctx, http.MethodPost, "/auth/refresh", in, &tokens, false); err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}

	c.mu.Lock()
	c.accessToken = tokens.AccessToken
	c.refreshToken = tokens.RefreshToken
	c.mu.Unlock()
	return nil
}

// UserID returns the subject claim of the current access token, or "" when
// not logged in. The claim is read unverified; it only addresses requests
// that the server authorizes anyway.
func (c *Client) UserID() string {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()
	if token == "" {
		return ""
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return ""
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}

// expiringSoon inspects the unverified exp claim. Signature verification is
// the server's job; the client only wants a cheap freshness hint.
func expiringSoon(token string, within time.Duration) bool {
	if token == "" {
		return false
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return time.Until(exp.Time) < within
}

// call runs an authenticated request, refreshing the token proactively when
// it is about to expire and reactively once on a 401.
func (c *Client) call(ctx context.Context, method, path string, in, out any) error {
	c.mu.Lock()
	token := c.accessToken
	c.mu.Unlock()

	if expiringSoon(token, refreshLeeway) {
		if err := c.refresh(ctx); err != nil {
			c.log.Warn(ctx, "proactive token refresh failed", "error", err)
		}
	}

	err := c.do(ctx, method, path, in, out, true)
	if err == nil || !isUnauthorized(err) {
		return err
	}

	if rerr := c.refresh(ctx); rerr != nil {
		return err
	}
	return c.do(ctx, method, path, in, out, true)
}

func isUnauthorized(err error) bool {
	return errors.Is(err, common.ErrUnauthorized)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		c.mu.Lock()
		token := c.accessToken
		c.mu.Unlock()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(method, path, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

func statusError(method, path string, resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s %s: %w: %s", method, path, common.ErrUnauthorized, strings.TrimSpace(string(msg)))
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, common.ErrNotFound)
	default:
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}
