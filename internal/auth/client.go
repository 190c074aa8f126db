// Package auth is a client for the hosted authentication provider:
// password sign-in, sign-up, one-time-code verification, and session
// observation. The provider remains the verifier of record; tokens are
// decoded client-side only to read the identity claims.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	holder  *Holder
}

func NewClient(baseURL, apiKey string, holder *Holder) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 15 * time.Second},
		holder:  holder,
	}
}

// Holder exposes the session holder for injection into dependents.
func (c *Client) Holder() *Holder { return c.holder }

type providerError struct {
	Message     string `json:"message"`
	Msg         string `json:"msg"`
	Description string `json:"error_description"`
	ErrorCode   string `json:"error"`
}

// Error carries the provider's message verbatim; the UI shows it as-is.
type Error struct {
	Message string
	Status  int
}

func (e *Error) Error() string { return e.Message }

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	User         User   `json:"user"`
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode auth request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/v1"+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build auth request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if s := c.holder.Current(); s != nil {
		req.Header.Set("Authorization", "Bearer "+s.AccessToken)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var pe providerError
		_ = json.Unmarshal(raw, &pe)
		msg := pe.Message
		if msg == "" {
			msg = pe.Msg
		}
		if msg == "" {
			msg = pe.Description
		}
		if msg == "" {
			msg = resp.Status
		}
		return &Error{Message: msg, Status: resp.StatusCode}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode auth response: %w", err)
		}
	}
	return nil
}

func (c *Client) adopt(tr tokenResponse) (*Session, error) {
	s := &Session{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresAt:    time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second),
		User:         tr.User,
	}
	// Fill identity from the token claims when the provider omits the
	// user object.
	if s.User.ID == "" && tr.AccessToken != "" {
		claims, err := parseClaims(tr.AccessToken)
		if err != nil {
			return nil, err
		}
		s.User = claims.user()
		if !claims.expiry().IsZero() {
			s.ExpiresAt = claims.expiry()
		}
	}
	c.holder.Set(s)
	return s, nil
}

// SignIn authenticates with email and password.
func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var tr tokenResponse
	err := c.post(ctx, "/token?grant_type=password", map[string]string{
		"email": email, "password": password,
	}, &tr)
	if err != nil {
		return nil, err
	}
	return c.adopt(tr)
}

// SignUp registers a new account. Depending on provider settings the
// reply may or may not carry a session (email confirmation pending).
func (c *Client) SignUp(ctx context.Context, email, password, fullName string) (*Session, error) {
	body := map[string]any{"email": email, "password": password}
	if fullName != "" {
		body["data"] = map[string]string{"full_name": fullName}
	}
	var tr tokenResponse
	if err := c.post(ctx, "/signup", body, &tr); err != nil {
		return nil, err
	}
	if tr.AccessToken == "" {
		return nil, nil
	}
	return c.adopt(tr)
}

// VerifyOTP redeems a one-time code sent to the email.
func (c *Client) VerifyOTP(ctx context.Context, email, code string) (*Session, error) {
	var tr tokenResponse
	err := c.post(ctx, "/verify", map[string]string{
		"type": "email", "email": email, "token": code,
	}, &tr)
	if err != nil {
		return nil, err
	}
	return c.adopt(tr)
}

// ResendOTP asks the provider to send a fresh one-time code.
func (c *Client) ResendOTP(ctx context.Context, email string) error {
	return c.post(ctx, "/resend", map[string]string{
		"type": "signup", "email": email,
	}, nil)
}

// SignOut revokes the session server-side and clears the holder. The
// holder is cleared even when revocation fails; the tokens are gone
// from this process either way.
func (c *Client) SignOut(ctx context.Context) error {
	err := c.post(ctx, "/logout", map[string]string{}, nil)
	c.holder.Set(nil)
	return err
}

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

func (sc sessionClaims) user() User {
	return User{ID: sc.Subject, Email: sc.Email}
}

func (sc sessionClaims) expiry() time.Time {
	if sc.ExpiresAt == nil {
		return time.Time{}
	}
	return sc.ExpiresAt.Time
}

// parseClaims decodes the access token without verifying the signature;
// verification is the backend's job, the client only needs the subject
// and expiry.
func parseClaims(token string) (sessionClaims, error) {
	var claims sessionClaims
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return sessionClaims{}, fmt.Errorf("parse access token: %w", err)
	}
	return claims, nil
}
