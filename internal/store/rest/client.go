// Package rest implements the store ports against a PostgREST-style
// hosted row API (Supabase and compatibles).
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"masarify/internal/store"
)

const (
	recordsTable  = "records"
	profilesTable = "profiles"

	// isoLayout matches the millisecond ISO form the backend stores.
	isoLayout = "2006-01-02T15:04:05.000Z"
)

// TokenSource yields the current bearer token, or "" when no session
// is active.
type TokenSource func() string

type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	token   TokenSource
}

// New builds a client for the hosted store at baseURL. token may be nil
// for anonymous access; the API key is then used as the bearer.
func New(baseURL, apiKey string, token TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      &http.Client{Timeout: 15 * time.Second},
		token:   token,
	}
}

// backendError mirrors the error payload shapes the backend produces.
type backendError struct {
	Message     string `json:"message"`
	Msg         string `json:"msg"`
	ErrorField  string `json:"error"`
	Description string `json:"error_description"`
}

func (e backendError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Msg != "":
		return e.Msg
	case e.Description != "":
		return e.Description
	default:
		return e.ErrorField
	}
}

// do issues one request against /rest/v1/<table> and decodes the reply
// into out when out is non-nil. Non-2xx replies become a *store.Error
// carrying the backend's message.
func (c *Client) do(ctx context.Context, op, method, table string, query url.Values, prefer string, body, out any) error {
	u := c.baseURL + "/rest/v1/" + table
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return wrap(op, 0, "", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return wrap(op, 0, "", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return wrap(op, 0, "", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrap(op, resp.StatusCode, "", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var be backendError
		_ = json.Unmarshal(raw, &be)
		msg := be.text()
		if msg == "" {
			msg = resp.Status
		}
		return wrap(op, resp.StatusCode, msg, nil)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return wrap(op, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
		}
	}
	return nil
}

func (c *Client) bearer() string {
	if c.token != nil {
		if t := c.token(); t != "" {
			return t
		}
	}
	return c.apiKey
}

// localISO renders t as an ISO string shifted to the local wall clock,
// so the stored creation timestamp matches the time the user saw when
// adding the record, independent of the server clock's zone.
func localISO(t time.Time) string {
	_, offset := t.Zone()
	return t.UTC().Add(time.Duration(offset) * time.Second).Format(isoLayout)
}

// nowUTCISO stamps updates: plain UTC at call time.
func nowUTCISO() string {
	return time.Now().UTC().Format(isoLayout)
}

func wrap(op string, status int, message string, err error) *store.Error {
	return &store.Error{Op: op, Message: message, Status: status, Err: err}
}
