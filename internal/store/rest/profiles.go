package rest

import (
	"context"
	"net/http"
	"net/url"

	"masarify/internal/core"
)

func (c *Client) GetProfile(ctx context.Context, ownerID string) (core.Profile, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("id", "eq."+ownerID)

	var profiles []core.Profile
	if err := c.do(ctx, "fetch profile", http.MethodGet, profilesTable, q, "", nil, &profiles); err != nil {
		return core.Profile{}, err
	}
	if len(profiles) == 0 {
		return core.Profile{}, wrap("fetch profile", http.StatusNotFound, "profile not found", nil)
	}
	return profiles[0], nil
}

func (c *Client) CreateProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	now := nowUTCISO()
	if p.Currency == "" {
		p.Currency = core.DefaultCurrency().Code
	}
	row := map[string]any{
		"id":         p.ID,
		"email":      p.Email,
		"currency":   p.Currency,
		"created_at": now,
		"updated_at": now,
	}
	if p.FullName != "" {
		row["full_name"] = p.FullName
	}

	var created []core.Profile
	if err := c.do(ctx, "create profile", http.MethodPost, profilesTable, nil, "return=representation", row, &created); err != nil {
		return core.Profile{}, err
	}
	if len(created) == 0 {
		return core.Profile{}, wrap("create profile", 0, "backend returned no row", nil)
	}
	return created[0], nil
}

func (c *Client) UpdateProfile(ctx context.Context, ownerID string, updates map[string]any) (core.Profile, error) {
	patch := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		patch[k] = v
	}
	patch["updated_at"] = nowUTCISO()

	q := url.Values{}
	q.Set("id", "eq."+ownerID)

	var updated []core.Profile
	if err := c.do(ctx, "update profile", http.MethodPatch, profilesTable, q, "return=representation", patch, &updated); err != nil {
		return core.Profile{}, err
	}
	if len(updated) == 0 {
		return core.Profile{}, wrap("update profile", http.StatusNotFound, "profile not found", nil)
	}
	return updated[0], nil
}

func (c *Client) UpdateCurrency(ctx context.Context, ownerID, currency string) (core.Profile, error) {
	return c.UpdateProfile(ctx, ownerID, map[string]any{"currency": currency})
}

// UpsertProfile creates the row if missing and updates it otherwise,
// preserving created_at for existing rows.
func (c *Client) UpsertProfile(ctx context.Context, p core.Profile) (core.Profile, error) {
	if _, err := c.GetProfile(ctx, p.ID); err != nil {
		return c.CreateProfile(ctx, p)
	}

	updates := map[string]any{"email": p.Email}
	if p.FullName != "" {
		updates["full_name"] = p.FullName
	}
	if p.Currency != "" {
		updates["currency"] = p.Currency
	}
	return c.UpdateProfile(ctx, p.ID, updates)
}
