package prefs

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"masarify/internal/auth"
	"masarify/internal/core"
	"masarify/internal/store/memory"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	code, err := s.Currency(ctx, "u1")
	if err != nil {
		t.Fatalf("read missing: %v", err)
	}
	if code != "" {
		t.Fatalf("expected empty code for fresh owner, got %q", code)
	}

	if err := s.SetCurrency(ctx, "u1", "USD"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.SetCurrency(ctx, "u1", "EUR"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	code, err = s.Currency(ctx, "u1")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if code != "EUR" {
		t.Fatalf("expected EUR, got %q", code)
	}

	// Owners do not share rows.
	code, err = s.Currency(ctx, "u2")
	if err != nil || code != "" {
		t.Fatalf("expected empty for other owner, got %q %v", code, err)
	}
}

func TestServiceDefaultsWhenUnset(t *testing.T) {
	svc := NewService(openTestStore(t), nil, auth.NewHolder(), nil)

	got := svc.Currency(context.Background())
	if got.Code != core.DefaultCurrency().Code {
		t.Fatalf("expected default currency, got %q", got.Code)
	}
}

func TestServiceRejectsUnknownCode(t *testing.T) {
	svc := NewService(openTestStore(t), nil, auth.NewHolder(), nil)

	_, err := svc.SetCurrency(context.Background(), "XXX")
	if !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestServiceLocalOnlyWhenSignedOut(t *testing.T) {
	ctx := context.Background()
	svc := NewService(openTestStore(t), memory.New(), auth.NewHolder(), nil)

	if _, err := svc.SetCurrency(ctx, "GBP"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := svc.Currency(ctx); got.Code != "GBP" {
		t.Fatalf("expected GBP, got %q", got.Code)
	}
}

func TestServiceWritesThroughToProfile(t *testing.T) {
	ctx := context.Background()
	profiles := memory.New()
	if _, err := profiles.CreateProfile(ctx, core.Profile{ID: "u1", Email: "u1@example.com"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	holder := auth.NewHolder()
	holder.Set(&auth.Session{AccessToken: "t", User: auth.User{ID: "u1"}})

	svc := NewService(openTestStore(t), profiles, holder, nil)

	if _, err := svc.SetCurrency(ctx, "CAD"); err != nil {
		t.Fatalf("set: %v", err)
	}

	p, err := profiles.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Currency != "CAD" {
		t.Fatalf("expected profile write-through, got %q", p.Currency)
	}
}

func TestServicePrefersProfileWhenSignedIn(t *testing.T) {
	ctx := context.Background()
	profiles := memory.New()
	if _, err := profiles.UpsertProfile(ctx, core.Profile{ID: "u1", Currency: "SAR"}); err != nil {
		t.Fatalf("seed profile: %v", err)
	}

	holder := auth.NewHolder()
	holder.Set(&auth.Session{AccessToken: "t", User: auth.User{ID: "u1"}})

	local := openTestStore(t)
	if err := local.SetCurrency(ctx, "u1", "USD"); err != nil {
		t.Fatalf("seed local: %v", err)
	}

	svc := NewService(local, profiles, holder, nil)
	if got := svc.Currency(ctx); got.Code != "SAR" {
		t.Fatalf("expected profile currency SAR, got %q", got.Code)
	}

	// The profile value is synced back to the local store.
	code, err := local.Currency(ctx, "u1")
	if err != nil || code != "SAR" {
		t.Fatalf("expected local sync to SAR, got %q %v", code, err)
	}
}
