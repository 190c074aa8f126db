package prefs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"masarify/internal/auth"
	"masarify/internal/core"
	"masarify/internal/store"
)

// ErrUnsupportedCurrency is returned for codes outside the supported set.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Service resolves the active currency and keeps the local store and
// the hosted profile in step. The hosted profile is best effort: a
// failed write-through is logged and the local choice still wins, so a
// flaky connection never blocks changing the display currency.
type Service struct {
	local    *Store
	profiles store.ProfileStore
	session  *auth.Holder
	logger   *slog.Logger
}

func NewService(local *Store, profiles store.ProfileStore, session *auth.Holder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{local: local, profiles: profiles, session: session, logger: logger}
}

func (s *Service) ownerKey() string {
	if id := s.session.OwnerID(); id != "" {
		return id
	}
	return LocalOwner
}

// Currency returns the active display currency. Resolution order:
// hosted profile (when signed in), then the local store, then the
// default. An unknown stored code falls back to the default rather
// than erroring.
func (s *Service) Currency(ctx context.Context) core.Currency {
	owner := s.ownerKey()

	if owner != LocalOwner && s.profiles != nil {
		if p, err := s.profiles.GetProfile(ctx, owner); err == nil {
			if c, ok := core.CurrencyByCode(p.Currency); ok {
				// Keep the local copy current for offline use.
				if err := s.local.SetCurrency(ctx, owner, c.Code); err != nil {
					s.logger.Warn("failed to sync currency locally", "error", err)
				}
				return c
			}
		} else {
			s.logger.Debug("profile currency unavailable, using local", "error", err)
		}
	}

	code, err := s.local.Currency(ctx, owner)
	if err != nil {
		s.logger.Warn("failed to read local currency", "error", err)
		return core.DefaultCurrency()
	}
	if c, ok := core.CurrencyByCode(code); ok {
		return c
	}
	return core.DefaultCurrency()
}

// SetCurrency records the user's choice locally and writes it through
// to the hosted profile when a session is active.
func (s *Service) SetCurrency(ctx context.Context, code string) (core.Currency, error) {
	c, ok := core.CurrencyByCode(code)
	if !ok {
		return core.Currency{}, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}

	owner := s.ownerKey()
	if err := s.local.SetCurrency(ctx, owner, c.Code); err != nil {
		return core.Currency{}, err
	}

	if owner != LocalOwner && s.profiles != nil {
		if _, err := s.profiles.UpdateCurrency(ctx, owner, c.Code); err != nil {
			s.logger.Warn("failed to write currency to profile", "owner_id", owner, "error", err)
		}
	}

	return c, nil
}
