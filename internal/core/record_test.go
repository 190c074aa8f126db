package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRecordInsertValidate(t *testing.T) {
	good := RecordInsert{OwnerID: "u1", Title: "Groceries", Amount: 42.50, Type: Outgoing}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	// Title bounds are in characters: a 30-character Arabic title is
	// well under 50 even though it is far more than 50 bytes.
	arabic := RecordInsert{Title: strings.Repeat("مشتريات البقالة", 2), Amount: 42.50, Type: Outgoing}
	if err := arabic.Validate(); err != nil {
		t.Fatalf("expected multibyte title to pass, got %v", err)
	}

	cases := []struct {
		name string
		in   RecordInsert
		want error
	}{
		{"empty title", RecordInsert{Title: "  ", Amount: 10, Type: Outgoing}, ErrEmptyTitle},
		{"short title", RecordInsert{Title: "a", Amount: 10, Type: Outgoing}, ErrTitleTooShort},
		{"short multibyte title", RecordInsert{Title: "م", Amount: 10, Type: Outgoing}, ErrTitleTooShort},
		{"long title", RecordInsert{Title: strings.Repeat("x", 51), Amount: 10, Type: Outgoing}, ErrTitleTooLong},
		{"long multibyte title", RecordInsert{Title: strings.Repeat("م", 51), Amount: 10, Type: Outgoing}, ErrTitleTooLong},
		{"negative amount", RecordInsert{Title: "Taxi", Amount: -10, Type: Outgoing}, ErrInvalidAmount},
		{"zero amount", RecordInsert{Title: "Taxi", Amount: 0, Type: Outgoing}, ErrInvalidAmount},
		{"huge amount", RecordInsert{Title: "Taxi", Amount: 1_000_000, Type: Outgoing}, ErrAmountTooLarge},
		{"bad type", RecordInsert{Title: "Taxi", Amount: 10, Type: "sideways"}, ErrInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.in.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRecordUpdateValidate(t *testing.T) {
	if err := (RecordUpdate{}).Validate(); !errors.Is(err, ErrNoFields) {
		t.Fatalf("expected ErrNoFields, got %v", err)
	}

	title := "Lunch"
	if err := (RecordUpdate{Title: &title}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bad := -10.0
	if err := (RecordUpdate{Amount: &bad}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	typ := RecordType("diagonal")
	if err := (RecordUpdate{Type: &typ}).Validate(); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00.500Z", time.Date(2024, 1, 15, 10, 30, 0, 500_000_000, time.UTC)},
		{"2024-01-15T10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"not a date", time.Time{}},
	}
	for _, tc := range cases {
		if got := ParseTimestamp(tc.in); !got.Equal(tc.want) {
			t.Fatalf("ParseTimestamp(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestCurrencyByCode(t *testing.T) {
	if c, ok := CurrencyByCode("USD"); !ok || c.Symbol != "$" {
		t.Fatalf("expected USD with $ symbol, got %+v ok=%v", c, ok)
	}
	if _, ok := CurrencyByCode("XYZ"); ok {
		t.Fatalf("expected unknown code to miss")
	}
	if DefaultCurrency().Code != "EGP" {
		t.Fatalf("expected EGP default, got %s", DefaultCurrency().Code)
	}
}
