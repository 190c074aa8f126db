package core

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Incoming RecordType = "incoming"
	Outgoing RecordType = "outgoing"
)

// MaxAmount is the largest amount a single record may carry.
const MaxAmount = 999_999

type (
	// RecordType marks the direction of a record: money received or spent.
	RecordType string

	// Record is one income or expense entry owned by an account.
	// Amount is always a positive magnitude; direction is carried by Type,
	// never by a negative amount.
	Record struct {
		ID          string     `json:"id"`
		OwnerID     string     `json:"user_id"`
		Title       string     `json:"title"`
		Amount      float64    `json:"amount"`
		Description string     `json:"description,omitempty"`
		Type        RecordType `json:"type"`
		Category    string     `json:"category,omitempty"`
		CreatedAt   string     `json:"created_at"`
		UpdatedAt   string     `json:"updated_at"`
	}

	// RecordInsert carries the fields a caller provides when creating a record.
	// Timestamps are stamped by the store client.
	RecordInsert struct {
		OwnerID     string     `json:"user_id"`
		Title       string     `json:"title"`
		Amount      float64    `json:"amount"`
		Description string     `json:"description,omitempty"`
		Type        RecordType `json:"type"`
		Category    string     `json:"category,omitempty"`
	}

	// RecordUpdate is a partial update; nil fields are left untouched.
	RecordUpdate struct {
		Title       *string     `json:"title,omitempty"`
		Amount      *float64    `json:"amount,omitempty"`
		Description *string     `json:"description,omitempty"`
		Type        *RecordType `json:"type,omitempty"`
		Category    *string     `json:"category,omitempty"`
	}

	// RecordFilter narrows a list query. Zero values mean "no constraint".
	// StartDate and EndDate bound created_at inclusively.
	RecordFilter struct {
		Type      RecordType
		StartDate string
		EndDate   string
		Category  string
	}

	// Profile is the per-owner preferences row held by the profile store.
	Profile struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		FullName  string `json:"full_name,omitempty"`
		Currency  string `json:"currency"`
		CreatedAt string `json:"created_at"`
		UpdatedAt string `json:"updated_at"`
	}
)

var (
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrTitleTooShort  = errors.New("title must be at least 2 characters")
	ErrTitleTooLong   = errors.New("title must be at most 50 characters")
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrAmountTooLarge = errors.New("amount exceeds the maximum of 999,999")
	ErrInvalidType    = errors.New("type must be incoming or outgoing")
	ErrNoFields       = errors.New("update contains no fields")
)

func (t RecordType) Valid() bool {
	return t == Incoming || t == Outgoing
}

func validateTitle(title string) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return ErrEmptyTitle
	}
	// Bounds count characters, not bytes, so multibyte titles are
	// measured the same way the app's form counts them.
	runes := utf8.RuneCountInString(trimmed)
	if runes < 2 {
		return ErrTitleTooShort
	}
	if runes > 50 {
		return ErrTitleTooLong
	}
	return nil
}

func validateAmount(amount float64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > MaxAmount {
		return ErrAmountTooLarge
	}
	return nil
}

func (in RecordInsert) Validate() error {
	if err := validateTitle(in.Title); err != nil {
		return err
	}
	if err := validateAmount(in.Amount); err != nil {
		return err
	}
	if !in.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// Validate checks only the fields present in the partial update.
func (u RecordUpdate) Validate() error {
	if u.Title == nil && u.Amount == nil && u.Description == nil && u.Type == nil && u.Category == nil {
		return ErrNoFields
	}
	if u.Title != nil {
		if err := validateTitle(*u.Title); err != nil {
			return err
		}
	}
	if u.Amount != nil {
		if err := validateAmount(*u.Amount); err != nil {
			return err
		}
	}
	if u.Type != nil && !u.Type.Valid() {
		return ErrInvalidType
	}
	return nil
}

// createdAtLayouts covers the timestamp shapes the backend hands back:
// RFC3339 with or without sub-second precision, and the zone-less local
// form the client stamps on create.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a stored timestamp string. The zero time is
// returned for values that match none of the known layouts.
func ParseTimestamp(s string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// CreatedTime returns the record's creation timestamp as a time.Time.
func (r Record) CreatedTime() time.Time {
	return ParseTimestamp(r.CreatedAt)
}
