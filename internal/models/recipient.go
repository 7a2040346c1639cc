package models

import (
	"fmt"
	"strings"
)

type AccountID string

type UserID string

// Locale is a BCP 47 language tag such as "en" or "pt-BR".
type Locale string

func (l Locale) String() string {
	return string(l)
}

// Recipient identifies who a notification is for. AccountID may be empty for
// notifications that are not account scoped.
type Recipient struct {
	AccountID AccountID `json:"account_id,omitempty"`
	UserID    UserID    `json:"user_id"`
}

func (r Recipient) Validate() error {
	if strings.TrimSpace(string(r.UserID)) == "" {
		return fmt.Errorf("recipient user id is required")
	}
	return nil
}

// SettingsScope says whether a settings record belongs to an account or a user.
type SettingsScope string

const (
	ScopeAccount SettingsScope = "account"
	ScopeUser    SettingsScope = "user"
)

func ParseScope(raw string) (SettingsScope, error) {
	switch s := SettingsScope(strings.ToLower(strings.TrimSpace(raw))); s {
	case ScopeAccount, ScopeUser:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidScope, raw)
}

// SettingsKey addresses exactly one settings record.
type SettingsKey struct {
	Scope SettingsScope `json:"scope"`
	ID    string        `json:"id"`
}

func AccountKey(id AccountID) SettingsKey {
	return SettingsKey{Scope: ScopeAccount, ID: string(id)}
}

func UserKey(id UserID) SettingsKey {
	return SettingsKey{Scope: ScopeUser, ID: string(id)}
}

func (k SettingsKey) String() string {
	return string(k.Scope) + ":" + k.ID
}

func (k SettingsKey) Validate() error {
	if k.Scope != ScopeAccount && k.Scope != ScopeUser {
		return fmt.Errorf("%w: %q", ErrInvalidScope, k.Scope)
	}
	if strings.TrimSpace(k.ID) == "" {
		return fmt.Errorf("settings owner id is required")
	}
	return nil
}

// Money is an amount in the minor unit of its currency. BTC amounts are
// expressed in satoshis.
type Money struct {
	Currency   string `json:"currency"`
	MinorUnits int64  `json:"minor_units"`
}
