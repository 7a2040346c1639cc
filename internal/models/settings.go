package models

import (
	"slices"
	"strings"
	"time"
)

// ChannelSettings is the explicit configuration of one channel. A zero Status
// means the channel was never toggled and is treated as enabled.
type ChannelSettings struct {
	Status             ChannelStatus          `json:"status,omitempty"`
	DisabledCategories []NotificationCategory `json:"disabled_categories,omitempty"`
}

func (c ChannelSettings) Enabled() bool {
	return c.Status != ChannelDisabled
}

func (c ChannelSettings) CategoryDisabled(category NotificationCategory) bool {
	return slices.Contains(c.DisabledCategories, category)
}

// NotificationSettings is the preference record of one account or one user.
// A missing record is equivalent to NewNotificationSettings: everything on.
// Locale, push device tokens and email address are only meaningful on user
// scoped records.
type NotificationSettings struct {
	Key              SettingsKey                 `json:"key"`
	Revision         int64                       `json:"revision"`
	Channels         map[Channel]ChannelSettings `json:"channels"`
	Locale           Locale                      `json:"locale,omitempty"`
	PushDeviceTokens []string                    `json:"push_device_tokens,omitempty"`
	EmailAddress     string                      `json:"email_address,omitempty"`
	CreatedAt        time.Time                   `json:"created_at,omitzero"`
	UpdatedAt        time.Time                   `json:"updated_at,omitzero"`
}

func NewNotificationSettings(key SettingsKey) *NotificationSettings {
	return &NotificationSettings{
		Key:      key,
		Channels: make(map[Channel]ChannelSettings),
	}
}

// IsPersisted reports whether the record was loaded from storage.
func (s *NotificationSettings) IsPersisted() bool {
	return s.Revision > 0
}

// HasChannelConfig reports whether the record carries any explicit
// configuration for the channel.
func (s *NotificationSettings) HasChannelConfig(channel Channel) bool {
	if s == nil {
		return false
	}
	_, ok := s.Channels[channel]
	return ok
}

// Channel returns the configuration of a channel, enabled by default.
func (s *NotificationSettings) Channel(channel Channel) ChannelSettings {
	if s == nil {
		return ChannelSettings{}
	}
	return s.Channels[channel]
}

func (s *NotificationSettings) IsChannelEnabled(channel Channel) bool {
	return s.Channel(channel).Enabled()
}

func (s *NotificationSettings) ShouldSend(channel Channel, category NotificationCategory) bool {
	cs := s.Channel(channel)
	return cs.Enabled() && !cs.CategoryDisabled(category)
}

func (s *NotificationSettings) DisableChannel(channel Channel) {
	s.setStatus(channel, ChannelDisabled)
}

func (s *NotificationSettings) EnableChannel(channel Channel) {
	s.setStatus(channel, ChannelEnabled)
}

// DisableCategory suppresses one category on a channel without touching the
// channel's own status.
func (s *NotificationSettings) DisableCategory(channel Channel, category NotificationCategory) {
	cs := s.ensureChannels()[channel]
	if !cs.CategoryDisabled(category) {
		cs.DisabledCategories = append(slices.Clone(cs.DisabledCategories), category)
		slices.Sort(cs.DisabledCategories)
	}
	s.Channels[channel] = cs
}

func (s *NotificationSettings) EnableCategory(channel Channel, category NotificationCategory) {
	cs := s.ensureChannels()[channel]
	cs.DisabledCategories = slices.DeleteFunc(slices.Clone(cs.DisabledCategories), func(c NotificationCategory) bool {
		return c == category
	})
	if len(cs.DisabledCategories) == 0 {
		cs.DisabledCategories = nil
	}
	s.Channels[channel] = cs
}

func (s *NotificationSettings) UpdateLocale(locale Locale) {
	s.Locale = locale
}

func (s *NotificationSettings) AddPushDeviceToken(token string) {
	token = strings.TrimSpace(token)
	if token == "" || slices.Contains(s.PushDeviceTokens, token) {
		return
	}
	s.PushDeviceTokens = append(s.PushDeviceTokens, token)
}

func (s *NotificationSettings) RemovePushDeviceToken(token string) {
	s.PushDeviceTokens = slices.DeleteFunc(s.PushDeviceTokens, func(t string) bool {
		return t == strings.TrimSpace(token)
	})
}

func (s *NotificationSettings) UpdateEmailAddress(address string) {
	s.EmailAddress = strings.TrimSpace(address)
}

func (s *NotificationSettings) RemoveEmailAddress() {
	s.EmailAddress = ""
}

// Clone returns a deep copy so callers can mutate without affecting the
// original record.
func (s *NotificationSettings) Clone() *NotificationSettings {
	out := *s
	out.Channels = make(map[Channel]ChannelSettings, len(s.Channels))
	for ch, cs := range s.Channels {
		cs.DisabledCategories = slices.Clone(cs.DisabledCategories)
		out.Channels[ch] = cs
	}
	out.PushDeviceTokens = slices.Clone(s.PushDeviceTokens)
	return &out
}

func (s *NotificationSettings) setStatus(channel Channel, status ChannelStatus) {
	cs := s.ensureChannels()[channel]
	cs.Status = status
	s.Channels[channel] = cs
}

func (s *NotificationSettings) ensureChannels() map[Channel]ChannelSettings {
	if s.Channels == nil {
		s.Channels = make(map[Channel]ChannelSettings)
	}
	return s.Channels
}
