package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidChannel  = errors.New("invalid notification channel")
	ErrInvalidCategory = errors.New("invalid notification category")
	ErrInvalidScope    = errors.New("invalid settings scope")
)

// Channel is a delivery medium.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelInApp Channel = "in_app"
)

// AllChannels lists every channel in the order a send plan is evaluated.
var AllChannels = []Channel{ChannelPush, ChannelEmail, ChannelInApp}

func ParseChannel(raw string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(raw))); c {
	case ChannelPush, ChannelEmail, ChannelInApp:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidChannel, raw)
}

// NotificationCategory is the granularity at which a recipient can suppress
// notifications on a channel. Every event maps to exactly one category.
type NotificationCategory string

const (
	CategoryCircles           NotificationCategory = "circles"
	CategoryPayments          NotificationCategory = "payments"
	CategoryBalance           NotificationCategory = "balance"
	CategoryAdminNotification NotificationCategory = "admin_notification"
	CategoryMarketing         NotificationCategory = "marketing"
	CategoryPrice             NotificationCategory = "price"
	CategorySecurity          NotificationCategory = "security"
)

func ParseCategory(raw string) (NotificationCategory, error) {
	switch c := NotificationCategory(strings.ToLower(strings.TrimSpace(raw))); c {
	case CategoryCircles, CategoryPayments, CategoryBalance, CategoryAdminNotification,
		CategoryMarketing, CategoryPrice, CategorySecurity:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, raw)
}

// ChannelStatus is the explicit on/off state of a channel.
type ChannelStatus string

const (
	ChannelEnabled  ChannelStatus = "enabled"
	ChannelDisabled ChannelStatus = "disabled"
)

// DeepLink is an in-app navigation target attached to a notification.
type DeepLink string

const (
	DeepLinkNone         DeepLink = ""
	DeepLinkCircles      DeepLink = "circles"
	DeepLinkPrice        DeepLink = "price"
	DeepLinkTransactions DeepLink = "transactions"
)

func (d DeepLink) IsNone() bool {
	return d == DeepLinkNone
}
