package notification

import (
	"slices"

	"github.com/stanstork/notifications/internal/events"
	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

// PlanEntry is one channel the event goes out on, with the message as it
// would be rendered now. RenderError is set when the email resources are
// missing; the entry is kept so the job surfaces the failure.
type PlanEntry struct {
	Channel     models.Channel `json:"channel"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	RenderError string         `json:"render_error,omitempty"`
}

type SendPlan struct {
	EventType events.EventType `json:"event_type"`
	Locale    models.Locale    `json:"locale"`
	Entries   []PlanEntry      `json:"entries"`
}

func (p SendPlan) Channels() []models.Channel {
	out := make([]models.Channel, 0, len(p.Entries))
	for _, e := range p.Entries {
		out = append(out, e.Channel)
	}
	return out
}

func (p SendPlan) Includes(channel models.Channel) bool {
	for _, e := range p.Entries {
		if e.Channel == channel {
			return true
		}
	}
	return false
}

// EffectiveChannelSettings resolves one channel for a recipient. The channel
// status comes from the user record when the user toggled it, otherwise from
// the account record. Disabled categories are the union of both records, so a
// user entry never lifts a category the account suppressed. Nil records mean
// everything is enabled.
func EffectiveChannelSettings(account, user *models.NotificationSettings, channel models.Channel) models.ChannelSettings {
	acc, usr := account.Channel(channel), user.Channel(channel)

	out := models.ChannelSettings{Status: acc.Status}
	if usr.Status != "" {
		out.Status = usr.Status
	}
	out.DisabledCategories = slices.Clone(acc.DisabledCategories)
	for _, c := range usr.DisabledCategories {
		if !slices.Contains(out.DisabledCategories, c) {
			out.DisabledCategories = append(out.DisabledCategories, c)
		}
	}
	slices.Sort(out.DisabledCategories)
	return out
}

// Allowed is the whole delivery decision for one channel: the event supports
// it, the channel is enabled and the event's category is not suppressed there.
func Allowed(e events.Event, account, user *models.NotificationSettings, channel models.Channel) bool {
	if !events.SupportsChannel(e, channel) {
		return false
	}
	cs := EffectiveChannelSettings(account, user, channel)
	return cs.Enabled() && !cs.CategoryDisabled(e.Category())
}

// Plan computes the send plan for one event and one recipient. It has no side
// effects and never fails.
func Plan(tr *i18n.Translator, e events.Event, account, user *models.NotificationSettings, locale models.Locale) SendPlan {
	plan := SendPlan{EventType: e.Type(), Locale: locale}
	for _, channel := range models.AllChannels {
		if !Allowed(e, account, user, channel) {
			continue
		}
		entry := PlanEntry{Channel: channel}
		switch channel {
		case models.ChannelPush:
			msg := e.RenderPush(tr, locale)
			entry.Title, entry.Body = msg.Title, msg.Body
		case models.ChannelEmail:
			msg, err := e.RenderEmail(tr, locale)
			if err != nil {
				entry.RenderError = err.Error()
			}
			entry.Title, entry.Body = msg.Subject, msg.Body
		case models.ChannelInApp:
			msg := e.RenderInApp(tr, locale)
			entry.Title, entry.Body = msg.Title, msg.Body
		}
		plan.Entries = append(plan.Entries, entry)
	}
	return plan
}
