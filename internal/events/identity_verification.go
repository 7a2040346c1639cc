package events

import (
	"fmt"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

// IdentityVerificationApproved is sent once a KYC review succeeds.
type IdentityVerificationApproved struct{}

func (IdentityVerificationApproved) Type() EventType { return TypeIdentityVerificationApproved }

func (IdentityVerificationApproved) Category() models.NotificationCategory {
	return models.CategoryAdminNotification
}

func (IdentityVerificationApproved) DeepLink() models.DeepLink { return models.DeepLinkNone }

func (IdentityVerificationApproved) Validate() error { return nil }

func (IdentityVerificationApproved) RenderPush(tr *i18n.Translator, locale models.Locale) LocalizedPush {
	return LocalizedPush{
		Title: tr.T(locale.String(), "identity_verification_approved.title"),
		Body:  tr.T(locale.String(), "identity_verification_approved.body"),
	}
}

func (IdentityVerificationApproved) ShouldSendEmail() bool { return true }

func (e IdentityVerificationApproved) RenderEmail(tr *i18n.Translator, locale models.Locale) (LocalizedEmail, error) {
	return genericEmail(tr, e.Type(), locale, "identity_verification_approved.title", "identity_verification_approved.body")
}

func (IdentityVerificationApproved) ShouldSendInApp() bool { return true }

func (e IdentityVerificationApproved) RenderInApp(tr *i18n.Translator, locale models.Locale) LocalizedInApp {
	return LocalizedInApp(e.RenderPush(tr, locale))
}

func (IdentityVerificationApproved) sealed() {}

type DeclinedReason string

const (
	DeclinedDocumentsNotClear         DeclinedReason = "documents_not_clear"
	DeclinedVerificationPhotoNotClear DeclinedReason = "verification_photo_not_clear"
	DeclinedDocumentsNotSupported     DeclinedReason = "documents_not_supported"
	DeclinedDocumentsExpired          DeclinedReason = "documents_expired"
	DeclinedDocumentsDoNotMatch       DeclinedReason = "documents_do_not_match"
	DeclinedOther                     DeclinedReason = "other"
)

// IdentityVerificationDeclined is sent when a KYC review fails.
type IdentityVerificationDeclined struct {
	DeclinedReason DeclinedReason `json:"declined_reason"`
}

func (IdentityVerificationDeclined) Type() EventType { return TypeIdentityVerificationDeclined }

func (IdentityVerificationDeclined) Category() models.NotificationCategory {
	return models.CategoryAdminNotification
}

func (IdentityVerificationDeclined) DeepLink() models.DeepLink { return models.DeepLinkNone }

func (e IdentityVerificationDeclined) Validate() error {
	switch e.DeclinedReason {
	case DeclinedDocumentsNotClear, DeclinedVerificationPhotoNotClear, DeclinedDocumentsNotSupported,
		DeclinedDocumentsExpired, DeclinedDocumentsDoNotMatch, DeclinedOther:
		return nil
	}
	return fmt.Errorf("%w: declined reason %q", ErrInvalidEvent, e.DeclinedReason)
}

func (e IdentityVerificationDeclined) args(tr *i18n.Translator, locale models.Locale) []string {
	return []string{"reason", tr.T(locale.String(), "identity_verification_declined.reason."+string(e.DeclinedReason))}
}

func (e IdentityVerificationDeclined) RenderPush(tr *i18n.Translator, locale models.Locale) LocalizedPush {
	args := e.args(tr, locale)
	return LocalizedPush{
		Title: tr.T(locale.String(), "identity_verification_declined.title", args...),
		Body:  tr.T(locale.String(), "identity_verification_declined.body", args...),
	}
}

func (IdentityVerificationDeclined) ShouldSendEmail() bool { return true }

func (e IdentityVerificationDeclined) RenderEmail(tr *i18n.Translator, locale models.Locale) (LocalizedEmail, error) {
	return genericEmail(tr, e.Type(), locale,
		"identity_verification_declined.title", "identity_verification_declined.body", e.args(tr, locale)...)
}

func (IdentityVerificationDeclined) ShouldSendInApp() bool { return true }

func (e IdentityVerificationDeclined) RenderInApp(tr *i18n.Translator, locale models.Locale) LocalizedInApp {
	return LocalizedInApp(e.RenderPush(tr, locale))
}

func (IdentityVerificationDeclined) sealed() {}

// IdentityVerificationReviewStarted tells the user their documents are being
// reviewed. It is shown in-app and pushed, never emailed.
type IdentityVerificationReviewStarted struct{}

func (IdentityVerificationReviewStarted) Type() EventType {
	return TypeIdentityVerificationReviewStarted
}

func (IdentityVerificationReviewStarted) Category() models.NotificationCategory {
	return models.CategoryAdminNotification
}

func (IdentityVerificationReviewStarted) DeepLink() models.DeepLink { return models.DeepLinkNone }

func (IdentityVerificationReviewStarted) Validate() error { return nil }

func (IdentityVerificationReviewStarted) RenderPush(tr *i18n.Translator, locale models.Locale) LocalizedPush {
	return LocalizedPush{
		Title: tr.T(locale.String(), "identity_verification_review_started.title"),
		Body:  tr.T(locale.String(), "identity_verification_review_started.body"),
	}
}

func (IdentityVerificationReviewStarted) ShouldSendEmail() bool { return false }

func (e IdentityVerificationReviewStarted) RenderEmail(tr *i18n.Translator, locale models.Locale) (LocalizedEmail, error) {
	return genericEmail(tr, e.Type(), locale,
		"identity_verification_review_started.title", "identity_verification_review_started.body")
}

func (IdentityVerificationReviewStarted) ShouldSendInApp() bool { return true }

func (e IdentityVerificationReviewStarted) RenderInApp(tr *i18n.Translator, locale models.Locale) LocalizedInApp {
	return LocalizedInApp(e.RenderPush(tr, locale))
}

func (IdentityVerificationReviewStarted) sealed() {}
