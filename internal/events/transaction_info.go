package events

import (
	"fmt"

	"github.com/stanstork/notifications/internal/i18n"
	"github.com/stanstork/notifications/internal/models"
)

type TransactionType string

const (
	TxIntraLedgerReceipt    TransactionType = "intra_ledger_receipt"
	TxIntraLedgerPayment    TransactionType = "intra_ledger_payment"
	TxOnchainReceipt        TransactionType = "onchain_receipt"
	TxOnchainReceiptPending TransactionType = "onchain_receipt_pending"
	TxOnchainPayment        TransactionType = "onchain_payment"
	TxLightningReceipt      TransactionType = "lightning_receipt"
	TxLightningPayment      TransactionType = "lightning_payment"
)

// TransactionInfo reports a settled or pending payment on one of the user's
// wallets. DisplayAmount, when set, is the amount in the user's display
// currency.
type TransactionInfo struct {
	UserID           models.UserID   `json:"user_id"`
	TransactionType  TransactionType `json:"transaction_type"`
	SettlementAmount models.Money    `json:"settlement_amount"`
	DisplayAmount    *models.Money   `json:"display_amount,omitempty"`
}

func (TransactionInfo) Type() EventType { return TypeTransactionInfo }

func (TransactionInfo) Category() models.NotificationCategory { return models.CategoryPayments }

func (TransactionInfo) DeepLink() models.DeepLink { return models.DeepLinkTransactions }

func (e TransactionInfo) Validate() error {
	switch e.TransactionType {
	case TxIntraLedgerReceipt, TxIntraLedgerPayment, TxOnchainReceipt, TxOnchainReceiptPending,
		TxOnchainPayment, TxLightningReceipt, TxLightningPayment:
	default:
		return fmt.Errorf("%w: transaction type %q", ErrInvalidEvent, e.TransactionType)
	}
	if err := validateMoney(e.SettlementAmount); err != nil {
		return err
	}
	if e.DisplayAmount != nil {
		return validateMoney(*e.DisplayAmount)
	}
	return nil
}

func (e TransactionInfo) keysAndArgs(tr *i18n.Translator, locale models.Locale) (string, string, []string) {
	args := []string{"amount", formatMoney(tr, locale, e.SettlementAmount)}
	bodyKey := "transaction_info.body"
	if e.DisplayAmount != nil && e.DisplayAmount.Currency != e.SettlementAmount.Currency {
		args = append(args, "display_amount", formatMoney(tr, locale, *e.DisplayAmount))
		bodyKey = "transaction_info.body_with_display"
	}
	return "transaction_info.title." + string(e.TransactionType), bodyKey, args
}

func (e TransactionInfo) RenderPush(tr *i18n.Translator, locale models.Locale) LocalizedPush {
	titleKey, bodyKey, args := e.keysAndArgs(tr, locale)
	return LocalizedPush{
		Title: tr.T(locale.String(), titleKey, args...),
		Body:  tr.T(locale.String(), bodyKey, args...),
	}
}

func (TransactionInfo) ShouldSendEmail() bool { return false }

func (e TransactionInfo) RenderEmail(tr *i18n.Translator, locale models.Locale) (LocalizedEmail, error) {
	titleKey, bodyKey, args := e.keysAndArgs(tr, locale)
	return genericEmail(tr, e.Type(), locale, titleKey, bodyKey, args...)
}

func (TransactionInfo) ShouldSendInApp() bool { return false }

func (e TransactionInfo) RenderInApp(tr *i18n.Translator, locale models.Locale) LocalizedInApp {
	return LocalizedInApp(e.RenderPush(tr, locale))
}

func (TransactionInfo) sealed() {}
