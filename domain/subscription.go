package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the billing state of an agent account.
type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "ACTIVE"
	SubscriptionInactive SubscriptionStatus = "INACTIVE"
)

// ParseSubscriptionStatus accepts any letter case.
func ParseSubscriptionStatus(raw string) (SubscriptionStatus, error) {
	switch SubscriptionStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case SubscriptionActive:
		return SubscriptionActive, nil
	case SubscriptionInactive:
		return SubscriptionInactive, nil
	}
	return "", fmt.Errorf("unknown subscription status %q", raw)
}

// PaymentStatus is the outcome of a payment attempt.
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

// PaymentRecord is one entry of the payment history.
type PaymentRecord struct {
	ID     string          `json:"id"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Status PaymentStatus   `json:"status"`
}

// SubscriptionAccount is the billing state of one agent session.
type SubscriptionAccount struct {
	Status          SubscriptionStatus `json:"subscription_status"`
	LastPaymentDate time.Time          `json:"last_payment_date,omitempty"`
	NextPaymentDate time.Time          `json:"next_payment_date,omitempty"`
	PaymentHistory  []PaymentRecord    `json:"payment_history"`
}

// IsActive reports the stored status without looking at the clock.
func (a *SubscriptionAccount) IsActive() bool {
	return a != nil && a.Status == SubscriptionActive
}

// Expired reports whether the paid period ended before now.
// A zero next payment date means no period was ever scheduled and never expires.
func (a *SubscriptionAccount) Expired(now time.Time) bool {
	if a == nil || a.NextPaymentDate.IsZero() {
		return false
	}
	return now.After(a.NextPaymentDate)
}

// Clone copies the account including its history.
func (a *SubscriptionAccount) Clone() SubscriptionAccount {
	if a == nil {
		return SubscriptionAccount{}
	}
	out := *a
	out.PaymentHistory = append([]PaymentRecord{}, a.PaymentHistory...)
	return out
}

// PaymentCharge is the request sent to a payment gateway.
type PaymentCharge struct {
	Reference string          `json:"reference"`
	AccountID string          `json:"account_id,omitempty"`
	Amount    decimal.Decimal `json:"amount"`
}

// PaymentReceipt confirms a settled charge.
type PaymentReceipt struct {
	ID        string    `json:"id"`
	Reference string    `json:"reference"`
	ChargedAt time.Time `json:"charged_at"`
}
