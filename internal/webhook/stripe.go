package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	stripewebhook "github.com/stripe/stripe-go/v76/webhook"
)

const EventCheckoutCompleted = "checkout.session.completed"

// Checkout is the part of a paid Checkout Session that credits NCTR.
type Checkout struct {
	SessionID     string
	UserID        string
	NCTRAmount    decimal.Decimal
	PaymentStatus string
	AmountTotal   int64
	Currency      string
}

// ParseStripe verifies the Stripe-Signature header and decodes the event.
func ParseStripe(body []byte, header, secret string) (stripe.Event, error) {
	if secret == "" {
		return stripe.Event{}, ErrNotConfigured
	}
	if strings.TrimSpace(header) == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	ev, err := stripewebhook.ConstructEventWithOptions(body, header, secret, stripewebhook.ConstructEventOptions{
		Tolerance:                stripewebhook.DefaultTolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if errors.Is(err, stripewebhook.ErrNotSigned) {
			return stripe.Event{}, ErrMissingSignature
		}
		return stripe.Event{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return ev, nil
}

// CheckoutFromEvent extracts the credit from a checkout.session.completed
// event. ok is false when the session is not a paid NCTR purchase.
func CheckoutFromEvent(ev stripe.Event) (*Checkout, bool, error) {
	if string(ev.Type) != EventCheckoutCompleted || ev.Data == nil {
		return nil, false, nil
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if s.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil, false, nil
	}
	out := &Checkout{
		SessionID:     s.ID,
		UserID:        s.Metadata["user_id"],
		PaymentStatus: string(s.PaymentStatus),
		AmountTotal:   s.AmountTotal,
		Currency:      string(s.Currency),
	}
	if out.UserID == "" {
		out.UserID = s.ClientReferenceID
	}
	if out.SessionID == "" || out.UserID == "" {
		return nil, false, fmt.Errorf("%w: session id and user are required", ErrInvalidPayload)
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(s.Metadata["nctr_amount"]))
	if err != nil || !amt.IsPositive() {
		return nil, false, fmt.Errorf("%w: nctr_amount", ErrInvalidPayload)
	}
	out.NCTRAmount = amt
	return out, true, nil
}
