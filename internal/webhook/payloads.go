package webhook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NCTRLivePurchase is the body NCTR-Live posts for a purchase.
type NCTRLivePurchase struct {
	ExternalTransactionID string           `json:"external_transaction_id"`
	UserID                string           `json:"user_id"`
	UserEmail             string           `json:"user_email"`
	PurchaseAmount        decimal.Decimal  `json:"purchase_amount"`
	NCTRAmount            *decimal.Decimal `json:"nctr_amount,omitempty"`
	Status                string           `json:"status"`
	StoreName             string           `json:"store_name"`
}

func ParseNCTRLive(body []byte) (*NCTRLivePurchase, error) {
	var p NCTRLivePurchase
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	p.ExternalTransactionID = strings.TrimSpace(p.ExternalTransactionID)
	p.UserID = strings.TrimSpace(p.UserID)
	p.UserEmail = strings.TrimSpace(p.UserEmail)
	p.Status = strings.ToLower(strings.TrimSpace(p.Status))
	if p.Status == "" {
		p.Status = "completed"
	}
	switch {
	case p.ExternalTransactionID == "":
		return nil, fmt.Errorf("%w: external_transaction_id is required", ErrInvalidPayload)
	case p.UserID == "" && p.UserEmail == "":
		return nil, fmt.Errorf("%w: user_id or user_email is required", ErrInvalidPayload)
	case p.Status != "pending" && p.Status != "completed" && p.Status != "failed":
		return nil, fmt.Errorf("%w: status %q", ErrInvalidPayload, p.Status)
	case p.PurchaseAmount.IsNegative():
		return nil, fmt.Errorf("%w: purchase_amount", ErrInvalidPayload)
	case p.NCTRAmount != nil && p.NCTRAmount.IsNegative():
		return nil, fmt.Errorf("%w: nctr_amount", ErrInvalidPayload)
	}
	return &p, nil
}

// Amount is the explicit NCTR amount, or purchase_amount at perDollar.
func (p *NCTRLivePurchase) Amount(perDollar decimal.Decimal) decimal.Decimal {
	if p.NCTRAmount != nil && p.NCTRAmount.IsPositive() {
		return *p.NCTRAmount
	}
	return p.PurchaseAmount.Mul(perDollar).Round(8)
}

const EventTrialStarted = "trial.started"

type FreeTrial struct {
	Event   string `json:"event"`
	TrialID string `json:"trial_id"`
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

func ParseFreeTrial(body []byte) (*FreeTrial, error) {
	var f FreeTrial
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	f.Event = strings.TrimSpace(f.Event)
	f.TrialID = strings.TrimSpace(f.TrialID)
	f.UserID = strings.TrimSpace(f.UserID)
	if f.Event == "" {
		return nil, fmt.Errorf("%w: event is required", ErrInvalidPayload)
	}
	if f.Event == EventTrialStarted && (f.TrialID == "" || f.UserID == "") {
		return nil, fmt.Errorf("%w: trial_id and user_id are required", ErrInvalidPayload)
	}
	return &f, nil
}
