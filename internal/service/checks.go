package service

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"itn-gateway/config"
	"itn-gateway/internal/core/domain"
	"itn-gateway/pkg/apperror"
)

// amountTolerance is the largest gross difference still treated as equal.
const amountTolerance = 0.01

// NotificationCheck is a strict check run on a signature-verified
// notification before it is attested or persisted.
type NotificationCheck struct {
	Name  string
	Check func(n *domain.Notification) error
}

// MerchantCheck rejects notifications addressed to another merchant account.
func MerchantCheck(merchantID string) NotificationCheck {
	want := strings.TrimSpace(merchantID)
	return NotificationCheck{
		Name: "merchant_id",
		Check: func(n *domain.Notification) error {
			if strings.TrimSpace(n.Value(domain.FieldMerchantID)) != want {
				return apperror.ErrMerchantMismatch()
			}
			return nil
		},
	}
}

// AmountCheck rejects notifications whose amount_gross differs from expected
// by more than one cent.
func AmountCheck(expected float64) NotificationCheck {
	return NotificationCheck{
		Name: "amount_gross",
		Check: func(n *domain.Notification) error {
			got, err := strconv.ParseFloat(strings.TrimSpace(n.Value(domain.FieldAmountGross)), 64)
			if err != nil || math.IsNaN(got) || math.Abs(got-expected) > amountTolerance+1e-9 {
				return apperror.ErrAmountMismatch()
			}
			return nil
		},
	}
}

// ChecksFromConfig builds the strict checks enabled in cfg.
// Unset options add no check.
func ChecksFromConfig(cfg config.GatewayConfig) ([]NotificationCheck, error) {
	var checks []NotificationCheck

	if strings.TrimSpace(cfg.MerchantID) != "" {
		checks = append(checks, MerchantCheck(cfg.MerchantID))
	}

	if s := strings.TrimSpace(cfg.ExpectedAmount); s != "" {
		amount, err := strconv.ParseFloat(s, 64)
		if err != nil || amount < 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return nil, fmt.Errorf("gateway.expected_amount %q is not a valid amount", cfg.ExpectedAmount)
		}
		checks = append(checks, AmountCheck(amount))
	}

	return checks, nil
}
