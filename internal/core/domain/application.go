package domain

import (
	"fmt"
	"time"
)

// ApplicationRecord is the persisted registration row the payment settles.
// Nullable columns are pointers.
type ApplicationRecord struct {
	ID               string     `json:"id"`
	Paid             bool       `json:"paid"`
	PaymentMethod    *string    `json:"payment_method,omitempty"`
	PaymentReference *string    `json:"payment_reference,omitempty"`
	PaymentToken     *string    `json:"-"` // AES-256 encrypted
	PaymentDate      *time.Time `json:"payment_date,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

// PaymentUpdate is the partial update derived from one verified notification.
// Complete is the only way an asynchronous update touches paid.
type PaymentUpdate struct {
	Complete         bool
	PaymentMethod    *string
	PaymentReference *string
	PaymentToken     *string
	PaymentDate      time.Time
	Notes            string
}

// NewPaymentUpdate maps a notification onto the record's payment columns.
// Empty gateway values are stored as NULL.
func NewPaymentUpdate(n *Notification, at time.Time) PaymentUpdate {
	status := n.Status()
	return PaymentUpdate{
		Complete:         status.IsTerminalSuccess(),
		PaymentMethod:    nullable(n.Value(FieldPaymentMethod)),
		PaymentReference: nullable(n.Value(FieldGatewayID)),
		PaymentToken:     nullable(n.Value(FieldToken)),
		PaymentDate:      at.UTC(),
		Notes: fmt.Sprintf("ITN status=%s gross=%s fee=%s net=%s",
			status, n.Value(FieldAmountGross), n.Value(FieldAmountFee), n.Value(FieldAmountNet)),
	}
}

// ReturnOutcome is the pay query value of a browser return from the gateway.
type ReturnOutcome string

const (
	ReturnSuccess ReturnOutcome = "success"
	ReturnCancel  ReturnOutcome = "cancel"
)

// Valid reports whether the outcome is one the return path handles.
func (o ReturnOutcome) Valid() bool {
	return o == ReturnSuccess || o == ReturnCancel
}

// ReturnNote is the note written when the payer's browser comes back.
func (o ReturnOutcome) ReturnNote(at time.Time) string {
	stamp := at.UTC().Format(time.RFC3339)
	if o == ReturnCancel {
		return "Payment CANCELLED via cancel_url @ " + stamp
	}
	return "Returned via return_url, awaiting ITN @ " + stamp
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
