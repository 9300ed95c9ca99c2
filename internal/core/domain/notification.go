package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// Field names the gateway posts in a notification.
const (
	FieldSignature     = "signature"
	FieldPaymentStatus = "payment_status"
	FieldPaymentID     = "m_payment_id"
	FieldCustomStr1    = "custom_str1"
	FieldGatewayID     = "pf_payment_id"
	FieldPaymentMethod = "payment_method"
	FieldToken         = "token"
	FieldAmountGross   = "amount_gross"
	FieldAmountFee     = "amount_fee"
	FieldAmountNet     = "amount_net"
	FieldMerchantID    = "merchant_id"
)

// PaymentStatus is the gateway's payment_status value, upper-cased.
type PaymentStatus string

const (
	PaymentStatusComplete PaymentStatus = "COMPLETE"
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusCanceled PaymentStatus = "CANCELLED"
)

// IsTerminalSuccess reports whether the status may set an application paid.
func (s PaymentStatus) IsTerminalSuccess() bool {
	return s == PaymentStatusComplete
}

// Field is one name/value pair of a notification, in wire order.
type Field struct {
	Name  string
	Value string
}

// Notification is one inbound ITN. Raw holds the body exactly as received.
type Notification struct {
	Fields []Field
	Raw    []byte
}

// ParseNotification decodes a URL-form-encoded body. A repeated name keeps
// the position of its first occurrence and the value of its last.
func ParseNotification(raw []byte) (*Notification, error) {
	n := &Notification{Raw: raw}
	index := make(map[string]int)

	body := string(raw)
	for body != "" {
		var pair string
		pair, body, _ = strings.Cut(body, "&")
		if pair == "" {
			continue
		}
		rawName, rawValue, _ := strings.Cut(pair, "=")
		name, err := url.QueryUnescape(rawName)
		if err != nil {
			return nil, fmt.Errorf("decoding field name %q: %w", rawName, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("decoding value of %q: %w", name, err)
		}
		if i, ok := index[name]; ok {
			n.Fields[i].Value = value
			continue
		}
		index[name] = len(n.Fields)
		n.Fields = append(n.Fields, Field{Name: name, Value: value})
	}

	return n, nil
}

// Get returns the value of name and whether it was present.
func (n *Notification) Get(name string) (string, bool) {
	for _, f := range n.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// Value returns the value of name, or "" when absent.
func (n *Notification) Value(name string) string {
	v, _ := n.Get(name)
	return v
}

// Signature returns the supplied signature, lowercased.
func (n *Notification) Signature() (string, bool) {
	sig, ok := n.Get(FieldSignature)
	if !ok {
		return "", false
	}
	sig = strings.ToLower(strings.TrimSpace(sig))
	return sig, sig != ""
}

// Status returns the payment status, upper-cased.
func (n *Notification) Status() PaymentStatus {
	return PaymentStatus(strings.ToUpper(strings.TrimSpace(n.Value(FieldPaymentStatus))))
}

// CorrelationID picks the application id: m_payment_id when non-empty,
// otherwise custom_str1.
func (n *Notification) CorrelationID() (string, bool) {
	for _, name := range []string{FieldPaymentID, FieldCustomStr1} {
		if id := strings.TrimSpace(n.Value(name)); id != "" {
			return id, true
		}
	}
	return "", false
}

// Names returns every field name except the signature.
func (n *Notification) Names() []string {
	names := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		if f.Name == FieldSignature {
			continue
		}
		names = append(names, f.Name)
	}
	return names
}
