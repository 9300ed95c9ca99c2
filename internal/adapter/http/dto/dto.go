package dto

import "strings"

// MarkPaidRequest is the request body for the manual mark-paid override.
type MarkPaidRequest struct {
	AdminPassword string `json:"admin_password" binding:"required,max=256"`
}

// ReturnQuery is the query string the gateway appends to the return and
// cancel URLs.
type ReturnQuery struct {
	Pay string `form:"pay" binding:"required,oneof=success cancel"`
	Pid string `form:"pid" binding:"required,max=64,safe_id"`
}

// Normalize trims both values and lowercases the outcome.
func (q *ReturnQuery) Normalize() {
	SanitizeStruct(q)
	q.Pay = strings.ToLower(q.Pay)
}

// ApplicationResponse is the response body for an application after a
// manual override.
type ApplicationResponse struct {
	ID               string  `json:"id"`
	Paid             bool    `json:"paid"`
	PaymentMethod    *string `json:"payment_method,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	PaymentDate      *string `json:"payment_date,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}
