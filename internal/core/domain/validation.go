package domain

// ValidationResult is the outcome of authenticating a notification.
// The zero value is SignatureInvalid so an unset result fails closed.
type ValidationResult int

const (
	ValidationSignatureInvalid ValidationResult = iota
	ValidationGatewayRejected
	ValidationConfirmed
)

func (r ValidationResult) String() string {
	switch r {
	case ValidationConfirmed:
		return "confirmed"
	case ValidationGatewayRejected:
		return "gateway-rejected"
	default:
		return "signature-invalid"
	}
}

// ITNState is a step of the notification pipeline.
type ITNState string

const (
	ITNStateReceived         ITNState = "received"
	ITNStateSignatureChecked ITNState = "signature-checked"
	ITNStateAttested         ITNState = "attested"
	ITNStateReconciled       ITNState = "reconciled"
	ITNStateRejected         ITNState = "rejected"
	ITNStateErrored          ITNState = "errored"
)

// ITNResult describes a notification that reached persistence.
type ITNResult struct {
	State         ITNState
	ApplicationID string
	Status        PaymentStatus
	Paid          bool
}
