package order

import (
	"context"

	"github.com/google/uuid"
)

// Gateway represents a connector to an external payment processor, consulted
// before a settlement notification is trusted.
type Gateway interface {
	VerifyNotify(ctx context.Context, notify Notification) (VerificationDecision, error)
}

// Notification carries the fields of an incoming settlement callback.
type Notification struct {
	OrderCode string
	PayMethod string
}

// VerificationDecision captures the gateway's response.
type VerificationDecision struct {
	Reference string
	Status    string
}

// StaticGateway accepts every notification. Used in development and tests.
type StaticGateway struct{}

// VerifyNotify approves the callback with a synthetic reference.
func (StaticGateway) VerifyNotify(_ context.Context, _ Notification) (VerificationDecision, error) {
	return VerificationDecision{Reference: uuid.NewString(), Status: "verified"}, nil
}
