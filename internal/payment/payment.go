// Package payment wraps the external payment processor. It is invoked
// only from the checkout path, only when online and the cart is
// non-empty; those preconditions belong to the orchestrator.
package payment

import (
	"context"
	"fmt"
)

// Receipt is the processor's acknowledgement of a successful charge.
type Receipt struct {
	Reference string `json:"reference"`
}

// Error is a reason-coded charge failure, surfaced verbatim to the
// shopper. The cart is left intact so they can retry.
type Error struct {
	Reason string `json:"reason"`
}

func (e *Error) Error() string { return fmt.Sprintf("payment declined: %s", e.Reason) }

// Processor is the charge collaborator.
type Processor interface {
	Charge(ctx context.Context, amount float64, cartSummary string) (Receipt, error)
}
