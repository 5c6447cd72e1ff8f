package sheets

import (
	"context"

	"khata/internal/core"
)

// Ports for outbound backup adapters.
type (
	// PaymentWriter appends or replaces a payment row in the backup sheet.
	PaymentWriter interface {
		UpsertPayment(ctx context.Context, p core.Payment) (rowRef string, err error)
	}

	// PaymentDeleter removes a payment row from the backup sheet.
	PaymentDeleter interface {
		DeletePayment(ctx context.Context, paymentID string) error
	}
)
