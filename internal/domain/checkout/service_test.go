// internal/domain/checkout/service_test.go
package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
)

func TestResolveInitialStatus(t *testing.T) {
	alwaysVerified := func(string) bool { return true }
	neverVerified := func(string) bool { return false }

	bankTransfer := &payment.PaymentMethod{Code: "bank_transfer", RequiresProof: true}
	cod := &payment.PaymentMethod{Code: payment.MethodCashOnDelivery}
	card := &payment.PaymentMethod{Code: payment.MethodCreditCard}
	other := &payment.PaymentMethod{Code: "store_credit"}

	tests := []struct {
		name     string
		method   *payment.PaymentMethod
		intentID string
		verified func(string) bool
		want     order.OrderStatus
	}{
		{"proof method waits for review", bankTransfer, "", neverVerified, order.StatusCreated},
		{"proof wins even with a verified intent", bankTransfer, "pi_123", alwaysVerified, order.StatusCreated},
		{"cash on delivery goes to fulfilling", cod, "", neverVerified, order.StatusFulfilling},
		{"card with succeeded intent is paid", card, "pi_123", alwaysVerified, order.StatusPaid},
		{"card with unverified intent stays created", card, "pi_123", neverVerified, order.StatusCreated},
		{"card without intent stays created", card, "", alwaysVerified, order.StatusCreated},
		{"unclassified method is treated as settled", other, "", neverVerified, order.StatusPaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveInitialStatus(tt.method, tt.intentID, tt.verified)
			assert.Equal(t, tt.want, got)
		})
	}
}
