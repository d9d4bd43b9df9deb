package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v76"
)

func TestToIntent(t *testing.T) {
	pi := &stripe.PaymentIntent{
		ID:           "pi_123",
		ClientSecret: "pi_123_secret_abc",
		Amount:       1999,
		Currency:     stripe.Currency("USD"),
		Status:       stripe.PaymentIntentStatusSucceeded,
	}

	intent := toIntent(pi)

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pi_123_secret_abc", intent.ClientSecret)
	assert.Equal(t, int64(1999), intent.Amount)
	assert.Equal(t, "usd", intent.Currency)
	assert.Equal(t, StatusSucceeded, intent.Status)
}
