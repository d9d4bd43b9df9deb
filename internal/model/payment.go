package model

import "time"

// Payment is both the ledger entry for a captured payment and the proof that
// the payer is enrolled in whatever the metadata describes.
type Payment struct {
	ID            string    `json:"_id"`
	Email         string    `json:"email"`
	Price         float64   `json:"price"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	TransactionID string    `json:"transactionId"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"createdAt"`

	// Metadata holds whatever else the client posted about the selection
	// (class ids, names, quantity).
	Metadata map[string]any `json:"-"`
}

var paymentKeys = []string{"_id", "email", "price", "amount", "currency", "transactionId", "date", "createdAt"}

type paymentFields Payment

func (p *Payment) UnmarshalJSON(data []byte) error {
	var fields paymentFields
	extras, err := decodeWithExtras(data, &fields, paymentKeys)
	if err != nil {
		return err
	}

	*p = Payment(fields)
	p.Metadata = extras
	return nil
}

func (p Payment) MarshalJSON() ([]byte, error) {
	return encodeWithExtras(paymentFields(p), p.Metadata)
}

// PersistedPayment is the result of recording a payment. Replayed is set
// when the processor transaction had already been recorded.
type PersistedPayment struct {
	Payment  Payment
	Replayed bool
}
