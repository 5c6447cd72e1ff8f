package amqp

import (
	"encoding/json"
	"time"
)

const (
	OpUpsert = "upsert"
	OpDelete = "delete"
)

// PaymentSyncMessage is a lightweight backup trigger. It carries only the
// payment ID and the operation; the worker fetches the full payment from the
// database, so a stale message never overwrites newer data.
type PaymentSyncMessage struct {
	PaymentID string    `json:"payment_id"`
	Op        string    `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

func NewPaymentSyncMessage(paymentID string) *PaymentSyncMessage {
	return &PaymentSyncMessage{
		PaymentID: paymentID,
		Op:        OpUpsert,
		Timestamp: time.Now(),
	}
}

func NewPaymentDeleteMessage(paymentID string) *PaymentSyncMessage {
	return &PaymentSyncMessage{
		PaymentID: paymentID,
		Op:        OpDelete,
		Timestamp: time.Now(),
	}
}

func (m *PaymentSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func PaymentSyncMessageFromJSON(data []byte) (*PaymentSyncMessage, error) {
	var msg PaymentSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
