package model

import (
	"time"

	"github.com/haeli05/4626/internal/types"
	"github.com/haeli05/4626/internal/vault"
)

const AsyncOperationCollection = "async_operations"

// AsyncOperationDocument is one slot of the async operation arena. Completed
// operations are persisted as zeroed slots so identifiers are never reused
// after a restart.
type AsyncOperationDocument struct {
	ID        uint64    `bson:"_id"`
	User      string    `bson:"user"`
	Amount    string    `bson:"amount"`
	Timestamp time.Time `bson:"timestamp"`
	Kind      string    `bson:"kind"`
}

func NewAsyncOperationDocument(id uint64, op vault.AsyncOperation) *AsyncOperationDocument {
	amount := "0"
	if !op.Amount.IsNil() {
		amount = op.Amount.String()
	}
	return &AsyncOperationDocument{
		ID:        id,
		User:      op.User,
		Amount:    amount,
		Timestamp: op.Timestamp,
		Kind:      string(op.Kind),
	}
}

func (d *AsyncOperationDocument) ToOperation() (vault.AsyncOperation, error) {
	amount, err := parseInt(d.Amount, "amount")
	if err != nil {
		return vault.AsyncOperation{}, err
	}
	return vault.AsyncOperation{
		ID:        d.ID,
		User:      d.User,
		Amount:    amount,
		Timestamp: d.Timestamp,
		Kind:      types.OperationKind(d.Kind),
	}, nil
}
