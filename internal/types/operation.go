package types

import "fmt"

// Enum values for two-phase operation kind
type OperationKind string

const (
	OperationDeposit OperationKind = "DEPOSIT"
	OperationRedeem  OperationKind = "REDEEM"
)

func (k OperationKind) String() string {
	return string(k)
}

func (k OperationKind) Validate() error {
	switch k {
	case OperationDeposit, OperationRedeem:
		return nil
	default:
		return fmt.Errorf("unknown operation kind: %s", k)
	}
}
