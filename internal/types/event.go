package types

import (
	"time"

	sdkmath "cosmossdk.io/math"
)

type EventTypes string

func (e EventTypes) String() string {
	return string(e)
}

const (
	EventPriceUpdated            EventTypes = "vault.oracle.PriceUpdated"
	EventAssetAdded              EventTypes = "vault.oracle.AssetAdded"
	EventAssetRemoved            EventTypes = "vault.oracle.AssetRemoved"
	EventDeposit                 EventTypes = "vault.ledger.Deposit"
	EventWithdraw                EventTypes = "vault.ledger.Withdraw"
	EventUnstake                 EventTypes = "vault.ledger.Unstake"
	EventAdminWithdraw           EventTypes = "vault.ledger.AdminWithdraw"
	EventFeeUpdated              EventTypes = "vault.ledger.FeeUpdated"
	EventFeesCollected           EventTypes = "vault.ledger.FeesCollected"
	EventAsyncDepositInitiated   EventTypes = "vault.async.DepositInitiated"
	EventAsyncRedeemInitiated    EventTypes = "vault.async.RedeemInitiated"
	EventAsyncOperationCompleted EventTypes = "vault.async.OperationCompleted"
)

// Event is the envelope the engine hands to its sink. Payload is one of the
// typed payload structs below.
type Event struct {
	Type      EventTypes  `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

type PriceUpdatedPayload struct {
	Subject  string      `json:"subject"`
	OldPrice sdkmath.Int `json:"old_price"`
	NewPrice sdkmath.Int `json:"new_price"`
}

type AssetAddedPayload struct {
	Subject        string      `json:"subject"`
	InitialPrice   sdkmath.Int `json:"initial_price"`
	UpdateInterval int64       `json:"update_interval_seconds"`
}

type AssetRemovedPayload struct {
	Subject string `json:"subject"`
}

type DepositPayload struct {
	Caller   string      `json:"caller"`
	Receiver string      `json:"receiver"`
	Assets   sdkmath.Int `json:"assets"`
	Shares   sdkmath.Int `json:"shares"`
	Fee      sdkmath.Int `json:"fee"`
}

type WithdrawPayload struct {
	Caller   string      `json:"caller"`
	Receiver string      `json:"receiver"`
	Owner    string      `json:"owner"`
	Assets   sdkmath.Int `json:"assets"`
	Shares   sdkmath.Int `json:"shares"`
}

type UnstakePayload struct {
	Staker string      `json:"staker"`
	Assets sdkmath.Int `json:"assets"`
	Shares sdkmath.Int `json:"shares"`
}

type AdminWithdrawPayload struct {
	Caller   string      `json:"caller"`
	Receiver string      `json:"receiver"`
	Assets   sdkmath.Int `json:"assets"`
}

type FeeUpdatedPayload struct {
	OldRateBps uint32 `json:"old_rate_bps"`
	NewRateBps uint32 `json:"new_rate_bps"`
}

type FeesCollectedPayload struct {
	Receiver string      `json:"receiver"`
	Amount   sdkmath.Int `json:"amount"`
}

type AsyncInitiatedPayload struct {
	OperationID uint64      `json:"operation_id"`
	User        string      `json:"user"`
	Amount      sdkmath.Int `json:"amount"`
}

type AsyncCompletedPayload struct {
	OperationID uint64      `json:"operation_id"`
	User        string      `json:"user"`
	Amount      sdkmath.Int `json:"amount"`
	IsDeposit   bool        `json:"is_deposit"`
}

// EventSink receives engine events. Implementations must not call back into
// the engine.
type EventSink interface {
	Emit(event Event)
}

// NoopSink discards events.
type NoopSink struct{}

func (NoopSink) Emit(Event) {}
