package db

import (
	"context"

	"github.com/haeli05/4626/internal/pricestore"
	"github.com/haeli05/4626/internal/vault"
)

type DbInterface interface {
	Ping(ctx context.Context) error

	UpsertVaultState(ctx context.Context, vaultID string, snapshot vault.Snapshot) error
	GetVaultState(ctx context.Context, vaultID string) (*vault.Snapshot, error)

	UpsertPriceRecord(ctx context.Context, subject string, rec pricestore.Record) error
	DeletePriceRecord(ctx context.Context, subject string) error
	GetPriceRecords(ctx context.Context) (map[string]pricestore.Record, error)

	UpsertContribution(ctx context.Context, index uint64, contribution vault.Contribution) error
	GetContributions(ctx context.Context) ([]vault.Contribution, error)

	UpsertAsyncOperation(ctx context.Context, id uint64, op vault.AsyncOperation) error
	GetAsyncOperations(ctx context.Context) ([]vault.AsyncOperation, error)
}
