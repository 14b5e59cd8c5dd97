package db

import (
	"context"
	"time"

	"github.com/haeli05/4626/internal/observability/metrics"
	"github.com/haeli05/4626/internal/pricestore"
	"github.com/haeli05/4626/internal/vault"
)

type DbWithMetrics struct {
	db DbInterface
}

func NewDbWithMetrics(db DbInterface) *DbWithMetrics {
	return &DbWithMetrics{db: db}
}

func (d *DbWithMetrics) Ping(ctx context.Context) error {
	return d.db.Ping(ctx)
}

func (d *DbWithMetrics) UpsertVaultState(ctx context.Context, vaultID string, snapshot vault.Snapshot) error {
	return d.run("UpsertVaultState", func() error {
		return d.db.UpsertVaultState(ctx, vaultID, snapshot)
	})
}

func (d *DbWithMetrics) GetVaultState(ctx context.Context, vaultID string) (result *vault.Snapshot, err error) {
	//nolint:errcheck
	d.run("GetVaultState", func() error {
		result, err = d.db.GetVaultState(ctx, vaultID)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertPriceRecord(ctx context.Context, subject string, rec pricestore.Record) error {
	return d.run("UpsertPriceRecord", func() error {
		return d.db.UpsertPriceRecord(ctx, subject, rec)
	})
}

func (d *DbWithMetrics) DeletePriceRecord(ctx context.Context, subject string) error {
	return d.run("DeletePriceRecord", func() error {
		return d.db.DeletePriceRecord(ctx, subject)
	})
}

func (d *DbWithMetrics) GetPriceRecords(ctx context.Context) (result map[string]pricestore.Record, err error) {
	//nolint:errcheck
	d.run("GetPriceRecords", func() error {
		result, err = d.db.GetPriceRecords(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertContribution(ctx context.Context, index uint64, contribution vault.Contribution) error {
	return d.run("UpsertContribution", func() error {
		return d.db.UpsertContribution(ctx, index, contribution)
	})
}

func (d *DbWithMetrics) GetContributions(ctx context.Context) (result []vault.Contribution, err error) {
	//nolint:errcheck
	d.run("GetContributions", func() error {
		result, err = d.db.GetContributions(ctx)
		return err
	})
	return
}

func (d *DbWithMetrics) UpsertAsyncOperation(ctx context.Context, id uint64, op vault.AsyncOperation) error {
	return d.run("UpsertAsyncOperation", func() error {
		return d.db.UpsertAsyncOperation(ctx, id, op)
	})
}

func (d *DbWithMetrics) GetAsyncOperations(ctx context.Context) (result []vault.AsyncOperation, err error) {
	//nolint:errcheck
	d.run("GetAsyncOperations", func() error {
		result, err = d.db.GetAsyncOperations(ctx)
		return err
	})
	return
}

// run is private method that executes passed lambda function and send metrics data with spent time, method name
// and an error if any. It returns the error from the lambda function for convenience
func (d *DbWithMetrics) run(method string, f func() error) error {
	startTime := time.Now()
	err := f()
	duration := time.Since(startTime)

	metrics.RecordDbLatency(duration, method, err != nil)
	return err
}
