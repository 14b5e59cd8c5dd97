package services

import (
	"context"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/observability/metrics"
	"github.com/haeli05/4626/internal/utils/poller"
)

// intToFloat is lossy above 2^53; the gauges are indicative only.
func intToFloat(v sdkmath.Int) float64 {
	f, _ := new(big.Float).SetInt(v.BigInt()).Float64()
	return f
}

// StartStateSync runs a periodic write-through of the full engine state.
// Events already persist after every mutation; the poller is the backstop
// that also refreshes the pool gauges.
func (s *Service) StartStateSync(ctx context.Context) {
	stateSyncPoller := poller.NewPoller(
		s.cfg.Poller.VaultSyncInterval,
		s.syncState,
	)
	go stateSyncPoller.Start(ctx)
}

func (s *Service) syncState(ctx context.Context) error {
	if err := s.persistVaultState(ctx); err != nil {
		return err
	}

	snapshot := s.ledger.Snapshot()
	metrics.RecordPoolTotals(
		intToFloat(snapshot.TotalAssets),
		intToFloat(snapshot.TotalShares),
		intToFloat(snapshot.AccumulatedFees),
	)
	metrics.RecordPendingOperationsCount(len(s.ledger.PendingOperations()))
	return nil
}

// persistVaultState writes the aggregate snapshot, the contribution log and
// the async operation arena through to the database.
func (s *Service) persistVaultState(ctx context.Context) error {
	snapshot := s.ledger.Snapshot()
	if err := s.db.UpsertVaultState(ctx, s.cfg.Vault.VaultID, snapshot); err != nil {
		return fmt.Errorf("failed to upsert vault state: %w", err)
	}

	for idx, contribution := range s.ledger.Contributions() {
		if err := s.db.UpsertContribution(ctx, uint64(idx), contribution); err != nil {
			return fmt.Errorf("failed to upsert contribution %d: %w", idx, err)
		}
	}

	for idx, op := range s.ledger.Operations() {
		id := uint64(idx) + 1
		if err := s.db.UpsertAsyncOperation(ctx, id, op); err != nil {
			return fmt.Errorf("failed to upsert async operation %d: %w", id, err)
		}
	}
	return nil
}
