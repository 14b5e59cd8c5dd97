package services

import (
	"context"
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/haeli05/4626/internal/db"
)

// Bootstrap rehydrates the engine from the database. Seed subjects from the
// config are installed only when the database holds no record for them, so
// persisted oracle state always wins over the config file.
func (s *Service) Bootstrap(ctx context.Context) error {
	records, err := s.db.GetPriceRecords(ctx)
	if err != nil {
		return fmt.Errorf("failed to load price records: %w", err)
	}
	for id, rec := range records {
		s.prices.Restore(id, rec)
	}

	for _, seed := range s.cfg.Oracle.Subjects {
		if _, ok := records[seed.Id]; ok {
			continue
		}
		price, ok := sdkmath.NewIntFromString(seed.InitialPrice)
		if !ok {
			return fmt.Errorf("invalid seed price for subject %s: %q", seed.Id, seed.InitialPrice)
		}
		if err := s.prices.AddSubject(seed.Id, price, seed.UpdateInterval); err != nil {
			return fmt.Errorf("failed to seed subject %s: %w", seed.Id, err)
		}
		rec, _ := s.prices.Get(seed.Id)
		if err := s.db.UpsertPriceRecord(ctx, seed.Id, rec); err != nil {
			return fmt.Errorf("failed to persist seed subject %s: %w", seed.Id, err)
		}
		log.Info().Str("subject", seed.Id).Msg("Seeded oracle subject from config")
	}

	snapshot, err := s.db.GetVaultState(ctx, s.cfg.Vault.VaultID)
	if err != nil {
		if db.IsNotFoundError(err) {
			log.Info().Str("vault_id", s.cfg.Vault.VaultID).Msg("No persisted vault state, starting fresh")
			return nil
		}
		return fmt.Errorf("failed to load vault state: %w", err)
	}

	contributions, err := s.db.GetContributions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load contributions: %w", err)
	}

	operations, err := s.db.GetAsyncOperations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load async operations: %w", err)
	}

	s.ledger.RestoreSnapshot(*snapshot)
	s.ledger.RestoreContributions(contributions)
	s.ledger.RestoreOperations(operations, snapshot.OperationArenaSize)

	log.Info().
		Str("vault_id", s.cfg.Vault.VaultID).
		Stringer("total_assets", snapshot.TotalAssets).
		Stringer("total_shares", snapshot.TotalShares).
		Uint64("write_cursor", snapshot.WriteCursor).
		Uint64("operation_arena_size", snapshot.OperationArenaSize).
		Msg("Rehydrated vault state")
	return nil
}
