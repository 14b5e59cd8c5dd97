package services

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog/log"

	"github.com/haeli05/4626/internal/types"
)

// AddAsset registers a new oracle subject, persists it and announces it.
// Price-setter role only.
func (s *Service) AddAsset(ctx context.Context, caller, subject string, initialPrice sdkmath.Int, updateInterval time.Duration) error {
	if err := s.requirePriceSetter(ctx, caller); err != nil {
		return err
	}
	if err := s.prices.AddSubject(subject, initialPrice, updateInterval); err != nil {
		return err
	}
	if err := s.persistPriceRecord(ctx, subject); err != nil {
		return err
	}

	s.Emit(types.Event{
		Type:      types.EventAssetAdded,
		Timestamp: time.Now(),
		Payload: types.AssetAddedPayload{
			Subject:        subject,
			InitialPrice:   initialPrice,
			UpdateInterval: int64(updateInterval / time.Second),
		},
	})
	log.Info().Str("subject", subject).Stringer("price", initialPrice).Msg("Oracle subject added")
	return nil
}

// UpdatePrice pushes a fresh price for the subject, subject to the minimum
// update interval. Price-setter role only.
func (s *Service) UpdatePrice(ctx context.Context, caller, subject string, newPrice sdkmath.Int) error {
	if err := s.requirePriceSetter(ctx, caller); err != nil {
		return err
	}
	oldPrice, err := s.prices.UpdatePrice(subject, newPrice)
	if err != nil {
		return err
	}
	if err := s.persistPriceRecord(ctx, subject); err != nil {
		return err
	}

	s.Emit(types.Event{
		Type:      types.EventPriceUpdated,
		Timestamp: time.Now(),
		Payload: types.PriceUpdatedPayload{
			Subject:  subject,
			OldPrice: oldPrice,
			NewPrice: newPrice,
		},
	})
	return nil
}

// RemoveAsset deactivates the subject and deletes its persisted record.
// Price-setter role only.
func (s *Service) RemoveAsset(ctx context.Context, caller, subject string) error {
	if err := s.requirePriceSetter(ctx, caller); err != nil {
		return err
	}
	if err := s.prices.RemoveSubject(subject); err != nil {
		return err
	}
	if err := s.db.DeletePriceRecord(ctx, subject); err != nil {
		return fmt.Errorf("failed to delete price record for %s: %w", subject, err)
	}

	s.Emit(types.Event{
		Type:      types.EventAssetRemoved,
		Timestamp: time.Now(),
		Payload:   types.AssetRemovedPayload{Subject: subject},
	})
	log.Info().Str("subject", subject).Msg("Oracle subject removed")
	return nil
}

// SetUpdateInterval changes the subject's minimum update interval without
// resetting its heartbeat. Price-setter role only.
func (s *Service) SetUpdateInterval(ctx context.Context, caller, subject string, interval time.Duration) error {
	if err := s.requirePriceSetter(ctx, caller); err != nil {
		return err
	}
	if err := s.prices.SetUpdateInterval(subject, interval); err != nil {
		return err
	}
	return s.persistPriceRecord(ctx, subject)
}

// GetPrice exposes the subject's current price.
func (s *Service) GetPrice(subject string) (sdkmath.Int, error) {
	return s.prices.GetPrice(subject)
}

// requirePriceSetter rejects price-store mutations from callers outside
// the operator set.
func (s *Service) requirePriceSetter(ctx context.Context, caller string) error {
	ok, err := s.gate.IsAuthorized(ctx, caller)
	if err != nil {
		return fmt.Errorf("failed to check authorization: %w", err)
	}
	if !ok {
		return fmt.Errorf("caller %s: %w", caller, types.ErrUnauthorized)
	}
	return nil
}

func (s *Service) persistPriceRecord(ctx context.Context, subject string) error {
	rec, ok := s.prices.Get(subject)
	if !ok {
		return fmt.Errorf("subject %s: %w", subject, types.ErrNotFound)
	}
	if err := s.db.UpsertPriceRecord(ctx, subject, rec); err != nil {
		return fmt.Errorf("failed to persist price record for %s: %w", subject, err)
	}
	return nil
}
