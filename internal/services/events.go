package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/haeli05/4626/internal/types"
)

// Emit implements types.EventSink. It is called synchronously from inside
// the ledger's re-entrancy guard, so it must not call back into the engine
// and must not block: a full buffer drops the event with a warning rather
// than stalling a vault operation.
func (s *Service) Emit(event types.Event) {
	select {
	case s.events <- event:
	default:
		log.Warn().Stringer("event_type", event.Type).Msg("Event buffer full, dropping event")
	}
}

// processEvents drains the engine event channel: each event is logged,
// published to the queue and followed by a state write-through.
func (s *Service) processEvents(ctx context.Context) {
	log.Info().Msg("Starting event processor")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Event processor stopped due to context cancellation")
			return
		case event := <-s.events:
			if err := s.handleEvent(ctx, event); err != nil {
				log.Error().Err(err).Stringer("event_type", event.Type).Msg("Failed to handle event")
			}
		}
	}
}

func (s *Service) handleEvent(ctx context.Context, event types.Event) error {
	log.Debug().
		Stringer("event_type", event.Type).
		Time("event_time", event.Timestamp).
		Msg("Processing engine event")

	if s.queueManager != nil {
		if err := s.queueManager.PushEvent(ctx, event); err != nil {
			// persistence still proceeds; the queue is best effort
			log.Error().Err(err).Stringer("event_type", event.Type).Msg("Failed to publish event")
		}
	}

	if err := s.persistVaultState(ctx); err != nil {
		return fmt.Errorf("failed to persist vault state: %w", err)
	}
	return nil
}
