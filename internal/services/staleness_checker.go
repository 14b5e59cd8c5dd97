package services

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/haeli05/4626/internal/observability/metrics"
	"github.com/haeli05/4626/internal/utils/poller"
)

// StartStalenessChecker watches the price store for subjects whose update
// window has opened. Conversions against such subjects already fail inside
// the engine; the checker only surfaces the condition to operators.
func (s *Service) StartStalenessChecker(ctx context.Context) {
	stalenessPoller := poller.NewPoller(
		s.cfg.Poller.StalenessCheckInterval,
		s.checkStaleness,
	)
	go stalenessPoller.Start(ctx)
}

func (s *Service) checkStaleness(_ context.Context) error {
	var due []string
	for _, id := range s.prices.Subjects() {
		if s.prices.UpdateDue(id) {
			due = append(due, id)
		}
	}

	metrics.RecordStaleSubjectsCount(len(due))
	for _, id := range due {
		log.Warn().
			Str("subject", id).
			Msg("Price update due, conversions against this subject are blocked")
	}
	return nil
}
