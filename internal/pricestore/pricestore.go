package pricestore

import (
	"fmt"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/haeli05/4626/internal/types"
)

// PriceScale is the fixed-point scale of every price: 6 implied decimals,
// so 1_000_000 represents a price of 1.0.
var PriceScale = sdkmath.NewInt(1_000_000)

// Record holds the pricing state for one subject (a vault or asset id).
// A record must be Active for its price to be read or used in a conversion.
type Record struct {
	Price          sdkmath.Int
	LastUpdateTime time.Time
	UpdateInterval time.Duration
	Active         bool
}

// Store owns the per-subject price records. One instance per vault; the
// engine references records by subject id and never owns them.
//
// Staleness is deliberately defined as "an update is currently permitted":
// once the minimum interval since the last update has elapsed, the price is
// no longer trusted until a fresh one is pushed. A single minimum-interval
// gate forces an active heartbeat instead of letting prices age out silently.
type Store struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source. Tests use this to cross the
// update-interval boundary deterministically.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		records: make(map[string]Record),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSubject creates the price record for a subject. The record starts
// active with LastUpdateTime set to now, so the price is trusted for one
// full interval before a heartbeat is required.
func (s *Store) AddSubject(id string, initialPrice sdkmath.Int, updateInterval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[id]; ok && rec.Active {
		return fmt.Errorf("subject %s: %w", id, types.ErrAlreadyActive)
	}
	if initialPrice.IsNil() || !initialPrice.IsPositive() {
		return types.ErrInvalidPrice
	}
	if updateInterval <= 0 {
		return types.ErrInvalidInterval
	}

	s.records[id] = Record{
		Price:          initialPrice,
		LastUpdateTime: s.now(),
		UpdateInterval: updateInterval,
		Active:         true,
	}
	return nil
}

// UpdatePrice overwrites the subject's price and timestamp. It fails with
// TooFrequent strictly before LastUpdateTime + UpdateInterval and succeeds
// exactly at and after that boundary. Returns the previous price for event
// emission.
func (s *Store) UpdatePrice(id string, newPrice sdkmath.Int) (sdkmath.Int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || !rec.Active {
		return sdkmath.Int{}, fmt.Errorf("subject %s: %w", id, types.ErrNotActive)
	}
	if s.now().Before(rec.LastUpdateTime.Add(rec.UpdateInterval)) {
		return sdkmath.Int{}, fmt.Errorf("subject %s: %w", id, types.ErrTooFrequent)
	}
	if newPrice.IsNil() || !newPrice.IsPositive() {
		return sdkmath.Int{}, types.ErrInvalidPrice
	}

	prev := rec.Price
	rec.Price = newPrice
	rec.LastUpdateTime = s.now()
	s.records[id] = rec
	return prev, nil
}

// RemoveSubject clears the record. The subject is inactive until re-added.
func (s *Store) RemoveSubject(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || !rec.Active {
		return fmt.Errorf("subject %s: %w", id, types.ErrNotActive)
	}
	delete(s.records, id)
	return nil
}

// SetUpdateInterval replaces the minimum update interval without touching
// LastUpdateTime.
func (s *Store) SetUpdateInterval(id string, newInterval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || !rec.Active {
		return fmt.Errorf("subject %s: %w", id, types.ErrNotActive)
	}
	if newInterval <= 0 {
		return types.ErrInvalidInterval
	}

	rec.UpdateInterval = newInterval
	s.records[id] = rec
	return nil
}

// GetPrice returns the subject's current price, failing if the subject is
// inactive. Freshness is not checked here; callers that need a trusted
// price must also consult UpdateDue.
func (s *Store) GetPrice(id string) (sdkmath.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || !rec.Active {
		return sdkmath.Int{}, fmt.Errorf("subject %s: %w", id, types.ErrNotActive)
	}
	return rec.Price, nil
}

// UpdateDue reports whether the subject's price can no longer be trusted:
// true if the subject is inactive or the minimum update interval has
// elapsed since the last update.
func (s *Store) UpdateDue(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || !rec.Active {
		return true
	}
	return !s.now().Before(rec.LastUpdateTime.Add(rec.UpdateInterval))
}

// Get returns a snapshot of the subject's record for persistence.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	return rec, ok
}

// Restore installs a previously persisted record verbatim. Used when
// rehydrating engine state at startup; bypasses the AlreadyActive check.
func (s *Store) Restore(id string, rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[id] = rec
}

// Subjects returns the ids of all active subjects.
func (s *Store) Subjects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id, rec := range s.records {
		if rec.Active {
			ids = append(ids, id)
		}
	}
	return ids
}
