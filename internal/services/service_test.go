package services

import (
	"context"
	"sort"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haeli05/4626/internal/clients/currency"
	"github.com/haeli05/4626/internal/clients/gate"
	"github.com/haeli05/4626/internal/clients/shareledger"
	"github.com/haeli05/4626/internal/config"
	"github.com/haeli05/4626/internal/db"
	"github.com/haeli05/4626/internal/pricestore"
	"github.com/haeli05/4626/internal/types"
	"github.com/haeli05/4626/internal/vault"
)

// memDB implements db.DbInterface on plain maps. The services layer only
// needs the storage contract, not mongo itself.
type memDB struct {
	states        map[string]vault.Snapshot
	priceRecords  map[string]pricestore.Record
	contributions map[uint64]vault.Contribution
	operations    map[uint64]vault.AsyncOperation
}

func newMemDB() *memDB {
	return &memDB{
		states:        make(map[string]vault.Snapshot),
		priceRecords:  make(map[string]pricestore.Record),
		contributions: make(map[uint64]vault.Contribution),
		operations:    make(map[uint64]vault.AsyncOperation),
	}
}

func (m *memDB) Ping(_ context.Context) error { return nil }

func (m *memDB) UpsertVaultState(_ context.Context, vaultID string, snapshot vault.Snapshot) error {
	m.states[vaultID] = snapshot
	return nil
}

func (m *memDB) GetVaultState(_ context.Context, vaultID string) (*vault.Snapshot, error) {
	snapshot, ok := m.states[vaultID]
	if !ok {
		return nil, &db.NotFoundError{Key: vaultID, Message: "vault state not found"}
	}
	return &snapshot, nil
}

func (m *memDB) UpsertPriceRecord(_ context.Context, subject string, rec pricestore.Record) error {
	m.priceRecords[subject] = rec
	return nil
}

func (m *memDB) DeletePriceRecord(_ context.Context, subject string) error {
	delete(m.priceRecords, subject)
	return nil
}

func (m *memDB) GetPriceRecords(_ context.Context) (map[string]pricestore.Record, error) {
	records := make(map[string]pricestore.Record, len(m.priceRecords))
	for id, rec := range m.priceRecords {
		records[id] = rec
	}
	return records, nil
}

func (m *memDB) UpsertContribution(_ context.Context, index uint64, contribution vault.Contribution) error {
	m.contributions[index] = contribution
	return nil
}

func (m *memDB) GetContributions(_ context.Context) ([]vault.Contribution, error) {
	indices := make([]uint64, 0, len(m.contributions))
	for idx := range m.contributions {
		indices = append(indices, idx)
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	out := make([]vault.Contribution, 0, len(indices))
	for _, idx := range indices {
		out = append(out, m.contributions[idx])
	}
	return out, nil
}

func (m *memDB) UpsertAsyncOperation(_ context.Context, id uint64, op vault.AsyncOperation) error {
	m.operations[id] = op
	return nil
}

func (m *memDB) GetAsyncOperations(_ context.Context) ([]vault.AsyncOperation, error) {
	ids := make([]uint64, 0, len(m.operations))
	for id := range m.operations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]vault.AsyncOperation, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.operations[id])
	}
	return out, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Vault: config.VaultConfig{
			VaultID:      "vault-main",
			Mode:         "INTERNAL_RATIO",
			FeeRateBps:   50,
			MaxFeeBps:    1000,
			MinDeposit:   "100",
			VaultAddress: "vault",
			FeeRecipient: "treasury",
			Operators:    []string{"operator"},
		},
		Oracle: config.OracleConfig{
			Subjects: []config.OracleSubjectConfig{
				{
					Id:             "vault-main",
					InitialPrice:   "1000000",
					UpdateInterval: time.Hour,
				},
			},
		},
	}
}

func newTestService(t *testing.T, database db.DbInterface) (*Service, *currency.MemClient) {
	t.Helper()

	cur := currency.NewMemClient("vault")
	srv, err := NewService(testConfig(), database, cur, shareledger.NewMemClient(), gate.NewMemClient("operator"), nil)
	require.NoError(t, err)
	return srv, cur
}

func TestBootstrap(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh database seeds oracle subjects from config", func(t *testing.T) {
		database := newMemDB()
		srv, _ := newTestService(t, database)

		require.NoError(t, srv.Bootstrap(ctx))

		price, err := srv.GetPrice("vault-main")
		require.NoError(t, err)
		assert.Equal(t, sdkmath.NewInt(1_000_000), price)

		// the seed is also written through
		assert.Contains(t, database.priceRecords, "vault-main")
	})

	t.Run("persisted price record wins over the config seed", func(t *testing.T) {
		database := newMemDB()
		database.priceRecords["vault-main"] = pricestore.Record{
			Price:          sdkmath.NewInt(2_000_000),
			LastUpdateTime: time.Now(),
			UpdateInterval: time.Hour,
			Active:         true,
		}
		srv, _ := newTestService(t, database)

		require.NoError(t, srv.Bootstrap(ctx))

		price, err := srv.GetPrice("vault-main")
		require.NoError(t, err)
		assert.Equal(t, sdkmath.NewInt(2_000_000), price)
	})

	t.Run("rehydrates persisted vault state", func(t *testing.T) {
		database := newMemDB()
		database.states["vault-main"] = vault.Snapshot{
			TotalAssets:        sdkmath.NewInt(9_950),
			TotalShares:        sdkmath.NewInt(9_950),
			FeeRateBps:         50,
			AccumulatedFees:    sdkmath.NewInt(50),
			MinDeposit:         sdkmath.NewInt(100),
			PendingLiquidation: sdkmath.NewInt(9_950),
			UnwindCursor:       0,
			WriteCursor:        1,
			OperationArenaSize: 2,
		}
		database.contributions[0] = vault.Contribution{
			Contributor: "alice",
			Amount:      sdkmath.NewInt(9_950),
			Timestamp:   time.Now(),
			Active:      true,
		}
		// slot 1 completed, slot 2 still pending
		database.operations[1] = vault.AsyncOperation{ID: 1, Amount: sdkmath.ZeroInt()}
		database.operations[2] = vault.AsyncOperation{
			ID:        2,
			User:      "alice",
			Amount:    sdkmath.NewInt(500),
			Timestamp: time.Now(),
			Kind:      types.OperationDeposit,
		}

		srv, _ := newTestService(t, database)
		require.NoError(t, srv.Bootstrap(ctx))

		ledger := srv.Ledger()
		assert.Equal(t, sdkmath.NewInt(9_950), ledger.TotalAssets())
		assert.Equal(t, sdkmath.NewInt(9_950), ledger.TotalShares())
		assert.Equal(t, sdkmath.NewInt(50), ledger.AccumulatedFees())
		assert.Len(t, ledger.Contributions(), 1)
		require.Len(t, ledger.PendingOperations(), 1)
		assert.Equal(t, uint64(2), ledger.PendingOperations()[0].ID)
	})

	t.Run("fresh vault state is not an error", func(t *testing.T) {
		srv, _ := newTestService(t, newMemDB())
		require.NoError(t, srv.Bootstrap(ctx))
		assert.True(t, srv.Ledger().TotalAssets().IsZero())
	})
}

func TestHandleEventPersistsState(t *testing.T) {
	ctx := context.Background()
	database := newMemDB()
	srv, cur := newTestService(t, database)
	require.NoError(t, srv.Bootstrap(ctx))

	cur.SetBalance("alice", sdkmath.NewInt(10_000))
	cur.Approve("alice", "vault", sdkmath.NewInt(10_000))
	_, err := srv.Ledger().Deposit(ctx, "alice", "alice", sdkmath.NewInt(10_000))
	require.NoError(t, err)

	// drain the event the deposit emitted, as processEvents would
	select {
	case event := <-srv.events:
		assert.Equal(t, types.EventDeposit, event.Type)
		require.NoError(t, srv.handleEvent(ctx, event))
	default:
		t.Fatal("expected a deposit event")
	}

	stored, ok := database.states["vault-main"]
	require.True(t, ok)
	assert.Equal(t, sdkmath.NewInt(9_950), stored.TotalAssets)
	assert.Contains(t, database.contributions, uint64(0))
}

func TestOracleWrappers(t *testing.T) {
	ctx := context.Background()
	database := newMemDB()
	srv, _ := newTestService(t, database)
	require.NoError(t, srv.Bootstrap(ctx))

	t.Run("mutations require the price-setter role", func(t *testing.T) {
		err := srv.AddAsset(ctx, "alice", "asset-2", sdkmath.NewInt(500_000), time.Hour)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrUnauthorized)

		err = srv.UpdatePrice(ctx, "alice", "vault-main", sdkmath.NewInt(600_000))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrUnauthorized)

		err = srv.RemoveAsset(ctx, "alice", "vault-main")
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrUnauthorized)

		err = srv.SetUpdateInterval(ctx, "alice", "vault-main", time.Minute)
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrUnauthorized)

		assert.NotContains(t, database.priceRecords, "asset-2")
	})

	t.Run("add asset persists and emits", func(t *testing.T) {
		require.NoError(t, srv.AddAsset(ctx, "operator", "asset-2", sdkmath.NewInt(500_000), time.Hour))
		assert.Contains(t, database.priceRecords, "asset-2")

		event := <-srv.events
		assert.Equal(t, types.EventAssetAdded, event.Type)
	})

	t.Run("update rejected inside the interval", func(t *testing.T) {
		err := srv.UpdatePrice(ctx, "operator", "asset-2", sdkmath.NewInt(600_000))
		require.Error(t, err)
		assert.ErrorIs(t, err, types.ErrTooFrequent)
	})

	t.Run("remove asset deletes the record", func(t *testing.T) {
		require.NoError(t, srv.RemoveAsset(ctx, "operator", "asset-2"))
		assert.NotContains(t, database.priceRecords, "asset-2")

		event := <-srv.events
		assert.Equal(t, types.EventAssetRemoved, event.Type)
	})
}
