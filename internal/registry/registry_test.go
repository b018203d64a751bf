package registry

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/killallgit/coffeebreak-api/internal/database"
	"github.com/killallgit/coffeebreak-api/internal/models"
	apperrors "github.com/killallgit/coffeebreak-api/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *database.DB {
	db, err := database.Initialize(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRegistry_InsertAndVariants(t *testing.T) {
	reg := New()

	err := reg.Update(func(tx Tx) error {
		e, inserted := tx.InsertCanonical("Héctor Socas")
		assert.True(t, inserted)
		assert.Equal(t, "Héctor Socas", e.Canonical)

		// Same folded key returns the existing entry
		e, inserted = tx.InsertCanonical("Hector Socas")
		assert.False(t, inserted)
		assert.Equal(t, "Héctor Socas", e.Canonical)

		return tx.RecordVariant("Héctor Socas", "Hector Socas")
	})
	require.NoError(t, err)

	assert.Equal(t, 1, reg.Len())
	entry, ok := reg.Lookup("HECTOR SOCAS")
	require.True(t, ok)
	assert.Equal(t, []string{"Héctor Socas", "Hector Socas"}, entry.Variants)
}

func TestRegistry_RecordVariantIsIdempotent(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Update(func(tx Tx) error {
		tx.InsertCanonical("Sara Robisco")
		for i := 0; i < 3; i++ {
			if err := tx.RecordVariant("Sara Robisco", "Sara Robisco Cavite"); err != nil {
				return err
			}
		}
		return nil
	}))

	entry, ok := reg.Lookup("Sara Robisco Cavite")
	require.True(t, ok)
	assert.Len(t, entry.Variants, 2)
}

func TestRegistry_RecordVariantUnknownCanonical(t *testing.T) {
	reg := New()
	err := reg.Update(func(tx Tx) error {
		return tx.RecordVariant("Nadie", "nadie")
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound))
}

func TestRegistry_UpdateRollsBackOnError(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Update(func(tx Tx) error {
		tx.InsertCanonical("Alberto Aparici")
		return nil
	}))

	boom := errors.New("boom")
	err := reg.Update(func(tx Tx) error {
		tx.InsertCanonical("José Edelstein")
		_ = tx.RecordVariant("Alberto Aparici", "Alberto Apariçi")
		tx.RecordDecision(models.NameDecision{ID: "d1", Raw: "x"})
		return boom
	})
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"Alberto Aparici"}, reg.Sorted())
	_, ok := reg.Lookup("José Edelstein")
	assert.False(t, ok)
	entry, _ := reg.Lookup("Alberto Aparici")
	assert.Equal(t, []string{"Alberto Aparici"}, entry.Variants)
	assert.Empty(t, reg.Decisions())
}

func TestRegistry_ConcurrentInsertsDoNotDuplicate(t *testing.T) {
	reg := New()
	spellings := []string{"Héctor Socas", "Hector Socas", "HÉCTOR SOCAS", "hector socas"}

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := spellings[i%len(spellings)]
			_ = reg.Update(func(tx Tx) error {
				e, _ := tx.InsertCanonical(name)
				return tx.RecordVariant(e.Canonical, name)
			})
			reg.Snapshot()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, reg.Len())
}

func TestRepository_FlushAndLoad(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db.DB)
	ctx := context.Background()

	reg := New()
	require.NoError(t, reg.Update(func(tx Tx) error {
		tx.InsertCanonical("Héctor Socas")
		tx.InsertCanonical("Francis Villatoro")
		if err := tx.RecordVariant("Francis Villatoro", "Francis VIllatoro"); err != nil {
			return err
		}
		tx.RecordDecision(models.NameDecision{ID: "dec-1", Raw: "Francis VIllatoro", Canonical: "Francis Villatoro", Outcome: "matched"})
		return nil
	}))

	stats, err := repo.Flush(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Participants)
	assert.Equal(t, 3, stats.Variants)
	assert.Equal(t, 1, stats.Decisions)

	// A second flush has nothing left to write
	stats, err = repo.Flush(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, FlushStats{}, stats)

	loaded, err := repo.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Francis Villatoro", "Héctor Socas"}, loaded.Sorted())
	entry, ok := loaded.Lookup("francis villatoro")
	require.True(t, ok)
	assert.Equal(t, []string{"Francis Villatoro", "Francis VIllatoro"}, entry.Variants)
	require.Len(t, loaded.Decisions(), 1)

	// Appending to a loaded registry only writes the new rows
	require.NoError(t, loaded.Update(func(tx Tx) error {
		return tx.RecordVariant("Héctor Socas", "Hector Socas")
	}))
	stats, err = repo.Flush(ctx, loaded)
	require.NoError(t, err)
	assert.Equal(t, FlushStats{Variants: 1}, stats)

	participants, err := repo.ListParticipants(ctx)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	assert.Equal(t, "Francis Villatoro", participants[0].Canonical)
	assert.Len(t, participants[1].Variants, 2)

	decisions, err := repo.ListDecisions(ctx, "matched", 10)
	require.NoError(t, err)
	assert.Len(t, decisions, 1)
	decisions, err = repo.ListDecisions(ctx, "ambiguous", 10)
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func TestSeed(t *testing.T) {
	seed := `{
		"normalized": {
			"Héctor Socas": ["Hector Socas", "Héctor Socas Navarro"],
			"Ángel López-Sánchez": []
		},
		"aliases": {"Angel Lopez Sanchez": "Ángel López-Sánchez", "Sara Robisco": "Sara Robisco"}
	}`

	reg := New()
	added, err := Seed(reg, strings.NewReader(seed))
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	entry, ok := reg.Lookup("Héctor Socas Navarro")
	require.True(t, ok)
	assert.Equal(t, "Héctor Socas", entry.Canonical)

	entry, ok = reg.Lookup("angel lopez sanchez")
	require.True(t, ok)
	assert.Equal(t, "Ángel López-Sánchez", entry.Canonical)

	_, err = Seed(reg, strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "coffeebreak.db.lock")

	first, err := AcquireLock(path)
	require.NoError(t, err)

	_, err = AcquireLock(path)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrCodeLocked), fmt.Sprint(err))

	require.NoError(t, first.Release())

	again, err := AcquireLock(path)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}
