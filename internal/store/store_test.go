package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idchain/internal/crypto"
	"idchain/internal/domain"
	"idchain/internal/protocol/changehistory"
	"idchain/internal/store"
)

type closer interface{ Close() error }

func backends(t *testing.T) map[string]domain.IdentitiesRepository {
	t.Helper()
	dir := t.TempDir()

	files, err := store.NewFileRepository(filepath.Join(dir, "identities"))
	require.NoError(t, err)
	sqlite, err := store.OpenSQLiteRepository(filepath.Join(dir, "identities.sqlite"))
	require.NoError(t, err)
	bolt, err := store.OpenBoltRepository(filepath.Join(dir, "identities.bolt"))
	require.NoError(t, err)

	repos := map[string]domain.IdentitiesRepository{
		"memory": store.NewMemoryRepository(),
		"file":   files,
		"sqlite": sqlite,
		"bolt":   bolt,
	}
	t.Cleanup(func() {
		for _, r := range repos {
			if c, ok := r.(closer); ok {
				_ = c.Close()
			}
		}
	})
	return repos
}

// chain builds signed histories for tests.
type chain struct {
	t       *testing.T
	history domain.ChangeHistory
	signer  changehistory.SignFunc
	at      time.Time
}

func newChain(t *testing.T) *chain {
	t.Helper()
	secret, pub, err := crypto.GenerateKey(domain.KeyTypeEd25519)
	require.NoError(t, err)
	sign := func(p []byte) ([]byte, error) { return crypto.Sign(secret, p) }
	at := time.Unix(1_700_000_000, 0)
	root, err := changehistory.NewChange(changehistory.RootData(pub, nil, at), sign)
	require.NoError(t, err)
	return &chain{t: t, history: domain.ChangeHistory{root}, signer: sign, at: at}
}

func (c *chain) id() domain.Identifier { return crypto.IdentifierOf(c.history[0]) }

// extended returns a copy of the history with one more change. The chain
// itself is not advanced, so calling it twice yields two sibling forks.
func (c *chain) extended() domain.ChangeHistory {
	c.t.Helper()
	verified, err := changehistory.Verify(nil, c.history, nil)
	require.NoError(c.t, err)
	_, pub, err := crypto.GenerateKey(domain.KeyTypeEd25519)
	require.NoError(c.t, err)
	last := verified.Changes[len(verified.Changes)-1]
	change, err := changehistory.NewChange(changehistory.NextData(last, pub, nil, c.at), c.signer)
	require.NoError(c.t, err)
	return append(c.history.Clone(), change)
}

func TestRepository_Contract(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := newChain(t)
			id := c.id()

			_, err := repo.GetIdentity(ctx, id)
			require.ErrorIs(t, err, domain.ErrNotFound)
			_, ok, err := repo.RetrieveIdentity(ctx, id)
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, repo.UpdateIdentity(ctx, id, c.history))
			got, err := repo.GetIdentity(ctx, id)
			require.NoError(t, err)
			assert.True(t, c.history.Equal(got))

			// Identical update is a no-op.
			require.NoError(t, repo.UpdateIdentity(ctx, id, c.history.Clone()))

			longer := c.extended()
			require.NoError(t, repo.UpdateIdentity(ctx, id, longer))
			got, ok, err = repo.RetrieveIdentity(ctx, id)
			require.NoError(t, err)
			require.True(t, ok)
			assert.True(t, longer.Equal(got))

			// Stale prefix and fork are both rejected and leave the record.
			err = repo.UpdateIdentity(ctx, id, c.history)
			require.ErrorIs(t, err, domain.ErrConflictingHistory)
			err = repo.UpdateIdentity(ctx, id, c.extended())
			require.ErrorIs(t, err, domain.ErrConflictingHistory)
			got, err = repo.GetIdentity(ctx, id)
			require.NoError(t, err)
			assert.True(t, longer.Equal(got))

			other := newChain(t)
			err = repo.UpdateIdentity(ctx, id, other.history)
			require.ErrorIs(t, err, domain.ErrIdentifierMismatch)
			require.NoError(t, repo.UpdateIdentity(ctx, other.id(), other.history))

			ids, err := repo.ListIdentifiers(ctx)
			require.NoError(t, err)
			assert.ElementsMatch(t, []domain.Identifier{id, other.id()}, ids)
			assert.IsNonDecreasing(t, []string{ids[0].String(), ids[1].String()})
		})
	}
}

func TestRepository_ConcurrentForksAcceptOne(t *testing.T) {
	ctx := context.Background()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := newChain(t)
			require.NoError(t, repo.UpdateIdentity(ctx, c.id(), c.history))

			const writers = 8
			forks := make([]domain.ChangeHistory, writers)
			for i := range forks {
				forks[i] = c.extended()
			}

			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				accepted  []int
				conflicts int
			)
			for i := range forks {
				wg.Add(1)
				go func() {
					defer wg.Done()
					err := repo.UpdateIdentity(ctx, c.id(), forks[i])
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						accepted = append(accepted, i)
					case errors.Is(err, domain.ErrConflictingHistory):
						conflicts++
					default:
						t.Errorf("writer %d: %v", i, err)
					}
				}()
			}
			wg.Wait()

			require.Len(t, accepted, 1, "exactly one sibling extension wins")
			assert.Equal(t, writers-1, conflicts)
			got, err := repo.GetIdentity(ctx, c.id())
			require.NoError(t, err)
			assert.True(t, forks[accepted[0]].Equal(got))
		})
	}
}

func TestRepository_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			c := newChain(t)
			err := repo.UpdateIdentity(ctx, c.id(), c.history)
			require.ErrorIs(t, err, context.Canceled)
		})
	}
}

func TestFileRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c := newChain(t)

	repo, err := store.NewFileRepository(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.UpdateIdentity(ctx, c.id(), c.history); err != nil {
		t.Fatalf("update: %v", err)
	}

	reopened, err := store.NewFileRepository(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.GetIdentity(ctx, c.id())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !c.history.Equal(got) {
		t.Fatal("history mismatch after reopen")
	}
	if _, err := os.Stat(filepath.Join(dir, c.id().String()+".json")); err != nil {
		t.Fatalf("record file: %v", err)
	}
}

func TestSQLiteRepository_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.sqlite")
	c := newChain(t)

	repo, err := store.OpenSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.UpdateIdentity(ctx, c.id(), c.history); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := store.OpenSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.GetIdentity(ctx, c.id())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !c.history.Equal(got) {
		t.Fatal("history mismatch after reopen")
	}
}
