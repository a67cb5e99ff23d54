package rotator

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	errorz "github.com/jack5341/attendance-server/internal/errors"
	"github.com/jack5341/attendance-server/internal/models"
	"github.com/jack5341/attendance-server/internal/store"
	tokenmanager "github.com/jack5341/attendance-server/pkg/token_manager"
	"github.com/rs/zerolog"
)

func seed(t *testing.T, st *store.MemoryStore, sessionIDs ...uint) map[uint]models.SessionToken {
	t.Helper()
	ctx := context.Background()
	tokens := make(map[uint]models.SessionToken, len(sessionIDs))
	for _, id := range sessionIDs {
		if err := st.CreateSession(ctx, &models.Session{ID: id}); err != nil {
			t.Fatal(err)
		}
		token, err := st.GetOrCreateToken(ctx, id, func() models.SessionToken {
			return models.SessionToken{
				Token:     tokenmanager.TokenFor(id),
				PIN:       1000,
				ExpiresAt: time.Now().Add(2 * time.Hour),
			}
		})
		if err != nil {
			t.Fatal(err)
		}
		tokens[id] = token
	}
	return tokens
}

func TestTickRotatesOnlyThePIN(t *testing.T) {
	st := store.NewMemoryStore()
	before := seed(t, st, 1, 2, 42)
	// Session without a token must be left alone.
	if err := st.CreateSession(context.Background(), &models.Session{ID: 9}); err != nil {
		t.Fatal(err)
	}
	r := New(st, zerolog.Nop())

	for n := 0; n < 25; n++ {
		rotated, err := r.Tick(context.Background())
		if err != nil {
			t.Fatalf("tick %d failed: %v", n, err)
		}
		if rotated != 3 {
			t.Fatalf("tick %d rotated %d tokens, want 3", n, rotated)
		}
	}

	for id, old := range before {
		got, err := st.GetToken(context.Background(), id)
		if err != nil {
			t.Fatal(err)
		}
		if got.Token != old.Token || got.SessionID != old.SessionID || !got.ExpiresAt.Equal(old.ExpiresAt) || got.ID != old.ID {
			t.Errorf("session %d: rotation changed more than the PIN: %+v -> %+v", id, old, got)
		}
		if got.PIN < tokenmanager.MinPIN || got.PIN > tokenmanager.MaxPIN {
			t.Errorf("session %d: PIN %d out of range", id, got.PIN)
		}
	}
	if _, err := st.GetToken(context.Background(), 9); !errors.Is(err, errorz.ErrSessionTokenNotFound) {
		t.Error("rotation created a token for session 9")
	}
}

func TestTickChangesPIN(t *testing.T) {
	st := store.NewMemoryStore()
	seed(t, st, 42)
	r := New(st, zerolog.Nop(), WithPINSource(func() int { return 8765 }))

	if _, err := r.Tick(context.Background()); err != nil {
		t.Fatal(err)
	}
	got, _ := st.GetToken(context.Background(), 42)
	if got.PIN != 8765 {
		t.Errorf("PIN = %d, want 8765", got.PIN)
	}
}

type flakyStore struct {
	*store.MemoryStore
	calls atomic.Int32
}

func (s *flakyStore) RotatePINs(ctx context.Context, nextPIN func() int) (int, error) {
	if s.calls.Add(1) == 1 {
		return 0, errors.Join(errorz.ErrStorageUnavailable, errors.New("connection reset"))
	}
	return s.MemoryStore.RotatePINs(ctx, nextPIN)
}

type panickingStore struct {
	*store.MemoryStore
}

func (panickingStore) RotatePINs(context.Context, func() int) (int, error) {
	panic("driver bug")
}

func TestTickReportsFailure(t *testing.T) {
	st := &flakyStore{MemoryStore: store.NewMemoryStore()}
	r := New(st, zerolog.Nop())

	if _, err := r.Tick(context.Background()); !errors.Is(err, errorz.ErrStorageUnavailable) {
		t.Fatalf("first tick error = %v, want ErrStorageUnavailable", err)
	}
	if _, err := r.Tick(context.Background()); err != nil {
		t.Fatalf("second tick failed: %v", err)
	}
}

func TestTickRecoversFromPanic(t *testing.T) {
	r := New(panickingStore{store.NewMemoryStore()}, zerolog.Nop())
	if _, err := r.Tick(context.Background()); err == nil {
		t.Fatal("expected error from panicking store")
	}
}

func TestWorkerKeepsRunningAfterFailedTick(t *testing.T) {
	st := &flakyStore{MemoryStore: store.NewMemoryStore()}
	seed(t, st.MemoryStore, 42)
	r := New(st, zerolog.Nop(), WithInterval(5*time.Millisecond), WithPINSource(func() int { return 2468 }))

	r.Start(context.Background())
	defer r.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		token, _ := st.GetToken(context.Background(), 42)
		if st.calls.Load() >= 2 && token.PIN == 2468 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("worker did not recover: %d ticks", st.calls.Load())
}

func TestStopHaltsWorker(t *testing.T) {
	st := &flakyStore{MemoryStore: store.NewMemoryStore()}
	r := New(st, zerolog.Nop(), WithInterval(5*time.Millisecond))

	r.Start(context.Background())
	r.Start(context.Background())
	time.Sleep(20 * time.Millisecond)
	r.Stop()
	r.Stop()

	calls := st.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := st.calls.Load(); got != calls {
		t.Errorf("worker ticked after Stop: %d -> %d", calls, got)
	}
}

func TestStopWithoutStart(t *testing.T) {
	r := New(store.NewMemoryStore(), zerolog.Nop())
	r.Stop()
}

func TestWorkerStopsWithContext(t *testing.T) {
	st := &flakyStore{MemoryStore: store.NewMemoryStore()}
	r := New(st, zerolog.Nop(), WithInterval(5*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())

	r.Start(ctx)
	cancel()
	r.Stop()

	calls := st.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if got := st.calls.Load(); got != calls {
		t.Errorf("worker ticked after context cancel: %d -> %d", calls, got)
	}
}
