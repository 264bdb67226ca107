package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/hanj724/arcade-live/internal/engine"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(NewRedisStore(rdb, time.Hour)), mr
}

func testSession(id string) *Session {
	return &Session{
		ID:        id,
		GameType:  engine.GameTicTacToe,
		Player1ID: "alice",
		Player2ID: "bob",
		Status:    StatusWaiting,
	}
}

func TestCreateAndSnapshot(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	if err := st.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := st.Snapshot(ctx, "s1")
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if got.Player1ID != "alice" || got.Status != StatusWaiting {
		t.Fatalf("unexpected snapshot %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not stamped: %+v", got)
	}
}

func TestCreateConflict(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	if err := st.Create(ctx, testSession("dup")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := st.Create(ctx, testSession("dup")); !errors.Is(err, ErrSessionExists) {
		t.Fatalf("second Create = %v, want ErrSessionExists", err)
	}
}

func TestSnapshotUnknown(t *testing.T) {
	st, _ := newTestStore(t)
	if _, err := st.Snapshot(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Snapshot = %v, want ErrSessionNotFound", err)
	}
}

func TestUpdatePersists(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	if err := st.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := st.Update(ctx, "s1", func(s *Session) (bool, error) {
		s.Status = StatusActive
		s.MoveSeq = 3
		return true, nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	// a fresh store over the same redis must see the mutation
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	fresh := NewStore(NewRedisStore(rdb, time.Hour))
	got, err := fresh.Snapshot(ctx, "s1")
	if err != nil {
		t.Fatalf("Snapshot from fresh store: %v", err)
	}
	if got.Status != StatusActive || got.MoveSeq != 3 {
		t.Fatalf("durable state stale: %+v", got)
	}
}

func TestUpdateFnErrorLeavesStateUntouched(t *testing.T) {
	st, _ := newTestStore(t)
	ctx := context.Background()

	if err := st.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	boom := errors.New("boom")
	err := st.Update(ctx, "s1", func(s *Session) (bool, error) {
		s.Status = StatusCompleted
		return true, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update = %v, want boom", err)
	}
	got, _ := st.Snapshot(ctx, "s1")
	if got.Status != StatusWaiting {
		t.Fatalf("mutation leaked through fn error: %+v", got)
	}
}

func TestUpdateRollsBackOnPersistFailure(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	if err := st.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	before, _ := st.Snapshot(ctx, "s1")

	mr.SetError("redis is down")
	err := st.Update(ctx, "s1", func(s *Session) (bool, error) {
		s.Status = StatusActive
		s.State = "X--------"
		s.MoveSeq = 1
		return true, nil
	})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("Update = %v, want ErrPersistence", err)
	}
	mr.SetError("")

	after, _ := st.Snapshot(ctx, "s1")
	if after.Status != before.Status || after.State != before.State || after.MoveSeq != before.MoveSeq {
		t.Fatalf("visible state changed after failed persist:\nbefore %+v\nafter  %+v", before, after)
	}
}

func TestUpdateNoChangeSkipsSave(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	if err := st.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// a no-op update on a broken redis must still succeed
	mr.SetError("redis is down")
	err := st.Update(ctx, "s1", func(s *Session) (bool, error) { return false, nil })
	if err != nil {
		t.Fatalf("no-op Update: %v", err)
	}
}

func TestLazyLoadFromRedis(t *testing.T) {
	st, mr := newTestStore(t)
	ctx := context.Background()

	if err := st.Create(ctx, testSession("s1")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// second store has an empty memory map and must hydrate on demand
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	fresh := NewStore(NewRedisStore(rdb, time.Hour))
	err := fresh.Update(ctx, "s1", func(s *Session) (bool, error) {
		if s.Player2ID != "bob" {
			t.Fatalf("hydrated session wrong: %+v", s)
		}
		s.Player1Ready = true
		return true, nil
	})
	if err != nil {
		t.Fatalf("Update on lazily loaded session: %v", err)
	}
}

func TestUpdateUnknownSession(t *testing.T) {
	st, _ := newTestStore(t)
	err := st.Update(context.Background(), "ghost", func(s *Session) (bool, error) {
		return true, nil
	})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Update = %v, want ErrSessionNotFound", err)
	}
}
