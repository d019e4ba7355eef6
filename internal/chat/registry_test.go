package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/agentchat/internal/domain"
)

func mustRegister(t *testing.T, r *Registry, c *Controller) {
	t.Helper()
	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestRegistryRefusesDuplicateIDs(t *testing.T) {
	t.Parallel()

	sameID := func() string { return "shared" }
	first := NewController(&fakeBackend{}, Options{NewID: sameID})
	first.Start()
	second := NewController(&fakeBackend{}, Options{NewID: sameID})
	second.Start()

	r := NewRegistry(nil)
	mustRegister(t, r, first)
	if err := r.Register(second); !errors.Is(err, ErrDuplicateSession) {
		t.Fatalf("expected ErrDuplicateSession, got %v", err)
	}
	if r.Get("shared") != first || r.Len() != 1 {
		t.Fatal("the first conversation must be kept")
	}

	if err := r.Register(NewController(&fakeBackend{}, Options{})); !errors.Is(err, ErrSessionNotReady) {
		t.Fatalf("unstarted controller: expected ErrSessionNotReady, got %v", err)
	}
}

func TestNewTestControllerIDsAreDistinct(t *testing.T) {
	t.Parallel()

	a := newTestController(t, &fakeBackend{}, Options{})
	b := newTestController(t, &fakeBackend{}, Options{})
	if a.SessionID() == b.SessionID() {
		t.Fatalf("test controllers share session id %q", a.SessionID())
	}
}

func TestRegistryRegisterAndUnregister(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	c := newTestController(t, &fakeBackend{}, Options{})
	mustRegister(t, r, c)

	if got := r.Get(c.SessionID()); got != c {
		t.Fatalf("expected registered controller, got %v", got)
	}
	if r.Len() != 1 {
		t.Fatalf("expected 1 conversation, got %d", r.Len())
	}
	if !r.Unregister(c.SessionID()) {
		t.Fatal("expected Unregister to report removal")
	}
	if r.Unregister(c.SessionID()) {
		t.Fatal("second Unregister must report false")
	}
	if r.Get(c.SessionID()) != nil {
		t.Fatal("controller should be gone")
	}
}

func TestRegistrySweepEvictsIdleConversations(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return start }

	r := NewRegistry(nil)
	stale := newTestController(t, &fakeBackend{}, Options{Clock: clock})
	mustRegister(t, r, stale)

	fresh := newTestController(t, &fakeBackend{}, Options{Clock: func() time.Time { return start.Add(20 * time.Minute) }})
	mustRegister(t, r, fresh)

	if r.Len() != 2 {
		t.Fatalf("expected 2 conversations before the sweep, got %d", r.Len())
	}

	if n := r.Sweep(start.Add(25*time.Minute), 10*time.Minute); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if r.Get(stale.SessionID()) != nil || r.Get(fresh.SessionID()) == nil {
		t.Fatal("sweep evicted the wrong conversation")
	}
}

func TestRegistrySweepKeepsInFlightConversations(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	entered := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{}
	backend.send = func(context.Context, string) (*domain.ConversationResponse, error) {
		close(entered)
		<-release
		return &domain.ConversationResponse{}, nil
	}

	r := NewRegistry(nil)
	c := newTestController(t, backend, Options{Clock: func() time.Time { return start }})
	mustRegister(t, r, c)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = c.SubmitText(context.Background(), "slow")
	}()
	<-entered

	if n := r.Sweep(start.Add(time.Hour), time.Minute); n != 0 {
		t.Fatalf("in-flight conversation must survive a sweep, evicted %d", n)
	}
	close(release)
	wg.Wait()
}

func TestRegistrySweeperStopsOnCancel(t *testing.T) {
	t.Parallel()

	r := NewRegistry(nil)
	c := newTestController(t, &fakeBackend{}, Options{Clock: func() time.Time { return time.Unix(0, 0) }})
	mustRegister(t, r, c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.StartSweeper(ctx, 10*time.Millisecond, time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for r.Len() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if r.Len() != 0 {
		t.Fatal("sweeper did not evict the expired conversation")
	}
}
