package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeDeleter struct {
	mu    sync.Mutex
	calls []time.Time
	err   error
}

func (f *fakeDeleter) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, now)
	return 1, f.err
}

func (f *fakeDeleter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func runReaper(t *testing.T, r *TokenReaper) (context.CancelFunc, <-chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(ch)
	}()
	return cancel, ch
}

func TestTokenReaper_RunsUntilCancelled(t *testing.T) {
	deleter := &fakeDeleter{}
	r := NewTokenReaper(deleter, 5*time.Millisecond)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 3600))
	r.now = func() time.Time { return fixed }

	cancel, done := runReaper(t, r)

	assert.Eventually(t, func() bool { return deleter.count() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}

	deleter.mu.Lock()
	defer deleter.mu.Unlock()
	assert.Equal(t, time.UTC, deleter.calls[0].Location())
	assert.True(t, fixed.Equal(deleter.calls[0]))
}

func TestTokenReaper_KeepsRunningOnError(t *testing.T) {
	deleter := &fakeDeleter{err: errors.New("db error")}
	r := NewTokenReaper(deleter, 5*time.Millisecond)

	cancel, done := runReaper(t, r)
	defer func() {
		cancel()
		<-done
	}()

	assert.Eventually(t, func() bool { return deleter.count() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestTokenReaper_Disabled(t *testing.T) {
	deleter := &fakeDeleter{}
	r := NewTokenReaper(deleter, 0)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled reaper must return immediately")
	}
	assert.Zero(t, deleter.count())
}
