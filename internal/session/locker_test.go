package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLockerSerialisesSameID(t *testing.T) {
	locker := NewLocker()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		active int
		peak   int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locker.Lock("same")
			defer unlock()

			mu.Lock()
			active++
			if active > peak {
				peak = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 1, peak)
	require.Zero(t, locker.Held())
}

func TestLockerIndependentIDs(t *testing.T) {
	locker := NewLocker()

	unlockA := locker.Lock("a")
	done := make(chan struct{})
	go func() {
		unlockB := locker.Lock("b")
		unlockB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on a different id should not block")
	}

	unlockA()
	unlockA()
	require.Zero(t, locker.Held())
}

type countingSweeper struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSweeper) Sweep(time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 1
}

func (c *countingSweeper) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestStartSweeperRunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sweeper := &countingSweeper{}

	StartSweeper(ctx, sweeper, 5*time.Millisecond, zerolog.Nop())
	require.Eventually(t, func() bool { return sweeper.Calls() >= 2 }, time.Second, time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	settled := sweeper.Calls()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, settled, sweeper.Calls())
}

func TestStartSweeperDisabled(t *testing.T) {
	sweeper := &countingSweeper{}
	StartSweeper(context.Background(), sweeper, 0, zerolog.Nop())
	time.Sleep(10 * time.Millisecond)
	require.Zero(t, sweeper.Calls())
}
