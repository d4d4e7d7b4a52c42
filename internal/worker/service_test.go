package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunRefreshLoop_WarmsCacheImmediately(t *testing.T) {
	env := testService(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		env.svc.RunRefreshLoop(ctx, time.Hour)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, ok, err := env.store.Get(context.Background(), "projects:cache")
		return err == nil && ok
	}, 2*time.Second, 10*time.Millisecond, "refresh loop should warm the cache at start")

	cancel()
	<-done
}

func TestRunRefreshLoop_StopsOnCancel(t *testing.T) {
	env := testService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		env.svc.RunRefreshLoop(ctx, time.Millisecond)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh loop did not stop on cancellation")
	}
}
