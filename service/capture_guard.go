package service

import (
	"context"
	"sync"
)

// captureGuard serializes captures sharing a key. Unlike a try-lock, later callers queue
// until the running capture finishes or their context ends.
type captureGuard struct {
	mu    sync.Mutex
	slots map[string]*guardSlot
	wg    sync.WaitGroup
}

type guardSlot struct {
	sem  chan struct{}
	refs int
}

func newCaptureGuard() *captureGuard {
	return &captureGuard{slots: make(map[string]*guardSlot)}
}

// Acquire blocks until key is free. The returned release must be called once the capture ends;
// extra calls are no-ops.
func (g *captureGuard) Acquire(ctx context.Context, key string) (func(), error) {
	g.mu.Lock()
	slot, ok := g.slots[key]
	if !ok {
		slot = &guardSlot{sem: make(chan struct{}, 1)}
		g.slots[key] = slot
	}
	slot.refs++
	g.mu.Unlock()

	select {
	case slot.sem <- struct{}{}:
	case <-ctx.Done():
		g.drop(key, slot)
		return nil, ctx.Err()
	}

	g.wg.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() {
			<-slot.sem
			g.drop(key, slot)
			g.wg.Done()
		})
	}, nil
}

// Busy reports whether a capture holds or waits for key
func (g *captureGuard) Busy(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.slots[key]
	return ok
}

// WaitAll blocks until all running captures complete or ctx is cancelled
func (g *captureGuard) WaitAll(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
}

func (g *captureGuard) drop(key string, slot *guardSlot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(g.slots, key)
	}
}
