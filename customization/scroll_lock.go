package customization

import "sync"

// ScrollLocker suppresses page scrolling while a drag is in progress.
// Lock returns the function that releases that particular hold.
type ScrollLocker interface {
	Lock() (release func())
}

// ScrollLock is a counting page scroll lock. The page is locked while at least one hold
// is outstanding; each release function only counts once no matter how often it is called.
type ScrollLock struct {
	mu    sync.Mutex
	holds int
}

var _ ScrollLocker = (*ScrollLock)(nil)

// Lock acquires a hold
func (l *ScrollLock) Lock() func() {
	l.mu.Lock()
	l.holds++
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.holds--
			l.mu.Unlock()
		})
	}
}

// Locked reports whether any hold is outstanding
func (l *ScrollLock) Locked() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holds > 0
}
