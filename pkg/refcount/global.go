package refcount

import "sync"

// GlobalHolder is a reader/writer-locked cell owning at most one object
// reference. It is the building block for long-lived "current config" or
// "current default" style globals that are replaced wholesale rather than
// mutated in place.
//
// The zero value is an empty, ready-to-use holder.
type GlobalHolder struct {
	mu     sync.RWMutex
	held   Handle
	Logger Logger // optional; defaults to a no-op logger when nil
}

func (g *GlobalHolder) logger() Logger {
	return logOf(g.Logger)
}

// Release acquires the holder's writer lock, drops the held reference (if
// any), and clears the slot.
func (g *GlobalHolder) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held.Valid() {
		g.held.Cleanup()
	}
	g.held = Handle{}
}

// Replace installs newHandle as the held reference, taking one additional
// reference on it (if it is valid), and returns the previous contents
// without decrementing it — the caller is responsible for draining the
// returned handle with [Handle.Cleanup].
func (g *GlobalHolder) Replace(newHandle Handle) Handle {
	g.mu.Lock()
	defer g.mu.Unlock()

	if newHandle.Valid() {
		_, _ = newHandle.Ref(1)
	}
	old := g.held
	g.held = newHandle
	return old
}

// ReplaceAndUnref is [GlobalHolder.Replace] followed by a [Handle.Cleanup]
// of the previous contents. It reports whether a prior value existed.
func (g *GlobalHolder) ReplaceAndUnref(newHandle Handle) (hadPrior bool) {
	old := g.Replace(newHandle)
	if !old.Valid() {
		return false
	}
	old.Cleanup()
	return true
}

// Get acquires the holder's reader lock, takes a reference on the held
// object (if any), releases the lock, and returns the new reference. The
// zero [Handle] is returned if nothing is held.
func (g *GlobalHolder) Get() Handle {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.held.Valid() {
		return Handle{}
	}
	_, _ = g.held.Ref(1)
	return g.held
}
