package refcount

import "sync"

// Kind selects the lock variant embedded in an object's header.
type Kind int

const (
	// KindNone means the object has no embedded lock; Lock/Unlock/TryLock
	// are no-ops and AdjustLock always reports RequestWrite as the
	// original level, per the mutex-compatible convention documented on
	// [Handle.AdjustLock].
	KindNone Kind = iota

	// KindMutex embeds a plain mutual-exclusion lock. Every [Request]
	// level maps onto the same exclusive lock.
	KindMutex

	// KindRWLock embeds a reader/writer lock and tracks the current
	// holder mode so that [Handle.AdjustLock] can safely flip between
	// read and write while a caller already holds the lock.
	KindRWLock
)

func (k Kind) valid() bool {
	return k == KindNone || k == KindMutex || k == KindRWLock
}

// Request selects the strength at which a lock is acquired or adjusted.
type Request int

const (
	// RequestRead acquires a shared (reader) hold. For [KindMutex] and
	// [KindNone] this behaves exactly like RequestWrite.
	RequestRead Request = iota

	// RequestWrite acquires an exclusive (writer) hold.
	RequestWrite
)

// locker implements the uniform acquire/release/try/adjust contract over
// the three [Kind] variants. The zero value is KindNone and is always
// safe to use.
type locker struct {
	kind Kind
	mu   sync.Mutex
	rw   sync.RWMutex

	// numLockers tracks the rwlock's current holder mode: -1 while a
	// writer holds the lock, otherwise the number of current readers.
	// Only meaningful for KindRWLock, and only while the lock is held by
	// the calling goroutine (AdjustLock's precondition).
	numLockers int32
	numMu      sync.Mutex // guards numLockers; held only for the instant of the read-modify-write
}

func newLocker(kind Kind) locker {
	return locker{kind: kind}
}

func (l *locker) setNumLockers(v int32) {
	l.numMu.Lock()
	l.numLockers = v
	l.numMu.Unlock()
}

func (l *locker) addNumLockers(delta int32) int32 {
	l.numMu.Lock()
	l.numLockers += delta
	v := l.numLockers
	l.numMu.Unlock()
	return v
}

func (l *locker) loadNumLockers() int32 {
	l.numMu.Lock()
	v := l.numLockers
	l.numMu.Unlock()
	return v
}

// Lock acquires the embedded lock at the given strength. It blocks until
// available.
func (l *locker) Lock(req Request) {
	switch l.kind {
	case KindNone:
		return
	case KindMutex:
		l.mu.Lock()
	case KindRWLock:
		if req == RequestWrite {
			l.rw.Lock()
			l.setNumLockers(-1)
		} else {
			l.rw.RLock()
			l.addNumLockers(1)
		}
	}
}

// TryLock attempts to acquire the embedded lock without blocking.
func (l *locker) TryLock(req Request) bool {
	switch l.kind {
	case KindNone:
		return true
	case KindMutex:
		return l.mu.TryLock()
	case KindRWLock:
		if req == RequestWrite {
			if !l.rw.TryLock() {
				return false
			}
			l.setNumLockers(-1)
			return true
		}
		if !l.rw.TryRLock() {
			return false
		}
		l.addNumLockers(1)
		return true
	}
	return false
}

// Unlock releases the embedded lock. It inspects the current holder mode
// to decide whether to release a reader or the writer hold, so callers
// never need to remember which strength they originally acquired.
func (l *locker) Unlock() {
	switch l.kind {
	case KindNone:
		return
	case KindMutex:
		l.mu.Unlock()
	case KindRWLock:
		if l.loadNumLockers() < 0 {
			l.setNumLockers(0)
			l.rw.Unlock()
		} else {
			l.addNumLockers(-1)
			l.rw.RUnlock()
		}
	}
}

// currentLevel reports the strength at which the lock is presently held.
// Only valid while the calling goroutine actually holds the lock.
func (l *locker) currentLevel() Request {
	switch l.kind {
	case KindRWLock:
		if l.loadNumLockers() < 0 {
			return RequestWrite
		}
		return RequestRead
	default:
		// KindMutex and KindNone are always mutex-compatible (write).
		return RequestWrite
	}
}

// Adjust is the AdjustLock primitive: the caller already holds the lock at
// some level; if the variant is KindRWLock and the current level differs
// from desired, the lock is released and re-acquired at the new level,
// unless keepStronger is true and the current level is already the
// stronger one (write). It returns the level the lock was at on entry, so
// the caller can restore it afterward.
//
// For KindNone and KindMutex this is a no-op and the reported original
// level is always RequestWrite.
//
// Across the release/re-acquire gap — when it happens — no ordering with
// other goroutines is guaranteed. Callers relying on invariants across an
// Adjust call must re-validate them afterward.
func (l *locker) Adjust(desired Request, keepStronger bool) Request {
	if l.kind != KindRWLock {
		return RequestWrite
	}
	current := l.currentLevel()
	if current == desired {
		return current
	}
	if keepStronger && current == RequestWrite {
		return current
	}
	l.Unlock()
	l.Lock(desired)
	return current
}

// restoreAfterAdjust flips the lock back to orig if it is not already
// there. It is the mirror operation of Adjust, used once a caller is done
// with the temporarily-adjusted level.
func (l *locker) restoreAfterAdjust(orig Request) {
	if l.kind != KindRWLock {
		return
	}
	if l.currentLevel() == orig {
		return
	}
	l.Unlock()
	l.Lock(orig)
}

// mutexAddr returns the address of the embedded plain mutex if this
// locker is KindMutex, else nil. It has no meaning for KindRWLock: a
// reader/writer lock has no single address a condition-variable-style
// waiter could coordinate with.
func (l *locker) mutexAddr() *sync.Mutex {
	if l.kind != KindMutex {
		return nil
	}
	return &l.mu
}
